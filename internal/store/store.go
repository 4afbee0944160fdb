// Package store persists professionals, extractions, analyses, monitoring
// runs and reputation snapshots. Two backends implement the same interface:
// SQLite for single-operator use and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

// RunFilter narrows ListRuns. Zero values mean no constraint.
type RunFilter struct {
	Status model.RunStatus
	Mode   model.RunMode
	Limit  int
}

// Store is the persistence boundary for the monitoring pipeline.
type Store interface {
	// SaveProfessional inserts or updates a registry profile. The run that
	// first discovered the profile is preserved across updates.
	SaveProfessional(ctx context.Context, p model.Professional, runID string) error
	GetProfessional(ctx context.Context, profileID string) (*model.Professional, error)
	ListProfessionals(ctx context.Context) ([]model.Professional, error)

	// RecordExtraction stores one matched review. It reports true when the
	// row is new and false when the same (profile, content) pair was already
	// on record, in which case the stored row is left untouched.
	RecordExtraction(ctx context.Context, ext model.Extraction) (bool, error)
	ExtractionsFor(ctx context.Context, profileID string) ([]model.Extraction, error)
	// UnanalyzedExtractions returns extractions with no analysis on record,
	// oldest first, up to limit. A limit of zero or less returns them all.
	UnanalyzedExtractions(ctx context.Context, limit int) ([]model.Extraction, error)

	SaveAnalysis(ctx context.Context, a model.AnalysisResult) error
	AnalysesFor(ctx context.Context, profileID string) ([]model.AnalysisResult, error)
	AllAnalyses(ctx context.Context) ([]model.AnalysisResult, error)

	// StartRun opens a new monitoring run. It fails when another run is
	// still in the running state.
	StartRun(ctx context.Context, mode model.RunMode, keywords []string) (*model.MonitoringRun, error)
	CompleteRun(ctx context.Context, runID string, counters model.RunCounters) error
	FailRun(ctx context.Context, runID string, counters model.RunCounters, cause string) error
	GetRun(ctx context.Context, runID string) (*model.MonitoringRun, error)
	// LastCompletedRun returns the most recently started completed run, or
	// nil when no run has ever completed.
	LastCompletedRun(ctx context.Context) (*model.MonitoringRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.MonitoringRun, error)

	SaveSnapshots(ctx context.Context, snapshots []model.ReputationSnapshot) error
	// LatestSnapshots returns each professional's newest snapshot ordered by
	// composite score descending.
	LatestSnapshots(ctx context.Context) ([]model.ReputationSnapshot, error)
	SnapshotsForRun(ctx context.Context, runID string) ([]model.ReputationSnapshot, error)

	Migrate(ctx context.Context) error
	Close() error
}
