// Package monitor orchestrates a monitoring run: registry discovery, review
// collection, match extraction, AI analysis and reputation snapshots.
package monitor

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rmtwatch/rmtwatch/internal/identity"
	"github.com/rmtwatch/rmtwatch/internal/match"
	"github.com/rmtwatch/rmtwatch/internal/model"
	"github.com/rmtwatch/rmtwatch/internal/reputation"
	"github.com/rmtwatch/rmtwatch/internal/store"
	"github.com/rmtwatch/rmtwatch/pkg/places"
	"github.com/rmtwatch/rmtwatch/pkg/registry"
)

const (
	// incrementalCeiling bounds how many professionals an incremental run
	// will touch per keyword regardless of configuration.
	incrementalCeiling = 20

	// incrementalLookback is informational only: the review source does not
	// expose reliable timestamps, so incremental runs re-scan live sources
	// and lean on store idempotency instead of filtering by age.
	incrementalLookback = 30 * 24 * time.Hour
)

// Config tunes a monitoring run.
type Config struct {
	Keywords          []string
	NameThreshold     int
	LocationThreshold int
	// MaxProfessionalsPerKeyword bounds full and rebuild discovery per
	// keyword. Zero or negative means unbounded: pagination runs until the
	// register reports no further results.
	MaxProfessionalsPerKeyword int
	IncrementalProfessionalCap int
	// AnalysisBacklogCap bounds the incremental backlog sweep. Full and
	// rebuild runs drain every pending extraction regardless.
	AnalysisBacklogCap int
	MinReviewLength    int
	APIDelay           time.Duration
}

// Analyzer judges one extraction. Implemented by analyzer.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, ext model.Extraction, prof *model.Professional) (*model.AnalysisResult, error)
}

// Monitor drives the end to end pipeline against pluggable externals.
type Monitor struct {
	cfg      Config
	store    store.Store
	registry registry.Client
	places   places.Client
	analyzer Analyzer
	engine   *match.Engine
	limiter  *rate.Limiter
}

func New(cfg Config, st store.Store, reg registry.Client, pl places.Client, an Analyzer) *Monitor {
	if cfg.NameThreshold <= 0 {
		cfg.NameThreshold = 75
	}
	if cfg.LocationThreshold <= 0 {
		cfg.LocationThreshold = 60
	}
	if cfg.IncrementalProfessionalCap <= 0 {
		cfg.IncrementalProfessionalCap = incrementalCeiling
	}
	if cfg.AnalysisBacklogCap <= 0 {
		cfg.AnalysisBacklogCap = 50
	}
	if cfg.MinReviewLength <= 0 {
		cfg.MinReviewLength = 10
	}
	if cfg.APIDelay <= 0 {
		cfg.APIDelay = 500 * time.Millisecond
	}

	return &Monitor{
		cfg:      cfg,
		store:    st,
		registry: reg,
		places:   pl,
		analyzer: an,
		engine:   match.NewEngine(cfg.NameThreshold, cfg.LocationThreshold),
		limiter:  rate.NewLimiter(rate.Every(cfg.APIDelay), 1),
	}
}

// RunFull discovers every configured keyword from scratch.
func (m *Monitor) RunFull(ctx context.Context) (*model.MonitoringRun, error) {
	return m.run(ctx, model.ModeFull)
}

// RunIncremental processes a small professional slice plus the analysis
// backlog. Falls back to a full run when no completed run exists yet.
func (m *Monitor) RunIncremental(ctx context.Context) (*model.MonitoringRun, error) {
	last, err := m.store.LastCompletedRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "check last completed run")
	}
	if last == nil {
		zap.L().Info("no completed run on record, running full instead")
		return m.run(ctx, model.ModeFull)
	}
	return m.run(ctx, model.ModeIncremental)
}

// RunRebuild discovers like a full run but carries the intent of recomputing
// everything; it never skips professionals seen in earlier runs.
func (m *Monitor) RunRebuild(ctx context.Context) (*model.MonitoringRun, error) {
	return m.run(ctx, model.ModeRebuild)
}

func (m *Monitor) run(ctx context.Context, mode model.RunMode) (*model.MonitoringRun, error) {
	run, err := m.store.StartRun(ctx, mode, m.cfg.Keywords)
	if err != nil {
		return nil, eris.Wrap(err, "start run")
	}
	zap.L().Info("monitoring run started",
		zap.String("run_id", run.ID),
		zap.String("mode", string(mode)),
		zap.Strings("keywords", m.cfg.Keywords),
	)

	var counters model.RunCounters
	if err := m.execute(ctx, run, &counters); err != nil {
		if failErr := m.store.FailRun(ctx, run.ID, counters, err.Error()); failErr != nil {
			zap.L().Error("mark run failed", zap.String("run_id", run.ID), zap.Error(failErr))
		}
		return nil, eris.Wrapf(err, "run %s", run.ID)
	}

	if err := m.store.CompleteRun(ctx, run.ID, counters); err != nil {
		return nil, eris.Wrapf(err, "complete run %s", run.ID)
	}

	zap.L().Info("monitoring run completed",
		zap.String("run_id", run.ID),
		zap.Int("professionals", counters.ProfessionalsProcessed),
		zap.Int("extractions", counters.ExtractionsCreated),
		zap.Int("analyses", counters.AnalysesCompleted),
		zap.Int("analysis_failures", counters.AnalysesFailed),
	)
	return m.store.GetRun(ctx, run.ID)
}

func (m *Monitor) execute(ctx context.Context, run *model.MonitoringRun, counters *model.RunCounters) error {
	if err := m.discover(ctx, run, counters); err != nil {
		return err
	}
	if err := m.analyze(ctx, run, counters); err != nil {
		return err
	}
	return m.snapshot(ctx, run)
}

// discover walks every keyword through the register, collects reviews around
// each practice location and records extractions. Full and rebuild runs
// paginate until the register is exhausted unless a per-keyword cap is set;
// incremental runs always stop at the incremental cap. External hiccups on a
// single professional or listing are logged and skipped; only storage and
// context failures abort the run.
func (m *Monitor) discover(ctx context.Context, run *model.MonitoringRun, counters *model.RunCounters) error {
	limit := m.cfg.MaxProfessionalsPerKeyword
	if run.Mode == model.ModeIncremental {
		limit = min(m.cfg.IncrementalProfessionalCap, incrementalCeiling)
		zap.L().Debug("incremental discovery",
			zap.Int("professional_cap", limit),
			zap.Duration("lookback", incrementalLookback),
		)
	}

	seen := map[string]struct{}{}
	for _, keyword := range m.cfg.Keywords {
		processed := 0
		for skip := 0; limit <= 0 || processed < limit; skip += registry.DefaultPageSize {
			if err := m.wait(ctx); err != nil {
				return err
			}
			page, err := m.registry.Search(ctx, keyword, skip, registry.DefaultPageSize)
			if err != nil {
				zap.L().Warn("register search failed", zap.String("keyword", keyword), zap.Error(err))
				break
			}
			if len(page.Results) == 0 {
				break
			}

			for _, result := range page.Results {
				if limit > 0 && processed >= limit {
					break
				}
				if result.ProfileID == "" {
					continue
				}
				if _, dup := seen[result.ProfileID]; dup {
					continue
				}
				seen[result.ProfileID] = struct{}{}
				processed++

				if err := m.processProfessional(ctx, run, result.ProfileID, counters); err != nil {
					return err
				}
			}

			if skip+registry.DefaultPageSize >= page.ResultCount {
				break
			}
		}
	}
	return nil
}

func (m *Monitor) processProfessional(ctx context.Context, run *model.MonitoringRun, profileID string, counters *model.RunCounters) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	profile, err := m.registry.Profile(ctx, profileID)
	if err != nil {
		zap.L().Warn("profile fetch failed", zap.String("profile_id", profileID), zap.Error(err))
		return nil
	}
	if profile == nil {
		zap.L().Debug("profile not found", zap.String("profile_id", profileID))
		return nil
	}

	prof := profile.Model()
	if err := m.store.SaveProfessional(ctx, prof, run.ID); err != nil {
		return eris.Wrapf(err, "save professional %s", prof.ProfileID)
	}
	counters.ProfessionalsProcessed++

	nameTerms := identity.NameVariants(prof)
	for _, loc := range prof.PracticeLocations {
		if err := m.collectLocation(ctx, run, &prof, nameTerms, loc, counters); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) collectLocation(ctx context.Context, run *model.MonitoringRun, prof *model.Professional, nameTerms []string, loc model.PracticeLocation, counters *model.RunCounters) error {
	searchText := loc.SearchText()
	if searchText == "" {
		return nil
	}
	locTerms := identity.LocationVariants(loc)

	if err := m.wait(ctx); err != nil {
		return err
	}
	listings, err := m.places.SearchNearby(ctx, searchText)
	if err != nil {
		zap.L().Warn("place search failed", zap.String("location", searchText), zap.Error(err))
		return nil
	}

	for _, listing := range listings {
		if err := m.wait(ctx); err != nil {
			return err
		}
		reviews, detail, err := m.places.ListingReviews(ctx, listing.ID)
		if err != nil {
			zap.L().Warn("listing reviews failed", zap.String("place_id", listing.ID), zap.Error(err))
			continue
		}
		if detail == nil {
			continue
		}

		for _, review := range reviews {
			cand := model.ReviewCandidate{
				Text:         review.Text,
				Rating:       review.Rating,
				Author:       review.Author,
				RelativeTime: review.RelativeTime,
				PlaceID:      detail.ID,
			}
			created, err := m.extract(ctx, run, prof, nameTerms, locTerms, searchText, detail, cand)
			if err != nil {
				return err
			}
			if created {
				counters.ExtractionsCreated++
			}
		}
	}
	return nil
}

// extract matches one review against the professional's terms and records it
// when a name term hits. Location matches alone never create an extraction;
// they only add supporting segments.
func (m *Monitor) extract(ctx context.Context, run *model.MonitoringRun, prof *model.Professional, nameTerms, locTerms []string, searchText string, detail *places.ListingDetail, cand model.ReviewCandidate) (bool, error) {
	text := strings.TrimSpace(cand.Text)
	if len([]rune(text)) < m.cfg.MinReviewLength {
		return false, nil
	}

	nameMatches := m.engine.Match(text, nameTerms, match.KindName)
	if len(nameMatches) == 0 {
		return false, nil
	}
	locMatches := m.engine.Match(text, locTerms, match.KindLocation)

	var segments []string
	var scores []int
	for _, res := range append(nameMatches, locMatches...) {
		segments = append(segments, res.Segment)
		scores = append(scores, res.Confidence)
	}

	key := model.ExtractionKey{
		ProfileID:   prof.ProfileID,
		PlaceID:     cand.PlaceID,
		ContentHash: model.ContentHash(text, cand.Author, cand.RelativeTime),
	}
	if !key.Valid() {
		zap.L().Warn("extraction key rejected", zap.String("extraction", key.ID()))
		return false, nil
	}

	ext := model.Extraction{
		Key:              key,
		ReviewText:       text,
		ReviewRating:     cand.Rating,
		ReviewAuthor:     cand.Author,
		ReviewTime:       cand.RelativeTime,
		PlaceName:        detail.Name,
		PlaceAddress:     detail.Address,
		MatchedSegments:  segments,
		ConfidenceScores: scores,
		SearchLocation:   searchText,
		RunID:            run.ID,
		DiscoveredAt:     time.Now().UTC(),
	}

	created, err := m.store.RecordExtraction(ctx, ext)
	if err != nil {
		return false, eris.Wrapf(err, "record extraction %s", ext.Key.ID())
	}
	if created {
		zap.L().Info("review matched",
			zap.String("profile_id", prof.ProfileID),
			zap.String("place", detail.Name),
			zap.Int("confidence", ext.MaxConfidence()),
		)
	}
	return created, nil
}

// analyze drains unanalyzed extractions. Incremental runs stop at the backlog
// cap; full and rebuild runs take everything pending. Analysis failures count
// against the run but do not abort it.
func (m *Monitor) analyze(ctx context.Context, run *model.MonitoringRun, counters *model.RunCounters) error {
	limit := 0
	if run.Mode == model.ModeIncremental {
		limit = m.cfg.AnalysisBacklogCap
	}
	pending, err := m.store.UnanalyzedExtractions(ctx, limit)
	if err != nil {
		return eris.Wrap(err, "load analysis backlog")
	}

	for _, ext := range pending {
		prof, err := m.store.GetProfessional(ctx, ext.Key.ProfileID)
		if err != nil {
			return eris.Wrapf(err, "load professional %s", ext.Key.ProfileID)
		}

		if err := m.wait(ctx); err != nil {
			return err
		}
		result, err := m.analyzer.Analyze(ctx, ext, prof)
		if err != nil {
			counters.AnalysesFailed++
			zap.L().Warn("analysis failed", zap.String("extraction", ext.Key.ID()), zap.Error(err))
			continue
		}
		result.RunID = run.ID

		if err := m.store.SaveAnalysis(ctx, *result); err != nil {
			return eris.Wrapf(err, "save analysis %s", ext.Key.ID())
		}
		counters.AnalysesCompleted++
	}
	return nil
}

// snapshot recomputes every professional's reputation from all analyses on
// record and persists the result under this run.
func (m *Monitor) snapshot(ctx context.Context, run *model.MonitoringRun) error {
	analyses, err := m.store.AllAnalyses(ctx)
	if err != nil {
		return eris.Wrap(err, "load analyses")
	}
	if len(analyses) == 0 {
		return nil
	}

	professionals, err := m.store.ListProfessionals(ctx)
	if err != nil {
		return eris.Wrap(err, "load professionals")
	}
	names := make(map[string]string, len(professionals))
	for _, p := range professionals {
		names[p.ProfileID] = p.FullName()
	}

	snapshots := reputation.BuildSnapshots(analyses, names, run.ID, time.Now().UTC())
	if err := m.store.SaveSnapshots(ctx, snapshots); err != nil {
		return eris.Wrap(err, "save snapshots")
	}
	zap.L().Info("reputation snapshots saved",
		zap.String("run_id", run.ID),
		zap.Int("professionals", len(snapshots)),
	)
	return nil
}

func (m *Monitor) wait(ctx context.Context) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "rate limit wait")
	}
	return nil
}
