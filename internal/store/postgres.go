package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/rmtwatch/rmtwatch/internal/db"
	"github.com/rmtwatch/rmtwatch/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests use this with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS professionals (
	profile_id          TEXT PRIMARY KEY,
	first_name          TEXT NOT NULL,
	last_name           TEXT NOT NULL,
	common_first_name   TEXT NOT NULL DEFAULT '',
	common_last_name    TEXT NOT NULL DEFAULT '',
	registration_status TEXT NOT NULL DEFAULT '',
	authorized          BOOLEAN NOT NULL DEFAULT FALSE,
	locations           JSONB NOT NULL DEFAULT '[]',
	first_seen_run_id   TEXT NOT NULL,
	last_updated_run_id TEXT NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS extractions (
	seq               BIGSERIAL PRIMARY KEY,
	profile_id        TEXT NOT NULL,
	place_id          TEXT NOT NULL,
	content_hash      TEXT NOT NULL,
	review_text       TEXT NOT NULL,
	review_rating     INTEGER NOT NULL DEFAULT 0,
	review_author     TEXT NOT NULL DEFAULT '',
	review_time       TEXT NOT NULL DEFAULT '',
	place_name        TEXT NOT NULL DEFAULT '',
	place_address     TEXT NOT NULL DEFAULT '',
	matched_segments  JSONB NOT NULL DEFAULT '[]',
	confidence_scores JSONB NOT NULL DEFAULT '[]',
	search_location   TEXT NOT NULL DEFAULT '',
	run_id            TEXT NOT NULL,
	discovered_at     TIMESTAMPTZ NOT NULL,
	UNIQUE(profile_id, content_hash)
);

CREATE TABLE IF NOT EXISTS analyses (
	profile_id               TEXT NOT NULL,
	content_hash             TEXT NOT NULL,
	sentiment                TEXT NOT NULL,
	sentiment_confidence     DOUBLE PRECISION NOT NULL DEFAULT 0,
	emotional_tone           TEXT NOT NULL DEFAULT '',
	mention_type             TEXT NOT NULL DEFAULT '',
	mention_confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
	technical_skill          INTEGER,
	communication            INTEGER,
	professionalism          INTEGER,
	authenticity             TEXT NOT NULL DEFAULT '',
	recommendation_given     BOOLEAN NOT NULL DEFAULT FALSE,
	repeat_client            BOOLEAN NOT NULL DEFAULT FALSE,
	potential_false_positive BOOLEAN NOT NULL DEFAULT FALSE,
	overall_confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
	notes                    TEXT NOT NULL DEFAULT '',
	model                    TEXT NOT NULL DEFAULT '',
	run_id                   TEXT NOT NULL DEFAULT '',
	analyzed_at              TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (profile_id, content_hash)
);

CREATE TABLE IF NOT EXISTS monitoring_runs (
	id                      TEXT PRIMARY KEY,
	mode                    TEXT NOT NULL,
	keywords                JSONB NOT NULL DEFAULT '[]',
	status                  TEXT NOT NULL DEFAULT 'running',
	error                   TEXT NOT NULL DEFAULT '',
	professionals_processed INTEGER NOT NULL DEFAULT 0,
	extractions_created     INTEGER NOT NULL DEFAULT 0,
	analyses_completed      INTEGER NOT NULL DEFAULT 0,
	analyses_failed         INTEGER NOT NULL DEFAULT 0,
	started_at              TIMESTAMPTZ NOT NULL,
	completed_at            TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS reputation_snapshots (
	id                      TEXT PRIMARY KEY,
	profile_id              TEXT NOT NULL,
	run_id                  TEXT NOT NULL,
	name                    TEXT NOT NULL DEFAULT '',
	total_reviews           INTEGER NOT NULL DEFAULT 0,
	high_confidence_reviews INTEGER NOT NULL DEFAULT 0,
	authentic_reviews       INTEGER NOT NULL DEFAULT 0,
	positive_count          INTEGER NOT NULL DEFAULT 0,
	negative_count          INTEGER NOT NULL DEFAULT 0,
	average_sentiment       DOUBLE PRECISION NOT NULL DEFAULT 0,
	avg_technical_skill     DOUBLE PRECISION,
	avg_communication       DOUBLE PRECISION,
	avg_professionalism     DOUBLE PRECISION,
	recommendation_rate     DOUBLE PRECISION NOT NULL DEFAULT 0,
	repeat_client_rate      DOUBLE PRECISION NOT NULL DEFAULT 0,
	false_positives         INTEGER NOT NULL DEFAULT 0,
	composite_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	snapshot_at             TIMESTAMPTZ NOT NULL,
	UNIQUE(profile_id, run_id)
);

CREATE INDEX IF NOT EXISTS idx_extractions_profile_id ON extractions(profile_id);
CREATE INDEX IF NOT EXISTS idx_extractions_run_id ON extractions(run_id);
CREATE INDEX IF NOT EXISTS idx_analyses_profile_id ON analyses(profile_id);
CREATE INDEX IF NOT EXISTS idx_monitoring_runs_status ON monitoring_runs(status);
CREATE INDEX IF NOT EXISTS idx_snapshots_profile_id ON reputation_snapshots(profile_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_run_id ON reputation_snapshots(run_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveProfessional(ctx context.Context, p model.Professional, runID string) error {
	locationsJSON, err := json.Marshal(p.PracticeLocations)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal locations")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO professionals (
			profile_id, first_name, last_name, common_first_name, common_last_name,
			registration_status, authorized, locations, first_seen_run_id, last_updated_run_id, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (profile_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			common_first_name = EXCLUDED.common_first_name,
			common_last_name = EXCLUDED.common_last_name,
			registration_status = EXCLUDED.registration_status,
			authorized = EXCLUDED.authorized,
			locations = EXCLUDED.locations,
			last_updated_run_id = EXCLUDED.last_updated_run_id,
			updated_at = EXCLUDED.updated_at`,
		p.ProfileID, p.FirstName, p.LastName, p.CommonFirstName, p.CommonLastName,
		p.RegistrationStatus, p.AuthorizedToPractice, locationsJSON, runID, runID, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save professional %s", p.ProfileID)
}

func (s *PostgresStore) GetProfessional(ctx context.Context, profileID string) (*model.Professional, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT profile_id, first_name, last_name, common_first_name, common_last_name,
		        registration_status, authorized, locations::text
		 FROM professionals WHERE profile_id = $1`,
		profileID,
	)
	p, err := scanProfessional(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get professional %s", profileID)
	}
	return p, nil
}

func (s *PostgresStore) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT profile_id, first_name, last_name, common_first_name, common_last_name,
		        registration_status, authorized, locations::text
		 FROM professionals ORDER BY profile_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list professionals")
	}
	defer rows.Close()

	var out []model.Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan professional")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list professionals iterate")
}

func (s *PostgresStore) RecordExtraction(ctx context.Context, ext model.Extraction) (bool, error) {
	if !ext.Key.Valid() {
		return false, eris.Errorf("invalid extraction key: %s", ext.Key.ID())
	}

	segmentsJSON, err := json.Marshal(ext.MatchedSegments)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal segments")
	}
	scoresJSON, err := json.Marshal(ext.ConfidenceScores)
	if err != nil {
		return false, eris.Wrap(err, "postgres: marshal scores")
	}

	discoveredAt := ext.DiscoveredAt
	if discoveredAt.IsZero() {
		discoveredAt = time.Now().UTC()
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO extractions (
			profile_id, place_id, content_hash, review_text, review_rating, review_author,
			review_time, place_name, place_address, matched_segments, confidence_scores,
			search_location, run_id, discovered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (profile_id, content_hash) DO NOTHING`,
		ext.Key.ProfileID, ext.Key.PlaceID, ext.Key.ContentHash, ext.ReviewText, ext.ReviewRating,
		ext.ReviewAuthor, ext.ReviewTime, ext.PlaceName, ext.PlaceAddress, segmentsJSON,
		scoresJSON, ext.SearchLocation, ext.RunID, discoveredAt,
	)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: record extraction %s", ext.Key.ID())
	}
	return tag.RowsAffected() > 0, nil
}

const pgExtractionColumns = `profile_id, place_id, content_hash, review_text, review_rating,
	review_author, review_time, place_name, place_address, matched_segments::text,
	confidence_scores::text, search_location, run_id, discovered_at`

func (s *PostgresStore) ExtractionsFor(ctx context.Context, profileID string) ([]model.Extraction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgExtractionColumns+` FROM extractions WHERE profile_id = $1 ORDER BY seq`,
		profileID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: extractions for %s", profileID)
	}
	defer rows.Close()
	return collectPgExtractions(rows)
}

func (s *PostgresStore) UnanalyzedExtractions(ctx context.Context, limit int) ([]model.Extraction, error) {
	// LIMIT NULL means no limit.
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT e.profile_id, e.place_id, e.content_hash, e.review_text, e.review_rating,
		        e.review_author, e.review_time, e.place_name, e.place_address,
		        e.matched_segments::text, e.confidence_scores::text, e.search_location,
		        e.run_id, e.discovered_at
		 FROM extractions e
		 LEFT JOIN analyses a ON a.profile_id = e.profile_id AND a.content_hash = e.content_hash
		 WHERE a.profile_id IS NULL
		 ORDER BY e.seq
		 LIMIT $1`,
		lim,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: unanalyzed extractions")
	}
	defer rows.Close()
	return collectPgExtractions(rows)
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a model.AnalysisResult) error {
	if a.ProfileID == "" || a.ContentHash == "" {
		return eris.New("analysis missing profile id or content hash")
	}

	analyzedAt := a.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (
			profile_id, content_hash, sentiment, sentiment_confidence, emotional_tone,
			mention_type, mention_confidence, technical_skill, communication, professionalism,
			authenticity, recommendation_given, repeat_client, potential_false_positive,
			overall_confidence, notes, model, run_id, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (profile_id, content_hash) DO UPDATE SET
			sentiment = EXCLUDED.sentiment,
			sentiment_confidence = EXCLUDED.sentiment_confidence,
			emotional_tone = EXCLUDED.emotional_tone,
			mention_type = EXCLUDED.mention_type,
			mention_confidence = EXCLUDED.mention_confidence,
			technical_skill = EXCLUDED.technical_skill,
			communication = EXCLUDED.communication,
			professionalism = EXCLUDED.professionalism,
			authenticity = EXCLUDED.authenticity,
			recommendation_given = EXCLUDED.recommendation_given,
			repeat_client = EXCLUDED.repeat_client,
			potential_false_positive = EXCLUDED.potential_false_positive,
			overall_confidence = EXCLUDED.overall_confidence,
			notes = EXCLUDED.notes,
			model = EXCLUDED.model,
			run_id = EXCLUDED.run_id,
			analyzed_at = EXCLUDED.analyzed_at`,
		a.ProfileID, a.ContentHash, string(a.Sentiment), a.SentimentConfidence, a.EmotionalTone,
		a.MentionType, a.MentionConfidence, a.TechnicalSkillRating, a.CommunicationRating,
		a.ProfessionalismRating, a.Authenticity, a.RecommendationGiven, a.RepeatClientIndicated,
		a.PotentialFalsePositive, a.OverallConfidence, a.Notes, a.Model, a.RunID, analyzedAt,
	)
	return eris.Wrapf(err, "postgres: save analysis %s/%s", a.ProfileID, a.ContentHash)
}

const pgAnalysisColumns = `profile_id, content_hash, sentiment, sentiment_confidence,
	emotional_tone, mention_type, mention_confidence, technical_skill, communication,
	professionalism, authenticity, recommendation_given, repeat_client, potential_false_positive,
	overall_confidence, notes, model, run_id, analyzed_at`

func (s *PostgresStore) AnalysesFor(ctx context.Context, profileID string) ([]model.AnalysisResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgAnalysisColumns+` FROM analyses WHERE profile_id = $1 ORDER BY analyzed_at`,
		profileID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: analyses for %s", profileID)
	}
	defer rows.Close()
	return collectPgAnalyses(rows)
}

func (s *PostgresStore) AllAnalyses(ctx context.Context) ([]model.AnalysisResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgAnalysisColumns+` FROM analyses ORDER BY profile_id, analyzed_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: all analyses")
	}
	defer rows.Close()
	return collectPgAnalyses(rows)
}

func (s *PostgresStore) StartRun(ctx context.Context, mode model.RunMode, keywords []string) (*model.MonitoringRun, error) {
	var open int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM monitoring_runs WHERE status = $1`,
		string(model.RunStatusRunning),
	).Scan(&open)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: check open runs")
	}
	if open > 0 {
		return nil, eris.New("a monitoring run is already in progress")
	}

	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal keywords")
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO monitoring_runs (id, mode, keywords, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(mode), keywordsJSON, string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.MonitoringRun{
		ID:        id,
		Mode:      mode,
		Keywords:  keywords,
		StartedAt: now,
		Status:    model.RunStatusRunning,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, counters model.RunCounters) error {
	return s.finishRun(ctx, runID, model.RunStatusCompleted, counters, "")
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, counters model.RunCounters, cause string) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, counters, cause)
}

func (s *PostgresStore) finishRun(ctx context.Context, runID string, status model.RunStatus, counters model.RunCounters, cause string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE monitoring_runs SET
			status = $1, error = $2, professionals_processed = $3, extractions_created = $4,
			analyses_completed = $5, analyses_failed = $6, completed_at = $7
		 WHERE id = $8 AND status = $9`,
		string(status), cause, counters.ProfessionalsProcessed, counters.ExtractionsCreated,
		counters.AnalysesCompleted, counters.AnalysesFailed, time.Now().UTC(),
		runID, string(model.RunStatusRunning),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("open run not found: %s", runID)
	}
	return nil
}

const pgRunColumns = `id, mode, keywords::text, status, error, professionals_processed,
	extractions_created, analyses_completed, analyses_failed, started_at, completed_at`

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.MonitoringRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgRunColumns+` FROM monitoring_runs WHERE id = $1`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) LastCompletedRun(ctx context.Context) (*model.MonitoringRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgRunColumns+` FROM monitoring_runs
		 WHERE status = $1 ORDER BY started_at DESC LIMIT 1`,
		string(model.RunStatusCompleted),
	)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: last completed run")
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.MonitoringRun, error) {
	query := `SELECT ` + pgRunColumns + ` FROM monitoring_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.Mode != "" {
		args = append(args, string(filter.Mode))
		query += ` AND mode = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.MonitoringRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveSnapshots(ctx context.Context, snapshots []model.ReputationSnapshot) error {
	for _, snap := range snapshots {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO reputation_snapshots (
				id, profile_id, run_id, name, total_reviews, high_confidence_reviews,
				authentic_reviews, positive_count, negative_count, average_sentiment,
				avg_technical_skill, avg_communication, avg_professionalism,
				recommendation_rate, repeat_client_rate, false_positives, composite_score, snapshot_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (profile_id, run_id) DO UPDATE SET
				name = EXCLUDED.name,
				total_reviews = EXCLUDED.total_reviews,
				high_confidence_reviews = EXCLUDED.high_confidence_reviews,
				authentic_reviews = EXCLUDED.authentic_reviews,
				positive_count = EXCLUDED.positive_count,
				negative_count = EXCLUDED.negative_count,
				average_sentiment = EXCLUDED.average_sentiment,
				avg_technical_skill = EXCLUDED.avg_technical_skill,
				avg_communication = EXCLUDED.avg_communication,
				avg_professionalism = EXCLUDED.avg_professionalism,
				recommendation_rate = EXCLUDED.recommendation_rate,
				repeat_client_rate = EXCLUDED.repeat_client_rate,
				false_positives = EXCLUDED.false_positives,
				composite_score = EXCLUDED.composite_score,
				snapshot_at = EXCLUDED.snapshot_at`,
			uuid.New().String(), snap.ProfileID, snap.RunID, snap.Name, snap.TotalReviews,
			snap.HighConfidenceReviews, snap.AuthenticReviews, snap.PositiveCount, snap.NegativeCount,
			snap.AverageSentiment, snap.AverageTechnicalSkill, snap.AverageCommunication,
			snap.AverageProfessionalism, snap.RecommendationRate, snap.RepeatClientRate,
			snap.FalsePositives, snap.CompositeScore, snap.SnapshotAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: save snapshot %s/%s", snap.ProfileID, snap.RunID)
		}
	}
	return nil
}

const pgSnapshotColumns = `profile_id, run_id, name, total_reviews, high_confidence_reviews,
	authentic_reviews, positive_count, negative_count, average_sentiment, avg_technical_skill,
	avg_communication, avg_professionalism, recommendation_rate, repeat_client_rate,
	false_positives, composite_score, snapshot_at`

func (s *PostgresStore) LatestSnapshots(ctx context.Context) ([]model.ReputationSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (profile_id) `+pgSnapshotColumns+`
		 FROM reputation_snapshots
		 ORDER BY profile_id, snapshot_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest snapshots")
	}
	defer rows.Close()

	snaps, err := collectPgSnapshots(rows)
	if err != nil {
		return nil, err
	}
	sortSnapshots(snaps)
	return snaps, nil
}

func (s *PostgresStore) SnapshotsForRun(ctx context.Context, runID string) ([]model.ReputationSnapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgSnapshotColumns+` FROM reputation_snapshots
		 WHERE run_id = $1
		 ORDER BY composite_score DESC, total_reviews DESC, profile_id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: snapshots for run %s", runID)
	}
	defer rows.Close()
	return collectPgSnapshots(rows)
}

func collectPgExtractions(rows pgx.Rows) ([]model.Extraction, error) {
	var out []model.Extraction
	for rows.Next() {
		ext, err := scanExtraction(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan extraction")
		}
		out = append(out, *ext)
	}
	return out, eris.Wrap(rows.Err(), "iterate extractions")
}

func collectPgAnalyses(rows pgx.Rows) ([]model.AnalysisResult, error) {
	var out []model.AnalysisResult
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan analysis")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "iterate analyses")
}

func collectPgSnapshots(rows pgx.Rows) ([]model.ReputationSnapshot, error) {
	var out []model.ReputationSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan snapshot")
		}
		out = append(out, *snap)
	}
	return out, eris.Wrap(rows.Err(), "iterate snapshots")
}

// sortSnapshots applies the leaderboard order: composite score descending,
// review volume descending, then profile id for stability.
func sortSnapshots(snaps []model.ReputationSnapshot) {
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CompositeScore != snaps[j].CompositeScore {
			return snaps[i].CompositeScore > snaps[j].CompositeScore
		}
		if snaps[i].TotalReviews != snaps[j].TotalReviews {
			return snaps[i].TotalReviews > snaps[j].TotalReviews
		}
		return snaps[i].ProfileID < snaps[j].ProfileID
	})
}
