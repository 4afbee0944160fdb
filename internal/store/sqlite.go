package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS professionals (
	profile_id          TEXT PRIMARY KEY,
	first_name          TEXT NOT NULL,
	last_name           TEXT NOT NULL,
	common_first_name   TEXT NOT NULL DEFAULT '',
	common_last_name    TEXT NOT NULL DEFAULT '',
	registration_status TEXT NOT NULL DEFAULT '',
	authorized          INTEGER NOT NULL DEFAULT 0,
	locations           TEXT NOT NULL DEFAULT '[]',
	first_seen_run_id   TEXT NOT NULL,
	last_updated_run_id TEXT NOT NULL,
	updated_at          DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS extractions (
	seq               INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id        TEXT NOT NULL,
	place_id          TEXT NOT NULL,
	content_hash      TEXT NOT NULL,
	review_text       TEXT NOT NULL,
	review_rating     INTEGER NOT NULL DEFAULT 0,
	review_author     TEXT NOT NULL DEFAULT '',
	review_time       TEXT NOT NULL DEFAULT '',
	place_name        TEXT NOT NULL DEFAULT '',
	place_address     TEXT NOT NULL DEFAULT '',
	matched_segments  TEXT NOT NULL DEFAULT '[]',
	confidence_scores TEXT NOT NULL DEFAULT '[]',
	search_location   TEXT NOT NULL DEFAULT '',
	run_id            TEXT NOT NULL,
	discovered_at     DATETIME NOT NULL,
	UNIQUE(profile_id, content_hash)
);

CREATE TABLE IF NOT EXISTS analyses (
	profile_id               TEXT NOT NULL,
	content_hash             TEXT NOT NULL,
	sentiment                TEXT NOT NULL,
	sentiment_confidence     REAL NOT NULL DEFAULT 0,
	emotional_tone           TEXT NOT NULL DEFAULT '',
	mention_type             TEXT NOT NULL DEFAULT '',
	mention_confidence       REAL NOT NULL DEFAULT 0,
	technical_skill          INTEGER,
	communication            INTEGER,
	professionalism          INTEGER,
	authenticity             TEXT NOT NULL DEFAULT '',
	recommendation_given     INTEGER NOT NULL DEFAULT 0,
	repeat_client            INTEGER NOT NULL DEFAULT 0,
	potential_false_positive INTEGER NOT NULL DEFAULT 0,
	overall_confidence       REAL NOT NULL DEFAULT 0,
	notes                    TEXT NOT NULL DEFAULT '',
	model                    TEXT NOT NULL DEFAULT '',
	run_id                   TEXT NOT NULL DEFAULT '',
	analyzed_at              DATETIME NOT NULL,
	PRIMARY KEY (profile_id, content_hash)
);

CREATE TABLE IF NOT EXISTS monitoring_runs (
	id                      TEXT PRIMARY KEY,
	mode                    TEXT NOT NULL,
	keywords                TEXT NOT NULL DEFAULT '[]',
	status                  TEXT NOT NULL DEFAULT 'running',
	error                   TEXT NOT NULL DEFAULT '',
	professionals_processed INTEGER NOT NULL DEFAULT 0,
	extractions_created     INTEGER NOT NULL DEFAULT 0,
	analyses_completed      INTEGER NOT NULL DEFAULT 0,
	analyses_failed         INTEGER NOT NULL DEFAULT 0,
	started_at              DATETIME NOT NULL,
	completed_at            DATETIME
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
	average_sentiment       REAL NOT NULL DEFAULT 0,
	avg_technical_skill     REAL,
	avg_communication       REAL,
	avg_professionalism     REAL,
	recommendation_rate     REAL NOT NULL DEFAULT 0,
	repeat_client_rate      REAL NOT NULL DEFAULT 0,
	false_positives         INTEGER NOT NULL DEFAULT 0,
	composite_score         REAL NOT NULL DEFAULT 0,
	snapshot_at             DATETIME NOT NULL,
	UNIQUE(profile_id, run_id)
);

CREATE INDEX IF NOT EXISTS idx_extractions_profile_id ON extractions(profile_id);
CREATE INDEX IF NOT EXISTS idx_extractions_run_id ON extractions(run_id);
CREATE INDEX IF NOT EXISTS idx_analyses_profile_id ON analyses(profile_id);
CREATE INDEX IF NOT EXISTS idx_monitoring_runs_status ON monitoring_runs(status);
CREATE INDEX IF NOT EXISTS idx_snapshots_profile_id ON reputation_snapshots(profile_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_run_id ON reputation_snapshots(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveProfessional(ctx context.Context, p model.Professional, runID string) error {
	locationsJSON, err := json.Marshal(p.PracticeLocations)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal locations")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO professionals (
			profile_id, first_name, last_name, common_first_name, common_last_name,
			registration_status, authorized, locations, first_seen_run_id, last_updated_run_id, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			common_first_name = excluded.common_first_name,
			common_last_name = excluded.common_last_name,
			registration_status = excluded.registration_status,
			authorized = excluded.authorized,
			locations = excluded.locations,
			last_updated_run_id = excluded.last_updated_run_id,
			updated_at = excluded.updated_at`,
		p.ProfileID, p.FirstName, p.LastName, p.CommonFirstName, p.CommonLastName,
		p.RegistrationStatus, p.AuthorizedToPractice, string(locationsJSON), runID, runID, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save professional %s", p.ProfileID)
}

func (s *SQLiteStore) GetProfessional(ctx context.Context, profileID string) (*model.Professional, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT profile_id, first_name, last_name, common_first_name, common_last_name,
		        registration_status, authorized, locations
		 FROM professionals WHERE profile_id = ?`,
		profileID,
	)
	p, err := scanProfessional(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get professional %s", profileID)
	}
	return p, nil
}

func (s *SQLiteStore) ListProfessionals(ctx context.Context) ([]model.Professional, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT profile_id, first_name, last_name, common_first_name, common_last_name,
		        registration_status, authorized, locations
		 FROM professionals ORDER BY profile_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list professionals")
	}
	defer rows.Close()

	var out []model.Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan professional")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list professionals iterate")
}

func (s *SQLiteStore) RecordExtraction(ctx context.Context, ext model.Extraction) (bool, error) {
	if !ext.Key.Valid() {
		return false, eris.Errorf("invalid extraction key: %s", ext.Key.ID())
	}

	segmentsJSON, err := json.Marshal(ext.MatchedSegments)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal segments")
	}
	scoresJSON, err := json.Marshal(ext.ConfidenceScores)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: marshal scores")
	}

	discoveredAt := ext.DiscoveredAt
	if discoveredAt.IsZero() {
		discoveredAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO extractions (
			profile_id, place_id, content_hash, review_text, review_rating, review_author,
			review_time, place_name, place_address, matched_segments, confidence_scores,
			search_location, run_id, discovered_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ext.Key.ProfileID, ext.Key.PlaceID, ext.Key.ContentHash, ext.ReviewText, ext.ReviewRating,
		ext.ReviewAuthor, ext.ReviewTime, ext.PlaceName, ext.PlaceAddress, string(segmentsJSON),
		string(scoresJSON), ext.SearchLocation, ext.RunID, discoveredAt,
	)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: record extraction %s", ext.Key.ID())
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

const sqliteExtractionColumns = `profile_id, place_id, content_hash, review_text, review_rating,
	review_author, review_time, place_name, place_address, matched_segments, confidence_scores,
	search_location, run_id, discovered_at`

func (s *SQLiteStore) ExtractionsFor(ctx context.Context, profileID string) ([]model.Extraction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteExtractionColumns+` FROM extractions WHERE profile_id = ? ORDER BY seq`,
		profileID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: extractions for %s", profileID)
	}
	defer rows.Close()
	return collectExtractions(rows)
}

func (s *SQLiteStore) UnanalyzedExtractions(ctx context.Context, limit int) ([]model.Extraction, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.profile_id, e.place_id, e.content_hash, e.review_text, e.review_rating,
		        e.review_author, e.review_time, e.place_name, e.place_address, e.matched_segments,
		        e.confidence_scores, e.search_location, e.run_id, e.discovered_at
		 FROM extractions e
		 LEFT JOIN analyses a ON a.profile_id = e.profile_id AND a.content_hash = e.content_hash
		 WHERE a.profile_id IS NULL
		 ORDER BY e.seq
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: unanalyzed extractions")
	}
	defer rows.Close()
	return collectExtractions(rows)
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a model.AnalysisResult) error {
	if a.ProfileID == "" || a.ContentHash == "" {
		return eris.New("analysis missing profile id or content hash")
	}

	analyzedAt := a.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (
			profile_id, content_hash, sentiment, sentiment_confidence, emotional_tone,
			mention_type, mention_confidence, technical_skill, communication, professionalism,
			authenticity, recommendation_given, repeat_client, potential_false_positive,
			overall_confidence, notes, model, run_id, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id, content_hash) DO UPDATE SET
			sentiment = excluded.sentiment,
			sentiment_confidence = excluded.sentiment_confidence,
			emotional_tone = excluded.emotional_tone,
			mention_type = excluded.mention_type,
			mention_confidence = excluded.mention_confidence,
			technical_skill = excluded.technical_skill,
			communication = excluded.communication,
			professionalism = excluded.professionalism,
			authenticity = excluded.authenticity,
			recommendation_given = excluded.recommendation_given,
			repeat_client = excluded.repeat_client,
			potential_false_positive = excluded.potential_false_positive,
			overall_confidence = excluded.overall_confidence,
			notes = excluded.notes,
			model = excluded.model,
			run_id = excluded.run_id,
			analyzed_at = excluded.analyzed_at`,
		a.ProfileID, a.ContentHash, string(a.Sentiment), a.SentimentConfidence, a.EmotionalTone,
		a.MentionType, a.MentionConfidence, a.TechnicalSkillRating, a.CommunicationRating,
		a.ProfessionalismRating, a.Authenticity, a.RecommendationGiven, a.RepeatClientIndicated,
		a.PotentialFalsePositive, a.OverallConfidence, a.Notes, a.Model, a.RunID, analyzedAt,
	)
	return eris.Wrapf(err, "sqlite: save analysis %s/%s", a.ProfileID, a.ContentHash)
}

const sqliteAnalysisColumns = `profile_id, content_hash, sentiment, sentiment_confidence,
	emotional_tone, mention_type, mention_confidence, technical_skill, communication,
	professionalism, authenticity, recommendation_given, repeat_client, potential_false_positive,
	overall_confidence, notes, model, run_id, analyzed_at`

func (s *SQLiteStore) AnalysesFor(ctx context.Context, profileID string) ([]model.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteAnalysisColumns+` FROM analyses WHERE profile_id = ? ORDER BY analyzed_at`,
		profileID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: analyses for %s", profileID)
	}
	defer rows.Close()
	return collectAnalyses(rows)
}

func (s *SQLiteStore) AllAnalyses(ctx context.Context) ([]model.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteAnalysisColumns+` FROM analyses ORDER BY profile_id, analyzed_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: all analyses")
	}
	defer rows.Close()
	return collectAnalyses(rows)
}

func (s *SQLiteStore) StartRun(ctx context.Context, mode model.RunMode, keywords []string) (*model.MonitoringRun, error) {
	var open int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM monitoring_runs WHERE status = ?`,
		string(model.RunStatusRunning),
	).Scan(&open)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: check open runs")
	}
	if open > 0 {
		return nil, eris.New("a monitoring run is already in progress")
	}

	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal keywords")
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO monitoring_runs (id, mode, keywords, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(mode), string(keywordsJSON), string(model.RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.MonitoringRun{
		ID:        id,
		Mode:      mode,
		Keywords:  keywords,
		StartedAt: now,
		Status:    model.RunStatusRunning,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, counters model.RunCounters) error {
	return s.finishRun(ctx, runID, model.RunStatusCompleted, counters, "")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, counters model.RunCounters, cause string) error {
	return s.finishRun(ctx, runID, model.RunStatusFailed, counters, cause)
}

// finishRun only transitions runs out of the running state, so completed and
// failed runs stay immutable.
func (s *SQLiteStore) finishRun(ctx context.Context, runID string, status model.RunStatus, counters model.RunCounters, cause string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE monitoring_runs SET
			status = ?, error = ?, professionals_processed = ?, extractions_created = ?,
			analyses_completed = ?, analyses_failed = ?, completed_at = ?
		 WHERE id = ? AND status = ?`,
		string(status), cause, counters.ProfessionalsProcessed, counters.ExtractionsCreated,
		counters.AnalysesCompleted, counters.AnalysesFailed, time.Now().UTC(),
		runID, string(model.RunStatusRunning),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "open run", runID)
}

const sqliteRunColumns = `id, mode, keywords, status, error, professionals_processed,
	extractions_created, analyses_completed, analyses_failed, started_at, completed_at`

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.MonitoringRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM monitoring_runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) LastCompletedRun(ctx context.Context) (*model.MonitoringRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteRunColumns+` FROM monitoring_runs
		 WHERE status = ? ORDER BY started_at DESC LIMIT 1`,
		string(model.RunStatusCompleted),
	)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last completed run")
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.MonitoringRun, error) {
	query := `SELECT ` + sqliteRunColumns + ` FROM monitoring_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, string(filter.Mode))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.MonitoringRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveSnapshots(ctx context.Context, snapshots []model.ReputationSnapshot) error {
	for _, snap := range snapshots {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO reputation_snapshots (
				id, profile_id, run_id, name, total_reviews, high_confidence_reviews,
				authentic_reviews, positive_count, negative_count, average_sentiment,
				avg_technical_skill, avg_communication, avg_professionalism,
				recommendation_rate, repeat_client_rate, false_positives, composite_score, snapshot_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(profile_id, run_id) DO UPDATE SET
				name = excluded.name,
				total_reviews = excluded.total_reviews,
				high_confidence_reviews = excluded.high_confidence_reviews,
				authentic_reviews = excluded.authentic_reviews,
				positive_count = excluded.positive_count,
				negative_count = excluded.negative_count,
				average_sentiment = excluded.average_sentiment,
				avg_technical_skill = excluded.avg_technical_skill,
				avg_communication = excluded.avg_communication,
				avg_professionalism = excluded.avg_professionalism,
				recommendation_rate = excluded.recommendation_rate,
				repeat_client_rate = excluded.repeat_client_rate,
				false_positives = excluded.false_positives,
				composite_score = excluded.composite_score,
				snapshot_at = excluded.snapshot_at`,
			uuid.New().String(), snap.ProfileID, snap.RunID, snap.Name, snap.TotalReviews,
			snap.HighConfidenceReviews, snap.AuthenticReviews, snap.PositiveCount, snap.NegativeCount,
			snap.AverageSentiment, snap.AverageTechnicalSkill, snap.AverageCommunication,
			snap.AverageProfessionalism, snap.RecommendationRate, snap.RepeatClientRate,
			snap.FalsePositives, snap.CompositeScore, snap.SnapshotAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: save snapshot %s/%s", snap.ProfileID, snap.RunID)
		}
	}
	return nil
}

const sqliteSnapshotColumns = `profile_id, run_id, name, total_reviews, high_confidence_reviews,
	authentic_reviews, positive_count, negative_count, average_sentiment, avg_technical_skill,
	avg_communication, avg_professionalism, recommendation_rate, repeat_client_rate,
	false_positives, composite_score, snapshot_at`

func (s *SQLiteStore) LatestSnapshots(ctx context.Context) ([]model.ReputationSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteSnapshotColumns+` FROM reputation_snapshots s
		 WHERE s.rowid = (
			SELECT rowid FROM reputation_snapshots
			WHERE profile_id = s.profile_id
			ORDER BY snapshot_at DESC, rowid DESC LIMIT 1
		 )
		 ORDER BY composite_score DESC, total_reviews DESC, profile_id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest snapshots")
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

func (s *SQLiteStore) SnapshotsForRun(ctx context.Context, runID string) ([]model.ReputationSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteSnapshotColumns+` FROM reputation_snapshots
		 WHERE run_id = ?
		 ORDER BY composite_score DESC, total_reviews DESC, profile_id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: snapshots for run %s", runID)
	}
	defer rows.Close()
	return collectSnapshots(rows)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProfessional(row scannable) (*model.Professional, error) {
	var p model.Professional
	var locationsJSON string

	err := row.Scan(&p.ProfileID, &p.FirstName, &p.LastName, &p.CommonFirstName,
		&p.CommonLastName, &p.RegistrationStatus, &p.AuthorizedToPractice, &locationsJSON)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(locationsJSON), &p.PracticeLocations); err != nil {
		return nil, eris.Wrap(err, "unmarshal locations")
	}
	return &p, nil
}

func scanExtraction(row scannable) (*model.Extraction, error) {
	var ext model.Extraction
	var segmentsJSON, scoresJSON string

	err := row.Scan(&ext.Key.ProfileID, &ext.Key.PlaceID, &ext.Key.ContentHash, &ext.ReviewText,
		&ext.ReviewRating, &ext.ReviewAuthor, &ext.ReviewTime, &ext.PlaceName, &ext.PlaceAddress,
		&segmentsJSON, &scoresJSON, &ext.SearchLocation, &ext.RunID, &ext.DiscoveredAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(segmentsJSON), &ext.MatchedSegments); err != nil {
		return nil, eris.Wrap(err, "unmarshal segments")
	}
	if err := json.Unmarshal([]byte(scoresJSON), &ext.ConfidenceScores); err != nil {
		return nil, eris.Wrap(err, "unmarshal scores")
	}
	return &ext, nil
}

func collectExtractions(rows *sql.Rows) ([]model.Extraction, error) {
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

func scanAnalysis(row scannable) (*model.AnalysisResult, error) {
	var a model.AnalysisResult
	var sentiment string
	var technical, communication, professionalism sql.NullInt64

	err := row.Scan(&a.ProfileID, &a.ContentHash, &sentiment, &a.SentimentConfidence,
		&a.EmotionalTone, &a.MentionType, &a.MentionConfidence, &technical, &communication,
		&professionalism, &a.Authenticity, &a.RecommendationGiven, &a.RepeatClientIndicated,
		&a.PotentialFalsePositive, &a.OverallConfidence, &a.Notes, &a.Model, &a.RunID, &a.AnalyzedAt)
	if err != nil {
		return nil, err
	}
	a.Sentiment = model.Sentiment(sentiment)
	a.TechnicalSkillRating = nullableInt(technical)
	a.CommunicationRating = nullableInt(communication)
	a.ProfessionalismRating = nullableInt(professionalism)
	return &a, nil
}

func collectAnalyses(rows *sql.Rows) ([]model.AnalysisResult, error) {
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

func scanRun(row scannable) (*model.MonitoringRun, error) {
	var r model.MonitoringRun
	var mode, status, keywordsJSON string
	var completedAt sql.NullTime

	err := row.Scan(&r.ID, &mode, &keywordsJSON, &status, &r.Error,
		&r.Counters.ProfessionalsProcessed, &r.Counters.ExtractionsCreated,
		&r.Counters.AnalysesCompleted, &r.Counters.AnalysesFailed, &r.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	r.Mode = model.RunMode(mode)
	r.Status = model.RunStatus(status)
	if err := json.Unmarshal([]byte(keywordsJSON), &r.Keywords); err != nil {
		return nil, eris.Wrap(err, "unmarshal keywords")
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

func scanSnapshot(row scannable) (*model.ReputationSnapshot, error) {
	var snap model.ReputationSnapshot
	var technical, communication, professionalism sql.NullFloat64

	err := row.Scan(&snap.ProfileID, &snap.RunID, &snap.Name, &snap.TotalReviews,
		&snap.HighConfidenceReviews, &snap.AuthenticReviews, &snap.PositiveCount,
		&snap.NegativeCount, &snap.AverageSentiment, &technical, &communication,
		&professionalism, &snap.RecommendationRate, &snap.RepeatClientRate,
		&snap.FalsePositives, &snap.CompositeScore, &snap.SnapshotAt)
	if err != nil {
		return nil, err
	}
	snap.AverageTechnicalSkill = nullableFloat(technical)
	snap.AverageCommunication = nullableFloat(communication)
	snap.AverageProfessionalism = nullableFloat(professionalism)
	return &snap, nil
}

func collectSnapshots(rows *sql.Rows) ([]model.ReputationSnapshot, error) {
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

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
