package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmtwatch/rmtwatch/internal/model"
)

// anyArgs returns n pgxmock.AnyArg matchers; pgxmock matches argument counts
// strictly, so expectations that don't care about values still need placeholders.
func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_GetProfessional_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`(?s)SELECT profile_id,.*FROM professionals WHERE profile_id = \$1`).
		WithArgs("nonexistent").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetProfessional(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveProfessional_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`(?s)INSERT INTO professionals.*ON CONFLICT`).
		WithArgs("12345", "Jane", "Doe", "", "", "General Certificate", true,
			pgxmock.AnyArg(), "run-1", "run-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveProfessional(context.Background(), model.Professional{
		ProfileID:            "12345",
		FirstName:            "Jane",
		LastName:             "Doe",
		RegistrationStatus:   "General Certificate",
		AuthorizedToPractice: true,
	}, "run-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordExtraction_Duplicate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`(?s)INSERT INTO extractions.*ON CONFLICT \(profile_id, content_hash\) DO NOTHING`).
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	created, err := s.RecordExtraction(context.Background(), model.Extraction{
		Key: model.ExtractionKey{ProfileID: "12345", PlaceID: "ChIJplace1", ContentHash: "deadbeefdeadbeef"},
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordExtraction_InvalidKey(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	_, err := s.RecordExtraction(context.Background(), model.Extraction{
		Key: model.ExtractionKey{ProfileID: "unknown", PlaceID: "ChIJplace1", ContentHash: "deadbeefdeadbeef"},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StartRun_AlreadyOpen(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM monitoring_runs WHERE status = \$1`).
		WithArgs("running").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	_, err := s.StartRun(context.Background(), model.ModeFull, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_Terminal(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE monitoring_runs SET`).
		WithArgs(anyArgs(9)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "run-1", model.RunCounters{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastCompletedRun_None(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`(?s)SELECT id,.*FROM monitoring_runs.*WHERE status = \$1 ORDER BY started_at DESC LIMIT 1`).
		WithArgs("completed").
		WillReturnError(pgx.ErrNoRows)

	run, err := s.LastCompletedRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, run)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveSnapshots(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`(?s)INSERT INTO reputation_snapshots.*ON CONFLICT \(profile_id, run_id\)`).
		WithArgs(anyArgs(18)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveSnapshots(context.Background(), []model.ReputationSnapshot{
		{ProfileID: "111", RunID: "run-1", CompositeScore: 72.5},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
