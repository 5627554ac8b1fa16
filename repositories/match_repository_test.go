package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumiteops/kumite-system/models"
)

var matchColumnNames = []string{
	"id", "match_code", "event_id", "athlete1_id", "athlete2_id", "winner_id",
	"round", "match_order", "arena", "status", "parent_match_id", "slot",
	"created_at", "updated_at",
}

func newMockDB(t *testing.T) (sqlmock.Sqlmock, MatchRepository) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return mock, NewPostgresMatchRepository(db)
}

func TestMatchRepositoryGetByID(t *testing.T) {
	mock, repo := newMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows(matchColumnNames).AddRow(
		"m1", "KRT-20260829-AB12-R1-M1", "e1", "a1", "a2", nil,
		1, 1, "A", "PENDING", nil, nil, now, now,
	)
	mock.ExpectQuery(`SELECT .+ FROM matches WHERE id = \$1`).
		WithArgs("m1").
		WillReturnRows(rows)

	match, err := repo.GetByID(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, "m1", match.ID)
	assert.Equal(t, "KRT-20260829-AB12-R1-M1", match.MatchCode)
	require.NotNil(t, match.Athlete1ID)
	assert.Equal(t, "a1", *match.Athlete1ID)
	assert.Nil(t, match.WinnerID)
	assert.Equal(t, models.MatchStatusPending, match.Status)
	assert.Nil(t, match.ParentMatchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryGetByIDNotFound(t *testing.T) {
	mock, repo := newMockDB(t)

	mock.ExpectQuery(`SELECT .+ FROM matches WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(matchColumnNames))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryGetByEventRoundOrderAbsentIsNil(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewPostgresMatchRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM matches`).
		WithArgs("e1", 5, 1).
		WillReturnRows(sqlmock.NewRows(matchColumnNames))

	// A missing destination match means "nothing to advance into", not an error.
	match, err := repo.GetByEventRoundOrder(context.Background(), db, "e1", 5, 1)
	require.NoError(t, err)
	assert.Nil(t, match)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewPostgresMatchRepository(db)

	mock.ExpectExec(`UPDATE matches SET status = \$1`).
		WithArgs("IN_PROGRESS", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), db, "missing", models.MatchStatusInProgress)
	assert.ErrorIs(t, err, ErrMatchNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepositoryCountUndecided(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewPostgresMatchRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM matches`).
		WithArgs("e1", "COMPLETED", "BYE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUndecided(context.Background(), db, "e1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
