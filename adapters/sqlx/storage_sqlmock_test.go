package sqlx_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	libsqlx "github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	storage "arcadekit/adapters/sqlx"
	"arcadekit/core"
	"arcadekit/engine"
)

func newMockStore(t *testing.T) (*storage.Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	xdb := storage.NewWithDB(libsqlx.NewDb(db, "postgres"), storage.DriverPostgres)
	cleanup := func() {
		_ = db.Close()
	}
	return xdb, mock, cleanup
}

func TestSQLMock_SaveScore(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO scores`).
		WithArgs(sqlmock.AnyArg(), core.UserID("u1"), core.GameID("g1"), int64(500), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	saved, err := store.SaveScore(context.Background(), core.Score{UserID: "u1", GameID: "g1", Value: 500})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CreateAchievement_Insert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(core.UserID("u1"), core.TypeFirstGame).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO achievements`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	created, err := store.CreateAchievement(context.Background(), core.Achievement{
		UserID: "u1", Type: core.TypeFirstGame, Title: "First Steps", Progress: 100, Completed: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_CreateAchievement_Duplicate(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(core.UserID("u1"), core.TypeFirstGame).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := store.CreateAchievement(context.Background(), core.Achievement{UserID: "u1", Type: core.TypeFirstGame})
	require.ErrorIs(t, err, engine.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_UpdateAchievement_NotFound(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, type`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.UpdateAchievement(context.Background(), "missing", 50, false, nil)
	require.ErrorIs(t, err, engine.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_UpdateAchievement(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	now := time.Now().UTC()
	cols := []string{"id", "user_id", "type", "title", "description", "icon", "progress", "completed", "completed_at", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, type`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("a1", "u1", "high_scorer", "High Scorer", "Reach 5000 total points", "flame", 30.0, false, nil, now, now))
	mock.ExpectExec(`UPDATE achievements SET`).
		WithArgs(60.0, false, sqlmock.AnyArg(), sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := store.UpdateAchievement(context.Background(), "a1", 60, false, nil)
	require.NoError(t, err)
	require.Equal(t, float64(60), updated.Progress)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_AddCredits_Insert(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT credits FROM user_credits`).
		WithArgs(core.UserID("u1")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO user_credits`).
		WithArgs(core.UserID("u1"), int64(10)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	total, err := store.AddCredits(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLMock_Credits_Empty(t *testing.T) {
	store, mock, cleanup := newMockStore(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT credits FROM user_credits`).
		WithArgs(core.UserID("u1")).
		WillReturnError(sql.ErrNoRows)

	credits, err := store.Credits(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, int64(0), credits)
	require.NoError(t, mock.ExpectationsWereMet())
}
