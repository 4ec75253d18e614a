package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutt16/right2thrive-sub001/internal/repository"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepoWithMock(t *testing.T) (*SessionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewSessionRepository(sqlx.NewDb(db, "postgres"))
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestGet_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT value\s+FROM session_values\s+WHERE session_id = \$1 AND key = \$2 AND expires_at > \$3`).
		WithArgs("sid", "token", fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("abc"))

	v, err := repo.Get(context.Background(), "sid", "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT value`).
		WithArgs("sid", "token", fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := repo.Get(context.Background(), "sid", "token")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGet_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT value`).WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "sid", "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestSetMany_Transaction(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := fixedNow.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO session_values`).
		WithArgs("sid", "token", "t0k", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO session_values`).
		WithArgs("sid", "user", `{"id":1}`, exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetMany(context.Background(), "sid", map[string]string{
		"user":  `{"id":1}`,
		"token": "t0k",
	}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetMany_RollsBackOnError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO session_values`).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.SetMany(context.Background(), "sid", map[string]string{"token": "x"}, time.Hour)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTake(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`DELETE FROM session_values\s+WHERE session_id = \$1 AND key = \$2 AND expires_at > \$3\s+RETURNING value`).
		WithArgs("sid", "flash:redeemed", fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"new_balance":0}`))

	v, err := repo.Take(context.Background(), "sid", "flash:redeemed")
	require.NoError(t, err)
	assert.Equal(t, `{"new_balance":0}`, v)
}

func TestDelete_Keys(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM session_values WHERE session_id = \$1 AND key = ANY\(\$2\)`).
		WithArgs("sid", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.Delete(context.Background(), "sid", "token", "user"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_WholeSession(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM session_values WHERE session_id = \$1$`).
		WithArgs("sid").
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.Delete(context.Background(), "sid"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpired(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM session_values WHERE expires_at <= \$1`).
		WithArgs(fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS session_values`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
