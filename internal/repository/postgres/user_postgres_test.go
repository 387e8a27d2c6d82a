package postgres

import (
	"context"
	"database/sql"
	"testing"

	"docmanager/internal/database"
	"docmanager/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "username", "password_hash", "role"}

func newUserRepo(t *testing.T) (*UserPostgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserPostgres(database.NewAccessor(db)), mock
}

func TestUserPostgres_List(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("FROM users ORDER BY username").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(1), "admin", "hash", model.RoleAdmin).
			AddRow(int64(2), "bob", "hash", model.RoleUser))

	users, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[0].IsAdmin())
	assert.False(t, users[1].IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByUsername(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	mock.ExpectQuery("FROM users WHERE username =").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(3), "alice", "h", model.RoleUser))

	u, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)

	mock.ExpectQuery("FROM users WHERE username =").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByID(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("FROM users WHERE id =").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(3), "alice", "h", model.RoleUser))

	u, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Create(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "hash", model.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	u, err := repo.Create(context.Background(), &model.User{Username: "alice", PasswordHash: "hash", Role: model.RoleUser})

	require.NoError(t, err)
	assert.Equal(t, int64(12), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Updates(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE users SET role").
		WithArgs(model.RoleAdmin, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateRole(ctx, 1, model.RoleAdmin))

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("newhash", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePassword(ctx, 2, "newhash"), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_Delete(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("DELETE FROM users WHERE id =").
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
