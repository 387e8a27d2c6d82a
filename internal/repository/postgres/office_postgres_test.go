package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"docmanager/internal/database"
	"docmanager/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfficeRepo(t *testing.T) (*OfficePostgres, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOfficePostgres(database.NewAccessor(db)), mock
}

func TestOfficePostgres_List(t *testing.T) {
	repo, mock := newOfficeRepo(t)

	mock.ExpectQuery("SELECT id, name, description FROM offices ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow(int64(1), "Accounting", nil).
			AddRow(int64(2), "HR", []byte("People team")))

	offices, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, offices, 2)
	assert.Nil(t, offices[0].Description)
	require.NotNil(t, offices[1].Description)
	assert.Equal(t, "People team", *offices[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficePostgres_FindByID(t *testing.T) {
	repo, mock := newOfficeRepo(t)
	ctx := context.Background()

	mock.ExpectQuery("FROM offices WHERE id =").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).AddRow(int64(1), "HR", nil))

	o, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "HR", o.Name)

	mock.ExpectQuery("FROM offices WHERE id =").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}))

	_, err = repo.FindByID(ctx, 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficePostgres_Create(t *testing.T) {
	repo, mock := newOfficeRepo(t)
	desc := "Finance"

	mock.ExpectQuery("INSERT INTO offices").
		WithArgs("Accounting", desc).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	o, err := repo.Create(context.Background(), &model.Office{Name: "Accounting", Description: &desc})

	require.NoError(t, err)
	assert.Equal(t, int64(4), o.ID)
	assert.Equal(t, "Accounting", o.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficePostgres_Update(t *testing.T) {
	repo, mock := newOfficeRepo(t)
	ctx := context.Background()

	mock.ExpectExec("UPDATE offices SET name").
		WithArgs("HR", nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Update(ctx, &model.Office{ID: 1, Name: "HR"}))

	mock.ExpectExec("UPDATE offices SET name").
		WithArgs("HR", nil, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(ctx, &model.Office{ID: 2, Name: "HR"}), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOfficePostgres_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("detaches documents and commits", func(t *testing.T) {
		repo, mock := newOfficeRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE documents SET office_id = NULL WHERE office_id =").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM offices WHERE id =").
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		detached, err := repo.Delete(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, int64(2), detached)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing office rolls back", func(t *testing.T) {
		repo, mock := newOfficeRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE documents SET office_id = NULL").
			WithArgs(int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM offices").
			WithArgs(int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Delete(ctx, 8)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("detach failure rolls back", func(t *testing.T) {
		repo, mock := newOfficeRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE documents SET office_id = NULL").
			WithArgs(int64(5)).
			WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		_, err := repo.Delete(ctx, 5)

		assert.EqualError(t, err, "lock timeout")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
