package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockAccessor(t *testing.T) (*Accessor, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccessor(db), mock
}

func TestAccessor_Query(t *testing.T) {
	acc, mock := newMockAccessor(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, description FROM offices").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow(int64(1), "HR", nil).
			AddRow(int64(2), "Accounting", []byte("books")))

	rows, err := acc.Query(ctx, "SELECT id, name, description FROM offices")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	id, ok := rows[0].Int64("id")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "HR", rows[0].String("name"))
	assert.Nil(t, rows[0].NullString("description"))

	desc := rows[1].NullString("description")
	require.NotNil(t, desc)
	assert.Equal(t, "books", *desc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessor_Scalar(t *testing.T) {
	acc, mock := newMockAccessor(t)
	ctx := context.Background()

	t.Run("value", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

		v, err := acc.Scalar(ctx, "SELECT COUNT(*) FROM documents")
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)
	})

	t.Run("no rows", func(t *testing.T) {
		mock.ExpectQuery("SELECT file_path").WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows([]string{"file_path"}))

		v, err := acc.Scalar(ctx, "SELECT file_path FROM documents WHERE id = $1", int64(9))
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectQuery("SELECT").WillReturnError(errors.New("boom"))

		_, err := acc.Scalar(ctx, "SELECT 1")
		assert.EqualError(t, err, "boom")
	})
}

func TestAccessor_Exec(t *testing.T) {
	acc, mock := newMockAccessor(t)

	mock.ExpectExec("DELETE FROM documents").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := acc.Exec(context.Background(), "DELETE FROM documents WHERE id = $1", int64(4))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessor_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		acc, mock := newMockAccessor(t)
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := acc.WithTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "UPDATE documents SET office_id = NULL WHERE office_id = $1", 1)
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback returns original error", func(t *testing.T) {
		acc, mock := newMockAccessor(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		want := errors.New("unit of work failed")
		err := acc.WithTx(ctx, func(tx *sql.Tx) error { return want })
		assert.ErrorIs(t, err, want)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin error", func(t *testing.T) {
		acc, mock := newMockAccessor(t)
		mock.ExpectBegin().WillReturnError(errors.New("no conn"))

		err := acc.WithTx(ctx, func(tx *sql.Tx) error { return nil })
		assert.ErrorContains(t, err, "begin tx: no conn")
	})

	t.Run("panic rolls back", func(t *testing.T) {
		acc, mock := newMockAccessor(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = acc.WithTx(ctx, func(tx *sql.Tx) error { panic("bad") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
