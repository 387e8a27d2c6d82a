package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Row is one result row keyed by column name. SQL NULL becomes a nil value.
type Row map[string]any

// Accessor runs single parameterized statements. Every call is independent: it borrows a
// connection from the pool for the duration of the statement and returns it afterwards.
type Accessor struct {
	db *sql.DB
}

// NewAccessor wraps db.
func NewAccessor(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}

// DB exposes the underlying pool for callers that scan into typed structs.
func (a *Accessor) DB() *sql.DB {
	return a.db
}

// Query runs q and returns every row as a column-name map, in result order.
func (a *Accessor) Query(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

// Scalar runs q and returns the first column of the first row, or nil when there are no rows.
func (a *Accessor) Scalar(ctx context.Context, q string, args ...any) (any, error) {
	var v any
	err := a.db.QueryRowContext(ctx, q, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Exec runs q and returns the number of affected rows.
func (a *Accessor) Exec(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := a.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and rolls back otherwise,
// returning fn's error unchanged.
func (a *Accessor) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func collectRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Int64 reads an integer column from r. Missing or NULL columns yield ok=false.
func (r Row) Int64(col string) (int64, bool) {
	switch v := r[col].(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// String reads a text column from r. NULL yields "".
func (r Row) String(col string) string {
	if s, ok := r[col].(string); ok {
		return s
	}
	return ""
}

// NullString reads a nullable text column from r.
func (r Row) NullString(col string) *string {
	s, ok := r[col].(string)
	if !ok {
		return nil
	}
	return &s
}
