package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docmanager/internal/database"
	"docmanager/internal/model"
	"docmanager/internal/repository"
)

// OfficePostgres is a PostgreSQL implementation of repository.OfficeRepository.
// It reads through the accessor's row maps rather than typed scans.
type OfficePostgres struct {
	acc *database.Accessor
}

// NewOfficePostgres creates a new OfficePostgres repository.
func NewOfficePostgres(acc *database.Accessor) *OfficePostgres {
	return &OfficePostgres{acc: acc}
}

var _ repository.OfficeRepository = (*OfficePostgres)(nil)

func officeFromRow(r database.Row) (model.Office, error) {
	id, ok := r.Int64("id")
	if !ok {
		return model.Office{}, fmt.Errorf("office row without id")
	}
	return model.Office{
		ID:          id,
		Name:        r.String("name"),
		Description: r.NullString("description"),
	}, nil
}

// List returns all offices ordered by name.
func (r *OfficePostgres) List(ctx context.Context) ([]model.Office, error) {
	rows, err := r.acc.Query(ctx, `SELECT id, name, description FROM offices ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	out := make([]model.Office, 0, len(rows))
	for _, row := range rows {
		o, err := officeFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// FindByID returns one office or sql.ErrNoRows.
func (r *OfficePostgres) FindByID(ctx context.Context, id int64) (*model.Office, error) {
	rows, err := r.acc.Query(ctx, `SELECT id, name, description FROM offices WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	o, err := officeFromRow(rows[0])
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts an office and returns it with its generated ID.
func (r *OfficePostgres) Create(ctx context.Context, o *model.Office) (*model.Office, error) {
	v, err := r.acc.Scalar(ctx,
		`INSERT INTO offices (name, description) VALUES ($1, $2) RETURNING id`,
		o.Name, o.Description,
	)
	if err != nil {
		return nil, err
	}
	id, ok := database.Row{"id": v}.Int64("id")
	if !ok {
		return nil, fmt.Errorf("insert office: unexpected id %v", v)
	}
	out := *o
	out.ID = id
	return &out, nil
}

// Update overwrites name and description. It returns sql.ErrNoRows if the office does not exist.
func (r *OfficePostgres) Update(ctx context.Context, o *model.Office) error {
	n, err := r.acc.Exec(ctx,
		`UPDATE offices SET name = $1, description = $2 WHERE id = $3`,
		o.Name, o.Description, o.ID,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete detaches the office's documents and removes the office in a single transaction.
func (r *OfficePostgres) Delete(ctx context.Context, id int64) (int64, error) {
	var detached int64
	err := r.acc.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE documents SET office_id = NULL WHERE office_id = $1`, id)
		if err != nil {
			return err
		}
		if detached, err = res.RowsAffected(); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `DELETE FROM offices WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return detached, nil
}
