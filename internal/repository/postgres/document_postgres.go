package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docmanager/internal/database"
	"docmanager/internal/model"
	"docmanager/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	acc *database.Accessor
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(acc *database.Accessor) *DocumentPostgres {
	return &DocumentPostgres{acc: acc}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const selectDocument = `
	SELECT d.id, d.file_name, d.file_path, d.file_type, d.size_bytes, d.page_count,
	       d.upload_date, d.office_id, COALESCE(o.name, '')
	FROM documents d
	LEFT JOIN offices o ON o.id = d.office_id
`

const searchClause = `(d.file_name ILIKE $1 OR d.file_type ILIKE $1 OR o.name ILIKE $1)`

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (model.Document, error) {
	var d model.Document
	err := s.Scan(
		&d.ID,
		&d.FileName,
		&d.FilePath,
		&d.FileType,
		&d.SizeBytes,
		&d.PageCount,
		&d.UploadDate,
		&d.OfficeID,
		&d.OfficeName,
	)
	return d, err
}

// containsPattern builds an ILIKE pattern matching term anywhere, with LIKE metacharacters escaped.
func containsPattern(term string) string {
	esc := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + esc + "%"
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (file_name, file_path, file_type, size_bytes, page_count, upload_date, office_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	if err := r.acc.DB().QueryRowContext(ctx, q,
		doc.FileName,
		doc.FilePath,
		doc.FileType,
		doc.SizeBytes,
		doc.PageCount,
		doc.UploadDate,
		doc.OfficeID,
	).Scan(&id); err != nil {
		return nil, err
	}

	out := *doc
	out.ID = id
	return &out, nil
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	row := r.acc.DB().QueryRowContext(ctx, selectDocument+` WHERE d.id = $1`, id)
	d, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindPath returns the storage path of a document, or sql.ErrNoRows.
func (r *DocumentPostgres) FindPath(ctx context.Context, id int64) (string, error) {
	v, err := r.acc.Scalar(ctx, `SELECT file_path FROM documents WHERE id = $1`, id)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", sql.ErrNoRows
	}
	switch p := v.(type) {
	case string:
		return p, nil
	case []byte:
		return string(p), nil
	default:
		return "", fmt.Errorf("unexpected file_path type %T", v)
	}
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	where := ""
	args := []any{}
	if pq.Term != "" {
		where = " WHERE " + searchClause
		args = append(args, containsPattern(pq.Term))
	}

	countQ := `SELECT COUNT(*) FROM documents d LEFT JOIN offices o ON o.id = d.office_id` + where
	var total int
	if err := r.acc.DB().QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	listQ := selectDocument + where +
		fmt.Sprintf(` ORDER BY d.upload_date DESC, d.id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := r.acc.DB().QueryContext(ctx, listQ, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := collect(rows)
	if err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Search returns all documents matching term in file name, file type or office name.
func (r *DocumentPostgres) Search(ctx context.Context, term string) ([]model.Document, error) {
	rows, err := r.acc.DB().QueryContext(ctx,
		selectDocument+` WHERE `+searchClause+` ORDER BY d.upload_date DESC, d.id DESC`,
		containsPattern(term),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// Update changes the file name and office of a document. It returns sql.ErrNoRows if nothing matched.
func (r *DocumentPostgres) Update(ctx context.Context, id int64, fileName string, officeID *int64) error {
	n, err := r.acc.Exec(ctx,
		`UPDATE documents SET file_name = $1, office_id = $2 WHERE id = $3`,
		fileName, officeID, id,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document by ID.
func (r *DocumentPostgres) Delete(ctx context.Context, id int64) (bool, error) {
	n, err := r.acc.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func collect(rows *sql.Rows) ([]model.Document, error) {
	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
