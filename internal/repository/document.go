package repository

import (
	"context"

	"docmanager/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
type DocumentRepository interface {
	// Create inserts a new document record and returns it with the generated ID.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document, joined with its office name.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// FindPath returns only the storage path of a document.
	FindPath(ctx context.Context, id int64) (string, error)

	// List returns a page of documents and the total count, optionally filtered by Term.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Search returns every document whose file name, file type or office name contains term,
	// ignoring case. An empty term matches everything.
	Search(ctx context.Context, term string) ([]model.Document, error)

	// Update changes the file name and office reference of a document.
	Update(ctx context.Context, id int64, fileName string, officeID *int64) error

	// Delete removes a document by ID and reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
