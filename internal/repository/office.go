package repository

import (
	"context"

	"docmanager/internal/model"
)

// OfficeRepository defines data access for offices.
type OfficeRepository interface {
	List(ctx context.Context) ([]model.Office, error)
	FindByID(ctx context.Context, id int64) (*model.Office, error)
	Create(ctx context.Context, o *model.Office) (*model.Office, error)
	Update(ctx context.Context, o *model.Office) error
	// Delete clears document references to the office and removes it in one transaction.
	// It returns the number of documents that were detached.
	Delete(ctx context.Context, id int64) (int64, error)
}
