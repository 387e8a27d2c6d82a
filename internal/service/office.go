package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"docmanager/internal/model"
	"docmanager/internal/repository"
)

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup and surrounding whitespace from user supplied labels.
func sanitizeText(s string) string {
	return strings.TrimSpace(textPolicy.Sanitize(s))
}

// OfficeInput is the writable part of an office.
type OfficeInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// OfficeService manages the office directory.
type OfficeService interface {
	List(ctx context.Context) ([]model.Office, error)
	Get(ctx context.Context, id int64) (*model.Office, error)
	Create(ctx context.Context, in OfficeInput) (*model.Office, error)
	Update(ctx context.Context, id int64, in OfficeInput) (*model.Office, error)
	// Delete removes the office and returns how many documents lost their office reference.
	Delete(ctx context.Context, id int64) (int64, error)
}

type officeService struct {
	repo repository.OfficeRepository
}

// NewOfficeService constructs a new OfficeService.
func NewOfficeService(repo repository.OfficeRepository) OfficeService {
	return &officeService{repo: repo}
}

func (s *officeService) clean(in OfficeInput) (*model.Office, error) {
	o := &model.Office{Name: sanitizeText(in.Name)}
	if o.Name == "" {
		return nil, invalid("office name is required")
	}
	if in.Description != nil {
		if d := sanitizeText(*in.Description); d != "" {
			o.Description = &d
		}
	}
	return o, nil
}

func (s *officeService) List(ctx context.Context) ([]model.Office, error) {
	offices, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return offices, nil
}

func (s *officeService) Get(ctx context.Context, id int64) (*model.Office, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: office %d", ErrNotFound, id)
		}
		return nil, wrap(ErrStorage, err)
	}
	return o, nil
}

func (s *officeService) Create(ctx context.Context, in OfficeInput) (*model.Office, error) {
	o, err := s.clean(in)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return created, nil
}

func (s *officeService) Update(ctx context.Context, id int64, in OfficeInput) (*model.Office, error) {
	o, err := s.clean(in)
	if err != nil {
		return nil, err
	}
	o.ID = id
	if err := s.repo.Update(ctx, o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: office %d", ErrNotFound, id)
		}
		return nil, wrap(ErrStorage, err)
	}
	return o, nil
}

func (s *officeService) Delete(ctx context.Context, id int64) (int64, error) {
	detached, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: office %d", ErrNotFound, id)
		}
		return 0, wrap(ErrDeletion, err)
	}
	return detached, nil
}
