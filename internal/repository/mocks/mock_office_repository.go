package mocks

import (
	"context"

	"docmanager/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockOfficeRepository struct {
	mock.Mock
}

func (m *MockOfficeRepository) List(ctx context.Context) ([]model.Office, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Office), args.Error(1)
}

func (m *MockOfficeRepository) FindByID(ctx context.Context, id int64) (*model.Office, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Office), args.Error(1)
}

func (m *MockOfficeRepository) Create(ctx context.Context, o *model.Office) (*model.Office, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Office), args.Error(1)
}

func (m *MockOfficeRepository) Update(ctx context.Context, o *model.Office) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfficeRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
