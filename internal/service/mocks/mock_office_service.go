package mocks

import (
	"context"

	"docmanager/internal/model"
	"docmanager/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockOfficeService struct {
	mock.Mock
}

func (m *MockOfficeService) List(ctx context.Context) ([]model.Office, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Office), args.Error(1)
}

func (m *MockOfficeService) Get(ctx context.Context, id int64) (*model.Office, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Office), args.Error(1)
}

func (m *MockOfficeService) Create(ctx context.Context, in service.OfficeInput) (*model.Office, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Office), args.Error(1)
}

func (m *MockOfficeService) Update(ctx context.Context, id int64, in service.OfficeInput) (*model.Office, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Office), args.Error(1)
}

func (m *MockOfficeService) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}
