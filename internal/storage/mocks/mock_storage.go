package mocks

import (
	"context"
	"io"

	"docmanager/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, name string, r io.Reader, opt storage.PutObjectOptions) (string, error) {
	args := m.Called(ctx, name, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, io.Reader, storage.PutObjectOptions) string); ok {
		return f(ctx, name, r, opt), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockBlobStore) URL(name string) string {
	args := m.Called(name)
	return args.String(0)
}
