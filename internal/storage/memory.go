package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore keeps blobs in process memory. It backs BLOB_DRIVER=memory and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	container string
	objects   map[string]memoryObject
}

// NewMemory returns an empty in-memory blob store for the given container.
func NewMemory(container string) *MemoryStore {
	return &MemoryStore{
		container: container,
		objects:   make(map[string]memoryObject),
	}
}

var _ BlobStore = (*MemoryStore)(nil)

func (s *MemoryStore) Upload(ctx context.Context, name string, r io.Reader, opt PutObjectOptions) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.objects[name] = memoryObject{data: data, contentType: opt.ContentType}
	s.mu.Unlock()
	return s.URL(name), nil
}

func (s *MemoryStore) Download(_ context.Context, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	obj, ok := s.objects[name]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	delete(s.objects, name)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) URL(name string) string {
	return "memory://" + s.container + "/" + url.PathEscape(name)
}

// Len reports how many blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
