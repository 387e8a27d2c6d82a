// Package storage contains the blob store abstraction documents are written to.
// Implementations stream bytes and never spill to local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
)

// ErrObjectNotFound is returned by Download when the named blob does not exist.
var ErrObjectNotFound = errors.New("blob not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// BlobStore stores named blobs in a single private container.
// The container is created lazily before the first upload.
type BlobStore interface {
	// Upload writes the blob and returns its URL.
	Upload(ctx context.Context, name string, r io.Reader, opt PutObjectOptions) (string, error)
	// Download opens the blob for reading. A missing blob yields ErrObjectNotFound.
	Download(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// URL resolves the address a blob of this name has, whether or not it exists.
	URL(name string) string
}

// BlobNameFromPath derives the blob name from a stored document path: the
// unescaped tail after the last '/'.
func BlobNameFromPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	tail := p[strings.LastIndex(p, "/")+1:]
	if name, err := url.PathUnescape(tail); err == nil {
		return name
	}
	return tail
}

// containerGuard runs ensure once successfully. A failed attempt is retried on the next call.
type containerGuard struct {
	mu     sync.Mutex
	ready  bool
	ensure func(ctx context.Context) error
}

func (g *containerGuard) do(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ready {
		return nil
	}
	if err := g.ensure(ctx); err != nil {
		return err
	}
	g.ready = true
	return nil
}
