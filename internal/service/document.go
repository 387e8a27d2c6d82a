package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"docmanager/internal/metrics"
	"docmanager/internal/model"
	"docmanager/internal/repository"
	"docmanager/internal/storage"
)

const compensationTimeout = 30 * time.Second

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// AddDocumentInput carries an upload. Size is -1 when unknown.
type AddDocumentInput struct {
	Name        string
	FileType    string
	OfficeID    *int64
	Content     io.Reader
	Size        int64
	ContentType string
	PageCount   *int
}

// UpdateDocumentInput renames a document and re-files it under another office (nil detaches it).
type UpdateDocumentInput struct {
	FileName string `json:"file_name"`
	OfficeID *int64 `json:"office_id"`
}

// DocumentStream is a fully buffered, seekable download.
type DocumentStream struct {
	Reader      *bytes.Reader
	FileName    string
	ContentType string
	Size        int64
}

// DocumentService keeps document rows and their blobs consistent.
type DocumentService interface {
	// Add uploads the content, then records it. If validation or the insert fails after the
	// upload, the blob is deleted again on a best-effort basis and the original error is returned.
	Add(ctx context.Context, in AddDocumentInput) (*model.Document, error)

	// Delete removes the blob and then the row. A failed blob delete keeps the row.
	Delete(ctx context.Context, id int64) error

	// Search runs a case-insensitive substring match over file name, file type and office
	// name and replaces the cached document list with the result.
	Search(ctx context.Context, term string) ([]model.Document, error)

	// Documents returns a copy of the cached document list.
	Documents() []model.Document

	// Refresh reloads the cache with every document. On failure it returns the previous
	// snapshot together with an ErrStale error.
	Refresh(ctx context.Context) ([]model.Document, error)

	// Stream downloads a document fully into memory.
	Stream(ctx context.Context, id int64) (*DocumentStream, error)

	Get(ctx context.Context, id int64) (*model.Document, error)
	List(ctx context.Context, limit, offset int, term string) (*DocumentListResult, error)
	Update(ctx context.Context, id int64, in UpdateDocumentInput) (*model.Document, error)
}

type documentService struct {
	store   storage.BlobStore
	repo    repository.DocumentRepository
	log     *zap.Logger
	metrics *metrics.Documents
	now     func() time.Time

	mu    sync.RWMutex
	cache []model.Document
}

// Option configures a DocumentService.
type Option func(*documentService)

// WithLogger sets the logger used for compensation and cache warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *documentService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records lifecycle events on m.
func WithMetrics(m *metrics.Documents) Option {
	return func(s *documentService) { s.metrics = m }
}

// WithClock replaces time.Now for upload dates and blob names.
func WithClock(now func() time.Time) Option {
	return func(s *documentService) { s.now = now }
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.BlobStore, repo repository.DocumentRepository, opts ...Option) DocumentService {
	s := &documentService{
		store: store,
		repo:  repo,
		log:   zap.NewNop(),
		now:   time.Now,
		cache: []model.Document{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BlobName builds the collision-resistant blob name for an upload at t.
func BlobName(t time.Time, fileName string) string {
	return t.UTC().Format("20060102150405.000000") + "_" + path.Base(strings.ReplaceAll(fileName, `\`, "/"))
}

func (s *documentService) Add(ctx context.Context, in AddDocumentInput) (*model.Document, error) {
	if in.Content == nil {
		return nil, invalid("content is required")
	}

	now := s.now().UTC()
	blobName := BlobName(now, in.Name)

	url, err := s.store.Upload(ctx, blobName, in.Content, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
	})
	if err != nil {
		return nil, wrap(ErrUpload, err)
	}
	if url == "" {
		return nil, fmt.Errorf("%w: blob store returned an empty url for %s", ErrUpload, blobName)
	}

	name := strings.TrimSpace(in.Name)
	fileType := NormalizeFileType(in.FileType)
	if name == "" || fileType == "" {
		s.compensate(ctx, blobName)
		return nil, invalid("file name and file type are required")
	}

	size := in.Size
	if size < 0 {
		size = 0
	}
	doc, err := s.repo.Create(ctx, &model.Document{
		FileName:   name,
		FilePath:   url,
		FileType:   fileType,
		SizeBytes:  size,
		PageCount:  in.PageCount,
		UploadDate: now,
		OfficeID:   in.OfficeID,
	})
	if err != nil {
		s.compensate(ctx, blobName)
		return nil, wrap(ErrStorage, err)
	}

	s.mu.Lock()
	s.cache = append([]model.Document{*doc}, s.cache...)
	s.mu.Unlock()

	s.metrics.Added()
	s.log.Info("document_added",
		zap.Int64("document_id", doc.ID),
		zap.String("blob", blobName),
	)
	return doc, nil
}

// compensate deletes an orphaned blob. Its failure is logged and never returned.
func (s *documentService) compensate(ctx context.Context, blobName string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := s.store.Delete(cctx, blobName); err != nil {
		s.metrics.Compensation(false)
		s.log.Error("compensating_blob_delete_failed",
			zap.String("blob", blobName),
			zap.Error(err),
		)
		return
	}
	s.metrics.Compensation(true)
	s.log.Warn("compensating_blob_delete", zap.String("blob", blobName))
}

func (s *documentService) Delete(ctx context.Context, id int64) error {
	filePath, err := s.repo.FindPath(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return wrap(ErrStorage, err)
	}

	if filePath != "" {
		if err := s.store.Delete(ctx, storage.BlobNameFromPath(filePath)); err != nil {
			return wrap(ErrDeletion, err)
		}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return wrap(ErrDeletion, err)
	}
	if !deleted {
		return fmt.Errorf("%w: document %d", ErrNotFound, id)
	}

	s.mu.Lock()
	kept := make([]model.Document, 0, len(s.cache))
	for _, d := range s.cache {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	s.cache = kept
	s.mu.Unlock()

	s.metrics.Deleted()
	s.log.Info("document_deleted", zap.Int64("document_id", id))
	return nil
}

func (s *documentService) Search(ctx context.Context, term string) ([]model.Document, error) {
	docs, err := s.repo.Search(ctx, strings.TrimSpace(term))
	if err != nil {
		s.metrics.RefreshFailed()
		s.log.Warn("document_search_failed", zap.String("term", term), zap.Error(err))
		return nil, wrap(ErrStorage, err)
	}
	s.replace(docs)
	return s.Documents(), nil
}

func (s *documentService) Documents() []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Document, len(s.cache))
	copy(out, s.cache)
	return out
}

func (s *documentService) Refresh(ctx context.Context) ([]model.Document, error) {
	docs, err := s.repo.Search(ctx, "")
	if err != nil {
		s.metrics.RefreshFailed()
		s.log.Warn("document_cache_refresh_failed", zap.Error(err))
		return s.Documents(), wrap(ErrStale, err)
	}
	s.replace(docs)
	return s.Documents(), nil
}

func (s *documentService) replace(docs []model.Document) {
	next := make([]model.Document, len(docs))
	copy(next, docs)
	s.mu.Lock()
	s.cache = next
	s.mu.Unlock()
}

func (s *documentService) Stream(ctx context.Context, id int64) (*DocumentStream, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.FilePath == "" {
		return nil, fmt.Errorf("%w: document %d has no storage path", ErrInvalidState, id)
	}

	rc, err := s.store.Download(ctx, storage.BlobNameFromPath(doc.FilePath))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, wrap(ErrNotFound, err)
		}
		return nil, wrap(ErrStorage, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if doc.SizeBytes > 0 {
		buf.Grow(int(doc.SizeBytes))
	}
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, wrap(ErrStorage, err)
	}

	data := buf.Bytes()
	return &DocumentStream{
		Reader:      bytes.NewReader(data),
		FileName:    doc.FileName,
		ContentType: ContentTypeFor(doc.FileType, data),
		Size:        int64(len(data)),
	}, nil
}

func (s *documentService) Get(ctx context.Context, id int64) (*model.Document, error) {
	if id <= 0 {
		return nil, invalid("id must be positive")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
		}
		return nil, wrap(ErrStorage, err)
	}
	return doc, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int, term string) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset, Term: strings.TrimSpace(term)})
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Update(ctx context.Context, id int64, in UpdateDocumentInput) (*model.Document, error) {
	name := strings.TrimSpace(in.FileName)
	if name == "" {
		return nil, invalid("file name is required")
	}

	if err := s.repo.Update(ctx, id, name, in.OfficeID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("%w: document %d", ErrNotFound, id)
		case pgCode(err) == pgForeignKeyViolation:
			return nil, wrap(ErrValidation, err)
		}
		return nil, wrap(ErrStorage, err)
	}

	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	next := make([]model.Document, len(s.cache))
	copy(next, s.cache)
	for i := range next {
		if next[i].ID == id {
			next[i] = *doc
		}
	}
	s.cache = next
	s.mu.Unlock()

	return doc, nil
}
