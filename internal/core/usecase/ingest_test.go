package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

type repoFake struct {
	records  map[string]*domain.DocumentRecord
	byHash   map[string]*domain.DocumentRecord
	createErr error
}

func newRepoFake() *repoFake {
	return &repoFake{records: map[string]*domain.DocumentRecord{}, byHash: map[string]*domain.DocumentRecord{}}
}

func (r *repoFake) Create(_ context.Context, rec *domain.DocumentRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.records[rec.ID] = rec
	if rec.FileHash != "" {
		r.byHash[rec.FileHash] = rec
	}
	return nil
}
func (r *repoFake) GetByID(_ context.Context, id string) (*domain.DocumentRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return rec, nil
}
func (r *repoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	rec, ok := r.records[id]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	rec.Status = status
	rec.Error = errMessage
	return nil
}
func (r *repoFake) FindByHash(_ context.Context, hash string) (*domain.DocumentRecord, error) {
	rec, ok := r.byHash[hash]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return rec, nil
}

type storageFake struct {
	saved map[string][]byte
}

func newStorageFake() *storageFake { return &storageFake{saved: map[string][]byte{}} }

func (s *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.saved[key] = b
	return nil
}
func (s *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.saved[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

type queueFake struct {
	published []string
	err       error
}

func (q *queueFake) PublishDocumentIngested(_ context.Context, documentID string) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, documentID)
	return nil
}
func (q *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}
func (q *queueFake) Close() {}

func TestUploadHappyPath(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, 1024, false, false)

	rec, err := uc.Upload(context.Background(), "report.pdf", "application/pdf", bytes.NewReader([]byte("content")), 7)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if rec.Status != domain.StatusUploaded {
		t.Errorf("expected status uploaded, got %q", rec.Status)
	}
	if rec.SourceFormat != domain.FormatPDF {
		t.Errorf("expected format hint pdf, got %q", rec.SourceFormat)
	}
	if len(queue.published) != 1 || queue.published[0] != rec.ID {
		t.Errorf("expected ingestion event published for %q, got %v", rec.ID, queue.published)
	}
}

func TestUploadExceedsSizeLimit(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, 4, false, false)

	_, err := uc.Upload(context.Background(), "big.txt", "text/plain", bytes.NewReader([]byte("too big")), 7)
	if !domain.IsKind(err, domain.ErrResourceExceeded) {
		t.Fatalf("expected ErrResourceExceeded, got %v", err)
	}
}

func TestUploadDeduplicatesByHashWhenEnabled(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, 1024, true, false)

	content := []byte("duplicate content")
	hash, err := hashReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("hashReader() error = %v", err)
	}
	repo.byHash[hash] = &domain.DocumentRecord{ID: "existing", Status: domain.StatusReady, FileHash: hash}

	rec, err := uc.Upload(context.Background(), "dup.txt", "text/plain", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if rec.ID != "existing" {
		t.Errorf("expected duplicate to resolve to existing record, got %q", rec.ID)
	}
	if len(queue.published) != 0 {
		t.Errorf("expected no ingestion event for a duplicate upload")
	}
}

func TestUploadIngestsSameContentTwiceByDefault(t *testing.T) {
	repo := newRepoFake()
	storage := newStorageFake()
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue, 1024, false, false)

	content := []byte("repeated content")
	first, err := uc.Upload(context.Background(), "a.txt", "text/plain", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("first Upload() error = %v", err)
	}
	second, err := uc.Upload(context.Background(), "b.txt", "text/plain", bytes.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("second Upload() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected dedup off by default: identical content should produce two distinct documents")
	}
	if len(queue.published) != 2 {
		t.Errorf("expected two ingestion events without dedup, got %d", len(queue.published))
	}
}
