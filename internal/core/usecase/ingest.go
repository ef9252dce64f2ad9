package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// IngestDocumentUseCase implements ports.DocumentIngestor, the
// synchronous half of file ingestion: it buffers the upload, applies
// size limits and optional hash-based dedup, saves the raw bytes,
// records a pending DocumentRecord and hands off to the worker process
// by publishing to the message queue.
type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
	dedup   *deduper

	maxFileSizeBytes int64
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	maxFileSizeBytes int64,
	dedupEnabled, dedupGlobal bool,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:             repo,
		storage:          storage,
		queue:            queue,
		dedup:            newDeduper(repo, dedupEnabled, dedupGlobal),
		maxFileSizeBytes: maxFileSizeBytes,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
	size int64,
) (*domain.DocumentRecord, error) {
	if uc.maxFileSizeBytes > 0 && size > uc.maxFileSizeBytes {
		return nil, domain.WrapError(domain.ErrResourceExceeded, "upload",
			fmt.Errorf("file size %d exceeds limit %d", size, uc.maxFileSizeBytes))
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(body, uc.maxFileSizeBytes+1)); err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "upload", fmt.Errorf("read upload body: %w", err))
	}
	if uc.maxFileSizeBytes > 0 && int64(buf.Len()) > uc.maxFileSizeBytes {
		return nil, domain.WrapError(domain.ErrResourceExceeded, "upload",
			fmt.Errorf("file size exceeds limit %d", uc.maxFileSizeBytes))
	}

	hash, err := hashReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, domain.WrapError(domain.ErrValidation, "hash upload", err)
	}

	if dup, err := uc.dedup.findDuplicate(ctx, hash); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "check duplicate", err)
	} else if dup != nil {
		return dup, nil
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, bytes.NewReader(buf.Bytes())); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "save to object storage", err)
	}

	rec := &domain.DocumentRecord{
		ID:           id,
		Filename:     filename,
		MimeType:     mimeType,
		StoragePath:  storageKey,
		SourceFormat: detectFormatHint(filename, mimeType),
		FileHash:     hash,
		Status:       domain.StatusUploaded,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "create document record", err)
	}

	if err := uc.queue.PublishDocumentIngested(ctx, rec.ID); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "publish ingestion event", err)
	}

	return rec, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}

// detectFormatHint makes a best-effort format guess from the filename
// extension and declared MIME type at upload time; the ingestion
// frontend (internal/ingest) re-detects definitively from magic bytes
// before extraction.
func detectFormatHint(filename, mimeType string) domain.SourceFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return domain.FormatPDF
	case ".html", ".htm":
		return domain.FormatHTML
	case ".md", ".markdown":
		return domain.FormatMarkdown
	case ".docx":
		return domain.FormatDOCX
	case ".xlsx":
		return domain.FormatXLSX
	case ".json":
		return domain.FormatJSONGeneric
	case ".png", ".jpg", ".jpeg", ".webp":
		return domain.FormatImage
	}
	switch {
	case strings.Contains(mimeType, "pdf"):
		return domain.FormatPDF
	case strings.Contains(mimeType, "html"):
		return domain.FormatHTML
	case strings.Contains(mimeType, "wordprocessingml"):
		return domain.FormatDOCX
	case strings.Contains(mimeType, "spreadsheetml"):
		return domain.FormatXLSX
	case strings.Contains(mimeType, "json"):
		return domain.FormatJSONGeneric
	case strings.HasPrefix(mimeType, "image/"):
		return domain.FormatImage
	}
	return domain.FormatText
}
