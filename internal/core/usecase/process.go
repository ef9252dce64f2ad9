package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
	"github.com/kirillkom/arabic-rag-core/internal/rag/normalize"
)

// ProcessDocumentUseCase implements ports.DocumentProcessor, the
// worker-side half of the ingestion flow: it fetches a queued
// document's raw bytes, extracts and chunks its content, embeds each
// chunk and upserts the resulting vectors.
type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	storage    ports.ObjectStorage
	extractor  ports.TextExtractor
	chunker    ports.StructureChunker
	embedder   ports.Embedder
	vectorDB   ports.VectorStore
	collection string
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	chunker ports.StructureChunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	collection string,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		storage:    storage,
		extractor:  extractor,
		chunker:    chunker,
		embedder:   embedder,
		vectorDB:   vectorDB,
		collection: collection,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) (*domain.IngestResult, error) {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return nil, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return nil, err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return nil, fmt.Errorf("set status=ready: %w", err)
	}

	return result, nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) (*domain.IngestResult, error) {
	rec, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}

	raw, err := uc.storage.Open(ctx, rec.StoragePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStore, "open stored artifact", err)
	}
	defer raw.Close()

	blocks, err := uc.extractor.Extract(ctx, rec, raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "extract content", err)
	}
	if len(blocks) == 0 {
		return nil, domain.WrapError(domain.ErrExtraction, "extract content", fmt.Errorf("no content extracted"))
	}

	chunks := uc.chunker.SplitBlocks(blocks, rec.Filename, rec.SourceFormat)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrExtraction, "chunk content", fmt.Errorf("chunking produced zero chunks"))
	}
	ingestedAt := time.Now().UTC()
	for i := range chunks {
		chunks[i].Content = normalize.Normalize(chunks[i].Content)
		chunks[i].FileHash = rec.FileHash
		chunks[i].IngestionTimestamp = ingestedAt
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, domain.WrapError(domain.ErrModelTransient, "embed chunks", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(domain.ErrModelTransient, "embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)))
	}

	points := make([]ports.VectorPoint, len(chunks))
	for i, c := range chunks {
		points[i] = ports.VectorPoint{
			ID:     uuid.NewString(),
			Vector: vectors[i],
			Payload: map[string]any{
				"content":             c.Content,
				"chunk_index":         c.ChunkIndex,
				"total_chunks":        c.TotalChunks,
				"content_type":        string(c.ContentType),
				"source_name":         c.SourceName,
				"source_format":       string(c.SourceFormat),
				"file_hash":           c.FileHash,
				"format_metadata":     c.FormatMetadata,
				"ingestion_timestamp": c.IngestionTimestamp,
			},
		}
	}

	if err := uc.vectorDB.Upsert(ctx, uc.collection, points); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "upsert chunks", err)
	}

	return &domain.IngestResult{
		Documents:    1,
		Chunks:       len(chunks),
		SourceFormat: rec.SourceFormat,
	}, nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}
