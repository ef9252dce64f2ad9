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

// IngestTextsUseCase implements ports.IngestTextsService: a synchronous
// path that bypasses the file-ingestion frontend entirely because the
// caller has already supplied plain text, and chunks/embeds/upserts
// inline instead of handing off to the worker process.
type IngestTextsUseCase struct {
	chunker    ports.Chunker
	embedder   ports.Embedder
	vectorDB   ports.VectorStore
	collection string
}

func NewIngestTextsUseCase(
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	collection string,
) *IngestTextsUseCase {
	return &IngestTextsUseCase{
		chunker:    chunker,
		embedder:   embedder,
		vectorDB:   vectorDB,
		collection: collection,
	}
}

func (uc *IngestTextsUseCase) IngestTexts(
	ctx context.Context,
	texts []string,
	sourceNames []string,
	sourceFormat domain.SourceFormat,
) (*domain.IngestResult, error) {
	start := time.Now()
	if len(texts) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "ingest texts", fmt.Errorf("no texts supplied"))
	}
	if len(sourceNames) != 0 && len(sourceNames) != len(texts) {
		return nil, domain.WrapError(domain.ErrValidation, "ingest texts",
			fmt.Errorf("source_names length %d does not match texts length %d", len(sourceNames), len(texts)))
	}

	ingestedAt := time.Now().UTC()
	var allChunks []domain.Chunk
	for i, text := range texts {
		sourceName := fmt.Sprintf("text-%d", i)
		if len(sourceNames) == len(texts) {
			sourceName = sourceNames[i]
		}
		chunks := uc.chunker.Split(normalize.Normalize(text))
		for j := range chunks {
			chunks[j].SourceName = sourceName
			chunks[j].SourceFormat = sourceFormat
			chunks[j].IngestionTimestamp = ingestedAt
		}
		allChunks = append(allChunks, chunks...)
	}
	if len(allChunks) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "ingest texts", fmt.Errorf("chunking produced zero chunks"))
	}

	plain := make([]string, len(allChunks))
	for i, c := range allChunks {
		plain[i] = c.Content
	}
	vectors, err := uc.embedder.Embed(ctx, plain)
	if err != nil {
		return nil, domain.WrapError(domain.ErrModelTransient, "embed chunks", err)
	}
	if len(vectors) != len(allChunks) {
		return nil, domain.WrapError(domain.ErrModelTransient, "embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(allChunks)))
	}

	points := make([]ports.VectorPoint, len(allChunks))
	for i, c := range allChunks {
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
				"ingestion_timestamp": c.IngestionTimestamp,
			},
		}
	}

	if err := uc.vectorDB.Upsert(ctx, uc.collection, points); err != nil {
		return nil, domain.WrapError(domain.ErrStore, "upsert chunks", err)
	}

	return &domain.IngestResult{
		Documents:        len(texts),
		Chunks:           len(allChunks),
		SourceFormat:     sourceFormat,
		ProcessingTimeMS: elapsedMS(start),
	}, nil
}
