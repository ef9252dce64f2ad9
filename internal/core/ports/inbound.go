package ports

import (
	"context"
	"io"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

// DocumentIngestor is the inbound contract behind the ingest_file
// procedure: accepts a raw upload, persists it, and hands it off for
// asynchronous processing.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader, size int64) (*domain.DocumentRecord, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// processing: detect format, extract, chunk, embed, upsert. Invoked by
// the worker process on queue delivery.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) (*domain.IngestResult, error)
}

// DocumentReader is the inbound read model behind document-status
// lookups.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error)
}

// QueryService is the inbound contract behind the query procedure.
type QueryService interface {
	Query(ctx context.Context, text, sessionID string, useRAG bool) (*domain.QueryResult, error)
}

// IngestTextsService is the inbound contract behind ingest_texts:
// synchronous ingestion of already-extracted text, bypassing the file
// extraction frontend.
type IngestTextsService interface {
	IngestTexts(ctx context.Context, texts []string, sourceNames []string, sourceFormat domain.SourceFormat) (*domain.IngestResult, error)
}

// HistoryService is the inbound contract behind history/clear_history.
type HistoryService interface {
	History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
	ClearHistory(ctx context.Context, sessionID string) (int, error)
}

// CollectionInfoService is the inbound contract behind collection_info.
type CollectionInfoService interface {
	CollectionInfo(ctx context.Context, collection string) (count, dimension int, distance string, err error)
}
