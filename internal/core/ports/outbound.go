package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

// DocumentRepository persists DocumentRecord status rows (ambient
// tracking, independent of the vector store).
type DocumentRepository interface {
	Create(ctx context.Context, rec *domain.DocumentRecord) error
	GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	FindByHash(ctx context.Context, hash string) (*domain.DocumentRecord, error)
}

// ObjectStorage persists raw uploaded bytes.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue hands ingestion work from the API process to the worker
// process, so the two run independently. Events are not persisted: an
// event published while no worker is subscribed is not delivered.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	Close()
}

// Block is one logical unit an extractor emits before chunking — a
// page, a heading, a table, a paragraph, an image description.
type Block struct {
	Text           string
	ContentType    domain.ContentType
	FormatMetadata map[string]string
}

// TextExtractor turns a raw artifact into a stream of blocks (4.K).
type TextExtractor interface {
	Extract(ctx context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]Block, error)
}

// Embedder is the Embedding Service capability (4.C): pure functions
// from strings to L2-normalized, fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Chunker is the sentence-aware Chunker capability (4.B).
type Chunker interface {
	Split(text string) []domain.Chunk
}

// StructureChunker is the structure-aware variant of 4.B, operating on
// pre-tagged blocks instead of a flat string.
type StructureChunker interface {
	SplitBlocks(blocks []Block, sourceName string, sourceFormat domain.SourceFormat) []domain.Chunk
}

// VectorPoint is one (id, vector, payload) unit persisted in a
// collection (4.E).
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// VectorStore is the black-box capability of 4.E: the full contract the
// core requires of any vector database.
type VectorStore interface {
	EnsureCollection(ctx context.Context, collection string, dimension int) error
	Upsert(ctx context.Context, collection string, points []VectorPoint) error
	Search(ctx context.Context, collection string, queryVector []float32, k int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
	Scroll(ctx context.Context, collection string, filter domain.SearchFilter, limit int, offset string) (points []map[string]any, nextOffset string, err error)
	Delete(ctx context.Context, collection string, filter domain.SearchFilter) error
	Drop(ctx context.Context, collection string) error
	Count(ctx context.Context, collection string, filter domain.SearchFilter) (int, error)
}

// Reranker is the Reranker Service capability (4.D).
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []string, topN int) (indices []int, scores []float64, err error)
}

// AnswerGenerator is the Generator Adapter capability (4.I).
type AnswerGenerator interface {
	Generate(ctx context.Context, messages []domain.GenMessage) (string, error)
}

// VisionGenerator is the vision-capable variant of the Generator
// Adapter (4.I) the Ingestion Frontend's image extractor delegates to
// (4.K). mode selects extract-text, describe, or auto pre-classification.
type VisionGenerator interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string, mode domain.ImageMode) (string, error)
}

// ConversationStore is the Conversation Memory capability (4.F),
// operating on the same VectorStore black box via a dedicated
// collection and dummy vectors.
type ConversationStore interface {
	Append(ctx context.Context, sessionID string, role domain.MessageRole, content string) error
	History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
	Clear(ctx context.Context, sessionID string) (int, error)
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}
