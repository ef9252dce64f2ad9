package domain

import "time"

// ContentType tags the structural role a chunk played in its source
// document.
type ContentType string

const (
	ContentText             ContentType = "text"
	ContentHeading          ContentType = "heading"
	ContentTable            ContentType = "table"
	ContentCode             ContentType = "code"
	ContentList             ContentType = "list"
	ContentImageText        ContentType = "image_text"
	ContentImageDescription ContentType = "image_description"
)

// Chunk is the atomic unit of retrieval, produced by a Chunker from a
// Block emitted by an ingestion extractor.
type Chunk struct {
	Content            string            `json:"content"`
	ChunkIndex         int               `json:"chunk_index"`
	TotalChunks        int               `json:"total_chunks"`
	ContentType        ContentType       `json:"content_type"`
	SourceName         string            `json:"source_name"`
	SourceFormat       SourceFormat      `json:"source_format"`
	FileHash           string            `json:"file_hash,omitempty"`
	FormatMetadata     map[string]string `json:"format_metadata,omitempty"`
	IngestionTimestamp time.Time         `json:"ingestion_timestamp"`
}

// SearchFilter narrows a vector-store search or scroll to points whose
// payload matches every non-empty field.
type SearchFilter struct {
	SourceName   string
	SourceFormat SourceFormat
	SessionID    string
}

// RetrievedChunk is one candidate returned by the Retrieval Engine,
// carrying both the dense-recall score and, after stage 2, the reranker
// score in the same field (the two never coexist for a given result).
type RetrievedChunk struct {
	Content        string            `json:"content"`
	SourceName     string            `json:"source_name"`
	SourceFormat   SourceFormat      `json:"source_format"`
	ChunkIndex     int               `json:"chunk_index"`
	Score          float64           `json:"score"`
	FormatMetadata map[string]string `json:"format_metadata,omitempty"`
}

// RetrievalResult carries the chunks recalled for one query. OrderOnly
// marks a result that skipped reranking because the reranker backend
// was unavailable, leaving dense-recall order in place.
type RetrievalResult struct {
	Chunks    []RetrievedChunk
	OrderOnly bool
}
