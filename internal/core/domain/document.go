package domain

import "time"

// DocumentStatus tracks an ingested file through the async pipeline.
// This is the ambient tracking row, independent of the chunks the file
// eventually produces.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// DocumentRecord is the Postgres-backed status row for one uploaded
// file. It exists independently of the chunk points the file produces
// in the vector store, so ingestion status can be observed before
// chunking/embedding has run.
type DocumentRecord struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	SourceFormat SourceFormat  `json:"source_format"`
	FileHash    string         `json:"file_hash,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SourceFormat is the detected or declared format of an ingested artifact.
type SourceFormat string

const (
	FormatPDF           SourceFormat = "pdf"
	FormatHTML          SourceFormat = "html"
	FormatMarkdown      SourceFormat = "markdown"
	FormatDOCX          SourceFormat = "docx"
	FormatXLSX          SourceFormat = "xlsx"
	FormatText          SourceFormat = "text"
	FormatImage         SourceFormat = "image"
	FormatJSONFirecrawl SourceFormat = "json-firecrawl"
	FormatJSONGeneric   SourceFormat = "json-generic"
)
