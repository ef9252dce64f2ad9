package domain

import "time"

// MessageRole is one side of a conversational exchange.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of a conversation, stored as a dummy-vector point
// in the conversation_memory collection.
type Message struct {
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// QueryType is the closed set of routes the Query Router (4.G) can
// classify a normalized query into.
type QueryType string

const (
	QueryGreeting   QueryType = "greeting"
	QuerySimple     QueryType = "simple"
	QueryCalculator QueryType = "calculator"
	QueryRAG        QueryType = "rag"
)

// QueryResult is the return value of the RAG Pipeline's query flow (4.J).
type QueryResult struct {
	Answer           string           `json:"answer"`
	Sources          []RetrievedChunk `json:"sources"`
	QueryType        QueryType        `json:"query_type"`
	SessionID        string           `json:"session_id"`
	ProcessingTimeMS int64            `json:"processing_time_ms"`
}

// IngestResult is the return value of the RAG Pipeline's ingestion flow (4.J).
type IngestResult struct {
	Documents        int   `json:"documents"`
	Chunks           int   `json:"chunks"`
	ProcessingTimeMS int64 `json:"processing_time_ms"`
	SourceFormat     SourceFormat `json:"source_format,omitempty"`
}

// GenMessage is one entry in the uniform message shape the Generator
// Adapter (4.I) accepts.
type GenMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ImageMode selects how the vision-LLM adapter treats an image block
// during ingestion (4.K).
type ImageMode string

const (
	ImageModeExtractText ImageMode = "text"
	ImageModeDescribe    ImageMode = "description"
	ImageModeAuto        ImageMode = "auto"
)
