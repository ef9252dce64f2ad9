package chunk

import (
	"strings"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// dynamic chunk sizing targets per content type, in characters.
const (
	headingTarget = 150
	tableTarget   = 250
	listTarget    = 300
	proseTarget   = 400
)

// StructureChunker packs pre-tagged blocks from an ingestion extractor
// into chunks, carrying the most recent section header as metadata on
// every following chunk and splitting oversized tables row-wise.
type StructureChunker struct {
	MaxChunkSize int
	prose        *SentenceChunker
}

var _ ports.StructureChunker = (*StructureChunker)(nil)

func NewStructureChunker(maxChunkSize, overlap int) *StructureChunker {
	return &StructureChunker{
		MaxChunkSize: maxChunkSize,
		prose:        NewSentenceChunker(maxChunkSize, overlap),
	}
}

// SplitBlocks chunks a sequence of extractor blocks, tagging each
// resulting chunk with content_type and, when applicable, the active
// section_header carried in format_metadata.
func (c *StructureChunker) SplitBlocks(blocks []ports.Block, sourceName string, sourceFormat domain.SourceFormat) []domain.Chunk {
	var out []domain.Chunk
	sectionHeader := ""

	appendChunk := func(content string, contentType domain.ContentType, meta map[string]string) {
		if strings.TrimSpace(content) == "" {
			return
		}
		fm := map[string]string{}
		for k, v := range meta {
			fm[k] = v
		}
		if sectionHeader != "" {
			fm["section_header"] = sectionHeader
		}
		out = append(out, domain.Chunk{
			Content:        content,
			ContentType:    contentType,
			SourceName:     sourceName,
			SourceFormat:   sourceFormat,
			FormatMetadata: fm,
		})
	}

	for _, b := range blocks {
		switch b.ContentType {
		case domain.ContentHeading:
			sectionHeader = ""
			appendChunk(b.Text, domain.ContentHeading, b.FormatMetadata)
			sectionHeader = strings.TrimSpace(b.Text)
		case domain.ContentTable:
			c.splitTable(b, appendChunk)
		case domain.ContentList:
			c.splitBySize(b.Text, domain.ContentList, listTarget, b.FormatMetadata, appendChunk)
		default:
			c.splitBySize(b.Text, domain.ContentText, proseTarget, b.FormatMetadata, appendChunk)
		}
	}

	for i := range out {
		out[i].ChunkIndex = i
		out[i].TotalChunks = len(out)
	}
	return out
}

func (c *StructureChunker) splitTable(b ports.Block, appendChunk func(string, domain.ContentType, map[string]string)) {
	limit := int(float64(c.MaxChunkSize) * 1.5)
	if len([]rune(b.Text)) <= limit {
		appendChunk(b.Text, domain.ContentTable, b.FormatMetadata)
		return
	}

	rows := strings.Split(b.Text, "\n")
	if len(rows) == 0 {
		return
	}
	header := rows[0]
	headerLen := len([]rune(header))
	var current strings.Builder
	current.WriteString(header)
	for _, row := range rows[1:] {
		currentLen := len([]rune(current.String()))
		if currentLen+len([]rune(row))+1 > tableTarget && currentLen > headerLen {
			appendChunk(current.String(), domain.ContentTable, b.FormatMetadata)
			current.Reset()
			current.WriteString(header)
		}
		current.WriteByte('\n')
		current.WriteString(row)
	}
	appendChunk(current.String(), domain.ContentTable, b.FormatMetadata)
}

func (c *StructureChunker) splitBySize(text string, contentType domain.ContentType, target int, meta map[string]string, appendChunk func(string, domain.ContentType, map[string]string)) {
	if len([]rune(text)) <= target {
		appendChunk(text, contentType, meta)
		return
	}
	for _, chunk := range c.prose.Split(text) {
		appendChunk(chunk.Content, contentType, meta)
	}
}
