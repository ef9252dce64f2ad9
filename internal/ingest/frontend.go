// Package ingest implements the ingestion frontend: definitive format
// detection from magic bytes, dispatch to the format-specific
// extractor leaves under internal/ingest/extract, and tolerant error
// reporting that names the failing stage instead of surfacing a stack
// trace.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
	"github.com/kirillkom/arabic-rag-core/internal/ingest/extract/jsonfmt"
)

// Frontend dispatches a raw uploaded artifact through format-specific
// extraction, implementing ports.TextExtractor for the worker-side
// ProcessDocumentUseCase.
type Frontend struct {
	pdf      ports.TextExtractor
	html     ports.TextExtractor
	markdown ports.TextExtractor
	docx     ports.TextExtractor
	xlsx     ports.TextExtractor
	image    ports.TextExtractor
	text     ports.TextExtractor
}

func NewFrontend(pdf, html, markdown, docx, xlsx, image, text ports.TextExtractor) *Frontend {
	return &Frontend{pdf: pdf, html: html, markdown: markdown, docx: docx, xlsx: xlsx, image: image, text: text}
}

const magicPeekSize = 2048

func (f *Frontend) Extract(ctx context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	peek := make([]byte, magicPeekSize)
	n, err := io.ReadFull(raw, peek)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, domain.WrapError(domain.ErrExtraction, "ingestion frontend: read magic bytes", err)
	}
	peek = peek[:n]
	full := io.MultiReader(bytes.NewReader(peek), raw)

	format := detectFormat(peek, rec)

	switch format {
	case domain.FormatJSONFirecrawl, domain.FormatJSONGeneric:
		return f.extractJSON(full, format)
	default:
		extractor, ok := f.extractorFor(format)
		if !ok {
			return nil, domain.WrapError(domain.ErrExtraction, "ingestion frontend",
				fmt.Errorf("no extractor registered for format %q", format))
		}
		blocks, err := extractor.Extract(ctx, rec, full)
		if err != nil {
			return nil, fmt.Errorf("ingestion frontend: %s extractor: %w", format, err)
		}
		return blocks, nil
	}
}

func (f *Frontend) extractorFor(format domain.SourceFormat) (ports.TextExtractor, bool) {
	switch format {
	case domain.FormatPDF:
		return f.pdf, f.pdf != nil
	case domain.FormatHTML:
		return f.html, f.html != nil
	case domain.FormatMarkdown:
		return f.markdown, f.markdown != nil
	case domain.FormatDOCX:
		return f.docx, f.docx != nil
	case domain.FormatXLSX:
		return f.xlsx, f.xlsx != nil
	case domain.FormatImage:
		return f.image, f.image != nil
	default:
		return f.text, f.text != nil
	}
}

// extractJSON expands a JSON upload into one block per logical
// document (page or array element), letting the shared chunker split
// each independently — see jsonfmt's package doc for why this bypasses
// the per-format extractor contract used by every other format.
func (f *Frontend) extractJSON(r io.Reader, format domain.SourceFormat) ([]ports.Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "ingestion frontend: read json", err)
	}

	var texts, names []string
	if format == domain.FormatJSONFirecrawl {
		texts, names, err = jsonfmt.ParseFirecrawl(data)
	} else {
		texts, names, err = jsonfmt.ParseGeneric(data)
	}
	if err != nil {
		return nil, fmt.Errorf("ingestion frontend: %w", err)
	}

	blocks := make([]ports.Block, len(texts))
	for i, text := range texts {
		blocks[i] = ports.Block{
			Text:           text,
			ContentType:    domain.ContentText,
			FormatMetadata: map[string]string{"document_name": names[i]},
		}
	}
	return blocks, nil
}

// detectFormat applies the detection order: declared MIME type →
// magic bytes → filename extension → text fallback. The declared MIME
// type is only trusted when it maps unambiguously to one format;
// generic or missing MIME types fall through to the magic-byte sniff,
// which is the strongest signal since it cannot be misreported by the
// uploader. rec.SourceFormat already carries the filename-extension
// guess computed at upload time (detectFormatHint in usecase/ingest.go)
// and serves as the third step.
func detectFormat(peek []byte, rec *domain.DocumentRecord) domain.SourceFormat {
	if rec != nil {
		if format, ok := mimeToFormat(rec.MimeType); ok {
			return format
		}
	}
	if format, ok := sniffMagicBytes(peek); ok {
		return format
	}
	if looksLikeJSON(peek) {
		if bytes.Contains(peek, []byte(`"pages"`)) {
			return domain.FormatJSONFirecrawl
		}
		return domain.FormatJSONGeneric
	}
	if rec != nil && rec.SourceFormat != "" {
		return rec.SourceFormat
	}
	return domain.FormatText
}

func mimeToFormat(mimeType string) (domain.SourceFormat, bool) {
	switch {
	case mimeType == "application/pdf":
		return domain.FormatPDF, true
	case mimeType == "text/html":
		return domain.FormatHTML, true
	case mimeType == "text/markdown":
		return domain.FormatMarkdown, true
	case strings.Contains(mimeType, "wordprocessingml"):
		return domain.FormatDOCX, true
	case strings.Contains(mimeType, "spreadsheetml"):
		return domain.FormatXLSX, true
	default:
		return "", false
	}
}

func sniffMagicBytes(peek []byte) (domain.SourceFormat, bool) {
	switch {
	case bytes.HasPrefix(peek, []byte("%PDF-")):
		return domain.FormatPDF, true
	case bytes.HasPrefix(peek, []byte{0x50, 0x4B, 0x03, 0x04}):
		// A generic zip signature — DOCX and XLSX are both zip
		// containers, distinguished by their inner content-type
		// declaration.
		if format, ok := sniffZipOOXML(peek); ok {
			return format, true
		}
	case bytes.HasPrefix(peek, []byte{0xFF, 0xD8, 0xFF}):
		return domain.FormatImage, true
	case bytes.HasPrefix(peek, []byte("\x89PNG\r\n\x1a\n")):
		return domain.FormatImage, true
	case bytes.HasPrefix(peek, []byte("GIF87a")), bytes.HasPrefix(peek, []byte("GIF89a")):
		return domain.FormatImage, true
	case bytes.HasPrefix(peek, []byte("II*\x00")), bytes.HasPrefix(peek, []byte("MM\x00*")):
		return domain.FormatImage, true
	case bytes.HasPrefix(peek, []byte("RIFF")) && bytes.Contains(peek[:min(len(peek), 16)], []byte("WEBP")):
		return domain.FormatImage, true
	}
	return "", false
}

// sniffZipOOXML looks for the [Content_Types].xml declaration inline
// in the peeked prefix; a full zip central-directory read is not
// worth the extra I/O just to tell docx from xlsx apart when the
// filename extension already disambiguates in the overwhelming
// majority of uploads.
func sniffZipOOXML(peek []byte) (domain.SourceFormat, bool) {
	switch {
	case bytes.Contains(peek, []byte("word/")):
		return domain.FormatDOCX, true
	case bytes.Contains(peek, []byte("xl/")):
		return domain.FormatXLSX, true
	}
	return "", false
}

// looksLikeJSON only checks the leading brace/bracket: the peeked
// prefix may be truncated mid-token for large payloads, so requiring
// full json.Valid here would misclassify legitimate JSON uploads.
func looksLikeJSON(peek []byte) bool {
	trimmed := bytes.TrimSpace(peek)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
