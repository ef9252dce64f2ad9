package ingest

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type fakeExtractor struct {
	name string
}

func (f *fakeExtractor) Extract(_ context.Context, _ *domain.DocumentRecord, _ io.Reader) ([]ports.Block, error) {
	return []ports.Block{{Text: f.name, ContentType: domain.ContentText}}, nil
}

func newTestFrontend() (*Frontend, map[string]*fakeExtractor) {
	extractors := map[string]*fakeExtractor{
		"pdf": {name: "pdf"}, "html": {name: "html"}, "markdown": {name: "markdown"},
		"docx": {name: "docx"}, "xlsx": {name: "xlsx"}, "image": {name: "image"}, "text": {name: "text"},
	}
	f := NewFrontend(
		extractors["pdf"], extractors["html"], extractors["markdown"],
		extractors["docx"], extractors["xlsx"], extractors["image"], extractors["text"],
	)
	return f, extractors
}

func TestExtractRoutesByMagicBytesOverStaleSourceFormatHint(t *testing.T) {
	f, _ := newTestFrontend()
	rec := &domain.DocumentRecord{Filename: "report.txt", SourceFormat: domain.FormatText}
	blocks, err := f.Extract(context.Background(), rec, strings.NewReader("%PDF-1.7 rest of file..."))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(blocks) != 1 || blocks[0].Text != "pdf" {
		t.Fatalf("expected magic bytes to route to the pdf extractor, got %+v", blocks)
	}
}

func TestExtractPrefersDeclaredMIMEType(t *testing.T) {
	f, _ := newTestFrontend()
	rec := &domain.DocumentRecord{Filename: "notes", MimeType: "text/html", SourceFormat: domain.FormatText}
	blocks, err := f.Extract(context.Background(), rec, strings.NewReader("<html>hi</html>"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if blocks[0].Text != "html" {
		t.Fatalf("expected declared MIME type to route to html extractor, got %+v", blocks)
	}
}

func TestExtractFallsBackToSourceFormatHintForPlainText(t *testing.T) {
	f, _ := newTestFrontend()
	rec := &domain.DocumentRecord{Filename: "notes.txt", SourceFormat: domain.FormatText}
	blocks, err := f.Extract(context.Background(), rec, strings.NewReader("قصة قصيرة بدون أي علامات صيغة خاصة"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if blocks[0].Text != "text" {
		t.Fatalf("expected plain content to route to the text extractor, got %+v", blocks)
	}
}

func TestExtractExpandsFirecrawlJSONIntoOneBlockPerPage(t *testing.T) {
	f, _ := newTestFrontend()
	rec := &domain.DocumentRecord{Filename: "crawl.json", SourceFormat: domain.FormatJSONGeneric}
	payload := `{"pages":[{"markdown":"صفحة واحدة","metadata":{"sourceURL":"https://a"}},{"text":"صفحة ثانية"}]}`
	blocks, err := f.Extract(context.Background(), rec, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks from firecrawl pages, got %d", len(blocks))
	}
	if blocks[0].FormatMetadata["document_name"] != "https://a" {
		t.Fatalf("expected first block to carry the source URL, got %+v", blocks[0])
	}
}
