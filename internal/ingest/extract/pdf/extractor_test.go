package pdf

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

func TestExtractRejectsNonPDFBytes(t *testing.T) {
	_, err := (&Extractor{}).Extract(context.Background(), &domain.DocumentRecord{Filename: "not-a-pdf.pdf"}, strings.NewReader("this is not a pdf"))
	if err == nil || !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction for malformed pdf, got %v", err)
	}
}

func TestFindRepeatedLinesRequiresAtLeastThreePages(t *testing.T) {
	pages := [][]string{{"Header"}, {"Header"}}
	if got := findRepeatedLines(pages, 2); got != nil {
		t.Fatalf("expected nil repeated-line set for fewer than 3 pages, got %v", got)
	}
}

func TestFindRepeatedLinesFlagsLinesOnThreeOrMorePages(t *testing.T) {
	pages := [][]string{{"Header", "unique one"}, {"Header", "unique two"}, {"Header", "unique three"}}
	repeated := findRepeatedLines(pages, 3)
	if !repeated["Header"] {
		t.Fatalf("expected Header to be flagged as repeated, got %v", repeated)
	}
	if repeated["unique one"] {
		t.Fatalf("did not expect a page-unique line to be flagged")
	}
}
