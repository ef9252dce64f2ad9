// Package pdf implements the PDF extraction frontend leaf on top of
// ledongthuc/pdf. Per-page text is extracted and cleaned of repeated
// headers/footers and page numbers before being emitted as one block
// per page.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

var pageNumberLine = regexp.MustCompile(`^\s*\d{1,4}\s*$`)

func (e *Extractor) Extract(_ context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	data, err := io.ReadAll(raw)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "pdf extract",
			fmt.Errorf("open %s: %w", rec.Filename, err))
	}

	totalPages := reader.NumPage()
	pageLines := make([][]string, 0, totalPages)
	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pageLines = append(pageLines, nil)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, domain.WrapError(domain.ErrExtraction, "pdf extract",
				fmt.Errorf("page %d of %s: %w", i, rec.Filename, err))
		}
		pageLines = append(pageLines, splitNonEmptyLines(text))
	}

	repeated := findRepeatedLines(pageLines, totalPages)

	var blocks []ports.Block
	for i, lines := range pageLines {
		cleaned := make([]string, 0, len(lines))
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || pageNumberLine.MatchString(trimmed) {
				continue
			}
			if repeated[trimmed] {
				continue
			}
			cleaned = append(cleaned, trimmed)
		}
		text := collapseWhitespace(strings.Join(cleaned, "\n"))
		if text == "" {
			continue
		}
		blocks = append(blocks, ports.Block{
			Text:           text,
			ContentType:    domain.ContentText,
			FormatMetadata: map[string]string{"page": strconv.Itoa(i + 1)},
		})
	}
	return blocks, nil
}

func splitNonEmptyLines(text string) []string {
	rawLines := strings.Split(text, "\n")
	out := make([]string, 0, len(rawLines))
	for _, l := range rawLines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// findRepeatedLines flags any line appearing verbatim on at least 3
// pages as a header/footer artifact.
func findRepeatedLines(pageLines [][]string, totalPages int) map[string]bool {
	if totalPages < 3 {
		return nil
	}
	counts := make(map[string]int)
	for _, lines := range pageLines {
		seen := make(map[string]bool, len(lines))
		for _, l := range lines {
			trimmed := strings.TrimSpace(l)
			if trimmed == "" || seen[trimmed] {
				continue
			}
			seen[trimmed] = true
			counts[trimmed]++
		}
	}
	repeated := make(map[string]bool)
	for line, count := range counts {
		if count >= 3 {
			repeated[line] = true
		}
	}
	return repeated
}

var whitespaceRun = regexp.MustCompile(`[ \t]{2,}`)

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}
