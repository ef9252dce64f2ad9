// Package markdown implements the markdown extraction frontend leaf as
// a minimal line-oriented tokenizer, built on the standard library
// alone (see DESIGN.md for the justification).
package markdown

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, _ *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	scanner := bufio.NewScanner(raw)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []ports.Block
	var paragraph []string
	var list []string
	inCode := false
	var codeLang string
	var codeLines []string

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		blocks = append(blocks, ports.Block{Text: strings.Join(paragraph, " "), ContentType: domain.ContentText})
		paragraph = nil
	}
	flushList := func() {
		if len(list) == 0 {
			return
		}
		blocks = append(blocks, ports.Block{Text: strings.Join(list, "\n"), ContentType: domain.ContentList})
		list = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if inCode {
			if strings.HasPrefix(trimmed, "```") {
				blocks = append(blocks, ports.Block{
					Text:           strings.Join(codeLines, "\n"),
					ContentType:    domain.ContentCode,
					FormatMetadata: map[string]string{"language": codeLang},
				})
				inCode = false
				codeLines = nil
				codeLang = ""
				continue
			}
			codeLines = append(codeLines, line)
			continue
		}

		if strings.HasPrefix(trimmed, "```") {
			flushParagraph()
			flushList()
			inCode = true
			codeLang = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			continue
		}

		if level, text, ok := parseHeading(trimmed); ok {
			flushParagraph()
			flushList()
			if text != "" {
				blocks = append(blocks, ports.Block{
					Text:           text,
					ContentType:    domain.ContentHeading,
					FormatMetadata: map[string]string{"level": strconv.Itoa(level)},
				})
			}
			continue
		}

		if text, ok := parseListItem(trimmed); ok {
			flushParagraph()
			list = append(list, text)
			continue
		}

		if trimmed == "" {
			flushParagraph()
			flushList()
			continue
		}

		flushList()
		paragraph = append(paragraph, trimmed)
	}
	flushParagraph()
	flushList()

	if err := scanner.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "markdown extract", err)
	}
	return blocks, nil
}

func parseHeading(line string) (level int, text string, ok bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	if i == 0 || i > 6 || i >= len(line) || line[i] != ' ' {
		return 0, "", false
	}
	return i, strings.TrimSpace(line[i:]), true
}

func parseListItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	if len(line) > 2 && (line[0] >= '0' && line[0] <= '9') {
		if idx := strings.Index(line, ". "); idx > 0 && idx <= 3 {
			return strings.TrimSpace(line[idx+2:]), true
		}
	}
	return "", false
}
