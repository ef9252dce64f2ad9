// Package plaintext implements the extraction frontend leaf for raw
// text and markdown-adjacent sources. It splits on blank lines so
// paragraph boundaries survive as separate blocks instead of being
// flattened into one giant text block ahead of chunking.
package plaintext

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// arabicFallbackEncodings are tried, in order, when a plaintext upload
// is not valid UTF-8 — the common legacy encodings Arabic documents
// arrive in from Windows and older ISO-8859 toolchains.
var arabicFallbackEncodings = []encoding.Encoding{
	charmap.Windows1256,
	charmap.ISO8859_6,
}

func decodeToUTF8(data []byte, filename string) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}
	for _, enc := range arabicFallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err == nil && utf8.Valid(decoded) {
			return strings.TrimPrefix(string(decoded), "\uFEFF"), nil
		}
	}
	// Last resort: replace invalid sequences rather than fail outright.
	return strings.TrimPrefix(string(bytes.ToValidUTF8(data, []byte("�"))), "\uFEFF"), nil
}

func (e *Extractor) Extract(_ context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	data, err := io.ReadAll(raw)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	text, err := decodeToUTF8(data, rec.Filename)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "plaintext extract", err)
	}

	var blocks []ports.Block
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	var para strings.Builder
	flush := func() {
		text := strings.TrimSpace(para.String())
		if text != "" {
			blocks = append(blocks, ports.Block{Text: text, ContentType: domain.ContentText})
		}
		para.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if para.Len() > 0 {
			para.WriteByte('\n')
		}
		para.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan source document: %w", err)
	}
	flush()

	return blocks, nil
}
