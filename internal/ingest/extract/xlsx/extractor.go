// Package xlsx implements native XLSX ingestion on top of
// xuri/excelize/v2. It is the only extractor that uses excelize; the
// docx extractor reads its OOXML with archive/zip and encoding/xml.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	f, err := excelize.OpenReader(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "xlsx extract",
			fmt.Errorf("open %s: %w", rec.Filename, err))
	}
	defer f.Close()

	var blocks []ports.Block
	for _, sheet := range f.GetSheetList() {
		blocks = append(blocks, ports.Block{
			Text:           sheet,
			ContentType:    domain.ContentHeading,
			FormatMetadata: map[string]string{"sheet": sheet},
		})

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, domain.WrapError(domain.ErrExtraction, "xlsx extract",
				fmt.Errorf("read sheet %s of %s: %w", sheet, rec.Filename, err))
		}
		for i, row := range rows {
			if len(row) == 0 {
				continue
			}
			text := joinNonEmpty(row)
			if text == "" {
				continue
			}
			blocks = append(blocks, ports.Block{
				Text:           text,
				ContentType:    domain.ContentTable,
				FormatMetadata: map[string]string{"sheet": sheet, "row": strconv.Itoa(i)},
			})
		}
	}
	return blocks, nil
}

func joinNonEmpty(cells []string) string {
	out := ""
	for _, c := range cells {
		if c == "" {
			continue
		}
		if out != "" {
			out += " | "
		}
		out += c
	}
	return out
}
