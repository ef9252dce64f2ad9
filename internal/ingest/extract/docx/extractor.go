// Package docx implements the DOCX extraction frontend leaf by walking
// the OOXML document tree directly. xuri/excelize/v2 only understands
// the spreadsheet OOXML dialect, so word/document.xml is read with
// archive/zip + encoding/xml instead — the same zip-then-XML shape
// excelize itself uses internally for xlsx, applied here to the
// sibling word format.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// node is a generic OOXML element: local name plus attributes,
// character data and children, decoded without regard to namespace
// prefixes.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n *node) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func (n *node) children(local string) []node {
	var out []node
	for _, c := range n.Nodes {
		if c.XMLName.Local == local {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) firstChild(local string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

var headingStyleLevel = map[string]string{
	"Heading1": "1", "heading1": "1", "Title": "1",
	"Heading2": "2", "heading2": "2",
	"Heading3": "3", "heading3": "3",
	"Heading4": "4", "heading4": "4",
	"Heading5": "5", "heading5": "5",
	"Heading6": "6", "heading6": "6",
}

func (e *Extractor) Extract(_ context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	data, err := io.ReadAll(raw)
	if err != nil {
		return nil, fmt.Errorf("read docx bytes: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "docx extract",
			fmt.Errorf("open %s: %w", rec.Filename, err))
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return nil, domain.WrapError(domain.ErrExtraction, "docx extract", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, domain.WrapError(domain.ErrExtraction, "docx extract", err)
			}
			break
		}
	}
	if docXML == nil {
		return nil, domain.WrapError(domain.ErrExtraction, "docx extract",
			fmt.Errorf("%s: missing word/document.xml", rec.Filename))
	}

	var doc node
	if err := xml.Unmarshal(docXML, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "docx extract",
			fmt.Errorf("parse %s: %w", rec.Filename, err))
	}

	body := doc.firstChild("body")
	if body == nil {
		return nil, nil
	}

	var blocks []ports.Block
	for _, child := range body.Nodes {
		switch child.XMLName.Local {
		case "p":
			text := strings.TrimSpace(paragraphText(&child))
			if text == "" {
				continue
			}
			if level, ok := paragraphHeadingLevel(&child); ok {
				blocks = append(blocks, ports.Block{
					Text:           text,
					ContentType:    domain.ContentHeading,
					FormatMetadata: map[string]string{"level": level},
				})
				continue
			}
			blocks = append(blocks, ports.Block{Text: text, ContentType: domain.ContentText})
		case "tbl":
			if text := tableText(&child); text != "" {
				blocks = append(blocks, ports.Block{Text: text, ContentType: domain.ContentTable})
			}
		}
	}
	return blocks, nil
}

func paragraphHeadingLevel(p *node) (string, bool) {
	pPr := p.firstChild("pPr")
	if pPr == nil {
		return "", false
	}
	style := pPr.firstChild("pStyle")
	if style == nil {
		return "", false
	}
	level, ok := headingStyleLevel[style.attr("val")]
	return level, ok
}

func paragraphText(p *node) string {
	var sb strings.Builder
	for _, run := range p.children("r") {
		for _, t := range run.children("t") {
			sb.WriteString(t.Text)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func tableText(tbl *node) string {
	var rows []string
	for _, tr := range tbl.children("tr") {
		var cells []string
		for _, tc := range tr.children("tc") {
			var cellText strings.Builder
			for _, p := range tc.children("p") {
				if t := strings.TrimSpace(paragraphText(&p)); t != "" {
					cellText.WriteString(t)
					cellText.WriteString(" ")
				}
			}
			if c := strings.TrimSpace(cellText.String()); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	return strings.Join(rows, "\n")
}
