// Package html implements the HTML extraction frontend leaf on
// golang.org/x/net/html, chosen for its lenient parser (it accepts
// malformed markup the way real crawled pages arrive) over the
// standard library's strict encoding/xml.
package html

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

var droppedSubtrees = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Nav:    true,
	atom.Footer: true,
	atom.Head:   true,
}

var headingLevels = map[atom.Atom]string{
	atom.H1: "1", atom.H2: "2", atom.H3: "3",
	atom.H4: "4", atom.H5: "5", atom.H6: "6",
}

func (e *Extractor) Extract(_ context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	doc, err := html.Parse(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "html extract",
			fmt.Errorf("parse %s: %w", rec.Filename, err))
	}

	var blocks []ports.Block
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if droppedSubtrees[n.DataAtom] {
				return
			}
			if level, ok := headingLevels[n.DataAtom]; ok {
				text := strings.TrimSpace(collectText(n))
				if text != "" {
					blocks = append(blocks, ports.Block{
						Text:           text,
						ContentType:    domain.ContentHeading,
						FormatMetadata: map[string]string{"level": level},
					})
				}
				return
			}
			if n.DataAtom == atom.Table {
				blocks = append(blocks, linearizeTable(n)...)
				return
			}
			if n.DataAtom == atom.P || n.DataAtom == atom.Li {
				text := strings.TrimSpace(collectText(n))
				if text != "" {
					contentType := domain.ContentText
					if n.DataAtom == atom.Li {
						contentType = domain.ContentList
					}
					blocks = append(blocks, ports.Block{Text: text, ContentType: contentType})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return blocks, nil
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && droppedSubtrees[n.DataAtom] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func linearizeTable(table *html.Node) []ports.Block {
	var blocks []ports.Block
	rowIndex := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Tr {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
					if text := strings.TrimSpace(collectText(c)); text != "" {
						cells = append(cells, text)
					}
				}
			}
			if len(cells) > 0 {
				blocks = append(blocks, ports.Block{
					Text:           strings.Join(cells, " | "),
					ContentType:    domain.ContentTable,
					FormatMetadata: map[string]string{"row": strconv.Itoa(rowIndex)},
				})
				rowIndex++
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return blocks
}
