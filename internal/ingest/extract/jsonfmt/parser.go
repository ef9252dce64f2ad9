// Package jsonfmt implements the two JSON extraction frontend leaves:
// json-firecrawl and json-generic. These parsers return plain texts
// rather than implementing ports.TextExtractor; the ingest frontend
// turns each text into one block of the single uploaded document, so
// the pages or elements of a payload do not become separate documents.
package jsonfmt

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

// firecrawlPage mirrors the subset of a Firecrawl crawl-result page
// this ingestion path cares about: its scraped markdown/text content
// and, when present, its source URL for naming.
type firecrawlPage struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown"`
	Content  string `json:"content"`
	Metadata struct {
		SourceURL string `json:"sourceURL"`
		URL       string `json:"url"`
	} `json:"metadata"`
}

type firecrawlPayload struct {
	Pages []firecrawlPage `json:"pages"`
}

// ParseFirecrawl expands a Firecrawl-shaped payload into one document
// text per top-level pages[i].
func ParseFirecrawl(data []byte) (texts []string, sourceNames []string, err error) {
	var payload firecrawlPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil, domain.WrapError(domain.ErrExtraction, "json-firecrawl extract", err)
	}
	if len(payload.Pages) == 0 {
		return nil, nil, domain.WrapError(domain.ErrExtraction, "json-firecrawl extract",
			fmt.Errorf("no pages found"))
	}
	texts = make([]string, 0, len(payload.Pages))
	sourceNames = make([]string, 0, len(payload.Pages))
	for i, page := range payload.Pages {
		text := page.Text
		if text == "" {
			text = page.Markdown
		}
		if text == "" {
			text = page.Content
		}
		if text == "" {
			continue
		}
		name := page.Metadata.SourceURL
		if name == "" {
			name = page.Metadata.URL
		}
		if name == "" {
			name = "page-" + strconv.Itoa(i)
		}
		texts = append(texts, text)
		sourceNames = append(sourceNames, name)
	}
	if len(texts) == 0 {
		return nil, nil, domain.WrapError(domain.ErrExtraction, "json-firecrawl extract",
			fmt.Errorf("all pages had empty content"))
	}
	return texts, sourceNames, nil
}

// genericElement accepts either a bare string array element or an
// object carrying a "text" field, covering both shapes callers
// commonly submit as "generic" JSON documents.
type genericElement struct {
	Text string `json:"text"`
}

// ParseGeneric expands a JSON array into one document per element.
func ParseGeneric(data []byte) (texts []string, sourceNames []string, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, domain.WrapError(domain.ErrExtraction, "json-generic extract", err)
	}
	texts = make([]string, 0, len(raw))
	sourceNames = make([]string, 0, len(raw))
	for i, elem := range raw {
		var text string
		if err := json.Unmarshal(elem, &text); err != nil {
			var obj genericElement
			if err := json.Unmarshal(elem, &obj); err != nil {
				return nil, nil, domain.WrapError(domain.ErrExtraction, "json-generic extract",
					fmt.Errorf("element %d: %w", i, err))
			}
			text = obj.Text
		}
		if text == "" {
			continue
		}
		texts = append(texts, text)
		sourceNames = append(sourceNames, "item-"+strconv.Itoa(i))
	}
	if len(texts) == 0 {
		return nil, nil, domain.WrapError(domain.ErrExtraction, "json-generic extract",
			fmt.Errorf("array had no usable elements"))
	}
	return texts, sourceNames, nil
}
