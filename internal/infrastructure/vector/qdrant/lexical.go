package qdrant

import (
	"context"
	"fmt"
	"sort"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

// LexicalSearcher implements usecase.LexicalSearcher, an optional
// hybrid-enrichment candidate source: a local BM25-style rescoring pass
// over a scrolled candidate page, rather than a Qdrant-native
// named-sparse-vector query. This keeps the dense-only search contract
// untouched, since the documents collection never needs a second,
// sparse vector configuration.
type LexicalSearcher struct {
	store    *Client
	pageSize int
}

func NewLexicalSearcher(store *Client) *LexicalSearcher {
	return &LexicalSearcher{store: store, pageSize: 512}
}

func (l *LexicalSearcher) Search(
	ctx context.Context,
	collection, query string,
	k int,
	filter domain.SearchFilter,
) ([]domain.RetrievedChunk, error) {
	rows, _, err := l.store.Scroll(ctx, collection, filter, l.pageSize, "")
	if err != nil {
		return nil, fmt.Errorf("scroll for lexical search: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	queryVec := encodeSparseQuery(query)
	scored := make([]domain.RetrievedChunk, 0, len(rows))
	for _, row := range rows {
		content := getStringPayload(row, "content")
		sourceName := getStringPayload(row, "source_name")
		docVec := encodeSparseDocument(content, sourceName)
		score := dotProduct(queryVec, docVec)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.RetrievedChunk{
			Content:      content,
			SourceName:   sourceName,
			SourceFormat: domain.SourceFormat(getStringPayload(row, "source_format")),
			ChunkIndex:   getIntPayload(row, "chunk_index"),
			Score:        score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > 0 && k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}
