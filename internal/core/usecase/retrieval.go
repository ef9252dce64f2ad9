package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// RetrievalEngine composes the embedding service, vector store and
// reranker into a two-stage dense-then-rerank pipeline: one dense
// search call (plus one lexical search in hybrid mode), then one rerank
// call when there is at least one candidate. If the reranker backend
// fails, the dense ordering truncated to topN is returned and
// RetrievalResult.OrderOnly is set.
type RetrievalEngine struct {
	embedder   ports.Embedder
	store      ports.VectorStore
	reranker   ports.Reranker
	collection string

	// RetrievalMode selects between "semantic" (default), a dense-only
	// search, and "hybrid", which additionally fuses a lexical candidate
	// set via Reciprocal Rank Fusion before reranking.
	RetrievalMode string
	FusionRRFK    int
	lexical       LexicalSearcher
}

// LexicalSearcher is the optional sparse/BM25-style candidate source
// used only when RetrievalMode is "hybrid". It operates over the same
// document collection as the dense store.
type LexicalSearcher interface {
	Search(ctx context.Context, collection, query string, k int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
}

func NewRetrievalEngine(
	embedder ports.Embedder,
	store ports.VectorStore,
	reranker ports.Reranker,
	collection string,
	retrievalMode string,
	fusionRRFK int,
	lexical LexicalSearcher,
) *RetrievalEngine {
	if retrievalMode == "" {
		retrievalMode = "semantic"
	}
	if fusionRRFK <= 0 {
		fusionRRFK = 60
	}
	return &RetrievalEngine{
		embedder:      embedder,
		store:         store,
		reranker:      reranker,
		collection:    collection,
		RetrievalMode: retrievalMode,
		FusionRRFK:    fusionRRFK,
		lexical:       lexical,
	}
}

// Retrieve embeds the query, searches the dense index for topK
// candidates (optionally fused with a lexical candidate set), then
// reranks down to topN. filter narrows both stages to points matching
// its non-empty fields.
func (e *RetrievalEngine) Retrieve(
	ctx context.Context,
	query string,
	topK, topN int,
	filter domain.SearchFilter,
) (*domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 15
	}
	if topN <= 0 || topN > topK {
		topN = topK
	}

	queryVector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrModelTransient, "embed query", err)
	}

	candidates, err := e.store.Search(ctx, e.collection, queryVector, topK, filter)
	if err != nil {
		return nil, domain.WrapError(domain.ErrStore, "search vector store", err)
	}

	if e.RetrievalMode == "hybrid" && e.lexical != nil {
		lexicalCandidates, lexErr := e.lexical.Search(ctx, e.collection, query, topK, filter)
		if lexErr == nil && len(lexicalCandidates) > 0 {
			candidates = fuseRRF(candidates, lexicalCandidates, e.FusionRRFK, topK)
		}
	}

	if len(candidates) == 0 {
		return &domain.RetrievalResult{Chunks: nil, OrderOnly: false}, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Content
	}

	indices, scores, err := e.reranker.Rerank(ctx, query, texts, topN)
	if err != nil {
		return &domain.RetrievalResult{
			Chunks:    truncate(candidates, topN),
			OrderOnly: true,
		}, nil
	}

	reranked := make([]domain.RetrievedChunk, 0, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		c := candidates[idx]
		if i < len(scores) {
			c.Score = scores[i]
		}
		reranked = append(reranked, c)
	}
	if len(reranked) == 0 {
		return &domain.RetrievalResult{Chunks: truncate(candidates, topN), OrderOnly: true}, nil
	}

	return &domain.RetrievalResult{Chunks: reranked, OrderOnly: false}, nil
}

func truncate(chunks []domain.RetrievedChunk, n int) []domain.RetrievedChunk {
	if n <= 0 || n >= len(chunks) {
		return chunks
	}
	return chunks[:n]
}

// fuseRRF merges two ranked candidate lists with Reciprocal Rank Fusion
// (score = sum of 1/(k+rank)) and returns the top `limit` by fused
// score.
func fuseRRF(dense, lexical []domain.RetrievedChunk, k, limit int) []domain.RetrievedChunk {
	type entry struct {
		chunk domain.RetrievedChunk
		score float64
	}
	byKey := make(map[string]*entry, len(dense)+len(lexical))
	order := make([]string, 0, len(dense)+len(lexical))

	add := func(list []domain.RetrievedChunk) {
		for rank, c := range list {
			key := fmt.Sprintf("%s#%d", c.SourceName, c.ChunkIndex)
			e, ok := byKey[key]
			if !ok {
				e = &entry{chunk: c}
				byKey[key] = e
				order = append(order, key)
			}
			e.score += 1.0 / float64(k+rank+1)
		}
	}
	add(dense)
	add(lexical)

	fused := make([]domain.RetrievedChunk, 0, len(order))
	for _, key := range order {
		e := byKey[key]
		e.chunk.Score = e.score
		fused = append(fused, e.chunk)
	}

	for i := 0; i < len(fused); i++ {
		for j := i + 1; j < len(fused); j++ {
			if fused[j].Score > fused[i].Score {
				fused[i], fused[j] = fused[j], fused[i]
			}
		}
	}

	if limit > 0 && limit < len(fused) {
		fused = fused[:limit]
	}
	return fused
}
