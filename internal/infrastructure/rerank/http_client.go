// Package rerank implements the reranker capability: an HTTP
// cross-encoder client plus a local heuristic fallback for when no
// cross-encoder backend is configured.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPClient calls an external cross-encoder reranking service that
// accepts a query and a list of candidate texts and returns relevance
// scores, implementing ports.Reranker.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) Rerank(ctx context.Context, query string, candidates []string, topN int) ([]int, []float64, error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	reqBody := map[string]any{
		"query":     query,
		"documents": candidates,
		"top_n":     topN,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("reranker request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, nil, fmt.Errorf("reranker status: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var response struct {
		Results []struct {
			Index int     `json:"index"`
			Score float64 `json:"relevance_score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, nil, fmt.Errorf("decode rerank response: %w", err)
	}

	indices := make([]int, 0, len(response.Results))
	scores := make([]float64, 0, len(response.Results))
	for _, r := range response.Results {
		indices = append(indices, r.Index)
		scores = append(scores, r.Score)
	}
	if topN > 0 && topN < len(indices) {
		indices = indices[:topN]
		scores = scores[:topN]
	}
	return indices, scores, nil
}
