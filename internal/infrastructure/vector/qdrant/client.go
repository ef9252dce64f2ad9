// Package qdrant implements the vector store capability against the
// Qdrant REST API. The core treats the store as a black box behind
// ports.VectorStore; this client is one interchangeable implementation
// of that contract.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// Client implements ports.VectorStore. One Client instance is shared
// across every collection the process uses (documents,
// conversation_memory); the collection name is a parameter on every
// call.
type Client struct {
	baseURL    string
	httpClient *http.Client

	ensureMu sync.Mutex
	ensured  map[string]int // collection -> vector size last ensured
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		ensured:    make(map[string]int),
	}
}

func (c *Client) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	c.ensureMu.Lock()
	if size, ok := c.ensured[collection]; ok && size == dimension {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		c.markEnsured(collection, dimension)
		return nil
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if s := strings.TrimSpace(string(msg)); s != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, s)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}
	c.markEnsured(collection, dimension)
	return nil
}

func (c *Client) markEnsured(collection string, dimension int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensured[collection] = dimension
}

func (c *Client) Upsert(ctx context.Context, collection string, points []ports.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	type wirePoint struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}
	wire := make([]wirePoint, len(points))
	for i, p := range points {
		wire[i] = wirePoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}

	body, err := json.Marshal(map[string]any{"points": wire})
	if err != nil {
		return fmt.Errorf("marshal upsert body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant upsert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant upsert status: %s", resp.Status)
	}
	return nil
}

func (c *Client) Search(
	ctx context.Context,
	collection string,
	queryVector []float32,
	limit int,
	filter domain.SearchFilter,
) ([]domain.RetrievedChunk, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if qf := buildFilter(filter); qf != nil {
		reqBody["filter"] = qf
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant search status: %s", resp.Status)
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]domain.RetrievedChunk, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, payloadToChunk(r.Payload, r.Score))
	}
	return out, nil
}

// Scroll paginates through a collection's points without a query
// vector, used by conversation history reads and dedup sweeps.
func (c *Client) Scroll(
	ctx context.Context,
	collection string,
	filter domain.SearchFilter,
	limit int,
	offset string,
) ([]map[string]any, string, error) {
	reqBody := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if qf := buildFilter(filter); qf != nil {
		reqBody["filter"] = qf
	}
	if offset != "" {
		reqBody["offset"] = offset
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("marshal scroll body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/scroll", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create scroll request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("qdrant scroll request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("qdrant scroll status: %s", resp.Status)
	}

	var scrollResp struct {
		Result struct {
			Points []struct {
				ID      any            `json:"id"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
			NextPageOffset any `json:"next_page_offset"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&scrollResp); err != nil {
		return nil, "", fmt.Errorf("decode scroll response: %w", err)
	}

	points := make([]map[string]any, 0, len(scrollResp.Result.Points))
	for _, p := range scrollResp.Result.Points {
		row := make(map[string]any, len(p.Payload)+1)
		for k, v := range p.Payload {
			row[k] = v
		}
		row["id"] = p.ID
		points = append(points, row)
	}

	nextOffset := ""
	if scrollResp.Result.NextPageOffset != nil {
		nextOffset = fmt.Sprintf("%v", scrollResp.Result.NextPageOffset)
	}
	return points, nextOffset, nil
}

func (c *Client) Delete(ctx context.Context, collection string, filter domain.SearchFilter) error {
	qf := buildFilter(filter)
	if qf == nil {
		return fmt.Errorf("qdrant delete: refusing to delete an entire collection without a filter, use Drop")
	}

	body, err := json.Marshal(map[string]any{"filter": qf})
	if err != nil {
		return fmt.Errorf("marshal delete body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/delete?wait=true", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant delete request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant delete status: %s", resp.Status)
	}
	return nil
}

func (c *Client) Drop(ctx context.Context, collection string) error {
	url := fmt.Sprintf("%s/collections/%s", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create drop request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant drop request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("qdrant drop status: %s", resp.Status)
	}

	c.ensureMu.Lock()
	delete(c.ensured, collection)
	c.ensureMu.Unlock()
	return nil
}

func (c *Client) Count(ctx context.Context, collection string, filter domain.SearchFilter) (int, error) {
	reqBody := map[string]any{"exact": true}
	if qf := buildFilter(filter); qf != nil {
		reqBody["filter"] = qf
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("marshal count body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/count", c.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create count request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant count request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("qdrant count status: %s", resp.Status)
	}

	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return countResp.Result.Count, nil
}

// buildFilter translates a domain.SearchFilter's non-empty fields into
// a Qdrant "must" clause list, ANDed together. Returns nil when the
// filter is empty (no restriction).
func buildFilter(filter domain.SearchFilter) map[string]any {
	var must []map[string]any
	if filter.SourceName != "" {
		must = append(must, matchClause("source_name", filter.SourceName))
	}
	if filter.SourceFormat != "" {
		must = append(must, matchClause("source_format", string(filter.SourceFormat)))
	}
	if filter.SessionID != "" {
		must = append(must, matchClause("session_id", filter.SessionID))
	}
	if len(must) == 0 {
		return nil
	}
	return map[string]any{"must": must}
}

func matchClause(key, value string) map[string]any {
	return map[string]any{
		"key":   key,
		"match": map[string]any{"value": value},
	}
}

func payloadToChunk(payload map[string]any, score float64) domain.RetrievedChunk {
	formatMetadata := map[string]string{}
	if raw, ok := payload["format_metadata"].(map[string]any); ok {
		for k, v := range raw {
			formatMetadata[k] = fmt.Sprintf("%v", v)
		}
	}
	return domain.RetrievedChunk{
		Content:        getStringPayload(payload, "content"),
		SourceName:     getStringPayload(payload, "source_name"),
		SourceFormat:   domain.SourceFormat(getStringPayload(payload, "source_format")),
		ChunkIndex:     getIntPayload(payload, "chunk_index"),
		Score:          score,
		FormatMetadata: formatMetadata,
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
