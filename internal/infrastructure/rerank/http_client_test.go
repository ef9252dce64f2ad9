package rerank

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientRerankParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"index":1,"relevance_score":0.9},{"index":0,"relevance_score":0.4}]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	indices, scores, err := client.Rerank(context.Background(), "q", []string{"a", "b"}, 2)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if len(indices) != 2 || indices[0] != 1 || scores[0] != 0.9 {
		t.Fatalf("unexpected result: indices=%v scores=%v", indices, scores)
	}
}

func TestHTTPClientRerankIncludesBodyOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	_, _, err := client.Rerank(context.Background(), "q", []string{"a"}, 1)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestHTTPClientRerankEmptyCandidates(t *testing.T) {
	client := NewHTTPClient("http://unused")
	indices, scores, err := client.Rerank(context.Background(), "q", nil, 5)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if indices != nil || scores != nil {
		t.Fatalf("expected nil results for empty candidates")
	}
}
