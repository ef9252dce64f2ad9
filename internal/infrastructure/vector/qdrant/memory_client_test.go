package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

func TestConversationMemoryAppendAndHistory(t *testing.T) {
	var stored []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/memory":
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/memory/points":
			var body struct {
				Points []struct {
					ID      string         `json:"id"`
					Payload map[string]any `json:"payload"`
				} `json:"points"`
			}
			decodeMemBody(t, r, &body)
			for _, p := range body.Points {
				stored = append(stored, p.Payload)
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/scroll":
			writeScrollRows(t, w, stored)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	store := New(server.URL)
	mem := NewConversationMemory(store, "memory", 4)

	if err := mem.Append(context.Background(), "sess-1", domain.RoleUser, "hello"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := mem.Append(context.Background(), "sess-1", domain.RoleAssistant, "hi there"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	history, err := mem.History(context.Background(), "sess-1", 10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "hello" || history[1].Content != "hi there" {
		t.Fatalf("expected chronological order, got %+v", history)
	}
}

func TestConversationMemoryHistoryTruncatesToLimit(t *testing.T) {
	rows := []map[string]any{
		{"session_id": "s1", "role": "user", "content": "a", "timestamp": "2026-01-01T00:00:00Z"},
		{"session_id": "s1", "role": "assistant", "content": "b", "timestamp": "2026-01-01T00:00:01Z"},
		{"session_id": "s1", "role": "user", "content": "c", "timestamp": "2026-01-01T00:00:02Z"},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/scroll" {
			writeScrollRows(t, w, rows)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	mem := NewConversationMemory(New(server.URL), "memory", 4)
	history, err := mem.History(context.Background(), "s1", 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 || history[0].Content != "b" || history[1].Content != "c" {
		t.Fatalf("expected most recent 2 messages, got %+v", history)
	}
}

func TestConversationMemoryClearDeletesWhenPresent(t *testing.T) {
	var deleteCalled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/count":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":{"count":3}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/delete":
			deleteCalled = true
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	mem := NewConversationMemory(New(server.URL), "memory", 4)
	n, err := mem.Clear(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
	if !deleteCalled {
		t.Fatalf("expected delete request to be issued")
	}
}

func TestConversationMemoryClearSkipsDeleteWhenEmpty(t *testing.T) {
	var deleteCalled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/count":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":{"count":0}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/delete":
			deleteCalled = true
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	mem := NewConversationMemory(New(server.URL), "memory", 4)
	n, err := mem.Clear(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if n != 0 || deleteCalled {
		t.Fatalf("expected no-op clear, got n=%d deleteCalled=%v", n, deleteCalled)
	}
}

func TestConversationMemorySweepDeletesStaleSessionsOnly(t *testing.T) {
	rows := []map[string]any{
		{"session_id": "stale", "role": "user", "content": "old", "timestamp": "2020-01-01T00:00:00Z"},
		{"session_id": "fresh", "role": "user", "content": "new", "timestamp": time.Now().UTC().Format(time.RFC3339Nano)},
	}
	deletedSessions := map[string]bool{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/scroll":
			writeScrollRows(t, w, rows)
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/count":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":{"count":1}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/collections/memory/points/delete":
			var body struct {
				Filter struct {
					Must []struct {
						Key   string `json:"key"`
						Match struct {
							Value string `json:"value"`
						} `json:"match"`
					} `json:"must"`
				} `json:"filter"`
			}
			decodeMemBody(t, r, &body)
			for _, m := range body.Filter.Must {
				if m.Key == "session_id" {
					deletedSessions[m.Match.Value] = true
				}
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	mem := NewConversationMemory(New(server.URL), "memory", 4)
	deleted, err := mem.Sweep(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted message, got %d", deleted)
	}
	if !deletedSessions["stale"] {
		t.Fatalf("expected stale session to be swept")
	}
	if deletedSessions["fresh"] {
		t.Fatalf("did not expect fresh session to be swept")
	}
}

func decodeMemBody(t *testing.T, r *http.Request, out any) {
	t.Helper()
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
}

func writeScrollRows(t *testing.T, w http.ResponseWriter, rows []map[string]any) {
	t.Helper()
	type point struct {
		ID      string         `json:"id"`
		Payload map[string]any `json:"payload"`
	}
	points := make([]point, 0, len(rows))
	for i, row := range rows {
		points = append(points, point{ID: string(rune('a' + i)), Payload: row})
	}
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"result": map[string]any{
			"points":           points,
			"next_page_offset": nil,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode scroll response: %v", err)
	}
}
