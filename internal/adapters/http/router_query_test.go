package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

type fakeQueryService struct {
	result *domain.QueryResult
	err    error
}

func (f fakeQueryService) Query(context.Context, string, string, bool) (*domain.QueryResult, error) {
	return f.result, f.err
}

type fakeHistoryService struct {
	messages []domain.Message
	deleted  int
	err      error
}

func (f fakeHistoryService) History(context.Context, string, int) ([]domain.Message, error) {
	return f.messages, f.err
}

func (f fakeHistoryService) ClearHistory(context.Context, string) (int, error) {
	return f.deleted, f.err
}

type fakeCollectionInfoService struct {
	count, dimension int
	distance         string
	err              error
}

func (f fakeCollectionInfoService) CollectionInfo(context.Context, string) (int, int, string, error) {
	return f.count, f.dimension, f.distance, f.err
}

func newTestRouter(ingest fakeDocumentIngestor, ingestTexts fakeIngestTextsService, query fakeQueryService, history fakeHistoryService, reader fakeDocumentReader, collectionInfo fakeCollectionInfoService) http.Handler {
	return NewRouter(ingest, ingestTexts, query, history, reader, collectionInfo).Handler()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(fakeDocumentIngestor{}, fakeIngestTextsService{}, fakeQueryService{}, fakeHistoryService{}, fakeDocumentReader{}, fakeCollectionInfoService{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestQueryReturnsAnswer(t *testing.T) {
	handler := newTestRouter(fakeDocumentIngestor{}, fakeIngestTextsService{}, fakeQueryService{
		result: &domain.QueryResult{Answer: "أهلاً", QueryType: domain.QuerySimple, SessionID: "s1"},
	}, fakeHistoryService{}, fakeDocumentReader{}, fakeCollectionInfoService{})

	payload, _ := json.Marshal(map[string]any{"text": "مرحباً", "session_id": "s1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var got domain.QueryResult
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Answer != "أهلاً" {
		t.Fatalf("unexpected answer: %+v", got)
	}
}

func TestQueryRejectsEmptyText(t *testing.T) {
	handler := newTestRouter(fakeDocumentIngestor{}, fakeIngestTextsService{}, fakeQueryService{}, fakeHistoryService{}, fakeDocumentReader{}, fakeCollectionInfoService{})

	payload, _ := json.Marshal(map[string]any{"text": "   "})
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryMapsValidationErrorTo400(t *testing.T) {
	handler := newTestRouter(fakeDocumentIngestor{}, fakeIngestTextsService{}, fakeQueryService{
		err: domain.WrapError(domain.ErrValidation, "query", errors.New("bad session id")),
	}, fakeHistoryService{}, fakeDocumentReader{}, fakeCollectionInfoService{})

	payload, _ := json.Marshal(map[string]any{"text": "سؤال"})
	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewReader(payload))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestHistoryReturnsMessagesAndClearReturnsDeletedCount(t *testing.T) {
	handler := newTestRouter(fakeDocumentIngestor{}, fakeIngestTextsService{}, fakeQueryService{}, fakeHistoryService{
		messages: []domain.Message{{SessionID: "s1", Role: domain.RoleUser, Content: "hi"}},
		deleted:  3,
	}, fakeDocumentReader{}, fakeCollectionInfoService{})

	req := httptest.NewRequest(http.MethodGet, "/v1/history/s1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var msgs []domain.Message
	if err := json.NewDecoder(res.Body).Decode(&msgs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hi" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/history/s1", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]int
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["deleted"] != 3 {
		t.Fatalf("expected deleted=3, got %+v", body)
	}
}

func TestCollectionInfoReturnsCountDimensionAndDistance(t *testing.T) {
	handler := newTestRouter(fakeDocumentIngestor{}, fakeIngestTextsService{}, fakeQueryService{}, fakeHistoryService{}, fakeDocumentReader{}, fakeCollectionInfoService{
		count: 42, dimension: 768, distance: "cosine",
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/collections/arabic_documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["count"] != float64(42) || body["dimension"] != float64(768) || body["distance"] != "cosine" {
		t.Fatalf("unexpected collection info: %+v", body)
	}
}

func TestCollectionInfoMapsNotFoundTo404(t *testing.T) {
	handler := newTestRouter(fakeDocumentIngestor{}, fakeIngestTextsService{}, fakeQueryService{}, fakeHistoryService{}, fakeDocumentReader{}, fakeCollectionInfoService{
		err: domain.WrapError(domain.ErrCollectionNotFound, "collection info", errors.New("no such collection")),
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/collections/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
