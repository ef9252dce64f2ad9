// Package httpadapter exposes the service's procedures over a plain
// net/http.ServeMux.
package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// ragMetrics is the subset of metrics.HTTPServerMetrics the router
// records against; kept as a small interface so router tests don't
// need a real Prometheus registry.
type ragMetrics interface {
	RecordRAGObservation(service, endpoint string, sourceCount int, duration time.Duration)
	RecordRAGModeRequest(service, endpoint, mode string)
}

type Router struct {
	ingestUC         ports.DocumentIngestor
	ingestTextsUC    ports.IngestTextsService
	queryUC          ports.QueryService
	historyUC        ports.HistoryService
	readerUC         ports.DocumentReader
	collectionInfoUC ports.CollectionInfoService

	metrics     ragMetrics
	rateLimiter *ipRateLimiter
}

// WithMetrics attaches RAG-specific Prometheus recording; optional so
// unit tests can build a Router without a live registry.
func (rt *Router) WithMetrics(m ragMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithRateLimit enables per-client-IP throttling at perMinute requests;
// optional so unit tests can build a Router without a ticking limiter.
func (rt *Router) WithRateLimit(perMinute int) *Router {
	rt.rateLimiter = newIPRateLimiter(perMinute)
	return rt
}

func NewRouter(
	ingestUC ports.DocumentIngestor,
	ingestTextsUC ports.IngestTextsService,
	queryUC ports.QueryService,
	historyUC ports.HistoryService,
	readerUC ports.DocumentReader,
	collectionInfoUC ports.CollectionInfoService,
) *Router {
	return &Router{
		ingestUC:         ingestUC,
		ingestTextsUC:    ingestTextsUC,
		queryUC:          queryUC,
		historyUC:        historyUC,
		readerUC:         readerUC,
		collectionInfoUC: collectionInfoUC,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/query", rt.query)
	mux.HandleFunc("/v1/ingest/texts", rt.ingestTexts)
	mux.HandleFunc("/v1/ingest/file", rt.ingestFile)
	mux.HandleFunc("/v1/documents/", rt.documentStatus)
	mux.HandleFunc("/v1/history/", rt.history)
	mux.HandleFunc("/v1/collections/", rt.collectionInfo)

	var handler http.Handler = mux
	if rt.rateLimiter != nil {
		handler = rateLimitMiddleware(rt.rateLimiter, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(corsMiddleware(handler)))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	var req struct {
		Text      string `json:"text"`
		SessionID string `json:"session_id"`
		UseRAG    *bool  `json:"use_rag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	useRAG := true
	if req.UseRAG != nil {
		useRAG = *req.UseRAG
	}

	start := time.Now()
	result, err := rt.queryUC.Query(r.Context(), req.Text, req.SessionID, useRAG)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		mode := "no_rag"
		if useRAG {
			mode = string(result.QueryType)
		}
		rt.metrics.RecordRAGModeRequest("api", "/v1/query", mode)
		rt.metrics.RecordRAGObservation("api", "/v1/query", len(result.Sources), time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) ingestTexts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	var req struct {
		Texts        []string `json:"texts"`
		SourceNames  []string `json:"source_names"`
		DocumentType string   `json:"document_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}

	format := domain.SourceFormat(req.DocumentType)
	if format == "" {
		format = domain.FormatText
	}

	result, err := rt.ingestTextsUC.IngestTexts(r.Context(), req.Texts, req.SourceNames, format)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ingestFile implements ingest_file: synchronous accept, hands off to
// the worker process by way of the message queue. custom_metadata is
// accepted but not yet persisted onto DocumentRecord, which carries no
// arbitrary-metadata column; image_mode is likewise accepted on the
// multipart form but the current async handoff has no channel from the
// HTTP request into the worker's per-file extraction context, so every
// upload uses the frontend's default auto mode until that gap is closed.
func (rt *Router) ingestFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	rec, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, rec)
}

// documentStatus is not one of the named procedures, but is exposed
// since ingest_file responds 202 with the pending DocumentRecord without
// waiting for the worker; it lets a caller poll the same DocumentRecord
// ingest_file returned until Status reaches ready/failed.
func (rt *Router) documentStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("document id is required"))
		return
	}

	rec, err := rt.readerUC.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (rt *Router) history(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, "/v1/history/")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("session_id is required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := parsePositiveInt(raw); err == nil {
				limit = n
			}
		}
		messages, err := rt.historyUC.History(r.Context(), sessionID, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messages)
	case http.MethodDelete:
		deleted, err := rt.historyUC.ClearHistory(r.Context(), sessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
	}
}

func (rt *Router) collectionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/v1/collections/")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("collection name is required"))
		return
	}

	count, dimension, distance, err := rt.collectionInfoUC.CollectionInfo(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     count,
		"dimension": dimension,
		"distance":  distance,
	})
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
}
