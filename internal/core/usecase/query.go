package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
	"github.com/kirillkom/arabic-rag-core/internal/rag/normalize"
	"github.com/kirillkom/arabic-rag-core/internal/rag/router"
)

const (
	systemPrompt      = "أنت مساعد ذكي يجيب بدقة واختصار بناءً على السياق المتوفر."
	greetingReply     = "أهلاً بك! كيف يمكنني مساعدتك اليوم؟"
	emptyQueryReply   = "الرجاء كتابة سؤال."
	defaultHistoryLen = 5
)

// QueryUseCase implements ports.QueryService: normalize, load history,
// classify, dispatch to a handler, then append the turn to memory.
// Steps run in strict program order; the memory append is best-effort
// and never fails the request.
type QueryUseCase struct {
	router    *router.Router
	memory    ports.ConversationStore
	retrieval *RetrievalEngine
	generator ports.AnswerGenerator

	historyLimit int
	topK, topN   int

	logger *slog.Logger
}

func NewQueryUseCase(
	rtr *router.Router,
	memory ports.ConversationStore,
	retrieval *RetrievalEngine,
	generator ports.AnswerGenerator,
	historyLimit, topK, topN int,
	logger *slog.Logger,
) *QueryUseCase {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLen
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUseCase{
		router:       rtr,
		memory:       memory,
		retrieval:    retrieval,
		generator:    generator,
		historyLimit: historyLimit,
		topK:         topK,
		topN:         topN,
		logger:       logger,
	}
}

func (uc *QueryUseCase) Query(ctx context.Context, text, sessionID string, useRAG bool) (*domain.QueryResult, error) {
	start := time.Now()

	// Step 1: normalize; empty input short-circuits with a canned reply.
	n := normalize.Normalize(text)
	if n == "" {
		return &domain.QueryResult{
			Answer:           emptyQueryReply,
			QueryType:        domain.QuerySimple,
			SessionID:        sessionID,
			ProcessingTimeMS: elapsedMS(start),
		}, nil
	}

	// Step 2: load recent history.
	history, err := uc.memory.History(ctx, sessionID, uc.historyLimit)
	if err != nil {
		uc.logger.Warn("history_load_failed", "session_id", sessionID, "error", err)
		history = nil
	}

	// Step 3: classify.
	queryType := uc.router.Classify(n)
	if queryType == domain.QueryRAG && !useRAG {
		queryType = domain.QuerySimple
	}

	// Step 4: dispatch.
	var (
		answer  string
		sources []domain.RetrievedChunk
	)
	switch queryType {
	case domain.QueryGreeting:
		answer = greetingReply
	case domain.QueryCalculator:
		answer, err = uc.handleCalculator(n)
		if err != nil {
			answer = "تعذر حساب هذه العملية."
		}
	case domain.QuerySimple:
		answer, err = uc.generator.Generate(ctx, buildMessages(systemPrompt, history, "", n))
		if err != nil {
			uc.appendUserTurn(ctx, sessionID, text)
			return nil, domain.WrapError(domain.ErrModelTransient, "generate simple answer", err)
		}
	default: // domain.QueryRAG
		result, retrErr := uc.retrieval.Retrieve(ctx, n, uc.topK, uc.topN, domain.SearchFilter{})
		if retrErr != nil {
			uc.appendUserTurn(ctx, sessionID, text)
			return nil, retrErr
		}
		sources = result.Chunks
		contextText := formatContext(sources)
		answer, err = uc.generator.Generate(ctx, buildMessages(systemPrompt, history, contextText, n))
		if err != nil {
			uc.appendUserTurn(ctx, sessionID, text)
			return nil, domain.WrapError(domain.ErrModelTransient, "generate rag answer", err)
		}
	}

	// Step 5: append the original unnormalized text and the answer.
	// Best-effort: failures are logged, never surfaced to the caller.
	uc.appendUserTurn(ctx, sessionID, text)
	if appendErr := uc.memory.Append(ctx, sessionID, domain.RoleAssistant, answer); appendErr != nil {
		uc.logger.Warn("memory_append_failed", "session_id", sessionID, "role", "assistant", "error", appendErr)
	}

	return &domain.QueryResult{
		Answer:           answer,
		Sources:          sources,
		QueryType:        queryType,
		SessionID:        sessionID,
		ProcessingTimeMS: elapsedMS(start),
	}, nil
}

// appendUserTurn commits the user's turn to conversation memory. Called
// both on the success path and before every early return so a query
// failure never loses the user's message.
func (uc *QueryUseCase) appendUserTurn(ctx context.Context, sessionID, text string) {
	if err := uc.memory.Append(ctx, sessionID, domain.RoleUser, text); err != nil {
		uc.logger.Warn("memory_append_failed", "session_id", sessionID, "role", "user", "error", err)
	}
}

func (uc *QueryUseCase) handleCalculator(n string) (string, error) {
	expr := extractArithmeticExpr(n)
	if expr == "" {
		return "", fmt.Errorf("no arithmetic expression found in %q", n)
	}
	v, err := evalArithmetic(expr)
	if err != nil {
		return "", err
	}
	return formatResult(v), nil
}

func buildMessages(system string, history []domain.Message, context, userText string) []domain.GenMessage {
	messages := make([]domain.GenMessage, 0, len(history)+2)
	messages = append(messages, domain.GenMessage{Role: "system", Content: system})
	for _, h := range history {
		messages = append(messages, domain.GenMessage{Role: string(h.Role), Content: h.Content})
	}
	if context != "" {
		messages = append(messages, domain.GenMessage{Role: "system", Content: context})
	}
	messages = append(messages, domain.GenMessage{Role: "user", Content: userText})
	return messages
}

// formatContext concatenates retrieved chunks with explicit separators
// and source markers for the generator's context message.
func formatContext(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("السياق المسترجع:\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "--- [%d] %s ---\n%s\n", i+1, c.SourceName, c.Content)
	}
	return b.String()
}

func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
