package usecase

import (
	"context"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// HistoryUseCase implements ports.HistoryService: thin pass-throughs
// onto the conversation memory capability.
type HistoryUseCase struct {
	memory ports.ConversationStore
}

func NewHistoryUseCase(memory ports.ConversationStore) *HistoryUseCase {
	return &HistoryUseCase{memory: memory}
}

func (uc *HistoryUseCase) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLen
	}
	return uc.memory.History(ctx, sessionID, limit)
}

func (uc *HistoryUseCase) ClearHistory(ctx context.Context, sessionID string) (int, error) {
	return uc.memory.Clear(ctx, sessionID)
}
