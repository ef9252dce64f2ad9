package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

type historyMemoryFake struct {
	hist       []domain.Message
	histErr    error
	clearCount int
	clearErr   error
	lastLimit  int
}

func (f *historyMemoryFake) Append(context.Context, string, domain.MessageRole, string) error {
	return nil
}
func (f *historyMemoryFake) History(_ context.Context, _ string, limit int) ([]domain.Message, error) {
	f.lastLimit = limit
	if f.histErr != nil {
		return nil, f.histErr
	}
	return f.hist, nil
}
func (f *historyMemoryFake) Clear(context.Context, string) (int, error) {
	return f.clearCount, f.clearErr
}
func (f *historyMemoryFake) Sweep(context.Context, time.Duration) (int, error) { return 0, nil }

func TestHistoryAppliesDefaultLimitWhenNonPositive(t *testing.T) {
	mem := &historyMemoryFake{hist: []domain.Message{{Content: "hi"}}}
	uc := NewHistoryUseCase(mem)

	if _, err := uc.History(context.Background(), "s1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.lastLimit != defaultHistoryLen {
		t.Errorf("expected default limit %d, got %d", defaultHistoryLen, mem.lastLimit)
	}

	if _, err := uc.History(context.Background(), "s1", -3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.lastLimit != defaultHistoryLen {
		t.Errorf("expected default limit for negative input, got %d", mem.lastLimit)
	}
}

func TestHistoryPassesThroughExplicitLimit(t *testing.T) {
	mem := &historyMemoryFake{}
	uc := NewHistoryUseCase(mem)

	if _, err := uc.History(context.Background(), "s1", 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mem.lastLimit != 25 {
		t.Errorf("expected explicit limit 25, got %d", mem.lastLimit)
	}
}

func TestHistoryPropagatesStoreError(t *testing.T) {
	mem := &historyMemoryFake{histErr: errors.New("boom")}
	uc := NewHistoryUseCase(mem)

	if _, err := uc.History(context.Background(), "s1", 5); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestClearHistoryReturnsDeletedCount(t *testing.T) {
	mem := &historyMemoryFake{clearCount: 7}
	uc := NewHistoryUseCase(mem)

	n, err := uc.ClearHistory(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected 7 deleted messages, got %d", n)
	}
}
