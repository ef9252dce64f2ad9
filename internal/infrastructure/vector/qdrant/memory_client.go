package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// ConversationMemory implements ports.ConversationStore on top of a
// shared *Client, using dummy vectors because the store requires one
// for every point. It composes the same collection-scoped point
// operations documents use rather than duplicating HTTP plumbing.
type ConversationMemory struct {
	store      *Client
	collection string
	dimension  int
}

func NewConversationMemory(store *Client, collection string, dimension int) *ConversationMemory {
	return &ConversationMemory{store: store, collection: collection, dimension: dimension}
}

func (m *ConversationMemory) Append(ctx context.Context, sessionID string, role domain.MessageRole, content string) error {
	if err := m.store.EnsureCollection(ctx, m.collection, m.dimension); err != nil {
		return fmt.Errorf("ensure memory collection: %w", err)
	}

	point := ports.VectorPoint{
		ID:     uuid.NewString(),
		Vector: dummyVector(m.dimension),
		Payload: map[string]any{
			"session_id": sessionID,
			"role":       string(role),
			"content":    content,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
	return m.store.Upsert(ctx, m.collection, []ports.VectorPoint{point})
}

func (m *ConversationMemory) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := m.scrollAll(ctx, domain.SearchFilter{SessionID: sessionID})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, rowToMessage(row))
	}
	sortMessagesByTimestamp(messages)

	if len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

func (m *ConversationMemory) Clear(ctx context.Context, sessionID string) (int, error) {
	filter := domain.SearchFilter{SessionID: sessionID}
	count, err := m.store.Count(ctx, m.collection, filter)
	if err != nil {
		return 0, fmt.Errorf("count session messages: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	if err := m.store.Delete(ctx, m.collection, filter); err != nil {
		return 0, fmt.Errorf("delete session messages: %w", err)
	}
	return count, nil
}

// Sweep deletes every message older than maxAge, grouped by session so
// a single Delete call per stale session satisfies the client's
// filter-required Delete contract.
func (m *ConversationMemory) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	rows, err := m.scrollAll(ctx, domain.SearchFilter{})
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-maxAge)
	freshestBySession := make(map[string]time.Time)
	for _, row := range rows {
		msg := rowToMessage(row)
		if msg.SessionID == "" {
			continue
		}
		if msg.Timestamp.After(freshestBySession[msg.SessionID]) {
			freshestBySession[msg.SessionID] = msg.Timestamp
		}
	}

	deleted := 0
	for sessionID, freshest := range freshestBySession {
		if freshest.After(cutoff) {
			continue
		}
		n, err := m.Clear(ctx, sessionID)
		if err != nil {
			return deleted, fmt.Errorf("sweep session %s: %w", sessionID, err)
		}
		deleted += n
	}
	return deleted, nil
}

func (m *ConversationMemory) scrollAll(ctx context.Context, filter domain.SearchFilter) ([]map[string]any, error) {
	const pageSize = 256
	var all []map[string]any
	offset := ""
	for {
		page, next, err := m.store.Scroll(ctx, m.collection, filter, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("scroll memory collection: %w", err)
		}
		all = append(all, page...)
		if next == "" || len(page) == 0 {
			break
		}
		offset = next
	}
	return all, nil
}

func rowToMessage(row map[string]any) domain.Message {
	msg := domain.Message{
		SessionID: getStringPayload(row, "session_id"),
		Role:      domain.MessageRole(getStringPayload(row, "role")),
		Content:   getStringPayload(row, "content"),
	}
	if ts := getStringPayload(row, "timestamp"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			msg.Timestamp = parsed
		}
	}
	return msg
}

func sortMessagesByTimestamp(messages []domain.Message) {
	for i := 1; i < len(messages); i++ {
		for j := i; j > 0 && messages[j].Timestamp.Before(messages[j-1].Timestamp); j-- {
			messages[j], messages[j-1] = messages[j-1], messages[j]
		}
	}
}

// dummyVector produces a fixed low-magnitude vector: the store requires
// one, but conversation memory never participates in a similarity
// search, so its exact values are inert.
func dummyVector(dimension int) []float32 {
	v := make([]float32, dimension)
	for i := range v {
		v[i] = 1e-6
	}
	return v
}
