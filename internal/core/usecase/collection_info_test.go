package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type collectionInfoStoreFake struct {
	count    int
	countErr error
}

func (f *collectionInfoStoreFake) EnsureCollection(context.Context, string, int) error { return nil }
func (f *collectionInfoStoreFake) Upsert(context.Context, string, []ports.VectorPoint) error {
	return nil
}
func (f *collectionInfoStoreFake) Search(context.Context, string, []float32, int, domain.SearchFilter) ([]domain.RetrievedChunk, error) {
	return nil, nil
}
func (f *collectionInfoStoreFake) Scroll(context.Context, string, domain.SearchFilter, int, string) ([]map[string]any, string, error) {
	return nil, "", nil
}
func (f *collectionInfoStoreFake) Delete(context.Context, string, domain.SearchFilter) error {
	return nil
}
func (f *collectionInfoStoreFake) Drop(context.Context, string) error { return nil }
func (f *collectionInfoStoreFake) Count(context.Context, string, domain.SearchFilter) (int, error) {
	return f.count, f.countErr
}

func TestCollectionInfoDefaultsDistanceToCosine(t *testing.T) {
	uc := NewCollectionInfoUseCase(&collectionInfoStoreFake{count: 42}, 768, "")

	count, dim, distance, err := uc.CollectionInfo(context.Background(), "documents")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 || dim != 768 || distance != "cosine" {
		t.Errorf("unexpected result: count=%d dim=%d distance=%q", count, dim, distance)
	}
}

func TestCollectionInfoHonorsExplicitDistance(t *testing.T) {
	uc := NewCollectionInfoUseCase(&collectionInfoStoreFake{count: 1}, 384, "dot")

	_, _, distance, err := uc.CollectionInfo(context.Background(), "documents")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if distance != "dot" {
		t.Errorf("expected explicit distance dot, got %q", distance)
	}
}

func TestCollectionInfoWrapsStoreErrorAsErrStore(t *testing.T) {
	uc := NewCollectionInfoUseCase(&collectionInfoStoreFake{countErr: errors.New("connection refused")}, 768, "cosine")

	_, _, _, err := uc.CollectionInfo(context.Background(), "documents")
	if !domain.IsKind(err, domain.ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
}
