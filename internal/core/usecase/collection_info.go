package usecase

import (
	"context"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// CollectionInfoUseCase implements ports.CollectionInfoService: reports
// point count, vector dimension and distance metric for a named
// collection.
type CollectionInfoUseCase struct {
	store     ports.VectorStore
	dimension int
	distance  string
}

func NewCollectionInfoUseCase(store ports.VectorStore, dimension int, distance string) *CollectionInfoUseCase {
	if distance == "" {
		distance = "cosine"
	}
	return &CollectionInfoUseCase{store: store, dimension: dimension, distance: distance}
}

func (uc *CollectionInfoUseCase) CollectionInfo(ctx context.Context, collection string) (int, int, string, error) {
	count, err := uc.store.Count(ctx, collection, domain.SearchFilter{})
	if err != nil {
		return 0, 0, "", domain.WrapError(domain.ErrStore, "count collection", err)
	}
	return count, uc.dimension, uc.distance, nil
}
