package usecase

import (
	"context"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// DocumentReaderUseCase implements ports.DocumentReader: a read model
// over DocumentRecord status rows, used by callers polling ingestion
// progress after an upload has been accepted; the upload itself returns
// as soon as the record is created and the event is published, without
// waiting for the worker.
type DocumentReaderUseCase struct {
	repo ports.DocumentRepository
}

func NewDocumentReaderUseCase(repo ports.DocumentRepository) *DocumentReaderUseCase {
	return &DocumentReaderUseCase{repo: repo}
}

func (uc *DocumentReaderUseCase) GetByID(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	return uc.repo.GetByID(ctx, id)
}
