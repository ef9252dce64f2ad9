package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// deduper decides whether an uploaded file whose content hash already
// has a ready DocumentRecord should be treated as a duplicate and
// short-circuit ingestion. It is off by default: when disabled no hash
// lookup is made and identical uploads are ingested again; no warning is
// emitted either way. When enabled, any ready record with the same hash
// is a duplicate: DocumentRecord carries no collection, so the lookup is
// not scoped per collection, and the global flag is stored but does not
// change the lookup.
type deduper struct {
	repo    ports.DocumentRepository
	enabled bool
	global  bool
}

func newDeduper(repo ports.DocumentRepository, enabled, global bool) *deduper {
	return &deduper{repo: repo, enabled: enabled, global: global}
}

// hashReader consumes r fully, so callers must have already buffered or
// be prepared to reread the underlying content afterward.
func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// findDuplicate returns the existing record for hash if dedup is
// enabled and one is already ready, or nil otherwise.
func (d *deduper) findDuplicate(ctx context.Context, hash string) (*domain.DocumentRecord, error) {
	if !d.enabled || hash == "" {
		return nil, nil
	}
	existing, err := d.repo.FindByHash(ctx, hash)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if existing == nil || existing.Status != domain.StatusReady {
		return nil, nil
	}
	return existing, nil
}
