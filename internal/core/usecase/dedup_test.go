package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

func TestHashReaderDeterministic(t *testing.T) {
	a, err := hashReader(strings.NewReader("same content"))
	if err != nil {
		t.Fatalf("hashReader() error = %v", err)
	}
	b, err := hashReader(strings.NewReader("same content"))
	if err != nil {
		t.Fatalf("hashReader() error = %v", err)
	}
	if a != b {
		t.Errorf("expected identical hashes for identical content, got %q vs %q", a, b)
	}
}

func TestFindDuplicateIgnoresNonReadyRecords(t *testing.T) {
	repo := newRepoFake()
	repo.byHash["h1"] = &domain.DocumentRecord{ID: "d1", Status: domain.StatusProcessing, FileHash: "h1"}
	d := newDeduper(repo, true, false)

	dup, err := d.findDuplicate(context.Background(), "h1")
	if err != nil {
		t.Fatalf("findDuplicate() error = %v", err)
	}
	if dup != nil {
		t.Errorf("expected no duplicate for a non-ready record, got %+v", dup)
	}
}

func TestFindDuplicateMatchesReadyRecord(t *testing.T) {
	repo := newRepoFake()
	repo.byHash["h1"] = &domain.DocumentRecord{ID: "d1", Status: domain.StatusReady, FileHash: "h1"}
	d := newDeduper(repo, true, false)

	dup, err := d.findDuplicate(context.Background(), "h1")
	if err != nil {
		t.Fatalf("findDuplicate() error = %v", err)
	}
	if dup == nil || dup.ID != "d1" {
		t.Errorf("expected duplicate d1, got %+v", dup)
	}
}
