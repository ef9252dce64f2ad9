package jsonfmt

import (
	"testing"
)

func TestParseFirecrawlExpandsPagesIntoDocuments(t *testing.T) {
	payload := `{"pages":[
		{"markdown":"محتوى الصفحة الأولى","metadata":{"sourceURL":"https://example.com/a"}},
		{"text":"محتوى الصفحة الثانية"}
	]}`
	texts, names, err := ParseFirecrawl([]byte(payload))
	if err != nil {
		t.Fatalf("ParseFirecrawl() error = %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(texts))
	}
	if names[0] != "https://example.com/a" {
		t.Fatalf("expected first name to be source URL, got %q", names[0])
	}
	if names[1] != "page-1" {
		t.Fatalf("expected fallback name for page without URL, got %q", names[1])
	}
}

func TestParseFirecrawlRejectsEmptyPages(t *testing.T) {
	if _, _, err := ParseFirecrawl([]byte(`{"pages":[]}`)); err == nil {
		t.Fatalf("expected error for empty pages array")
	}
}

func TestParseGenericAcceptsStringsAndObjects(t *testing.T) {
	payload := `["نص بسيط", {"text": "نص داخل كائن"}, {"text": ""}]`
	texts, names, err := ParseGeneric([]byte(payload))
	if err != nil {
		t.Fatalf("ParseGeneric() error = %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected 2 non-empty documents, got %d", len(texts))
	}
	if names[0] != "item-0" || names[1] != "item-1" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestParseGenericRejectsNonArray(t *testing.T) {
	if _, _, err := ParseGeneric([]byte(`{"not":"an array"}`)); err == nil {
		t.Fatalf("expected error for non-array payload")
	}
}
