package router

import (
	"testing"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

func TestClassifyEmptyIsSimple(t *testing.T) {
	r := New(8)
	if got := r.Classify(""); got != domain.QuerySimple {
		t.Errorf("empty query: got %q, want simple", got)
	}
}

func TestClassifyGreeting(t *testing.T) {
	r := New(8)
	for _, q := range []string{"مرحبا", "hello", "hi", "Good Morning"} {
		if got := r.Classify(q); got != domain.QueryGreeting {
			t.Errorf("Classify(%q) = %q, want greeting", q, got)
		}
	}
}

func TestClassifyCalculator(t *testing.T) {
	r := New(8)
	if got := r.Classify("1 + 1"); got != domain.QueryCalculator {
		t.Errorf("Classify(1 + 1) = %q, want calculator", got)
	}
}

func TestClassifyRAGForLongArithmeticLikeInput(t *testing.T) {
	r := New(8)
	long := "1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1+1"
	if got := r.Classify(long); got != domain.QueryRAG {
		t.Errorf("Classify(long arithmetic) = %q, want rag", got)
	}
}

func TestClassifySimpleShortNoQuestionWord(t *testing.T) {
	r := New(8)
	if got := r.Classify("شكرا جزيلا"); got != domain.QuerySimple {
		t.Errorf("Classify(thanks) = %q, want simple", got)
	}
}

func TestClassifyRAGDefault(t *testing.T) {
	r := New(8)
	if got := r.Classify("ما هي عاصمة مصر؟"); got != domain.QueryRAG {
		t.Errorf("Classify(capital question) = %q, want rag", got)
	}
}

func TestTieBreakGreetingBeatsMath(t *testing.T) {
	r := New(8)
	// "hi" alone should never accidentally match a math pattern; this
	// asserts the classifier doesn't misfire on ordering.
	if got := r.Classify("hi"); got != domain.QueryGreeting {
		t.Errorf("Classify(hi) = %q, want greeting", got)
	}
}
