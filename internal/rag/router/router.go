// Package router implements a rule-based, deterministic classifier
// over a closed set of query types. Callers switch over the returned
// domain.QueryType tag; this package holds no polymorphic handler
// objects.
package router

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

var greetings = compileAll([]string{
	`^مرحبا[ًا]?\s*$`,
	`^أهلا[ًا]?\s*$`,
	`^اهلا[ًا]?\s*$`,
	`^سلام\s*$`,
	`^صباح\s+الخير`,
	`^مساء\s+الخير`,
	`^كيف\s+حالك`,
	`^السلام\s+عليكم`,
	`^ازيك`,
	`^إزيك`,
	`^hello\s*$`,
	`^hi\s*$`,
	`^hey\s*$`,
	`^good\s+morning`,
	`^good\s+evening`,
})

var simplePatterns = compileAll([]string{
	`^ما\s+اسمك`,
	`^من\s+أنت`,
	`^كيف\s+حالك`,
	`^شكرا[ًا]?`,
	`^what.{0,5}your\s+name`,
	`^who\s+are\s+you`,
	`^how\s+are\s+you`,
	`^thank`,
})

var mathPatterns = compileAll([]string{
	`\d+\s*[+\-*/×÷]\s*\d+`,
	`احسب`,
	`calculate`,
	`ما\s+(?:هو\s+)?(?:ناتج|حاصل)`,
})

// questionWords indicate a factual-lookup query that should never be
// classified simple, even if short.
var questionWords = []string{
	"ما", "متى", "أين", "كيف", "لماذا", "من",
	"why", "when", "where", "what is", "what's",
}

// calculatorGrammarLimit bounds how long a purely-arithmetic string may
// be before it is routed to rag instead of calculator.
const calculatorGrammarLimit = 64

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// Router classifies normalized queries. It holds no mutable state
// beyond the (read-only after init) compiled pattern tables and the
// configured simple-query token threshold.
type Router struct {
	// SimpleMaxTokens is the token-count boundary for the simple route,
	// kept uniform across languages and exposed as config
	// router_simple_max_tokens.
	SimpleMaxTokens int
}

func New(simpleMaxTokens int) *Router {
	if simpleMaxTokens <= 0 {
		simpleMaxTokens = 8
	}
	return &Router{SimpleMaxTokens: simpleMaxTokens}
}

// Classify routes a normalized query into one of {greeting, simple,
// calculator, rag}. Tie-break order matches the listing: greeting beats
// calculator beats simple beats rag, except that a purely-arithmetic
// query longer than calculatorGrammarLimit goes to rag. Never fails;
// empty input returns simple.
func (r *Router) Classify(normalizedQuery string) domain.QueryType {
	q := strings.ToLower(strings.TrimSpace(normalizedQuery))
	if q == "" {
		return domain.QuerySimple
	}

	if matchesAny(greetings, q) {
		return domain.QueryGreeting
	}
	if r.isCalculator(q) {
		return domain.QueryCalculator
	}
	if isArithmeticOnly(q) && len(q) > calculatorGrammarLimit {
		return domain.QueryRAG
	}
	if r.isSimple(q) {
		return domain.QuerySimple
	}
	return domain.QueryRAG
}

func (r *Router) isCalculator(q string) bool {
	if !matchesAny(mathPatterns, q) {
		return false
	}
	if isArithmeticOnly(q) && len(q) > calculatorGrammarLimit {
		return false
	}
	return true
}

func (r *Router) isSimple(q string) bool {
	if matchesAny(simplePatterns, q) {
		return true
	}
	if tokenCount(q) >= r.SimpleMaxTokens {
		return false
	}
	for _, w := range questionWords {
		if strings.Contains(q, w) {
			return false
		}
	}
	return true
}

func matchesAny(patterns []*regexp.Regexp, q string) bool {
	for _, p := range patterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}

func tokenCount(q string) int {
	return len(strings.Fields(q))
}

// isArithmeticOnly reports whether q consists solely of digits
// (Arabic or Latin), operators, parentheses and whitespace.
func isArithmeticOnly(q string) bool {
	for _, r := range q {
		switch {
		case unicode.IsDigit(r):
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '×' || r == '÷':
		case r == '(' || r == ')' || r == '.' || r == ' ':
		default:
			return false
		}
	}
	return true
}
