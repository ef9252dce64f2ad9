// Package chunk implements sentence-aware and structure-aware
// strategies for splitting a document's text into retrieval-sized
// units.
package chunk

import (
	"regexp"
	"strings"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

// sentenceDelimiters matches Arabic and Latin sentence terminators.
var sentenceDelimiters = regexp.MustCompile(`[.؟!?]`)

// SentenceChunker greedily packs sentences into chunks, closing a chunk
// before the next sentence would bring it to MaxChunkSize characters,
// and carrying Overlap characters of context from the tail of one chunk
// into the head of the next. A chunk that opens with that carried tail
// can exceed MaxChunkSize by up to Overlap+1 characters.
type SentenceChunker struct {
	MaxChunkSize int
	Overlap      int
}

var _ ports.Chunker = (*SentenceChunker)(nil)

// NewSentenceChunker applies spec defaults when a size is non-positive.
func NewSentenceChunker(maxChunkSize, overlap int) *SentenceChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 512
	}
	if overlap < 0 || overlap >= maxChunkSize {
		overlap = 50
	}
	return &SentenceChunker{
		MaxChunkSize: maxChunkSize,
		Overlap:      overlap,
	}
}

// Split chunks a document string into an ordered list of Chunks.
// Empty or whitespace-only input yields zero chunks, never an error.
func (c *SentenceChunker) Split(text string) []domain.Chunk {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var texts []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			texts = append(texts, s)
		}
		current.Reset()
	}

	for _, sentence := range sentences {
		if len([]rune(sentence)) > c.MaxChunkSize {
			flush()
		}
		sentence = splitOversizeSentence(sentence, c.MaxChunkSize, &texts)
		if sentence == "" {
			continue
		}
		if len([]rune(current.String()))+len([]rune(sentence))+1 < c.MaxChunkSize {
			current.WriteString(sentence)
			current.WriteByte(' ')
			continue
		}

		flush()
		if c.Overlap > 0 && len(texts) > 0 {
			tail := tailRunes(texts[len(texts)-1], c.Overlap)
			current.WriteString(tail)
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
		current.WriteByte(' ')
	}
	flush()

	out := make([]domain.Chunk, 0, len(texts))
	for i, t := range texts {
		out = append(out, domain.Chunk{
			Content:     t,
			ChunkIndex:  i,
			TotalChunks: len(texts),
			ContentType: domain.ContentText,
		})
	}
	return out
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceDelimiters.FindAllStringIndex(text, -1) {
		if p := strings.TrimSpace(text[start:loc[1]]); p != "" {
			out = append(out, p)
		}
		start = loc[1]
	}
	if p := strings.TrimSpace(text[start:]); p != "" {
		out = append(out, p)
	}
	return out
}

// splitOversizeSentence handles a single sentence that on its own
// exceeds maxChunkSize: it is split at whitespace and every
// whitespace-bounded fragment but the last is appended directly to
// texts, with the remainder returned to continue normal accumulation.
func splitOversizeSentence(sentence string, maxChunkSize int, texts *[]string) string {
	if len([]rune(sentence)) <= maxChunkSize {
		return sentence
	}

	words := strings.Fields(sentence)
	var current strings.Builder
	for _, w := range words {
		currentLen := len([]rune(current.String()))
		if currentLen > 0 && currentLen+len([]rune(w))+1 > maxChunkSize {
			*texts = append(*texts, strings.TrimSpace(current.String()))
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(w)
	}
	return strings.TrimSpace(current.String())
}

func tailRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
