// Package image implements the image extraction frontend leaf by
// delegating to a vision-capable answer-generation backend rather than
// any local OCR: every generator backend (ollama/openrouter/
// openaicompat) already speaks a chat-completions shape that accepts
// inline images.
package image

import (
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
)

type Extractor struct {
	vision      ports.VisionGenerator
	defaultMode domain.ImageMode
}

func NewExtractor(vision ports.VisionGenerator, defaultMode domain.ImageMode) *Extractor {
	if defaultMode == "" {
		defaultMode = domain.ImageModeAuto
	}
	return &Extractor{vision: vision, defaultMode: defaultMode}
}

type modeKey struct{}

// WithMode attaches a per-request image_mode override (from the
// ingest_file procedure's optional parameter) so the frontend does not
// need a format-specific hole in the shared TextExtractor contract.
func WithMode(ctx context.Context, mode domain.ImageMode) context.Context {
	return context.WithValue(ctx, modeKey{}, mode)
}

func modeFrom(ctx context.Context, fallback domain.ImageMode) domain.ImageMode {
	if mode, ok := ctx.Value(modeKey{}).(domain.ImageMode); ok && mode != "" {
		return mode
	}
	return fallback
}

// Extract delegates the whole image to the vision-LLM in a single call.
// Multi-page TIFFs are not split into per-page blocks: no page-aware
// TIFF decoder exists anywhere in the corpus, so a multi-frame TIFF is
// analyzed as a single page today.
func (e *Extractor) Extract(ctx context.Context, rec *domain.DocumentRecord, raw io.Reader) ([]ports.Block, error) {
	data, err := io.ReadAll(raw)
	if err != nil {
		return nil, fmt.Errorf("read image bytes: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrExtraction, "image extract",
			fmt.Errorf("%s: empty image", rec.Filename))
	}

	mode := modeFrom(ctx, e.defaultMode)
	mimeType := rec.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	text, err := e.vision.AnalyzeImage(ctx, data, mimeType, mode)
	if err != nil {
		return nil, domain.WrapError(domain.ErrModelFallback, "image extract",
			fmt.Errorf("%s: vision-llm unavailable: %w", rec.Filename, err))
	}
	if text == "" {
		return nil, nil
	}

	contentType := domain.ContentImageDescription
	if mode == domain.ImageModeExtractText {
		contentType = domain.ContentImageText
	}
	return []ports.Block{{
		Text:           text,
		ContentType:    contentType,
		FormatMetadata: map[string]string{"image_mode": string(mode)},
	}}, nil
}
