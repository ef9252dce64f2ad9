package domain

import (
	"errors"
	"fmt"
)

// Error kinds, not types: each is a sentinel wrapped around the
// underlying cause with WrapError, inspected with errors.Is/IsKind.
var (
	ErrValidation         = errors.New("validation error")
	ErrExtraction         = errors.New("extraction error")
	ErrModelTransient     = errors.New("model transient error")
	ErrModelFallback      = errors.New("model fallback engaged")
	ErrStore              = errors.New("store error")
	ErrFatal              = errors.New("fatal configuration error")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrTemporary          = errors.New("temporary failure")
	ErrResourceExceeded   = errors.New("resource limit exceeded")
)

// WrapError preserves a stable error kind alongside operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
