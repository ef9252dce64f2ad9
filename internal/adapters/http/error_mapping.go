package httpadapter

import (
	"net/http"

	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
)

// mapErrorToHTTPStatus maps a domain error kind to an HTTP status:
// validation -> 400, not-found -> 404, backend-unavailable -> 503,
// resource-exceeded -> 413, extraction -> 422, unknown -> 500.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound), domain.IsKind(err, domain.ErrCollectionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrResourceExceeded):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrExtraction):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrModelTransient), domain.IsKind(err, domain.ErrStore), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
