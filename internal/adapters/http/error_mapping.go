package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/odner-app/odner/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		// 499 Client Closed Request (nginx convention).
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrDuplicateEntity):
		return http.StatusConflict
	case errors.Is(err, domain.ErrImmutableConfig), errors.Is(err, domain.ErrLanguageMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCorruptArtifact):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrReconciliation):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
