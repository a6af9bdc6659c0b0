package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary),
		domain.IsKind(err, domain.ErrResource),
		domain.IsKind(err, domain.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// userMessage never exposes err text; callers log it instead.
func userMessage(op string, status int) string {
	switch {
	case status == http.StatusBadRequest && op == "ask":
		return domain.EmptyQuestionMessage
	case status == http.StatusBadRequest:
		return domain.InvalidRequestMessage
	default:
		return domain.ApologyMessage
	}
}
