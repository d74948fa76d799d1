// Package handler implements the HTTP surface of the order engine.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nordmark/vidar/internal/domain"
	"github.com/nordmark/vidar/internal/middleware"
)

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EGONE:
		return http.StatusGone
	case domain.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes an error to the client. The status comes from the
// domain error code; internal errors get a generic message so infrastructure
// details never reach clients. Internal errors are also logged with their
// operation and cause.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= 500 {
		logger := middleware.GetLogger(r.Context())
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("op", domain.ErrorOp(err)),
			slog.String("error", err.Error()),
		)
	}

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		resp := map[string]any{
			"error": map[string]string{
				"code":    code,
				"message": domain.ErrorMessage(err),
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	http.Error(w, domain.ErrorMessage(err), status)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return accept == "" || accept == "*/*" || strings.Contains(accept, "application/json")
}

// RespondJSON writes a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// DecodeJSON parses a request body into dst, mapping malformed input to a
// validation error.
func DecodeJSON(r *http.Request, op string, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Invalid(op, "invalid request body")
	}
	return nil
}
