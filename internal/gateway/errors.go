package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned before any network call when the
	// provider was constructed without API credentials.
	ErrMissingCredentials = errors.New("gateway: missing API credentials")

	// ErrSignatureMismatch is returned when a callback signature does not
	// verify against the stored intent reference.
	ErrSignatureMismatch = errors.New("gateway: signature mismatch")

	// ErrAmountTooSmall is returned when the amount is below the
	// gateway's minimum charge.
	ErrAmountTooSmall = errors.New("gateway: amount below minimum charge")

	// ErrUnavailable is returned when the gateway cannot be reached or
	// responds with a server error. Retryable.
	ErrUnavailable = errors.New("gateway: service unavailable")
)

// APIError wraps a gateway API rejection with the detail it returned.
type APIError struct {
	StatusCode    int
	Code          string
	Description   string
	OriginalError error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (code: %s)", e.Description, e.Code)
	}
	return fmt.Sprintf("gateway: request failed with status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.OriginalError
}
