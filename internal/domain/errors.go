package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the store, the token issuer and the HTTP layer.
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrDuplicateIdentity  = errors.New("an identity with this email already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingCredential  = errors.New("no token or email supplied")
	ErrUnauthorized       = errors.New("could not validate credentials")
	ErrValidation         = errors.New("validation failed")
)

// UpstreamError is a non-2xx answer from the brokerage or market data API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
}

// HTTPStatus returns the status to relay to the caller. Anything that is not
// an error status upstream becomes a bad gateway.
func (e *UpstreamError) HTTPStatus() int {
	if e.Status >= http.StatusBadRequest && e.Status <= 599 {
		return e.Status
	}
	return http.StatusBadGateway
}

// NewValidationError wraps ErrValidation with a field-specific message.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
