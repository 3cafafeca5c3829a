package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"partnerbackend/internal/domain"
)

const (
	// storeTimeout bounds credential store round trips
	storeTimeout = 5 * time.Second
	// brokerTimeout bounds calls that reach the broker
	brokerTimeout = 30 * time.Second
)

func withTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), d)
}

// bindBody decodes the request body into req and checks its validate tags.
// An undecodable body is a validation failure like a bad field.
func bindBody(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid request payload")
	}
	return c.Validate(req)
}
