package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"partnerbackend/internal/domain"
)

// TokenCookie carries the access token for browser clients
const TokenCookie = "token"

const (
	userKey     = "user"
	authTimeout = 5 * time.Second
)

// UserResolver resolves the identity behind a token
type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, token, explicitEmail string) (*domain.User, error)
}

// Auth resolves the bearer token or token cookie to a user and stores it in
// the echo context. Failures are returned for the error handler to render.
func Auth(resolver UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := requestToken(c)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
			defer cancel()

			user, err := resolver.ResolveCurrentUser(ctx, token, "")
			if err != nil {
				return err
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

// requestToken reads "Authorization: Bearer <token>", falling back to the
// token cookie. No credential yields an empty token.
func requestToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		cookie, err := c.Cookie(TokenCookie)
		if err != nil {
			return "", nil
		}
		return cookie.Value, nil
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: invalid authorization header format", domain.ErrUnauthorized)
	}
	return strings.TrimSpace(token), nil
}

// CurrentUser returns the user stored by Auth
func CurrentUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(userKey).(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	return user, nil
}
