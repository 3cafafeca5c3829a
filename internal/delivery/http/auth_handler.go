package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"partnerbackend/internal/delivery/http/dto"
	"partnerbackend/internal/domain"
	"partnerbackend/internal/middleware"
	"partnerbackend/internal/service"
)

// AuthHandler handles registration, login and token requests
type AuthHandler struct {
	credentials  *service.CredentialService
	tokens       *service.TokenService
	gate         *service.AuthGate
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the token
// cookie HTTPS-only.
func NewAuthHandler(credentials *service.CredentialService, tokens *service.TokenService, gate *service.AuthGate, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		credentials:  credentials,
		tokens:       tokens,
		gate:         gate,
		secureCookie: secureCookie,
	}
}

// Token handles the OAuth2 password flow
// POST /token
func (h *AuthHandler) Token(c echo.Context) error {
	creds := domain.Credentials{
		Email:    c.FormValue("username"),
		Password: c.FormValue("password"),
	}
	if creds.Email == "" || creds.Password == "" {
		return domain.NewValidationError("username and password are required")
	}

	token, err := h.issue(c, creds)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   service.TokenType,
	})
}

// Register creates a login identity
// POST /users/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.CredentialsRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	creds := req.Credentials()

	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	if _, err := h.credentials.Create(ctx, creds.Email, creds.Password); err != nil {
		return err
	}

	user, err := h.gate.ResolveCurrentUser(ctx, "", creds.Email)
	if err != nil {
		return err
	}

	return CreatedResponse(c, dto.NewUserOutput(user))
}

// Login verifies credentials, returns a token and sets the token cookie
// POST /users/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.CredentialsRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	token, err := h.issue(c, req.Credentials())
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokens.TTL().Seconds()),
	})

	return SuccessResponse(c, dto.TokenResponse{
		AccessToken: token,
		TokenType:   service.TokenType,
	})
}

// Logout clears the token cookie. Tokens stay valid until they expire.
// POST /users/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		MaxAge:   -1,
	})
	return SuccessMessageResponse(c, "Logged out", nil)
}

// Me returns the authenticated user
// GET /users/me
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	return SuccessResponse(c, dto.NewUserOutput(user))
}

func (h *AuthHandler) issue(c echo.Context, creds domain.Credentials) (string, error) {
	ctx, cancel := withTimeout(c, storeTimeout)
	defer cancel()

	user, err := h.credentials.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		return "", err
	}
	return h.tokens.Issue(user.Email, 0)
}
