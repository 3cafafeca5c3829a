package service

import (
	"context"
	"fmt"

	"partnerbackend/internal/domain"
)

// AuthGate resolves the identity behind a request
type AuthGate struct {
	tokens      *TokenService
	credentials *CredentialService
}

// NewAuthGate creates a new AuthGate
func NewAuthGate(tokens *TokenService, credentials *CredentialService) *AuthGate {
	return &AuthGate{tokens: tokens, credentials: credentials}
}

// ResolveCurrentUser returns the user named by explicitEmail, or else by the
// subject of token. explicitEmail is for trusted internal callers and wins
// when both are given.
func (g *AuthGate) ResolveCurrentUser(ctx context.Context, token, explicitEmail string) (*domain.User, error) {
	email := explicitEmail
	if email == "" {
		if token == "" {
			return nil, domain.ErrMissingCredential
		}
		subject, err := g.tokens.Validate(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
		}
		email = subject
	}

	return g.credentials.FindByEmail(ctx, email)
}
