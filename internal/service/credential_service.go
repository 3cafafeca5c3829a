package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"partnerbackend/internal/domain"
)

// Compared against when the email is unknown so both failure paths cost one
// bcrypt comparison.
const dummyPassword = "partner-backend-timing-guard"

// CredentialService stores identities and verifies passwords
type CredentialService struct {
	users     domain.UserRepository
	cost      int
	dummyHash []byte
	logger    *slog.Logger
}

// NewCredentialService creates a new CredentialService hashing with cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewCredentialService(users domain.UserRepository, cost int, logger *slog.Logger) (*CredentialService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &CredentialService{
		users:     users,
		cost:      cost,
		dummyHash: dummyHash,
		logger:    logger.With("component", "credentials"),
	}, nil
}

// Create hashes the password and stores a new identity
func (s *CredentialService) Create(ctx context.Context, email, password string) (uuid.UUID, error) {
	if err := ValidateEmail(email); err != nil {
		return uuid.Nil, err
	}
	if password == "" {
		return uuid.Nil, domain.NewValidationError("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return uuid.Nil, domain.NewValidationError("password must be at most 72 bytes")
		}
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.users.Create(ctx, email, string(hash))
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("user created", "user_id", id)
	return id, nil
}

// FindByEmail returns the identity registered under email
func (s *CredentialService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// Authenticate returns the identity when password matches its stored hash.
// Unknown email and wrong password fail identically.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}

var emailValidator = validator.New()

// ValidateEmail accepts a bare address such as alice@example.com
func ValidateEmail(email string) error {
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return domain.NewValidationError("invalid email address %q", email)
	}
	return nil
}
