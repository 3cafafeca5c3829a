package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create inserts a new user and returns its store-assigned ID.
	// A duplicate email fails with ErrDuplicateIdentity.
	Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error)

	// GetByEmail retrieves a user by email, ErrNotFound if absent
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error
}
