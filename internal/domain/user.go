package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered identity
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is an email and plaintext password pair supplied by a caller
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
