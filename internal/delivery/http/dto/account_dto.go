package dto

import (
	"github.com/shopspring/decimal"

	"partnerbackend/internal/domain"
)

// CreateAccountRequest is an account application plus the password of the
// login identity created with it
type CreateAccountRequest struct {
	domain.CreateAccountRequest
	Password string `json:"password" validate:"required,max=72"`
}

// JournalRequest moves cash between the sweep account and the user
type JournalRequest struct {
	ToUser bool            `json:"to_user"`
	Amount decimal.Decimal `json:"amount"`
}
