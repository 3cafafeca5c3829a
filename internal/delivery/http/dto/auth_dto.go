package dto

import "partnerbackend/internal/domain"

// CredentialsRequest represents the register and login payload
type CredentialsRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,max=72"`
}

// Credentials converts the request to domain credentials
func (r CredentialsRequest) Credentials() domain.Credentials {
	return domain.Credentials{Email: r.Email, Password: r.Password}
}

// TokenResponse is the OAuth2 password-flow token body
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserOutput represents user data in API responses
type UserOutput struct {
	Email string `json:"email"`
}

// NewUserOutput hides everything but the email of u
func NewUserOutput(u *domain.User) UserOutput {
	return UserOutput{Email: u.Email}
}
