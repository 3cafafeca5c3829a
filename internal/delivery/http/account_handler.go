package http

import (
	"github.com/labstack/echo/v4"

	"partnerbackend/internal/delivery/http/dto"
	"partnerbackend/internal/middleware"
	"partnerbackend/internal/usecase"
)

// AccountHandler handles brokerage account requests
type AccountHandler struct {
	brokerage *usecase.BrokerageService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(brokerage *usecase.BrokerageService) *AccountHandler {
	return &AccountHandler{brokerage: brokerage}
}

// Create opens a brokerage account together with its login identity
// POST /accounts
func (h *AccountHandler) Create(c echo.Context) error {
	var req dto.CreateAccountRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	account, err := h.brokerage.CreateAccount(ctx, &req.CreateAccountRequest, req.Password)
	if err != nil {
		return err
	}
	return CreatedResponse(c, account)
}

// GetByEmail returns the account opened with an email
// GET /accounts/:email
func (h *AccountHandler) GetByEmail(c echo.Context) error {
	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	account, err := h.brokerage.AccountByEmail(ctx, c.Param("email"))
	if err != nil {
		return err
	}
	return SuccessResponse(c, account)
}

// Trading returns the trading summary of the current user
// GET /accounts/me/trading
func (h *AccountHandler) Trading(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	summary, err := h.brokerage.TradingSummary(ctx, user.Email)
	if err != nil {
		return err
	}
	return SuccessResponse(c, summary)
}

// Activities returns the classified account activities of the current user
// GET /accounts/me/activities
func (h *AccountHandler) Activities(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	activities, err := h.brokerage.Activities(ctx, user.Email)
	if err != nil {
		return err
	}
	return SuccessResponse(c, activities)
}
