package http

import (
	"github.com/labstack/echo/v4"

	"partnerbackend/internal/delivery/http/dto"
	"partnerbackend/internal/domain"
	"partnerbackend/internal/middleware"
	"partnerbackend/internal/usecase"
)

// TradingHandler handles orders, positions and funding of the current user
type TradingHandler struct {
	brokerage *usecase.BrokerageService
}

// NewTradingHandler creates a new TradingHandler
func NewTradingHandler(brokerage *usecase.BrokerageService) *TradingHandler {
	return &TradingHandler{brokerage: brokerage}
}

// SubmitOrder places an order
// POST /orders
func (h *TradingHandler) SubmitOrder(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req domain.OrderRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	order, err := h.brokerage.SubmitOrder(ctx, user.Email, &req)
	if err != nil {
		return err
	}
	return SuccessResponse(c, order)
}

// ListOrders lists orders of any status
// GET /orders?limit=
func (h *TradingHandler) ListOrders(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	limit, err := dto.ParseLimit(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	orders, err := h.brokerage.Orders(ctx, user.Email, limit)
	if err != nil {
		return err
	}
	return SuccessResponse(c, orders)
}

// ListPositions lists open positions
// GET /positions
func (h *TradingHandler) ListPositions(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	positions, err := h.brokerage.Positions(ctx, user.Email)
	if err != nil {
		return err
	}
	return SuccessResponse(c, positions)
}

// ClosePosition liquidates one position
// DELETE /positions/:symbol
func (h *TradingHandler) ClosePosition(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	order, err := h.brokerage.ClosePosition(ctx, user.Email, c.Param("symbol"))
	if err != nil {
		return err
	}
	return SuccessResponse(c, order)
}

// Journal moves cash between the sweep account and the user
// POST /funding/journal
func (h *TradingHandler) Journal(c echo.Context) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}

	var req dto.JournalRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	journal, err := h.brokerage.Journal(ctx, user.Email, req.ToUser, req.Amount)
	if err != nil {
		return err
	}
	return SuccessResponse(c, journal)
}
