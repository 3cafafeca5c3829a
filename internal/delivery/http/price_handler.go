package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"partnerbackend/internal/delivery/http/dto"
	"partnerbackend/internal/domain"
	"partnerbackend/internal/usecase"
)

// PriceHandler handles bars, quotes and logos
type PriceHandler struct {
	brokerage *usecase.BrokerageService
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(brokerage *usecase.BrokerageService) *PriceHandler {
	return &PriceHandler{brokerage: brokerage}
}

// Bars returns daily bars as a table
// GET /prices/bars?symbol=&start=&end=&bars_field=
func (h *PriceHandler) Bars(c echo.Context) error {
	params, err := dto.ParseBarsParams(c)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	bars, err := h.brokerage.Bars(ctx, params.Symbol, params.Start, params.End)
	if err != nil {
		return err
	}
	return SuccessResponse(c, usecase.BarsTable(bars, params.Field))
}

// Quote returns the latest quote
// GET /prices/quote?symbol=
func (h *PriceHandler) Quote(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.QueryParam("symbol")))
	if symbol == "" {
		return domain.NewValidationError("symbol is required")
	}

	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	quote, err := h.brokerage.LatestQuote(ctx, symbol)
	if err != nil {
		return err
	}
	return SuccessResponse(c, quote)
}

// Logo returns the PNG logo of a symbol
// GET /logos/:symbol
func (h *PriceHandler) Logo(c echo.Context) error {
	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	logo, err := h.brokerage.Logo(ctx, strings.ToUpper(c.Param("symbol")))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", logo)
}
