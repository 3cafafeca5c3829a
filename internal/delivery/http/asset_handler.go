package http

import (
	"github.com/labstack/echo/v4"

	"partnerbackend/internal/delivery/http/dto"
	"partnerbackend/internal/domain"
	"partnerbackend/internal/usecase"
)

// AssetHandler handles asset lookups
type AssetHandler struct {
	brokerage *usecase.BrokerageService
}

// NewAssetHandler creates a new AssetHandler
func NewAssetHandler(brokerage *usecase.BrokerageService) *AssetHandler {
	return &AssetHandler{brokerage: brokerage}
}

// List returns tradable, fractionable assets
// GET /assets
func (h *AssetHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	assets, err := h.brokerage.Assets(ctx, dto.AssetQuery(c, domain.DefaultAssetStatus))
	if err != nil {
		return err
	}
	return SuccessResponse(c, assets)
}

// Symbols returns the symbols of the asset list
// GET /assets/symbols
func (h *AssetHandler) Symbols(c echo.Context) error {
	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	symbols, err := h.brokerage.AssetSymbols(ctx, dto.AssetQuery(c, ""))
	if err != nil {
		return err
	}
	return SuccessResponse(c, symbols)
}

// Names returns the names of the asset list
// GET /assets/names
func (h *AssetHandler) Names(c echo.Context) error {
	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	names, err := h.brokerage.AssetNames(ctx, dto.AssetQuery(c, ""))
	if err != nil {
		return err
	}
	return SuccessResponse(c, names)
}

// BySymbol returns one asset
// GET /assets/symbols/:symbol
func (h *AssetHandler) BySymbol(c echo.Context) error {
	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	asset, err := h.brokerage.AssetBySymbol(ctx, c.Param("symbol"))
	if err != nil {
		return err
	}
	return SuccessResponse(c, asset)
}

// ByName returns the asset with an exact name
// GET /assets/names/:name
func (h *AssetHandler) ByName(c echo.Context) error {
	ctx, cancel := withTimeout(c, brokerTimeout)
	defer cancel()

	asset, err := h.brokerage.AssetByName(ctx, c.Param("name"))
	if err != nil {
		return err
	}
	return SuccessResponse(c, asset)
}
