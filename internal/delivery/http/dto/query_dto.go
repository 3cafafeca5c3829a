package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"partnerbackend/internal/domain"
	"partnerbackend/internal/utils"
)

// AssetQuery reads the asset filters of the request. defaultStatus is
// applied when no status is given.
func AssetQuery(c echo.Context, defaultStatus string) domain.AssetQuery {
	q := domain.AssetQuery{
		Status:     c.QueryParam("status"),
		AssetClass: c.QueryParam("asset_class"),
		Exchange:   c.QueryParam("exchange"),
	}
	if q.Status == "" {
		q.Status = defaultStatus
	}
	return q
}

// BarsParams are the parsed query parameters of the bars endpoint
type BarsParams struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Field  domain.BarsField
}

// ParseBarsParams reads symbol, start, end and bars_field
func ParseBarsParams(c echo.Context) (BarsParams, error) {
	p := BarsParams{
		Symbol: strings.ToUpper(strings.TrimSpace(c.QueryParam("symbol"))),
		Field:  domain.BarsField(strings.ToLower(c.QueryParam("bars_field"))),
	}
	if p.Symbol == "" {
		return p, domain.NewValidationError("symbol is required")
	}
	if p.Field != "" && !p.Field.Valid() {
		return p, domain.NewValidationError("unknown bars_field %q", p.Field)
	}

	var err error
	if p.Start, err = utils.ParseTimeParam(c.QueryParam("start")); err != nil {
		return p, domain.NewValidationError("start: %v", err)
	}
	if p.End, err = utils.ParseTimeParam(c.QueryParam("end")); err != nil {
		return p, domain.NewValidationError("end: %v", err)
	}
	return p, nil
}

// ParseLimit reads an optional non-negative limit; absent means zero
func ParseLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, domain.NewValidationError("limit must be a non-negative integer")
	}
	return limit, nil
}
