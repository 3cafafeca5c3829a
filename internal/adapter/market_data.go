package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"partnerbackend/internal/domain"
)

// maxLogoBytes caps a logo download
const maxLogoBytes = 5 << 20

// barSource is the part of marketdata.Client used here
type barSource interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetLatestQuote(symbol string, req marketdata.GetLatestQuoteRequest) (*marketdata.Quote, error)
}

// MarketData implements domain.MarketDataGateway over the Alpaca market data API
type MarketData struct {
	client     barSource
	dataURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewMarketData creates a market data gateway for dataURL
func NewMarketData(dataURL, apiKey, apiSecret string, logger *slog.Logger) *MarketData {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return newMarketData(marketdata.NewClient(opts), dataURL, apiKey, apiSecret, logger)
}

func newMarketData(client barSource, dataURL, apiKey, apiSecret string, logger *slog.Logger) *MarketData {
	return &MarketData{
		client:    client,
		dataURL:   strings.TrimRight(dataURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger.With("component", "market-data"),
	}
}

// Bars returns split and dividend adjusted daily bars of symbol
func (m *MarketData) Bars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := m.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      start,
		End:        end,
		Adjustment: marketdata.AdjustmentAll,
	})
	if err != nil {
		return nil, m.sdkError("GetBars", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, domain.Bar{
			Timestamp:  b.Timestamp,
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     int64(b.Volume),
			TradeCount: int64(b.TradeCount),
			VWAP:       b.VWAP,
		})
	}
	return bars, nil
}

// LatestQuote returns the most recent quote of symbol
func (m *MarketData) LatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q, err := m.client.GetLatestQuote(symbol, marketdata.GetLatestQuoteRequest{})
	if err != nil {
		return nil, m.sdkError("GetLatestQuote", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("quote for %s: %w", symbol, domain.ErrNotFound)
	}

	return &domain.Quote{
		Symbol:    symbol,
		BidPrice:  q.BidPrice,
		BidSize:   int64(q.BidSize),
		AskPrice:  q.AskPrice,
		AskSize:   int64(q.AskSize),
		Timestamp: q.Timestamp,
	}, nil
}

// sdkError relays an API error answered by the data API with its status and
// message. Transport failures stay wrapped as they are.
func (m *MarketData) sdkError(op, symbol string, err error) error {
	var apiErr *alpaca.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s %s: %w", op, symbol, err)
	}

	m.logger.Warn("market data request failed", "op", op, "symbol", symbol, "status", apiErr.StatusCode, "code", apiErr.Code)
	message := apiErr.Message
	if message == "" {
		message = upstreamMessage([]byte(apiErr.Body))
	}
	return &domain.UpstreamError{Status: apiErr.StatusCode, Message: message}
}

// Logo downloads the PNG logo of symbol
func (m *MarketData) Logo(ctx context.Context, symbol string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/v1beta1/logos/%s", m.dataURL, url.PathEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(m.apiKey, m.apiSecret)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		m.logger.Warn("logo request failed", "symbol", symbol, "status", resp.StatusCode)
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
	}

	logo, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo for %s: %w", symbol, err)
	}
	return logo, nil
}
