package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"partnerbackend/internal/domain"
)

// BrokerClient implements domain.BrokerGateway over the Alpaca Broker API
type BrokerClient struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewBrokerClient creates a new Broker API client
func NewBrokerClient(baseURL, apiKey, apiSecret string, logger *slog.Logger) *BrokerClient {
	return &BrokerClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With("component", "broker"),
	}
}

// CreateAccount opens a brokerage account
func (c *BrokerClient) CreateAccount(ctx context.Context, req *domain.CreateAccountRequest) (*domain.Account, error) {
	var account domain.Account
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", nil, req, &account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &account, nil
}

// FindAccounts searches accounts by free text such as an email address
func (c *BrokerClient) FindAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	var accounts []domain.Account
	params := url.Values{"query": {query}}
	if err := c.do(ctx, http.MethodGet, "/v1/accounts", params, nil, &accounts); err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount returns an account by ID
func (c *BrokerClient) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	var account domain.Account
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(accountID), nil, nil, &account); err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return &account, nil
}

// GetTradeAccount returns the trading view of an account
func (c *BrokerClient) GetTradeAccount(ctx context.Context, accountID string) (*domain.TradeAccount, error) {
	var account domain.TradeAccount
	path := "/v1/trading/accounts/" + url.PathEscape(accountID) + "/account"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &account); err != nil {
		return nil, fmt.Errorf("failed to get trade account %s: %w", accountID, err)
	}
	return &account, nil
}

// ListAssets returns the assets matching query
func (c *BrokerClient) ListAssets(ctx context.Context, query domain.AssetQuery) ([]alpaca.Asset, error) {
	params := url.Values{}
	if query.Status != "" {
		params.Set("status", query.Status)
	}
	if query.AssetClass != "" {
		params.Set("asset_class", query.AssetClass)
	}
	if query.Exchange != "" {
		params.Set("exchange", query.Exchange)
	}

	var assets []alpaca.Asset
	if err := c.do(ctx, http.MethodGet, "/v1/assets", params, nil, &assets); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// GetAsset returns a single asset by symbol
func (c *BrokerClient) GetAsset(ctx context.Context, symbol string) (*alpaca.Asset, error) {
	var asset alpaca.Asset
	if err := c.do(ctx, http.MethodGet, "/v1/assets/"+url.PathEscape(symbol), nil, nil, &asset); err != nil {
		return nil, fmt.Errorf("failed to get asset %s: %w", symbol, err)
	}
	return &asset, nil
}

// SubmitOrder places an order for an account
func (c *BrokerClient) SubmitOrder(ctx context.Context, accountID string, req *domain.OrderRequest) (*domain.Order, error) {
	var order domain.Order
	path := "/v1/trading/accounts/" + url.PathEscape(accountID) + "/orders"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &order); err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	return &order, nil
}

// ListOrders returns up to limit orders of any status for an account
func (c *BrokerClient) ListOrders(ctx context.Context, accountID string, limit int) ([]domain.Order, error) {
	params := url.Values{
		"status": {"all"},
		"limit":  {strconv.Itoa(limit)},
	}
	var orders []domain.Order
	path := "/v1/trading/accounts/" + url.PathEscape(accountID) + "/orders"
	if err := c.do(ctx, http.MethodGet, path, params, nil, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListPositions returns the open positions of an account
func (c *BrokerClient) ListPositions(ctx context.Context, accountID string) ([]alpaca.Position, error) {
	var positions []alpaca.Position
	path := "/v1/trading/accounts/" + url.PathEscape(accountID) + "/positions"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &positions); err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// ClosePosition liquidates the position in symbol and returns the closing order
func (c *BrokerClient) ClosePosition(ctx context.Context, accountID, symbol string) (*domain.Order, error) {
	var order domain.Order
	path := "/v1/trading/accounts/" + url.PathEscape(accountID) + "/positions/" + url.PathEscape(symbol)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &order); err != nil {
		return nil, fmt.Errorf("failed to close position %s: %w", symbol, err)
	}
	return &order, nil
}

// ListActivities returns the account activities of an account
func (c *BrokerClient) ListActivities(ctx context.Context, accountID string) ([]domain.Activity, error) {
	var activities []domain.Activity
	params := url.Values{"account_id": {accountID}}
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/activities", params, nil, &activities); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// CreateJournal moves cash or securities between two accounts
func (c *BrokerClient) CreateJournal(ctx context.Context, req *domain.JournalRequest) (*domain.Journal, error) {
	var journal domain.Journal
	if err := c.do(ctx, http.MethodPost, "/v1/journals", nil, req, &journal); err != nil {
		return nil, fmt.Errorf("failed to create journal: %w", err)
	}
	return &journal, nil
}

// do sends a JSON request and decodes a JSON response into out. Non-2xx
// responses become *domain.UpstreamError.
func (c *BrokerClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, c.apiSecret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call broker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		upstream := &domain.UpstreamError{Status: resp.StatusCode, Message: upstreamMessage(raw)}
		c.logger.Warn("broker request failed",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"message", upstream.Message,
		)
		return upstream
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode broker response: %w", err)
	}
	return nil
}

// upstreamMessage extracts the "message" field of an error body, falling
// back to the raw text.
func upstreamMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return "empty response from broker"
}
