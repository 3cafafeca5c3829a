package domain

import (
	"context"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// BrokerGateway defines the brokerage API operations used by the backend
type BrokerGateway interface {
	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*Account, error)
	FindAccounts(ctx context.Context, query string) ([]Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	GetTradeAccount(ctx context.Context, accountID string) (*TradeAccount, error)

	ListAssets(ctx context.Context, query AssetQuery) ([]alpaca.Asset, error)
	GetAsset(ctx context.Context, symbol string) (*alpaca.Asset, error)

	SubmitOrder(ctx context.Context, accountID string, req *OrderRequest) (*Order, error)
	ListOrders(ctx context.Context, accountID string, limit int) ([]Order, error)

	ListPositions(ctx context.Context, accountID string) ([]alpaca.Position, error)
	ClosePosition(ctx context.Context, accountID, symbol string) (*Order, error)

	ListActivities(ctx context.Context, accountID string) ([]Activity, error)
	CreateJournal(ctx context.Context, req *JournalRequest) (*Journal, error)
}

// MarketDataGateway defines the market data operations used by the backend
type MarketDataGateway interface {
	// Bars returns daily bars of symbol between start and end
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)

	LatestQuote(ctx context.Context, symbol string) (*Quote, error)

	// Logo returns the PNG logo of symbol
	Logo(ctx context.Context, symbol string) ([]byte, error)
}
