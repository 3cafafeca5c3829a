package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"partnerbackend/internal/domain"
)

// MockBroker mocks the BrokerGateway interface
type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) CreateAccount(ctx context.Context, req *domain.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockBroker) FindAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockBroker) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockBroker) GetTradeAccount(ctx context.Context, accountID string) (*domain.TradeAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TradeAccount), args.Error(1)
}

func (m *MockBroker) ListAssets(ctx context.Context, query domain.AssetQuery) ([]alpaca.Asset, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alpaca.Asset), args.Error(1)
}

func (m *MockBroker) GetAsset(ctx context.Context, symbol string) (*alpaca.Asset, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*alpaca.Asset), args.Error(1)
}

func (m *MockBroker) SubmitOrder(ctx context.Context, accountID string, req *domain.OrderRequest) (*domain.Order, error) {
	args := m.Called(ctx, accountID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockBroker) ListOrders(ctx context.Context, accountID string, limit int) ([]domain.Order, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockBroker) ListPositions(ctx context.Context, accountID string) ([]alpaca.Position, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]alpaca.Position), args.Error(1)
}

func (m *MockBroker) ClosePosition(ctx context.Context, accountID, symbol string) (*domain.Order, error) {
	args := m.Called(ctx, accountID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockBroker) ListActivities(ctx context.Context, accountID string) ([]domain.Activity, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Activity), args.Error(1)
}

func (m *MockBroker) CreateJournal(ctx context.Context, req *domain.JournalRequest) (*domain.Journal, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

// MockMarketData mocks the MarketDataGateway interface
type MockMarketData struct {
	mock.Mock
}

func (m *MockMarketData) Bars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	args := m.Called(ctx, symbol, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Bar), args.Error(1)
}

func (m *MockMarketData) LatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockMarketData) Logo(ctx context.Context, symbol string) ([]byte, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockIdentities mocks the IdentityCreator interface
type MockIdentities struct {
	mock.Mock
}

func (m *MockIdentities) Create(ctx context.Context, email, password string) (uuid.UUID, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

const sweepAccount = "sweep-account"

type fixture struct {
	svc        *BrokerageService
	broker     *MockBroker
	market     *MockMarketData
	identities *MockIdentities
}

func newFixture() *fixture {
	return newFixtureWithCache(CacheConfig{Size: 16, TTL: time.Hour})
}

func newFixtureWithCache(cacheCfg CacheConfig) *fixture {
	f := &fixture{
		broker:     new(MockBroker),
		market:     new(MockMarketData),
		identities: new(MockIdentities),
	}
	f.svc = NewBrokerageService(
		f.broker,
		f.market,
		f.identities,
		sweepAccount,
		cacheCfg,
		slog.New(slog.NewJSONHandler(io.Discard, nil)),
	)
	return f
}
