package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"partnerbackend/internal/cache"
	"partnerbackend/internal/domain"
	"partnerbackend/internal/utils"
)

// DefaultOrderLimit is the number of orders listed when no limit is given
const DefaultOrderLimit = 500

// IdentityCreator registers the login identity behind a brokerage account
type IdentityCreator interface {
	Create(ctx context.Context, email, password string) (uuid.UUID, error)
}

// DefaultLogoCacheSize bounds the logos memo when LogoSize is unset. A logo
// download is capped at 5 MiB, so the memo holds at most 320 MiB.
const DefaultLogoCacheSize = 64

// CacheConfig sizes the memo caches of the service. Size bounds the assets
// and bars memos, LogoSize the logos memo.
type CacheConfig struct {
	Size     int
	LogoSize int
	TTL      time.Duration
}

// BrokerageService forwards account, order, position, pricing and funding
// requests to the broker on behalf of authenticated users
type BrokerageService struct {
	broker         domain.BrokerGateway
	market         domain.MarketDataGateway
	identities     IdentityCreator
	sweepAccountID string
	now            func() time.Time
	logger         *slog.Logger

	assets *cache.Memo[domain.AssetQuery, []alpaca.Asset]
	bars   *cache.Memo[domain.BarsQuery, []domain.Bar]
	logos  *cache.Memo[string, []byte]
}

// NewBrokerageService creates a new BrokerageService
func NewBrokerageService(
	broker domain.BrokerGateway,
	market domain.MarketDataGateway,
	identities IdentityCreator,
	sweepAccountID string,
	cacheCfg CacheConfig,
	logger *slog.Logger,
) *BrokerageService {
	return &BrokerageService{
		broker:         broker,
		market:         market,
		identities:     identities,
		sweepAccountID: sweepAccountID,
		now:            time.Now,
		logger:         logger.With("component", "brokerage"),
		assets:         cache.NewMemo[domain.AssetQuery, []alpaca.Asset]("assets", cacheCfg.Size, cacheCfg.TTL),
		bars:           cache.NewMemo[domain.BarsQuery, []domain.Bar]("bars", cacheCfg.Size, cacheCfg.TTL),
		logos:          cache.NewMemo[string, []byte]("logos", logoCacheSize(cacheCfg.LogoSize), cacheCfg.TTL),
	}
}

func logoCacheSize(size int) int {
	if size <= 0 {
		return DefaultLogoCacheSize
	}
	return size
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// CreateAccount registers the login identity and then opens the brokerage
// account. The identity is kept when the broker rejects the application.
func (s *BrokerageService) CreateAccount(ctx context.Context, req *domain.CreateAccountRequest, password string) (*domain.Account, error) {
	email := req.Contact.EmailAddress

	userID, err := s.identities.Create(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("account application received", "user_id", userID)

	account, err := s.broker.CreateAccount(ctx, req)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			s.logger.Warn("broker rejected account", "user_id", userID, "status", upstream.Status, "message", upstream.Message)
			return nil, fmt.Errorf("an account with the email address %s already exists: %w", email, domain.ErrDuplicateIdentity)
		}
		return nil, err
	}

	s.logger.Info("account created", "user_id", userID, "account_id", account.ID)
	return account, nil
}

// AccountByEmail returns the brokerage account opened with email
func (s *BrokerageService) AccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	account, err := s.broker.GetAccount(ctx, accountID)
	if err != nil {
		return nil, notFoundOnUpstream(err, "account %s", accountID)
	}
	return account, nil
}

// TradingSummary returns equity, cash and buying power of the user's account
func (s *BrokerageService) TradingSummary(ctx context.Context, email string) (*domain.AccountTrading, error) {
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	tradeAccount, err := s.broker.GetTradeAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	summary := tradeAccount.Summary()
	return &summary, nil
}

// Activities returns the user's account activities with display names
func (s *BrokerageService) Activities(ctx context.Context, email string) ([]domain.Activity, error) {
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	activities, err := s.broker.ListActivities(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return domain.ClassifyActivities(activities), nil
}

func (s *BrokerageService) accountIDByEmail(ctx context.Context, email string) (string, error) {
	accounts, err := s.broker.FindAccounts(ctx, email)
	if err != nil {
		return "", err
	}
	if len(accounts) == 0 || accounts[0].ID == "" {
		return "", fmt.Errorf("account for %s: %w", email, domain.ErrNotFound)
	}
	return accounts[0].ID, nil
}

// ---------------------------------------------------------------------------
// Assets
// ---------------------------------------------------------------------------

// Assets returns the tradable, fractionable assets matching query. Results
// are memoized per query.
func (s *BrokerageService) Assets(ctx context.Context, query domain.AssetQuery) ([]alpaca.Asset, error) {
	return s.assets.Do(query, func() ([]alpaca.Asset, error) {
		all, err := s.broker.ListAssets(ctx, query)
		if err != nil {
			return nil, err
		}
		assets := make([]alpaca.Asset, 0, len(all))
		for _, a := range all {
			if a.Tradable && a.Fractionable {
				assets = append(assets, a)
			}
		}
		return assets, nil
	})
}

// AssetSymbols returns the symbols of Assets(query)
func (s *BrokerageService) AssetSymbols(ctx context.Context, query domain.AssetQuery) ([]string, error) {
	assets, err := s.Assets(ctx, query)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(assets))
	for _, a := range assets {
		symbols = append(symbols, a.Symbol)
	}
	return symbols, nil
}

// AssetNames returns the non-empty names of Assets(query)
func (s *BrokerageService) AssetNames(ctx context.Context, query domain.AssetQuery) ([]string, error) {
	assets, err := s.Assets(ctx, query)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names, nil
}

// AssetBySymbol returns one asset straight from the broker
func (s *BrokerageService) AssetBySymbol(ctx context.Context, symbol string) (*alpaca.Asset, error) {
	asset, err := s.broker.GetAsset(ctx, symbol)
	if err != nil {
		return nil, notFoundOnUpstream(err, "no asset with symbol %s was found", symbol)
	}
	return asset, nil
}

// AssetByName finds an asset by exact name in the unfiltered asset list
func (s *BrokerageService) AssetByName(ctx context.Context, name string) (*alpaca.Asset, error) {
	assets, err := s.Assets(ctx, domain.AssetQuery{})
	if err != nil {
		return nil, err
	}
	for i := range assets {
		if assets[i].Name == name {
			return &assets[i], nil
		}
	}
	return nil, fmt.Errorf("no asset with name %s was found: %w", name, domain.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Orders and positions
// ---------------------------------------------------------------------------

// SubmitOrder places an order on the user's account
func (s *BrokerageService) SubmitOrder(ctx context.Context, email string, req *domain.OrderRequest) (*domain.Order, error) {
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	order, err := s.broker.SubmitOrder(ctx, accountID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order submitted", "account_id", accountID, "order_id", order.ID, "symbol", order.Symbol)
	return order, nil
}

// Orders lists the user's orders of any status, at most limit of them
func (s *BrokerageService) Orders(ctx context.Context, email string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = DefaultOrderLimit
	}
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.broker.ListOrders(ctx, accountID, limit)
}

// Positions lists the user's open positions
func (s *BrokerageService) Positions(ctx context.Context, email string) ([]alpaca.Position, error) {
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.broker.ListPositions(ctx, accountID)
}

// ClosePosition liquidates the user's position in symbol. The closing order
// carries no commission yet.
func (s *BrokerageService) ClosePosition(ctx context.Context, email, symbol string) (*domain.Order, error) {
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	order, err := s.broker.ClosePosition(ctx, accountID, symbol)
	if err != nil {
		return nil, err
	}
	order.Commission = decimal.Zero
	s.logger.Info("position closed", "account_id", accountID, "symbol", symbol)
	return order, nil
}

// ---------------------------------------------------------------------------
// Prices
// ---------------------------------------------------------------------------

// Bars returns daily bars of symbol. Zero bounds select the default window,
// computed when the entry is first produced. Results are memoized on the
// bounds as requested.
func (s *BrokerageService) Bars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	key := domain.BarsQuery{Symbol: symbol, Start: start.UTC(), End: end.UTC()}

	return s.bars.Do(key, func() ([]domain.Bar, error) {
		from, to := utils.DefaultBarsWindow(s.now(), start, end)
		if !from.Before(to) {
			return nil, domain.NewValidationError("start must be before end")
		}
		return s.market.Bars(ctx, symbol, from, to)
	})
}

// BarsTable renders bars as rows of [date, open, high, low, close, volume,
// trade_count, vwap], or [date, field] when field is set.
func BarsTable(bars []domain.Bar, field domain.BarsField) [][]any {
	table := make([][]any, 0, len(bars))
	for _, b := range bars {
		date := utils.FormatDate(b.Timestamp)
		if field != "" {
			table = append(table, []any{date, b.Value(field)})
			continue
		}
		table = append(table, []any{date, b.Open, b.High, b.Low, b.Close, b.Volume, b.TradeCount, b.VWAP})
	}
	return table
}

// LatestQuote returns the current quote of symbol, never memoized
func (s *BrokerageService) LatestQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return s.market.LatestQuote(ctx, symbol)
}

// Logo returns the PNG logo of symbol. Results are memoized per symbol.
func (s *BrokerageService) Logo(ctx context.Context, symbol string) ([]byte, error) {
	return s.logos.Do(symbol, func() ([]byte, error) {
		return s.market.Logo(ctx, symbol)
	})
}

// ---------------------------------------------------------------------------
// Funding
// ---------------------------------------------------------------------------

// Journal moves amount of cash from the sweep account to the user when
// toUser is set, and back otherwise.
func (s *BrokerageService) Journal(ctx context.Context, email string, toUser bool, amount decimal.Decimal) (*domain.Journal, error) {
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("amount must be positive")
	}
	accountID, err := s.accountIDByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	req := &domain.JournalRequest{
		FromAccount: accountID,
		ToAccount:   s.sweepAccountID,
		EntryType:   domain.JournalEntryCash,
		Amount:      amount,
	}
	if toUser {
		req.FromAccount, req.ToAccount = s.sweepAccountID, accountID
	}

	journal, err := s.broker.CreateJournal(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("journal created", "journal_id", journal.ID, "account_id", accountID, "to_user", toUser)
	return journal, nil
}

// ---------------------------------------------------------------------------
// Cache maintenance
// ---------------------------------------------------------------------------

// WarmCaches primes the default asset listing
func (s *BrokerageService) WarmCaches(ctx context.Context) error {
	if _, err := s.Assets(ctx, domain.AssetQuery{Status: domain.DefaultAssetStatus}); err != nil {
		return fmt.Errorf("failed to warm asset cache: %w", err)
	}
	return nil
}

// CacheStats returns the counters of every memo cache
func (s *BrokerageService) CacheStats() []cache.Stats {
	return []cache.Stats{s.assets.Stats(), s.bars.Stats(), s.logos.Stats()}
}

// PurgeCaches drops every memoized entry
func (s *BrokerageService) PurgeCaches() {
	s.assets.Purge()
	s.bars.Purge()
	s.logos.Purge()
	s.logger.Info("caches purged")
}

// notFoundOnUpstream turns a broker rejection into ErrNotFound and passes
// transport errors through.
func notFoundOnUpstream(err error, format string, args ...any) error {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), domain.ErrNotFound)
	}
	return err
}
