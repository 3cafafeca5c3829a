package domain

import (
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"
)

// Contact holds the contact block of a brokerage account
type Contact struct {
	EmailAddress  string   `json:"email_address" validate:"required,email"`
	PhoneNumber   string   `json:"phone_number,omitempty"`
	StreetAddress []string `json:"street_address,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	City          string   `json:"city,omitempty"`
	State         string   `json:"state,omitempty"`
	PostalCode    string   `json:"postal_code,omitempty"`
	Country       string   `json:"country,omitempty"`
}

// Identity holds the KYC identity block of a brokerage account
type Identity struct {
	GivenName             string   `json:"given_name"`
	MiddleName            string   `json:"middle_name,omitempty"`
	FamilyName            string   `json:"family_name"`
	DateOfBirth           string   `json:"date_of_birth,omitempty"`
	TaxID                 string   `json:"tax_id,omitempty"`
	TaxIDType             string   `json:"tax_id_type,omitempty"`
	CountryOfCitizenship  string   `json:"country_of_citizenship,omitempty"`
	CountryOfBirth        string   `json:"country_of_birth,omitempty"`
	CountryOfTaxResidence string   `json:"country_of_tax_residence,omitempty"`
	FundingSource         []string `json:"funding_source,omitempty"`
}

// Disclosures holds the regulatory disclosures of a brokerage account
type Disclosures struct {
	IsControlPerson             bool   `json:"is_control_person"`
	IsAffiliatedExchangeOrFINRA bool   `json:"is_affiliated_exchange_or_finra"`
	IsPoliticallyExposed        bool   `json:"is_politically_exposed"`
	ImmediateFamilyExposed      bool   `json:"immediate_family_exposed"`
	EmploymentStatus            string `json:"employment_status,omitempty"`
}

// Agreement is a signed customer agreement
type Agreement struct {
	Agreement string `json:"agreement"`
	SignedAt  string `json:"signed_at"`
	IPAddress string `json:"ip_address"`
}

// AccountDocument is an uploaded KYC document
type AccountDocument struct {
	DocumentType    string `json:"document_type"`
	DocumentSubType string `json:"document_sub_type,omitempty"`
	Content         string `json:"content,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
}

// TrustedContact is the optional trusted contact of an account holder
type TrustedContact struct {
	GivenName    string `json:"given_name"`
	FamilyName   string `json:"family_name"`
	EmailAddress string `json:"email_address,omitempty"`
}

// Account is a brokerage account as returned by the broker
type Account struct {
	ID             string            `json:"id"`
	AccountNumber  string            `json:"account_number"`
	Status         string            `json:"status"`
	CryptoStatus   string            `json:"crypto_status,omitempty"`
	Currency       string            `json:"currency"`
	LastEquity     string            `json:"last_equity"`
	CreatedAt      string            `json:"created_at"`
	Contact        *Contact          `json:"contact,omitempty"`
	Identity       *Identity         `json:"identity,omitempty"`
	Disclosures    *Disclosures      `json:"disclosures,omitempty"`
	Agreements     []Agreement       `json:"agreements,omitempty"`
	Documents      []AccountDocument `json:"documents,omitempty"`
	TrustedContact *TrustedContact   `json:"trusted_contact,omitempty"`
}

// CreateAccountRequest is the account application forwarded to the broker
type CreateAccountRequest struct {
	Contact        Contact           `json:"contact"`
	Identity       Identity          `json:"identity"`
	Disclosures    Disclosures       `json:"disclosures"`
	Agreements     []Agreement       `json:"agreements"`
	Documents      []AccountDocument `json:"documents,omitempty"`
	TrustedContact *TrustedContact   `json:"trusted_contact,omitempty"`
}

// TradeAccount is the trading view of a brokerage account
type TradeAccount struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency"`
	Cash          decimal.Decimal `json:"cash"`
	Equity        decimal.Decimal `json:"equity"`
	BuyingPower   decimal.Decimal `json:"buying_power"`
	DaytradeCount int64           `json:"daytrade_count"`
}

// AccountTrading is the summary of a TradeAccount shown to the account holder
type AccountTrading struct {
	Equity        decimal.Decimal `json:"equity"`
	Cash          decimal.Decimal `json:"cash"`
	BuyingPower   decimal.Decimal `json:"buying_power"`
	Currency      string          `json:"currency"`
	DaytradeCount int64           `json:"daytrade_count"`
}

// Summary projects the trading account to its holder-facing fields
func (t *TradeAccount) Summary() AccountTrading {
	return AccountTrading{
		Equity:        t.Equity,
		Cash:          t.Cash,
		BuyingPower:   t.BuyingPower,
		Currency:      t.Currency,
		DaytradeCount: t.DaytradeCount,
	}
}

// OrderRequest is an order submitted on behalf of an account
type OrderRequest struct {
	Symbol        string             `json:"symbol" validate:"required"`
	Qty           *decimal.Decimal   `json:"qty,omitempty" validate:"required_without=Notional,excluded_with=Notional"`
	Notional      *decimal.Decimal   `json:"notional,omitempty"`
	Side          alpaca.Side        `json:"side" validate:"required,oneof=buy sell"`
	Type          alpaca.OrderType   `json:"type" validate:"required"`
	TimeInForce   alpaca.TimeInForce `json:"time_in_force" validate:"required"`
	LimitPrice    *decimal.Decimal   `json:"limit_price,omitempty"`
	StopPrice     *decimal.Decimal   `json:"stop_price,omitempty"`
	ExtendedHours bool               `json:"extended_hours,omitempty"`
	ClientOrderID string             `json:"client_order_id,omitempty"`
}

// Order is an order as reported by the broker. A missing or null commission
// decodes to zero.
type Order struct {
	ID             string           `json:"id"`
	ClientOrderID  string           `json:"client_order_id"`
	CreatedAt      time.Time        `json:"created_at"`
	SubmittedAt    *time.Time       `json:"submitted_at,omitempty"`
	FilledAt       *time.Time       `json:"filled_at,omitempty"`
	Symbol         string           `json:"symbol"`
	AssetClass     string           `json:"asset_class,omitempty"`
	Qty            *decimal.Decimal `json:"qty,omitempty"`
	Notional       *decimal.Decimal `json:"notional,omitempty"`
	FilledQty      decimal.Decimal  `json:"filled_qty"`
	FilledAvgPrice *decimal.Decimal `json:"filled_avg_price,omitempty"`
	Side           string           `json:"side"`
	Type           string           `json:"type"`
	TimeInForce    string           `json:"time_in_force"`
	LimitPrice     *decimal.Decimal `json:"limit_price,omitempty"`
	StopPrice      *decimal.Decimal `json:"stop_price,omitempty"`
	Status         string           `json:"status"`
	ExtendedHours  bool             `json:"extended_hours"`
	Commission     decimal.Decimal  `json:"commission"`
}

// JournalRequest moves cash between two accounts
type JournalRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryCash is the journal entry type for cash movements
const JournalEntryCash = "JNLC"

// Journal is a journal as recorded by the broker
type Journal struct {
	ID          string          `json:"id"`
	EntryType   string          `json:"entry_type"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Status      string          `json:"status"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	SettleDate  string          `json:"settle_date,omitempty"`
	SystemDate  string          `json:"system_date,omitempty"`
	Description string          `json:"description,omitempty"`
}

// AssetQuery filters the broker asset list. Empty fields are not sent.
type AssetQuery struct {
	Status     string
	AssetClass string
	Exchange   string
}

// DefaultAssetStatus is applied to asset list queries without a status
const DefaultAssetStatus = "active"

// BarsQuery identifies a daily bars request
type BarsQuery struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// Bar is one daily OHLCV bar
type Bar struct {
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	TradeCount int64
	VWAP       float64
}

// Quote is the latest NBBO quote of a symbol
type Quote struct {
	Symbol    string    `json:"symbol"`
	BidPrice  float64   `json:"bid_price"`
	BidSize   int64     `json:"bid_size"`
	AskPrice  float64   `json:"ask_price"`
	AskSize   int64     `json:"ask_size"`
	Timestamp time.Time `json:"timestamp"`
}

// BarsField names one column of a bar
type BarsField string

// Bar columns accepted by the bars endpoint
const (
	BarsFieldOpen       BarsField = "open"
	BarsFieldHigh       BarsField = "high"
	BarsFieldLow        BarsField = "low"
	BarsFieldClose      BarsField = "close"
	BarsFieldVolume     BarsField = "volume"
	BarsFieldTradeCount BarsField = "trade_count"
	BarsFieldVWAP       BarsField = "vwap"
)

// Valid reports whether f names a known bar column
func (f BarsField) Valid() bool {
	switch f {
	case BarsFieldOpen, BarsFieldHigh, BarsFieldLow, BarsFieldClose,
		BarsFieldVolume, BarsFieldTradeCount, BarsFieldVWAP:
		return true
	}
	return false
}

// Value returns the column f of the bar
func (b Bar) Value(f BarsField) any {
	switch f {
	case BarsFieldOpen:
		return b.Open
	case BarsFieldHigh:
		return b.High
	case BarsFieldLow:
		return b.Low
	case BarsFieldClose:
		return b.Close
	case BarsFieldVolume:
		return b.Volume
	case BarsFieldTradeCount:
		return b.TradeCount
	case BarsFieldVWAP:
		return b.VWAP
	}
	return nil
}
