package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"partnerbackend/internal/adapter"
	"partnerbackend/internal/domain"
	"partnerbackend/internal/service"
	"partnerbackend/internal/usecase"
)

const (
	aliceEmail    = "alice@example.com"
	alicePassword = "secret1"
	sweepAccount  = "sweep-account"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, email, passwordHash string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return uuid.Nil, domain.ErrDuplicateIdentity
	}
	u := &domain.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.users[email] = u
	return u.ID, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) Ping(context.Context) error { return nil }

type fakeMarket struct {
	logoCalls atomic.Int32
}

func (f *fakeMarket) Bars(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	return []domain.Bar{
		{Timestamp: time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100, TradeCount: 7, VWAP: 1.2},
		{Timestamp: time.Date(2024, 3, 4, 5, 0, 0, 0, time.UTC), Open: 1.5, High: 3, Low: 1, Close: 2.5, Volume: 200, TradeCount: 9, VWAP: 2.1},
	}, nil
}

func (f *fakeMarket) LatestQuote(_ context.Context, symbol string) (*domain.Quote, error) {
	return &domain.Quote{Symbol: symbol, BidPrice: 189.5, AskPrice: 189.6}, nil
}

func (f *fakeMarket) Logo(_ context.Context, symbol string) ([]byte, error) {
	f.logoCalls.Add(1)
	return []byte("\x89PNG" + symbol), nil
}

// fakeBroker serves the subset of the broker API the tests touch
type fakeBroker struct {
	server     *httptest.Server
	assetCalls atomic.Int32

	mu       sync.Mutex
	journals []domain.JournalRequest
}

func newFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()
	fb := &fakeBroker{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == aliceEmail {
			io.WriteString(w, `[{"id":"acct-1","status":"ACTIVE"}]`)
			return
		}
		io.WriteString(w, `[]`)
	})
	mux.HandleFunc("POST /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"acct-2","status":"SUBMITTED"}`)
	})
	mux.HandleFunc("GET /v1/trading/accounts/acct-1/account", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"acct-1","currency":"USD","cash":"100","equity":"250.5","buying_power":"200","daytrade_count":1}`)
	})
	mux.HandleFunc("GET /v1/assets", func(w http.ResponseWriter, r *http.Request) {
		fb.assetCalls.Add(1)
		io.WriteString(w, `[
			{"symbol":"AAPL","name":"Apple Inc.","tradable":true,"fractionable":true},
			{"symbol":"BRK.A","name":"Berkshire Hathaway","tradable":true,"fractionable":false}
		]`)
	})
	mux.HandleFunc("GET /v1/assets/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"code":40410000,"message":"asset not found"}`)
	})
	mux.HandleFunc("GET /v1/accounts/activities", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"message":"maintenance"}`)
	})
	mux.HandleFunc("POST /v1/journals", func(w http.ResponseWriter, r *http.Request) {
		var req domain.JournalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fb.mu.Lock()
		fb.journals = append(fb.journals, req)
		fb.mu.Unlock()
		io.WriteString(w, `{"id":"j-1","entry_type":"JNLC","status":"queued"}`)
	})

	fb.server = httptest.NewServer(mux)
	t.Cleanup(fb.server.Close)
	return fb
}

type testApp struct {
	echo   *echo.Echo
	broker *fakeBroker
	market *fakeMarket
	tokens *service.TokenService
}

func newTestApp(t *testing.T, loginRPS float64, loginBurst int) *testApp {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	credentials, err := service.NewCredentialService(&memUserRepo{users: map[string]*domain.User{}}, bcrypt.MinCost, logger)
	require.NoError(t, err)
	tokens, err := service.NewTokenService("test-signing-key", "HS256", 30*time.Minute)
	require.NoError(t, err)
	gate := service.NewAuthGate(tokens, credentials)

	fb := newFakeBroker(t)
	market := &fakeMarket{}
	brokerage := usecase.NewBrokerageService(
		adapter.NewBrokerClient(fb.server.URL, "key", "secret", logger),
		market,
		credentials,
		sweepAccount,
		usecase.CacheConfig{Size: 16, TTL: time.Hour},
		logger,
	)

	e := echo.New()
	SetupRoutes(e, &RouterConfig{
		AuthHandler:    NewAuthHandler(credentials, tokens, gate, false),
		AccountHandler: NewAccountHandler(brokerage),
		AssetHandler:   NewAssetHandler(brokerage),
		TradingHandler: NewTradingHandler(brokerage),
		PriceHandler:   NewPriceHandler(brokerage),
		Resolver:       gate,
		LoginRPS:       loginRPS,
		LoginBurst:     loginBurst,
		Logger:         logger,
	})

	return &testApp{echo: e, broker: fb, market: market, tokens: tokens}
}

func (a *testApp) do(method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) register(t *testing.T) string {
	t.Helper()
	rec := a.do(http.MethodPost, "/users/register", `{"email":"`+aliceEmail+`","password":"`+alicePassword+`"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	token, err := a.tokens.Issue(aliceEmail, 0)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode(t, rec).Status)
}

func TestRegisterLoginAndMe(t *testing.T) {
	app := newTestApp(t, 100, 100)
	creds := `{"email":"` + aliceEmail + `","password":"` + alicePassword + `"}`

	rec := app.do(http.MethodPost, "/users/register", creds, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"email":"alice@example.com"}`, string(decode(t, rec).Data))
	assert.NotContains(t, rec.Body.String(), "password")

	rec = app.do(http.MethodPost, "/users/register", creds, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", decode(t, rec).Status)

	rec = app.do(http.MethodPost, "/users/login", creds, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &token))
	assert.Equal(t, "bearer", token.TokenType)
	assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), "token="+token.AccessToken)

	rec = app.do(http.MethodGet, "/users/me", "", token.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"email":"alice@example.com"}`, string(decode(t, rec).Data))
}

func TestRegister_InvalidEmail(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodPost, "/users/register", `{"email":"not-an-email","password":"x"}`, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t, 100, 100)
	app.register(t)

	rec := app.do(http.MethodPost, "/users/login", `{"email":"`+aliceEmail+`","password":"nope"}`, "")
	unknown := app.do(http.MethodPost, "/users/login", `{"email":"bob@example.com","password":"nope"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, decode(t, rec).Message, decode(t, unknown).Message)
}

func TestTokenEndpoint(t *testing.T) {
	app := newTestApp(t, 100, 100)
	app.register(t)

	form := url.Values{"username": {aliceEmail}, "password": {alicePassword}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bearer", body["token_type"])

	email, err := app.tokens.Validate(body["access_token"])
	require.NoError(t, err)
	assert.Equal(t, aliceEmail, email)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	app := newTestApp(t, 100, 100)

	for _, target := range []string{"/users/me", "/accounts/me/trading", "/orders", "/positions"} {
		rec := app.do(http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate), target)
	}

	rec := app.do(http.MethodGet, "/users/me", "", "forged.token.value")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTradingSummary(t *testing.T) {
	app := newTestApp(t, 100, 100)
	token := app.register(t)

	rec := app.do(http.MethodGet, "/accounts/me/trading", "", token)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &summary))
	assert.Equal(t, "250.5", summary["equity"])
	assert.Equal(t, "USD", summary["currency"])
	assert.NotContains(t, summary, "id")
}

func TestActivities_UpstreamStatusPassesThrough(t *testing.T) {
	app := newTestApp(t, 100, 100)
	token := app.register(t)

	rec := app.do(http.MethodGet, "/accounts/me/activities", "", token)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "maintenance", decode(t, rec).Message)
}

func TestAccountByEmail_NotFound(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/accounts/ghost@example.com", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAccount(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodPost, "/accounts", `{"contact":{"email_address":"carol@example.com"},"password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), "acct-2")

	rec = app.do(http.MethodPost, "/accounts", `{"contact":{"email_address":"carol@example.com"},"password":"pw"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(http.MethodPost, "/accounts", `{"contact":{},"password":"pw"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAssets(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/assets", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "AAPL")
	assert.NotContains(t, rec.Body.String(), "BRK.A")

	rec = app.do(http.MethodGet, "/assets", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), app.broker.assetCalls.Load())

	rec = app.do(http.MethodGet, "/assets/symbols", "", "")
	assert.JSONEq(t, `["AAPL"]`, string(decode(t, rec).Data))

	rec = app.do(http.MethodGet, "/assets/names/Apple%20Inc.", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "AAPL")
}

func TestAssetBySymbol_NotFound(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/assets/symbols/NOPE", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBars(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/prices/bars?symbol=aapl", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[["2024-03-01",1,2,0.5,1.5,100,7,1.2],["2024-03-04",1.5,3,1,2.5,200,9,2.1]]`, string(decode(t, rec).Data))

	rec = app.do(http.MethodGet, "/prices/bars?symbol=aapl&bars_field=close", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[["2024-03-01",1.5],["2024-03-04",2.5]]`, string(decode(t, rec).Data))
}

func TestBars_Validation(t *testing.T) {
	app := newTestApp(t, 100, 100)

	for _, target := range []string{
		"/prices/bars",
		"/prices/bars?symbol=AAPL&bars_field=median",
		"/prices/bars?symbol=AAPL&start=yesterday",
		"/prices/bars?symbol=AAPL&start=2024-02-01&end=2024-01-01",
	} {
		rec := app.do(http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
	}
}

func TestQuote(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/prices/quote?symbol=aapl", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"symbol":"AAPL"`)
}

func TestLogo(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/logos/aapl", "", "")
	again := app.do(http.MethodGet, "/logos/AAPL", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "\x89PNGAAPL", rec.Body.String())
	assert.Equal(t, rec.Body.String(), again.Body.String())
	assert.Equal(t, int32(1), app.market.logoCalls.Load())
}

func TestSubmitOrder_Validation(t *testing.T) {
	app := newTestApp(t, 100, 100)
	token := app.register(t)

	rec := app.do(http.MethodPost, "/orders", `{"symbol":"AAPL","side":"buy","type":"market","time_in_force":"day"}`, token)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestMalformedBody_IsUnprocessable(t *testing.T) {
	app := newTestApp(t, 100, 100)
	token := app.register(t)

	for _, target := range []string{"/users/register", "/users/login", "/accounts", "/orders", "/funding/journal"} {
		rec := app.do(http.MethodPost, target, `{"email":`, token)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
		env := decode(t, rec)
		assert.Equal(t, "error", env.Status, target)
		assert.Contains(t, env.Message, "invalid request payload", target)
	}
}

func TestTokenEndpoint_MissingFields(t *testing.T) {
	app := newTestApp(t, 100, 100)

	form := url.Values{"username": {aliceEmail}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	app.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec).Message, "username and password are required")
}

func TestJournal(t *testing.T) {
	app := newTestApp(t, 100, 100)
	token := app.register(t)

	rec := app.do(http.MethodPost, "/funding/journal", `{"to_user":true,"amount":"25"}`, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodPost, "/funding/journal", `{"to_user":false,"amount":0}`, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	app.broker.mu.Lock()
	defer app.broker.mu.Unlock()
	require.Len(t, app.broker.journals, 1)
	assert.Equal(t, sweepAccount, app.broker.journals[0].FromAccount)
	assert.Equal(t, "acct-1", app.broker.journals[0].ToAccount)
	assert.Equal(t, domain.JournalEntryCash, app.broker.journals[0].EntryType)
	assert.Equal(t, "25", app.broker.journals[0].Amount.String())
}

func TestCredentialRateLimit(t *testing.T) {
	app := newTestApp(t, 0.001, 2)
	body := `{"email":"bob@example.com","password":"nope"}`

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/users/login", body, "").Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/users/login", body, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, app.do(http.MethodPost, "/users/login", body, "").Code)

	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/assets/symbols", "", "").Code)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, 100, 100)

	rec := app.do(http.MethodGet, "/nope", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", decode(t, rec).Status)
}
