package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	custommiddleware "partnerbackend/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler    *AuthHandler
	AccountHandler *AccountHandler
	AssetHandler   *AssetHandler
	TradingHandler *TradingHandler
	PriceHandler   *PriceHandler
	Resolver       custommiddleware.UserResolver

	AllowedOrigins []string
	LoginRPS       float64
	LoginBurst     int
	Logger         *slog.Logger
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	e.HTTPErrorHandler = NewErrorHandler(config.Logger)
	e.Validator = NewRequestValidator()

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(requestLogger(config.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     config.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":    "healthy",
			"service":   "partner-backend",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	auth := custommiddleware.Auth(config.Resolver)
	limited := credentialRateLimit(config.LoginRPS, config.LoginBurst)

	e.POST("/token", config.AuthHandler.Token, limited)

	users := e.Group("/users")
	{
		users.POST("/register", config.AuthHandler.Register, limited)
		users.POST("/login", config.AuthHandler.Login, limited)
		users.POST("/logout", config.AuthHandler.Logout)
		users.GET("/me", config.AuthHandler.Me, auth)
	}

	accounts := e.Group("/accounts")
	{
		accounts.POST("", config.AccountHandler.Create, limited)
		accounts.GET("/me/trading", config.AccountHandler.Trading, auth)
		accounts.GET("/me/activities", config.AccountHandler.Activities, auth)
		accounts.GET("/:email", config.AccountHandler.GetByEmail)
	}

	assets := e.Group("/assets")
	{
		assets.GET("", config.AssetHandler.List)
		assets.GET("/symbols", config.AssetHandler.Symbols)
		assets.GET("/symbols/:symbol", config.AssetHandler.BySymbol)
		assets.GET("/names", config.AssetHandler.Names)
		assets.GET("/names/:name", config.AssetHandler.ByName)
	}

	orders := e.Group("/orders", auth)
	{
		orders.POST("", config.TradingHandler.SubmitOrder)
		orders.GET("", config.TradingHandler.ListOrders)
	}

	positions := e.Group("/positions", auth)
	{
		positions.GET("", config.TradingHandler.ListPositions)
		positions.DELETE("/:symbol", config.TradingHandler.ClosePosition)
	}

	e.POST("/funding/journal", config.TradingHandler.Journal, auth)

	prices := e.Group("/prices")
	{
		prices.GET("/bars", config.PriceHandler.Bars)
		prices.GET("/quote", config.PriceHandler.Quote)
	}

	e.GET("/logos/:symbol", config.PriceHandler.Logo)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.Warn("request", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}

// credentialRateLimit throttles credential endpoints per client IP
func credentialRateLimit(rps float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
