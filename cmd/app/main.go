package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"partnerbackend/configs"
	"partnerbackend/internal/adapter"
	"partnerbackend/internal/database"
	delivery "partnerbackend/internal/delivery/http"
	"partnerbackend/internal/delivery/ops"
	"partnerbackend/internal/infra"
	"partnerbackend/internal/repository"
	"partnerbackend/internal/service"
	"partnerbackend/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := configs.Load()
	if err != nil {
		return err
	}

	logger := infra.NewLogger(cfg.Log.Level)
	if envErr != nil {
		logger.Info(".env file not found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credential store
	db, err := infra.NewDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, logger); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)

	// Services
	credentials, err := service.NewCredentialService(userRepo, cfg.Auth.BcryptCost, logger)
	if err != nil {
		return err
	}
	tokens, err := service.NewTokenService(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.TokenTTL())
	if err != nil {
		return fmt.Errorf("invalid token configuration: %w", err)
	}
	gate := service.NewAuthGate(tokens, credentials)

	// Broker and market data
	brokerClient := adapter.NewBrokerClient(cfg.Broker.BaseURL, cfg.Broker.APIKey, cfg.Broker.APISecret, logger)
	marketData := adapter.NewMarketData(cfg.Broker.DataURL, cfg.Broker.APIKey, cfg.Broker.APISecret, logger)

	brokerage := usecase.NewBrokerageService(
		brokerClient,
		marketData,
		credentials,
		cfg.Broker.SweepAccountID,
		usecase.CacheConfig{Size: cfg.Cache.Size, LogoSize: cfg.Cache.LogoSize, TTL: cfg.Cache.TTL},
		logger,
	)

	// Cache warming
	scheduler := infra.NewScheduler(brokerage, cfg.Cache.WarmSchedule, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	go func() {
		if err := scheduler.RunNow(ctx); err != nil {
			logger.Warn("initial cache warming failed", "error", err)
		}
	}()

	// Public API
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:    delivery.NewAuthHandler(credentials, tokens, gate, cfg.Server.IsProduction()),
		AccountHandler: delivery.NewAccountHandler(brokerage),
		AssetHandler:   delivery.NewAssetHandler(brokerage),
		TradingHandler: delivery.NewTradingHandler(brokerage),
		PriceHandler:   delivery.NewPriceHandler(brokerage),
		Resolver:       gate,
		AllowedOrigins: cfg.Server.AllowedOrigins(),
		LoginRPS:       cfg.RateLimit.LoginRPS,
		LoginBurst:     cfg.RateLimit.LoginBurst,
		Logger:         logger,
	})

	apiServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	opsServer := &http.Server{
		Addr:         ":" + cfg.Server.OpsPort,
		Handler:      ops.NewRouter(userRepo, brokerage, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errs := make(chan error, 2)
	for name, srv := range map[string]*http.Server{"api": apiServer, "ops": opsServer} {
		go func() {
			logger.Info("server starting", "server", name, "addr", srv.Addr, "env", cfg.Server.Env)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- fmt.Errorf("%s server: %w", name, err)
			}
		}()
	}

	// Wait for interrupt signal or a listener failure
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errs:
		logger.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	for _, srv := range []*http.Server{apiServer, opsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", "addr", srv.Addr, "error", err)
		}
	}

	logger.Info("server exited")
	return runErr
}
