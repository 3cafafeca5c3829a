package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Broker    BrokerConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string `env:"PORT" envDefault:"8080"`
	OpsPort string `env:"OPS_PORT" envDefault:"8081"`
	Env     string `env:"GO_ENV" envDefault:"development"`

	// Comma-separated list of allowed CORS origins
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL,required"`
}

// BrokerConfig holds credentials and endpoints for the brokerage API
type BrokerConfig struct {
	APIKey         string `env:"BROKER_API_KEY,required"`
	APISecret      string `env:"BROKER_API_SECRET,required"`
	BaseURL        string `env:"BROKER_BASE_URL" envDefault:"https://broker-api.sandbox.alpaca.markets"`
	DataURL        string `env:"MARKET_DATA_URL" envDefault:"https://data.sandbox.alpaca.markets"`
	SweepAccountID string `env:"SWEEP_ACCOUNT_ID" envDefault:"4c0563fb-40b9-3d89-89d5-a976d1b45e4f"`
}

// AuthConfig holds token signing and password hashing settings
type AuthConfig struct {
	SecretKey          string `env:"AUTH_SECRET_KEY,required"`
	Algorithm          string `env:"HASHING_ALGORITHM" envDefault:"HS256"`
	TokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"30"`
	BcryptCost         int    `env:"BCRYPT_COST" envDefault:"10"`
}

// CacheConfig holds memoization cache settings
type CacheConfig struct {
	Size         int           `env:"MEMO_CACHE_SIZE" envDefault:"1024"`
	LogoSize     int           `env:"LOGO_CACHE_SIZE" envDefault:"64"`
	TTL          time.Duration `env:"MEMO_CACHE_TTL" envDefault:"1h"`
	WarmSchedule string        `env:"CACHE_WARM_SCHEDULE" envDefault:"*/30 * * * *"`
}

// RateLimitConfig limits credential endpoints per client IP
type RateLimitConfig struct {
	LoginRPS   float64 `env:"LOGIN_RATE_LIMIT_RPS" envDefault:"5"`
	LoginBurst int     `env:"LOGIN_RATE_LIMIT_BURST" envDefault:"10"`
}

// LogConfig configures the application logger
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom loads configuration from the given key/value set instead of the
// process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cfg.Auth.TokenExpireMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", cfg.Auth.TokenExpireMinutes)
	}
	if cfg.Cache.Size < 0 {
		return nil, fmt.Errorf("MEMO_CACHE_SIZE must not be negative, got %d", cfg.Cache.Size)
	}
	if cfg.Cache.LogoSize < 0 {
		return nil, fmt.Errorf("LOGO_CACHE_SIZE must not be negative, got %d", cfg.Cache.LogoSize)
	}
	return cfg, nil
}

// TokenTTL returns the default access token lifetime
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenExpireMinutes) * time.Minute
}

// IsProduction returns true if running in production mode
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// AllowedOrigins parses the comma-separated origins string into a slice
func (c *ServerConfig) AllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
