package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinCookieSecretLength はCOOKIE_SECRETに要求する最小文字数。
const MinCookieSecretLength = 32

// セッションストアのバックエンド種別。
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Admin credentials
	AdminUsername string `env:"ADMIN_USERNAME,required,notEmpty"`
	AdminPassword string `env:"ADMIN_PASSWORD,required,notEmpty"`

	// Cookie
	CookieSecret string `env:"COOKIE_SECRET,required,notEmpty"`
	CookieSecure bool   `env:"-"`

	// Session
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"memory"`
	RedisURL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Rate Limit (requests per minute)
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitWrite   int `env:"RATE_LIMIT_WRITE" envDefault:"30"`

	// Sorting
	SortLocale string `env:"SORT_LOCALE" envDefault:"sv"`

	// Import
	ImportFile string `env:"IMPORT_FILE" envDefault:"stores.json"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"3001"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:3001"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
}

// Load はカレントディレクトリの.envがあれば読み込んだ上で、環境変数からConfigを読み込む。
// 既に設定済みの環境変数は.envで上書きしない。
// 必須環境変数が未設定、または値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.CookieSecret) < MinCookieSecretLength {
		return fmt.Errorf("COOKIE_SECRET must be at least %d characters", MinCookieSecretLength)
	}

	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.RateLimitGeneral <= 0 || c.RateLimitWrite <= 0 {
		return errors.New("rate limits must be positive")
	}

	return nil
}
