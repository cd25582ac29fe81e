package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"dev"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr       string `env:"HTTP_ADDR"`
	MigrationsPath string `env:"MIGRATIONS_PATH"`

	// DATABASE_URL is the runtime connection (often a pooler); DIRECT_URL is used
	// for migrations when set.
	DatabaseURL string `env:"DATABASE_URL"`
	DirectURL   string `env:"DIRECT_URL"`

	// PublicBaseURL is the externally reachable URL for this backend (required for webhook registration).
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	DB DBConfig `envPrefix:"DB_"`

	Shopify ShopifyConfig `envPrefix:"SHOPIFY_"`

	// Origins allowed to call the verify-token endpoint with credentials.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// Must be true behind TLS; the admin iframe only keeps SameSite=None; Secure cookies.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"false"`
}

type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	Name     string `env:"NAME" envDefault:"shopify_auth"`
	User     string `env:"USER" envDefault:"shopify_auth"`
	Password string `env:"PASSWORD" envDefault:"shopify_auth"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"10"`
}

type ShopifyConfig struct {
	APIKey    string `env:"API_KEY"`
	APISecret string `env:"API_SECRET"`

	// AppURL is the public host of this app without scheme, e.g. "abc.ngrok-free.app".
	AppURL string `env:"APP_URL"`

	Scopes          []string `env:"SCOPES" envSeparator:","`
	MyShopifyDomain string   `env:"MYSHOPIFY_DOMAIN" envDefault:"myshopify.com"`
	AccessMode      string   `env:"ACCESS_MODE" envDefault:"online"`
	AuthPrefix      string   `env:"AUTH_PREFIX"`
	TopLevelBounce  bool     `env:"TOP_LEVEL_BOUNCE" envDefault:"false"`
	FallbackRoute   string   `env:"FALLBACK_ROUTE" envDefault:"/install"`

	// VerifyAccess is "direct" (probe the shop) or "delegated" (call our verify-token endpoint).
	VerifyAccess string `env:"VERIFY_ACCESS" envDefault:"direct"`

	WebhookSecret string `env:"WEBHOOK_SECRET"`
	APIVersion    string `env:"API_VERSION" envDefault:"2025-10"`
}

func Load() (Config, error) {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	if cfg.HTTPAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.HTTPAddr = ":" + port
		} else {
			cfg.HTTPAddr = ":8081"
		}
	}
	if cfg.Shopify.WebhookSecret == "" {
		cfg.Shopify.WebhookSecret = cfg.Shopify.APISecret
	}
	return cfg, nil
}

// Validate reports the settings the OAuth flow cannot run without.
func (c Config) Validate() error {
	switch {
	case c.Shopify.APIKey == "":
		return fmt.Errorf("SHOPIFY_API_KEY is required")
	case c.Shopify.APISecret == "":
		return fmt.Errorf("SHOPIFY_API_SECRET is required")
	case c.Shopify.AppURL == "":
		return fmt.Errorf("SHOPIFY_APP_URL is required")
	}
	if c.Shopify.AccessMode != "online" && c.Shopify.AccessMode != "offline" {
		return fmt.Errorf("SHOPIFY_ACCESS_MODE must be online or offline, got %q", c.Shopify.AccessMode)
	}
	if c.Shopify.VerifyAccess != "direct" && c.Shopify.VerifyAccess != "delegated" {
		return fmt.Errorf("SHOPIFY_VERIFY_ACCESS must be direct or delegated, got %q", c.Shopify.VerifyAccess)
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "" || c.AppEnv == "dev" || c.AppEnv == "development"
}
