package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the runtime configuration, read from the environment.
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	// APIBaseURL is the order-management REST API. Empty runs the in-memory
	// backend.
	APIBaseURL string        `mapstructure:"API_BASE_URL"`
	APITimeout time.Duration `mapstructure:"API_TIMEOUT"`
	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	// RabbitMQURL enables the broker notification sink when set.
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`
	DBDriver    string `mapstructure:"DB_DRIVER"`
	// DatabaseDSN enables payment tickets when set.
	DatabaseDSN        string        `mapstructure:"DATABASE_DSN"`
	PaymentTicketTTL   time.Duration `mapstructure:"PAYMENT_TICKET_TTL"`
	PaymentSuccessPath string        `mapstructure:"PAYMENT_SUCCESS_PATH"`
	PaymentCancelPath  string        `mapstructure:"PAYMENT_CANCEL_PATH"`
	CartPath           string        `mapstructure:"CART_PATH"`
	LoginPath          string        `mapstructure:"LOGIN_PATH"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
}

// SetDefaults registers every key with its default so AutomaticEnv can
// override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("API_BASE_URL", "")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("JWT_SECRET", "storefront-dev-secret")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("PAYMENT_TICKET_TTL", "30m")
	v.SetDefault("PAYMENT_SUCCESS_PATH", "/user/cart/success")
	v.SetDefault("PAYMENT_CANCEL_PATH", "/user/cart/cancel")
	v.SetDefault("CART_PATH", "/user/cart")
	v.SetDefault("LOGIN_PATH", "/login")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the configuration from v, which should already have
// AutomaticEnv enabled.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would make the service misbehave.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.PaymentTicketTTL <= 0 {
		return fmt.Errorf("PAYMENT_TICKET_TTL must be positive, got %s", c.PaymentTicketTTL)
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	for key, p := range map[string]string{
		"PAYMENT_SUCCESS_PATH": c.PaymentSuccessPath,
		"PAYMENT_CANCEL_PATH":  c.PaymentCancelPath,
		"CART_PATH":            c.CartPath,
		"LOGIN_PATH":           c.LoginPath,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must be an absolute path, got %q", key, p)
		}
	}
	if c.PaymentSuccessPath == c.PaymentCancelPath {
		return fmt.Errorf("PAYMENT_SUCCESS_PATH and PAYMENT_CANCEL_PATH must differ")
	}
	return nil
}

// InMemoryBackend reports whether no REST API is configured.
func (c Config) InMemoryBackend() bool {
	return c.APIBaseURL == ""
}
