package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, Redis, collaborator
//   endpoints), security settings
// - default: Values common across all environments (timeouts, thresholds),
//   standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server       ServerConfig
	Redis        RedisConfig
	CORS         CORSConfig
	Log          LogConfig
	Checkout     CheckoutConfig
	Collaborator CollaboratorConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

// CheckoutConfig carries the delivery settings. They are read once at
// startup and treated as immutable for the lifetime of a checkout session.
type CheckoutConfig struct {
	FreeDeliveryThreshold string        `envconfig:"FREE_DELIVERY_THRESHOLD" default:"1500"`
	BaseDeliveryCharge    string        `envconfig:"BASE_DELIVERY_CHARGE" default:"60"`
	MonitorInterval       time.Duration `envconfig:"SLOT_MONITOR_INTERVAL" default:"1m"`
	ScopeTTL              time.Duration `envconfig:"CHECKOUT_SCOPE_TTL" default:"72h"`
}

type CollaboratorConfig struct {
	PromoServiceURL  string        `envconfig:"PROMO_SERVICE_URL" required:"true"`
	WalletServiceURL string        `envconfig:"WALLET_SERVICE_URL" required:"true"`
	OrderServiceURL  string        `envconfig:"ORDER_SERVICE_URL" required:"true"`
	RequestTimeout   time.Duration `envconfig:"COLLABORATOR_TIMEOUT" default:"10s"`
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *CheckoutConfig) FreeDeliveryThresholdAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(c.FreeDeliveryThreshold)
}

func (c *CheckoutConfig) BaseDeliveryChargeAmount() (decimal.Decimal, error) {
	return decimal.NewFromString(c.BaseDeliveryCharge)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "16380", // Test Redis port
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Checkout: CheckoutConfig{
			FreeDeliveryThreshold: "1500",
			BaseDeliveryCharge:    "60",
			MonitorInterval:       time.Minute,
			ScopeTTL:              72 * time.Hour,
		},
		Collaborator: CollaboratorConfig{
			PromoServiceURL:  "http://localhost:18081",
			WalletServiceURL: "http://localhost:18082",
			OrderServiceURL:  "http://localhost:18083",
			RequestTimeout:   2 * time.Second,
		},
	}
}
