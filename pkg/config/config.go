package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable read by the service.
	EnvPrefix = "fechou"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Billing      BillingConfig
	Stripe       StripeConfig
	AI           AIConfig
	Entitlements EntitlementsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FECHOU_APP_ENV" required:"true"`
	Port         string `envconfig:"FECHOU_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FECHOU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FECHOU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FECHOU_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FECHOU_DB_DSN"`
	Driver string `envconfig:"FECHOU_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FECHOU_DB_HOST"`
	LegacyPort     int    `envconfig:"FECHOU_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FECHOU_DB_USER"`
	LegacyPassword string `envconfig:"FECHOU_DB_PASSWORD"`
	LegacyName     string `envconfig:"FECHOU_DB_NAME"`
	LegacySSLMode  string `envconfig:"FECHOU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FECHOU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FECHOU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FECHOU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FECHOU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name parts are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.LegacyHost, d.LegacyPort, d.LegacyUser, d.LegacyPassword, d.LegacyName, d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"FECHOU_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FECHOU_REDIS_ADDR"`
	Password     string        `envconfig:"FECHOU_REDIS_PASSWORD"`
	DB           int           `envconfig:"FECHOU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FECHOU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FECHOU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FECHOU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FECHOU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FECHOU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FECHOU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FECHOU_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FECHOU_JWT_EXPIRATION_MINUTES" default:"60"`
}

type BillingConfig struct {
	// BusinessAmountCents is the fallback threshold when a payment carries no
	// recognizable price id: amounts at or above it map to Business.
	BusinessAmountCents int64         `envconfig:"FECHOU_BILLING_BUSINESS_AMOUNT_CENTS" default:"10000"`
	CheckoutSuccessURL  string        `envconfig:"FECHOU_BILLING_CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/?session_id={CHECKOUT_SESSION_ID}"`
	CheckoutCancelURL   string        `envconfig:"FECHOU_BILLING_CHECKOUT_CANCEL_URL" default:"http://localhost:3000/planos"`
	WebhookEventTTL     time.Duration `envconfig:"FECHOU_BILLING_WEBHOOK_EVENT_TTL" default:"720h"`
}

type StripeConfig struct {
	APIKey string `envconfig:"FECHOU_STRIPE_API_KEY"`
	Secret string `envconfig:"FECHOU_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"FECHOU_STRIPE_ENV" default:"test"`
}

// Environment reports the configured Stripe environment string.
func (s StripeConfig) Environment() string {
	return s.Env
}

type AIConfig struct {
	APIKey  string        `envconfig:"FECHOU_AI_API_KEY"`
	BaseURL string        `envconfig:"FECHOU_AI_BASE_URL" default:"https://api.openai.com/v1"`
	Model   string        `envconfig:"FECHOU_AI_MODEL" default:"gpt-4o-mini"`
	Timeout time.Duration `envconfig:"FECHOU_AI_TIMEOUT" default:"30s"`
}

type EntitlementsConfig struct {
	// CycleLength is the usage counting window; counters older than this are
	// reset by the cron worker.
	CycleLength time.Duration `envconfig:"FECHOU_ENTITLEMENTS_CYCLE_LENGTH" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FECHOU_AUTO_MIGRATE" default:"false"`
}
