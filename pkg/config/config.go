package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/zatekoja/healthmarket/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Env       string
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	OpenAI    OpenAIConfig
	Pricing   PricingConfig
	Payment   PaymentConfig
	Auth      AuthConfig
	OTEL      OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// StorageConfig selects the key-value backend behind the repositories
type StorageConfig struct {
	Backend   string // memory, file, redis, postgres
	Dir       string
	KeyPrefix string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	Enabled bool
	URL     string
	APIKey  string
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	RateLimitRPM   int
	RateLimitBurst int
}

// PricingConfig holds the process-wide tax and fee constants
type PricingConfig struct {
	GSTRate               decimal.Decimal
	ConsultationFee       money.Paise
	PromiseFee            money.Paise
	DeliveryFee           money.Paise
	FreeDeliveryThreshold money.Paise
	StrictTransitions     bool
}

// PaymentConfig holds the UPI payee used for QR payment links
type PaymentConfig struct {
	UPIPayeeID   string
	UPIPayeeName string
	QRSize       int
}

// AuthConfig holds session token settings
type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// .env is optional
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ALLOWED_ORIGINS", "*")

	v.SetDefault("STORAGE_BACKEND", "memory")
	v.SetDefault("STORAGE_DIR", "./data")
	v.SetDefault("STORAGE_KEY_PREFIX", "healthmarket:")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "healthmarket")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("TYPESENSE_ENABLED", false)
	v.SetDefault("TYPESENSE_URL", "http://localhost:8108")
	v.SetDefault("TYPESENSE_API_KEY", "xyz")

	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_RATE_LIMIT_RPM", 60)
	v.SetDefault("OPENAI_RATE_LIMIT_BURST", 5)

	v.SetDefault("GST_RATE", "0.18")
	v.SetDefault("CONSULTATION_FEE", "500")
	v.SetDefault("PROMISE_FEE", "9")
	v.SetDefault("DELIVERY_FEE", "40")
	v.SetDefault("FREE_DELIVERY_THRESHOLD", "499")
	v.SetDefault("STRICT_TRANSITIONS", false)

	v.SetDefault("UPI_PAYEE_ID", "healthmarket@upi")
	v.SetDefault("UPI_PAYEE_NAME", "HealthMarket")
	v.SetDefault("QR_SIZE", 256)

	v.SetDefault("AUTH_TOKEN_SECRET", "dev-secret-change-me")
	v.SetDefault("AUTH_TOKEN_TTL", "24h")
	v.SetDefault("AUTH_ISSUER", "healthmarket")

	v.SetDefault("OTEL_SERVICE_NAME", "healthmarket")
	v.SetDefault("OTEL_SERVICE_VERSION", "1.0.0")
	v.SetDefault("OTEL_ENDPOINT", "")
	v.SetDefault("OTEL_ENABLED", false)
}

func fromViper(v *viper.Viper) (*Config, error) {
	gstRate, err := decimal.NewFromString(v.GetString("GST_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid GST_RATE: %w", err)
	}
	if gstRate.IsNegative() || gstRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("GST_RATE must be between 0 and 1, got %s", gstRate)
	}

	fees := map[string]money.Paise{}
	for _, key := range []string{"CONSULTATION_FEE", "PROMISE_FEE", "DELIVERY_FEE", "FREE_DELIVERY_THRESHOLD"} {
		amount, err := money.Parse(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		if amount < 0 {
			return nil, fmt.Errorf("%s must not be negative", key)
		}
		fees[key] = amount
	}

	backend := strings.ToLower(v.GetString("STORAGE_BACKEND"))
	switch backend {
	case "memory", "file", "redis", "postgres":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", backend)
	}

	return &Config{
		Env: v.GetString("APP_ENV"),
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Backend:   backend,
			Dir:       v.GetString("STORAGE_DIR"),
			KeyPrefix: v.GetString("STORAGE_KEY_PREFIX"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED") || backend == "redis",
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Typesense: TypesenseConfig{
			Enabled: v.GetBool("TYPESENSE_ENABLED"),
			URL:     v.GetString("TYPESENSE_URL"),
			APIKey:  v.GetString("TYPESENSE_API_KEY"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         v.GetString("OPENAI_API_KEY"),
			Model:          v.GetString("OPENAI_MODEL"),
			BaseURL:        v.GetString("OPENAI_BASE_URL"),
			RateLimitRPM:   v.GetInt("OPENAI_RATE_LIMIT_RPM"),
			RateLimitBurst: v.GetInt("OPENAI_RATE_LIMIT_BURST"),
		},
		Pricing: PricingConfig{
			GSTRate:               gstRate,
			ConsultationFee:       fees["CONSULTATION_FEE"],
			PromiseFee:            fees["PROMISE_FEE"],
			DeliveryFee:           fees["DELIVERY_FEE"],
			FreeDeliveryThreshold: fees["FREE_DELIVERY_THRESHOLD"],
			StrictTransitions:     v.GetBool("STRICT_TRANSITIONS"),
		},
		Payment: PaymentConfig{
			UPIPayeeID:   v.GetString("UPI_PAYEE_ID"),
			UPIPayeeName: v.GetString("UPI_PAYEE_NAME"),
			QRSize:       v.GetInt("QR_SIZE"),
		},
		Auth: AuthConfig{
			TokenSecret: v.GetString("AUTH_TOKEN_SECRET"),
			TokenTTL:    v.GetDuration("AUTH_TOKEN_TTL"),
			Issuer:      v.GetString("AUTH_ISSUER"),
		},
		OTEL: OTELConfig{
			ServiceName:    v.GetString("OTEL_SERVICE_NAME"),
			ServiceVersion: v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:       v.GetString("OTEL_ENDPOINT"),
			Enabled:        v.GetBool("OTEL_ENABLED"),
		},
	}, nil
}

// IsDevelopment reports whether the service runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
