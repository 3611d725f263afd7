package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Checkout CheckoutConfig
	Promo    PromoConfig
	S3       S3Config
	Mail     MailConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Notify   NotifyConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds token signing and auth endpoint throttling configuration.
type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	RateLimit       float64 // requests per second per client IP
	RateBurst       int
}

// CheckoutConfig holds the pricing rules applied when an order is placed.
type CheckoutConfig struct {
	TaxRate     decimal.Decimal // fraction of subtotal, 0.08 = 8%
	ShippingFee decimal.Decimal // flat fee per order
}

// PromoConfig holds promo code validation configuration.
type PromoConfig struct {
	Enabled         bool
	Files           []string
	MinMatchCount   int
	MinLength       int
	MaxLength       int
	DiscountPercent decimal.Decimal
}

// S3Config holds AWS S3 configuration for promo code files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "promo/")
}

// MailConfig holds SMTP configuration. An empty host disables mail.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// KafkaConfig holds event publishing configuration. No brokers disables the sink.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RedisConfig holds pub/sub configuration. An empty address disables the sink.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NotifyConfig holds notification dispatch configuration.
type NotifyConfig struct {
	Timeout time.Duration
}

// Load loads configuration from environment variables, falling back to an
// optional config.yaml in the working directory.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv(v, "SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt(v, "SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList(v, "CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:            getEnv(v, "DB_HOST", "localhost"),
			Port:            getEnvAsInt(v, "DB_PORT", 5432),
			User:            getEnv(v, "DB_USER", "postgres"),
			Password:        getEnv(v, "DB_PASSWORD", ""),
			Database:        getEnv(v, "DB_NAME", "storefront"),
			MaxConnections:  getEnvAsInt(v, "DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt(v, "DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt(v, "DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv(v, "LOG_LEVEL", "info"),
			Format: getEnv(v, "LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv(v, "JWT_SECRET", ""),
			AccessTokenTTL:  getEnvAsDuration(v, "JWT_ACCESS_TTL", time.Hour),
			RefreshTokenTTL: getEnvAsDuration(v, "JWT_REFRESH_TTL", 30*24*time.Hour),
			RateLimit:       getEnvAsFloat(v, "AUTH_RATE_LIMIT", 1),
			RateBurst:       getEnvAsInt(v, "AUTH_RATE_BURST", 5),
		},
		Checkout: CheckoutConfig{
			TaxRate:     getEnvAsDecimal(v, "CHECKOUT_TAX_RATE", decimal.Zero),
			ShippingFee: getEnvAsDecimal(v, "CHECKOUT_SHIPPING_FEE", decimal.Zero),
		},
		Promo: PromoConfig{
			Enabled: getEnvAsBool(v, "PROMO_ENABLED", false),
			Files: getEnvAsList(v, "PROMO_FILES", []string{
				"data/promo/codes1.gz",
				"data/promo/codes2.gz",
				"data/promo/codes3.gz",
			}),
			MinMatchCount:   getEnvAsInt(v, "PROMO_MIN_MATCH_COUNT", 2),
			MinLength:       getEnvAsInt(v, "PROMO_MIN_LENGTH", 8),
			MaxLength:       getEnvAsInt(v, "PROMO_MAX_LENGTH", 10),
			DiscountPercent: getEnvAsDecimal(v, "PROMO_DISCOUNT_PERCENT", decimal.NewFromInt(10)),
		},
		S3: S3Config{
			Enabled: getEnvAsBool(v, "S3_ENABLED", false),
			Bucket:  getEnv(v, "S3_BUCKET", ""),
			Region:  getEnv(v, "S3_REGION", "us-east-1"),
			Prefix:  getEnv(v, "S3_PREFIX", "promo/"),
		},
		Mail: MailConfig{
			Host:     getEnv(v, "MAIL_HOST", ""),
			Port:     getEnvAsInt(v, "MAIL_PORT", 587),
			Username: getEnv(v, "MAIL_USERNAME", ""),
			Password: getEnv(v, "MAIL_PASSWORD", ""),
			From:     getEnv(v, "MAIL_FROM", "orders@storefront.local"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList(v, "KAFKA_BROKERS", nil),
			Topic:   getEnv(v, "KAFKA_TOPIC", "storefront.events"),
		},
		Redis: RedisConfig{
			Addr:     getEnv(v, "REDIS_ADDR", ""),
			Password: getEnv(v, "REDIS_PASSWORD", ""),
			DB:       getEnvAsInt(v, "REDIS_DB", 0),
			Channel:  getEnv(v, "REDIS_CHANNEL", "storefront:events"),
		},
		Notify: NotifyConfig{
			Timeout: getEnvAsDuration(v, "NOTIFY_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// newViper builds a viper instance that resolves keys from the environment
// first and from config.yaml second.
func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Checkout.TaxRate.IsNegative() || c.Checkout.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid tax rate: %s (must be between 0 and 1)", c.Checkout.TaxRate)
	}

	if c.Checkout.ShippingFee.IsNegative() {
		return fmt.Errorf("shipping fee cannot be negative")
	}

	if c.Promo.Enabled {
		if len(c.Promo.Files) == 0 {
			return fmt.Errorf("promo files are required when promo codes are enabled")
		}
		if c.Promo.MinMatchCount < 1 || c.Promo.MinMatchCount > len(c.Promo.Files) {
			return fmt.Errorf("promo min match count must be between 1 and %d", len(c.Promo.Files))
		}
		if c.Promo.MinLength > c.Promo.MaxLength {
			return fmt.Errorf("promo min length cannot exceed max length")
		}
		if !c.Promo.DiscountPercent.IsPositive() || c.Promo.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("promo discount percent must be between 0 and 100")
		}
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Mail.Host != "" && (c.Mail.Port < 1 || c.Mail.Port > 65535) {
		return fmt.Errorf("invalid mail port: %d", c.Mail.Port)
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are configured")
	}

	if c.Notify.Timeout <= 0 {
		return fmt.Errorf("notification timeout must be positive")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether an SMTP host is configured.
func (c *MailConfig) Enabled() bool {
	return c.Host != ""
}

// getEnv retrieves a value or returns a default value.
func getEnv(v *viper.Viper, key, defaultValue string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves a value as an integer or returns a default value.
func getEnvAsInt(v *viper.Viper, key string, defaultValue int) int {
	if value := getEnv(v, key, ""); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves a value as a float or returns a default value.
func getEnvAsFloat(v *viper.Viper, key string, defaultValue float64) float64 {
	if value := getEnv(v, key, ""); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves a value as a boolean or returns a default value.
func getEnvAsBool(v *viper.Viper, key string, defaultValue bool) bool {
	if value := getEnv(v, key, ""); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves a value as a duration ("90s", "1h") or returns a default value.
func getEnvAsDuration(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	if value := getEnv(v, key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsDecimal retrieves a value as a decimal or returns a default value.
func getEnvAsDecimal(v *viper.Viper, key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := getEnv(v, key, ""); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma separated value or returns a default value.
func getEnvAsList(v *viper.Viper, key string, defaultValue []string) []string {
	value := getEnv(v, key, "")
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
