package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingStripeKey = errors.New("STRIPE_SECRET_KEY environment variable is required")
	ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")
	ErrShortJWTSecret   = errors.New("JWT_SECRET must be at least 32 characters long")
)

const minJWTSecretLength = 32

// Config is read from the environment once at startup.
type Config struct {
	Port          string
	AllowedOrigin string

	// Empty DatabaseURL keeps warranty policies in memory.
	DatabaseURL string

	KafkaBrokers          []string
	CheckoutTopic         string
	NotificationTopic     string
	NotifierConsumerGroup string

	StripeSecretKey    string
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	JWTSecret string
	JWTIssuer string

	SuccessURL       string
	CancelURL        string
	Locale           string
	MerchantLabel    string
	AllowedCountries []string

	SMTPHost string
	SMTPPort string
	SMTPFrom string
}

// Load reads the configuration, falling back to local development
// defaults.
func Load() (*Config, error) {
	maxFailures, err := getEnvInt("STRIPE_BREAKER_MAX_FAILURES", 5)
	if err != nil {
		return nil, err
	}
	openTimeout, err := getEnvDuration("STRIPE_BREAKER_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", ""),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		KafkaBrokers:          splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		CheckoutTopic:         getEnv("KAFKA_CHECKOUT_TOPIC", "checkout-events"),
		NotificationTopic:     getEnv("KAFKA_NOTIFICATION_TOPIC", "storefront-notifications"),
		NotifierConsumerGroup: getEnv("KAFKA_NOTIFIER_GROUP", "checkout-notifier"),

		StripeSecretKey:    os.Getenv("STRIPE_SECRET_KEY"),
		BreakerMaxFailures: uint32(maxFailures),
		BreakerOpenTimeout: openTimeout,

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		SuccessURL:       getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:        getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/cart"),
		Locale:           getEnv("CHECKOUT_LOCALE", "cs"),
		MerchantLabel:    getEnv("MERCHANT_LABEL", "storefront"),
		AllowedCountries: splitList(getEnv("CHECKOUT_ALLOWED_COUNTRIES", "")),

		SMTPHost: getEnv("SMTP_HOST", "localhost"),
		SMTPPort: getEnv("SMTP_PORT", "1025"),
		SMTPFrom: getEnv("SMTP_FROM", "noreply@example.com"),
	}, nil
}

// ValidateAPI checks the secrets the checkout API cannot start without.
func (c *Config) ValidateAPI() error {
	if c.StripeSecretKey == "" {
		return ErrMissingStripeKey
	}
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return ErrShortJWTSecret
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
