package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port            string
	LogLevel        string
	DatabaseURL     string
	RunMigrations   bool
	JWTSecret       string
	JWTTTL          time.Duration
	AppBaseURL      string
	DefaultCurrency string
	CORSOrigins     []string
	SecureCookies   bool

	PaymentGateway string
	MercadoPago    MercadoPagoConfig
	PayOS          PayOSConfig

	SMTP SMTPConfig

	RedisURL       string
	KafkaBrokers   []string
	KafkaTopic     string
	JaegerEndpoint string
}

type MercadoPagoConfig struct {
	AccessToken string
}

type PayOSConfig struct {
	ClientID    string
	ApiKey      string
	ChecksumKey string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool
}

// Load loads configuration from environment variables, reading a .env file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		RunMigrations:   getBoolOrDefault("RUN_MIGRATIONS", true),
		JWTTTL:          time.Duration(getIntOrDefault("JWT_TTL_HOURS", 72)) * time.Hour,
		CORSOrigins:     splitList(os.Getenv("CORS_ORIGINS")),
		SecureCookies:   getBoolOrDefault("SECURE_COOKIES", false),
		AppBaseURL:      strings.TrimRight(getEnvOrDefault("APP_BASE_URL", "http://localhost:8080"), "/"),
		DefaultCurrency: strings.ToUpper(getEnvOrDefault("DEFAULT_CURRENCY", "CLP")),
		PaymentGateway:  strings.ToLower(getEnvOrDefault("PAYMENT_GATEWAY", "mercadopago")),
		MercadoPago: MercadoPagoConfig{
			AccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		},
		PayOS: PayOSConfig{
			ClientID:    os.Getenv("PAYOS_CLIENT_ID"),
			ApiKey:      os.Getenv("PAYOS_API_KEY"),
			ChecksumKey: os.Getenv("PAYOS_CHECKSUM_KEY"),
		},
		SMTP: SMTPConfig{
			Host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
			Port:     getIntOrDefault("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			FromName: getEnvOrDefault("SMTP_FROM_NAME", "Deseos"),
			UseSSL:   getBoolOrDefault("SMTP_USE_SSL", false),
		},
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnvOrDefault("KAFKA_TOPIC", "payments"),
		JaegerEndpoint: os.Getenv("JAEGER_ENDPOINT"),
	}

	// Required environment variables
	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	switch cfg.PaymentGateway {
	case "mercadopago", "payos":
	default:
		return nil, fmt.Errorf("unsupported PAYMENT_GATEWAY %q", cfg.PaymentGateway)
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
