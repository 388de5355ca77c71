package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Checkout pricing constants. The shipping boundary is exclusive: a subtotal
// equal to the threshold still pays the flat fee.
const (
	FreeShippingThreshold = 200.0
	FlatShippingFee       = 25.0
	TaxRate               = 0.08
)

// SessionProfile bundles the admin session timeout configuration. Hardened is
// the default; Relaxed mirrors the legacy 24-hour client-side profile and
// should not be used for new deployments.
type SessionProfile struct {
	MaxAge      time.Duration
	MaxIdle     time.Duration
	HiddenGrace time.Duration
}

var (
	HardenedProfile = SessionProfile{
		MaxAge:      5 * time.Minute,
		MaxIdle:     10 * time.Minute,
		HiddenGrace: time.Minute,
	}

	// RelaxedProfile is the legacy profile. Insecure: sessions survive a full day.
	RelaxedProfile = SessionProfile{
		MaxAge:      24 * time.Hour,
		MaxIdle:     24 * time.Hour,
		HiddenGrace: time.Minute,
	}
)

type Config struct {
	Port string

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Host     string
		Port     string
		Password string
	}

	Kafka struct {
		Broker string
		Topic  string
	}

	SMTP struct {
		Host      string
		Port      int
		User      string
		Password  string
		From      string
		Recipient string
	}

	Admin struct {
		Email        string
		PasswordHash string
		JWTSecret    string
	}

	// TaxEnabled controls whether checkout totals include the tax line.
	TaxEnabled bool

	Session SessionProfile

	DashboardRefresh time.Duration
}

func Load(logger *zap.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment")
	}

	cfg := &Config{}
	cfg.Port = getEnv("PORT", "8080")

	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Name = getEnv("DB_NAME", "nujuumarts")

	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")

	cfg.Kafka.Broker = getEnv("KAFKA_BROKER", "localhost:9092")
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", "order_events")

	cfg.SMTP.Host = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTP.Port = getEnvInt("SMTP_PORT", 465)
	cfg.SMTP.User = getEnv("SMTP_USER", "")
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.SMTP.From = getEnv("SMTP_FROM", "noreply@nujuumarts.com")
	cfg.SMTP.Recipient = getEnv("ORDER_NOTIFICATION_EMAIL", "")

	cfg.Admin.Email = getEnv("ADMIN_EMAIL", "")
	cfg.Admin.PasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")
	cfg.Admin.JWTSecret = getEnv("JWT_SECRET", "change-me-in-production")

	cfg.TaxEnabled = getEnv("TAX_ENABLED", "false") == "true"

	cfg.Session = HardenedProfile
	if getEnv("SESSION_PROFILE", "hardened") == "relaxed" {
		logger.Warn("Using relaxed session profile; this is a legacy insecure configuration")
		cfg.Session = RelaxedProfile
	}

	cfg.DashboardRefresh = time.Duration(getEnvInt("DASHBOARD_REFRESH_SECONDS", 30)) * time.Second

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
