package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	TotalRecompute = "recompute"
	TotalTrust     = "trust"

	StatusPermissive = "permissive"
	StatusStrict     = "strict"
)

type Config struct {
	Port              string
	MongoURI          string
	DBName            string
	StoreDriver       string
	MongoTransactions bool
	SessionSecret     string
	SessionTTL        time.Duration
	SecureCookies     bool
	CORSOrigins       []string
	OrderTotalPolicy  string
	OrderStatusPolicy string
	RedisURL          string
	IdempotencyTTL    time.Duration
	UploadMaxBytes    int64
	AdminEmail        string
	AdminPassword     string
	LogLevel          string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		slog.Info(".env not loaded", "err", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	return Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		MongoURI:          getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:            getEnvOrDefault("DB_NAME", "bijouterie-luxe"),
		StoreDriver:       oneOf(getEnvOrDefault("STORE_DRIVER", StoreMongo), StoreMongo, StoreMemory),
		MongoTransactions: getBoolEnv("MONGO_TRANSACTIONS", true),
		SessionSecret:     getEnvOrDefault("SESSION_SECRET", "dev-session-secret"),
		SessionTTL:        getDurationEnv("SESSION_TTL_HOURS", 24*30, time.Hour),
		SecureCookies:     getBoolEnv("SECURE_COOKIES", false),
		CORSOrigins:       getListEnv("CORS_ORIGINS", []string{"http://localhost:3000"}),
		OrderTotalPolicy:  oneOf(getEnvOrDefault("ORDER_TOTAL_POLICY", TotalRecompute), TotalRecompute, TotalTrust),
		OrderStatusPolicy: oneOf(getEnvOrDefault("ORDER_STATUS_POLICY", StatusPermissive), StatusPermissive, StatusStrict),
		RedisURL:          getEnvOrDefault("REDIS_URL", ""),
		IdempotencyTTL:    getDurationEnv("IDEMPOTENCY_TTL_MINUTES", 10, time.Minute),
		UploadMaxBytes:    int64(getIntEnv("UPLOAD_MAX_BYTES", 5<<20)),
		AdminEmail:        strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "admin@bijouterie.local")),
		AdminPassword:     getEnvOrDefault("ADMIN_PASSWORD", "1234"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// oneOf falls back to the first allowed value when value is not recognised.
func oneOf(value string, allowed ...string) string {
	value = strings.ToLower(value)
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	slog.Warn("unknown config value, using default", "value", value, "default", allowed[0])
	return allowed[0]
}
