package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Backend API configuration
	BackendBaseURL string
	BackendTimeout time.Duration

	// Chain configuration
	ChainRPCURL      string
	PaymentTokenAddr string
	TicketingAddr    string
	TokenDecimals    int32
	ConfirmPollEvery time.Duration
	ConfirmTimeout   time.Duration

	// Redis configuration
	RedisURL string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubUUID         string

	// Session store
	SessionStorePath string

	// Cache configuration
	CatalogCacheTTL time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	// Missing .env is fine, real env vars still apply.
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment")
	}

	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Backend API
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:4000"),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", "10s"),

		// Chain
		ChainRPCURL:      getEnv("CHAIN_RPC_URL", "http://localhost:8545"),
		PaymentTokenAddr: getEnv("PAYMENT_TOKEN_ADDRESS", ""),
		TicketingAddr:    getEnv("TICKETING_CONTRACT_ADDRESS", ""),
		TokenDecimals:    int32(getEnvAsInt("TOKEN_DECIMALS", 18)),
		ConfirmPollEvery: getEnvAsDuration("CONFIRM_POLL_INTERVAL", "2s"),
		ConfirmTimeout:   getEnvAsDuration("CONFIRM_TIMEOUT", "2m"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "localhost:6379"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUUID:         getEnv("PUBNUB_UUID", "ticket-chain-gateway"),

		// Session store
		SessionStorePath: getEnv("SESSION_STORE_PATH", "./data/session.json"),

		// Cache
		CatalogCacheTTL: getEnvAsDuration("CATALOG_CACHE_TTL", "30s"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
