package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

type GatewayConfig struct {
	BaseURL   string
	APIKey    string
	Provider  string
	Currency  string
	ReturnURL string
	CancelURL string
}

type CheckoutConfig struct {
	HoldTTL       time.Duration
	SweepInterval time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverHost := os.Getenv("SERVER_HOST")
	if serverHost == "" {
		serverHost = "localhost"
	}

	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080"
	}

	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid SERVER_PORT: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: serverHost,
		Port: serverPort,
	}

	postgresHost := os.Getenv("POSTGRES_HOST")
	if postgresHost == "" {
		postgresHost = "localhost"
	}

	postgresPortStr := os.Getenv("POSTGRES_PORT")
	if postgresPortStr == "" {
		postgresPortStr = "5432"
	}

	postgresPort, err := strconv.Atoi(postgresPortStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid POSTGRES_PORT: %w", op, err)
	}

	postgresUser := os.Getenv("POSTGRES_USER")
	if postgresUser == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_USER", op)
	}

	postgresPassword := os.Getenv("POSTGRES_PASSWORD")
	if postgresPassword == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_PASSWORD", op)
	}

	postgresDB := os.Getenv("POSTGRES_DB")
	if postgresDB == "" {
		return nil, fmt.Errorf("%s: missing POSTGRES_DB", op)
	}

	postgresSSLMode := os.Getenv("POSTGRES_SSLMODE")
	if postgresSSLMode == "" {
		postgresSSLMode = "disable"
	}

	postgresCfg := PostgresConfig{
		User:     postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		Host:     postgresHost,
		Port:     postgresPort,
		SSLMode:  postgresSSLMode,
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisCfg := RedisConfig{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	}

	gatewayBaseURL := os.Getenv("GATEWAY_BASE_URL")
	if gatewayBaseURL == "" {
		return nil, fmt.Errorf("%s: missing GATEWAY_BASE_URL", op)
	}

	gatewayProvider := os.Getenv("GATEWAY_PROVIDER")
	if gatewayProvider == "" {
		gatewayProvider = "liqpay"
	}

	gatewayCurrency := os.Getenv("GATEWAY_CURRENCY")
	if gatewayCurrency == "" {
		gatewayCurrency = "USD"
	}

	gatewayCfg := GatewayConfig{
		BaseURL:   gatewayBaseURL,
		APIKey:    os.Getenv("GATEWAY_API_KEY"),
		Provider:  gatewayProvider,
		Currency:  gatewayCurrency,
		ReturnURL: os.Getenv("GATEWAY_RETURN_URL"),
		CancelURL: os.Getenv("GATEWAY_CANCEL_URL"),
	}

	holdTTL := 15 * time.Minute
	if v := os.Getenv("HOLD_TTL"); v != "" {
		holdTTL, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid HOLD_TTL: %w", op, err)
		}
	}

	sweepInterval := time.Minute
	if v := os.Getenv("SWEEP_INTERVAL"); v != "" {
		sweepInterval, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid SWEEP_INTERVAL: %w", op, err)
		}
	}

	checkoutCfg := CheckoutConfig{
		HoldTTL:       holdTTL,
		SweepInterval: sweepInterval,
	}

	return &Config{
		Server:   serverCfg,
		Postgres: postgresCfg,
		Redis:    redisCfg,
		Gateway:  gatewayCfg,
		Checkout: checkoutCfg,
	}, nil
}
