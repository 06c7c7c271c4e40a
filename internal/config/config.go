package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with an
// optional .env file for local development.
type Config struct {
	Port string

	OrderServiceURL   string
	PaymentServiceURL string
	CardsServiceURL   string
	AuthServiceURL    string

	// RedisAddr empty disables cart snapshot persistence.
	RedisAddr string
	// RabbitURL empty disables the order status consumer.
	RabbitURL string

	// DeliveryFee is the fixed surcharge added at checkout confirmation.
	DeliveryFee float64
}

func Load() (Config, error) {
	// .env is a local convenience; absence is not an error
	_ = godotenv.Load()

	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		OrderServiceURL:   getEnv("ORDER_SERVICE_URL", "http://localhost:8081"),
		PaymentServiceURL: getEnv("PAYMENT_SERVICE_URL", "http://localhost:8082"),
		CardsServiceURL:   getEnv("CARDS_SERVICE_URL", "http://localhost:8083"),
		AuthServiceURL:    getEnv("AUTH_SERVICE_URL", "http://localhost:8084"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RabbitURL:         os.Getenv("RABBITMQ_URL"),
	}

	fee := getEnv("DELIVERY_FEE", "1.50")
	parsed, err := strconv.ParseFloat(fee, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse DELIVERY_FEE %q: %w", fee, err)
	}
	if parsed < 0 {
		return Config{}, fmt.Errorf("DELIVERY_FEE must be non-negative, got %s", fee)
	}
	cfg.DeliveryFee = parsed

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
