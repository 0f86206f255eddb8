package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL  string
	SteamAPIKey  string
	PriceAPIBase string
	Port         string
	Environment  string

	// FreshnessWindow is how long a confirmed price or holdings value is
	// trusted before the next request triggers a live fetch.
	FreshnessWindow time.Duration
}

func Load() *Config {
	defaultDSN := "root:@tcp(127.0.0.1:3306)/rust_tracker?charset=utf8mb4&parseTime=True&loc=Local"

	return &Config{
		DatabaseURL:     getEnv("DATABASE_URL", defaultDSN),
		SteamAPIKey:     getEnv("STEAM_API_KEY", ""),
		PriceAPIBase:    getEnv("PRICE_API_BASE", "https://db.rust.xdd.moe"),
		Port:            getEnv("PORT", "6976"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FreshnessWindow: time.Duration(getEnvInt("FRESHNESS_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
