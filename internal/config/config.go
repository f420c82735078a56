package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the engagement API.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	IdentitySecret    string
	FeedCacheTTL      time.Duration
	MutationRateLimit int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ENGAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Engage API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("feed.cache_ttl", "2m")
	v.SetDefault("mutation.rate_limit", 30)

	ttlString := v.GetString("feed.cache_ttl")
	if ttlString == "" {
		ttlString = "2m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid feed cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		IdentitySecret:    v.GetString("identity.secret"),
		FeedCacheTTL:      ttl,
		MutationRateLimit: v.GetInt("mutation.rate_limit"),
	}

	if cfg.IdentitySecret == "" {
		return Config{}, fmt.Errorf("identity secret must be provided")
	}

	if cfg.MutationRateLimit <= 0 {
		cfg.MutationRateLimit = 30
	}

	return cfg, nil
}
