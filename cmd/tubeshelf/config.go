package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL       string
	Addr              string
	CORSAllowedOrigin string // comma-separated

	SecretKey    string
	Algorithm    string
	TokenTTL     time.Duration
	CookieSecure bool

	Algolia  AlgoliaConfig
	RedisURL string

	LogLevel  string
	LogFormat string
	SeedDemo  bool
}

// AlgoliaConfig selects the hosted search index. All three fields or none.
type AlgoliaConfig struct {
	AppID     string
	APIKey    string
	IndexName string
}

// Enabled reports whether any Algolia setting was provided.
func (a AlgoliaConfig) Enabled() bool {
	return a.AppID != "" || a.APIKey != "" || a.IndexName != ""
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")
	return configFromEnv(os.Getenv)
}

// configFromEnv reads every setting through getenv and validates the result.
func configFromEnv(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			return value
		}
		return fallback
	}

	var problems []string

	port := env("PORT", "8080")
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		problems = append(problems, "PORT must be between 1 and 65535")
	}

	minutes, err := strconv.Atoi(env("ACCESS_TOKEN_EXPIRE_MINUTES", "60"))
	if err != nil || minutes < 1 {
		problems = append(problems, "ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer")
	}

	secure, err := strconv.ParseBool(env("COOKIE_SECURE", "true"))
	if err != nil {
		problems = append(problems, "COOKIE_SECURE must be a boolean")
	}

	seed, err := strconv.ParseBool(env("SEED_DEMO", "false"))
	if err != nil {
		problems = append(problems, "SEED_DEMO must be a boolean")
	}

	cfg := Config{
		DatabaseURL:       env("DATABASE_URL", ""),
		Addr:              ":" + port,
		CORSAllowedOrigin: env("CORS_ALLOWED_ORIGIN", ""),
		SecretKey:         getenv("SECRET_KEY"),
		Algorithm:         env("ALGORITHM", "HS256"),
		TokenTTL:          time.Duration(minutes) * time.Minute,
		CookieSecure:      secure,
		Algolia: AlgoliaConfig{
			AppID:     env("ALGOLIA_APP_ID", ""),
			APIKey:    env("ALGOLIA_API_KEY", ""),
			IndexName: env("ALGOLIA_INDEX_NAME", ""),
		},
		RedisURL:  env("REDIS_URL", ""),
		LogLevel:  strings.ToLower(env("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(env("LOG_FORMAT", "json")),
		SeedDemo:  seed,
	}

	problems = append(problems, cfg.problems()...)
	if len(problems) > 0 {
		return Config{}, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c Config) Validate() error {
	if problems := c.problems(); len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c Config) problems() []string {
	var problems []string

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if len(c.SecretKey) < 16 {
		problems = append(problems, "SECRET_KEY must be at least 16 characters")
	}

	validAlgorithms := map[string]bool{"HS256": true, "HS384": true, "HS512": true}
	if !validAlgorithms[c.Algorithm] {
		problems = append(problems, "ALGORITHM must be one of: HS256, HS384, HS512")
	}

	if c.Algolia.Enabled() && (c.Algolia.AppID == "" || c.Algolia.APIKey == "" || c.Algolia.IndexName == "") {
		problems = append(problems, "ALGOLIA_APP_ID, ALGOLIA_API_KEY and ALGOLIA_INDEX_NAME must be set together")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		problems = append(problems, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.LogFormat] {
		problems = append(problems, "LOG_FORMAT must be one of: json, text")
	}

	return problems
}
