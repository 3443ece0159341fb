// Copyright (c) 2025-2026 JoTutor
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"JOTUTOR_DB_PATH" envDefault:"./data/jotutor.db"`
	SessionSecret string `env:"JOTUTOR_SESSION_SECRET,required"`
	ServerHost    string `env:"JOTUTOR_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"JOTUTOR_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"JOTUTOR_ENV" envDefault:"development"`
	LogLevel      string `env:"JOTUTOR_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"JOTUTOR_UPLOADS_DIR" envDefault:"./uploads"`

	// Cache configuration
	RedisURL     string `env:"JOTUTOR_REDIS_URL"`                         // Optional Redis URL for the projection cache
	CachePrefix  string `env:"JOTUTOR_CACHE_PREFIX" envDefault:"jt:"`     // Redis key prefix
	CacheTTL     int    `env:"JOTUTOR_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"JOTUTOR_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Payment gateway
	GatewayURL    string `env:"JOTUTOR_GATEWAY_URL"`    // Card gateway base URL
	GatewayAPIKey string `env:"JOTUTOR_GATEWAY_API_KEY"`
	BankIBAN      string `env:"JOTUTOR_BANK_IBAN"`      // Bank-transfer destination account

	// Translation / chat assistant
	OpenAIAPIKey string `env:"JOTUTOR_OPENAI_API_KEY"`
	OpenAIModel  string `env:"JOTUTOR_OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// GeoIP configuration
	GeoIPDBPath string `env:"JOTUTOR_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// Seeding configuration
	DoSeed bool `env:"JOTUTOR_DO_SEED" envDefault:"false"` // Enable database seeding
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GatewayEnabled returns true if the card gateway is configured.
func (c Config) GatewayEnabled() bool {
	return c.GatewayURL != "" && c.GatewayAPIKey != ""
}

// TranslationEnabled returns true if the AI translation service is configured.
func (c Config) TranslationEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// GeoIPEnabled returns true if the GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("JOTUTOR_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("JOTUTOR_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("JOTUTOR_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
