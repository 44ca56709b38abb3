// Package config loads stockfolio settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"

	QuoteSourceStatic = "static"
	QuoteSourceYahoo  = "yahoo"
)

// Config holds all configuration for the stockfolio server and CLI.
type Config struct {
	// Listener
	BindAddr       string
	PortCandidates []string
	AutoFallback   bool

	// Logging
	LogLevel string
	LogFile  string

	// Storage
	Store      string
	SQLitePath string
	SeedFile   string
	// JournalDir receives the JSONL activity journal; "off" disables it.
	JournalDir string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Market data
	QuoteSource      string
	QuoteRefreshCron string
	HTTPSProxy       string

	MockLatency time.Duration
	CORSOrigins []string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BindAddr:         getEnvOrDefault("STOCKFOLIO_BIND_ADDR", "127.0.0.1:5000"),
		PortCandidates:   splitList(getEnvOrDefault("STOCKFOLIO_PORT_CANDIDATES", "127.0.0.1:5001,127.0.0.1:5002")),
		AutoFallback:     getEnvBoolOrDefault("STOCKFOLIO_PORT_AUTO_FALLBACK", true),
		LogLevel:         strings.ToLower(getEnvOrDefault("STOCKFOLIO_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("STOCKFOLIO_LOG_FILE", "logs/stockfolio.log"),
		Store:            strings.ToLower(getEnvOrDefault("STOCKFOLIO_STORE", StoreMemory)),
		SQLitePath:       getEnvOrDefault("STOCKFOLIO_SQLITE_PATH", "data/stockfolio.db"),
		SeedFile:         os.Getenv("STOCKFOLIO_SEED_FILE"),
		JournalDir:       getEnvOrDefault("STOCKFOLIO_JOURNAL_DIR", "data/journal"),
		JWTSecret:        getEnvOrDefault("STOCKFOLIO_JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:         time.Duration(getEnvIntOrDefault("STOCKFOLIO_TOKEN_TTL_HOURS", 24)) * time.Hour,
		QuoteSource:      strings.ToLower(getEnvOrDefault("STOCKFOLIO_QUOTE_SOURCE", QuoteSourceStatic)),
		QuoteRefreshCron: getEnvOrDefault("STOCKFOLIO_QUOTE_REFRESH_CRON", "0 */5 * * * *"),
		HTTPSProxy:       os.Getenv("HTTPS_PROXY"),
		MockLatency:      time.Duration(getEnvIntOrDefault("STOCKFOLIO_MOCK_LATENCY_MS", 0)) * time.Millisecond,
		CORSOrigins:      splitList(getEnvOrDefault("STOCKFOLIO_CORS_ORIGINS", "*")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// JournalEnabled reports whether activity should be journaled.
func (c *Config) JournalEnabled() bool {
	return c.JournalDir != "" && !strings.EqualFold(c.JournalDir, "off")
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("config: STOCKFOLIO_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store)
	}
	switch c.QuoteSource {
	case QuoteSourceStatic, QuoteSourceYahoo:
	default:
		return fmt.Errorf("config: STOCKFOLIO_QUOTE_SOURCE must be %q or %q, got %q", QuoteSourceStatic, QuoteSourceYahoo, c.QuoteSource)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: STOCKFOLIO_JWT_SECRET must not be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("config: STOCKFOLIO_TOKEN_TTL_HOURS must be positive")
	}
	if c.MockLatency < 0 {
		c.MockLatency = 0
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
