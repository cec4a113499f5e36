package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Analysis defaults. These are the documented knobs a caller may override
// per request; the environment only changes the session-wide defaults.
const (
	DefaultRiskFreeRate    = 0.02
	DefaultPortfolioBudget = 10000.0
	DefaultSMAShortWindow  = 20
	DefaultSMALongWindow   = 50
	DefaultBollingerWindow = 20
	DefaultBollingerK      = 2.0
	DefaultRSIWindow       = 14
)

// Config holds application configuration
type Config struct {
	DatabasePath    string
	HistoryDBPath   string
	UniversePath    string
	RiskFreeRate    float64
	PortfolioBudget float64
	LogLevel        string
	Port            int
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("GO_PORT", 8001),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/portfolio.db"),
		HistoryDBPath:   getEnv("HISTORY_DB_PATH", "./data/history.db"),
		UniversePath:    getEnv("UNIVERSE_PATH", "./data/TopCompanies.csv"),
		RiskFreeRate:    getEnvAsFloat("RISK_FREE_RATE", DefaultRiskFreeRate),
		PortfolioBudget: getEnvAsFloat("PORTFOLIO_BUDGET", DefaultPortfolioBudget),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.HistoryDBPath == "" {
		return fmt.Errorf("HISTORY_DB_PATH is required")
	}
	if c.PortfolioBudget <= 0 {
		return fmt.Errorf("PORTFOLIO_BUDGET must be positive")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
