package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP server
	Port string

	// Logging
	LogLevel string
	LogJSON  bool

	// Database
	SQLiteDBPath string

	// AMQP (optional; empty URL disables the import queue)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Import endpoint
	ImportMaxBatch int

	// Rate limiting
	RateLimitPerMinute int

	// Worker
	PeriodCheckSchedule string

	// Google Sheets archive export (optional)
	SheetsSpreadsheetID string
	SheetsSheetName     string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("LOG_JSON", false),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendwise.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendwise"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "import_transactions"),

		ImportMaxBatch:     getEnvInt("IMPORT_MAX_BATCH", 500),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		PeriodCheckSchedule: getEnv("PERIOD_CHECK_SCHEDULE", "0 6 * * *"),

		SheetsSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetsSheetName:     getEnv("GOOGLE_SHEET_NAME", "Archive"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ImportMaxBatch < 1 {
		problems = append(problems, fmt.Sprintf("invalid import max batch %d: must be at least 1", c.ImportMaxBatch))
	} else if c.ImportMaxBatch > 10000 {
		problems = append(problems, fmt.Sprintf("invalid import max batch %d: must be at most 10000", c.ImportMaxBatch))
	}

	if c.RateLimitPerMinute < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	if c.PeriodCheckSchedule == "" {
		problems = append(problems, "period check schedule cannot be empty")
	}

	if c.SheetsSpreadsheetID != "" && c.SheetsSheetName == "" {
		problems = append(problems, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
