package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Data backends.
const (
	BackendJSON   = "json"
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

var validBackends = []string{BackendJSON, BackendXLSX, BackendSQLite, BackendSheets}

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration

	// Backend selection
	DataBackend string

	// File sources. An empty DatasetPath with the json backend serves the
	// bundled sample.
	DatasetPath string
	XLSXSheet   string
	WatchFile   bool

	// Database
	SQLiteDBPath string

	// AMQP. An empty URL disables notifications.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Dashboard
	SearchDebounce time.Duration
	ReloadDebounce time.Duration
	CacheSize      int
	CacheTTL       time.Duration
	ExportRateRPM  int

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8081"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataBackend: getEnv("DATA_BACKEND", BackendJSON),
		DatasetPath: getEnv("DATASET_PATH", ""),
		XLSXSheet:   getEnv("XLSX_SHEET", ""),
		WatchFile:   getEnvBool("WATCH_DATASET", true),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ventas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ventas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "dataset_imported"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:         getEnv("GOOGLE_SHEET_RANGE", "Facturas!A:P"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		SearchDebounce: getEnvDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		ReloadDebounce: getEnvDuration("RELOAD_DEBOUNCE", 500*time.Millisecond),
		CacheSize:      getEnvInt("CACHE_SIZE", 256),
		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),
		ExportRateRPM:  getEnvInt("EXPORT_RATE_RPM", 30),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendJSON:
		if c.DatasetPath != "" {
			if _, err := os.Stat(c.DatasetPath); err != nil {
				errors = append(errors, fmt.Sprintf("dataset file not readable '%s': %v", c.DatasetPath, err))
			}
		}
	case BackendXLSX:
		if c.DatasetPath == "" {
			errors = append(errors, "DATASET_PATH is required when using xlsx backend")
		} else if _, err := os.Stat(c.DatasetPath); err != nil {
			errors = append(errors, fmt.Sprintf("dataset file not readable '%s': %v", c.DatasetPath, err))
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetRange == "" {
			errors = append(errors, "Google sheet range is required when using sheets backend")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if !hasJSON && hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SearchDebounce < 0 || c.SearchDebounce > 5*time.Second {
		errors = append(errors, fmt.Sprintf("invalid search debounce %v: must be between 0 and 5s", c.SearchDebounce))
	}
	if c.ReloadDebounce < 0 || c.ReloadDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid reload debounce %v: must be between 0 and 1m", c.ReloadDebounce))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	} else if c.CacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at most 10000", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.ExportRateRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid export rate %d: must be at least 1 request per minute", c.ExportRateRPM))
	}
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether dataset notifications are configured.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
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
