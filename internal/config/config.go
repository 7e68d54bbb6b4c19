// Package config provides application configuration loaded from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ledger   LedgerConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects the storage engine backing the ledger.
type DatabaseConfig struct {
	// Driver is one of "sqlite", "postgres" or "mysql".
	Driver string
	// Path is the sqlite database file.
	Path string
	// DSN is used for postgres and mysql.
	DSN   string
	Debug bool
	Seed  bool
}

// StockPolicy controls what happens to catalog stock when an invoice is
// deleted or its items are edited.
type StockPolicy string

const (
	// StockKeep never gives stock back once an invoice has been saved.
	StockKeep StockPolicy = "keep"
	// StockReverse restores quantities on delete and reconciles them on edit.
	StockReverse StockPolicy = "reverse"
)

// StatusPolicy controls which invoice status transitions are allowed.
type StatusPolicy string

const (
	// StatusOpen allows any status to be set from any status.
	StatusOpen StatusPolicy = "open"
	// StatusStrict only allows pending -> paid and pending -> cancelled.
	StatusStrict StatusPolicy = "strict"
)

// LedgerConfig holds the invoice engine settings.
type LedgerConfig struct {
	InvoicePrefix string
	StockPolicy   StockPolicy
	StatusPolicy  StatusPolicy
}

// DevSessionSecret is the session key used when SESSION_SECRET is unset. It
// is public, so it is only accepted in dev mode.
const DevSessionSecret = "devsessionsecret"

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    bool
	LogLevel      string
	SessionSecret string
}

// DefaultLedger returns the ledger settings matching the historical behaviour
// of the desktop tool.
func DefaultLedger() LedgerConfig {
	return LedgerConfig{
		InvoicePrefix: "SEZ",
		StockPolicy:   StockKeep,
		StatusPolicy:  StatusOpen,
	}
}

// Load reads configuration from environment variables.
// It uses sensible defaults for a single-operator local install.
func Load() *Config {
	def := DefaultLedger()
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:   getEnv("DB_PATH", "seize_billing.db"),
			DSN:    getEnv("DATABASE_DSN", ""),
			Debug:  getEnvBool("DB_DEBUG", false),
			Seed:   getEnvBool("DB_SEED", true),
		},
		Ledger: LedgerConfig{
			InvoicePrefix: getEnv("INVOICE_PREFIX", def.InvoicePrefix),
			StockPolicy:   StockPolicy(strings.ToLower(getEnv("STOCK_POLICY", string(def.StockPolicy)))),
			StatusPolicy:  StatusPolicy(strings.ToLower(getEnv("STATUS_POLICY", string(def.StatusPolicy)))),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", false),
			Migrations:    getEnvBool("MIGRATIONS", false),
			LogLevel:      getEnv("LOG_LEVEL", "<root>=INFO"),
			SessionSecret: getEnv("SESSION_SECRET", DevSessionSecret),
		},
	}
}

// Validate reports unknown policy or driver values.
func (c *Config) Validate() []string {
	var problems []string
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		problems = append(problems, "unknown DB_DRIVER "+c.Database.Driver)
	}
	if c.Database.Driver != "sqlite" && c.Database.DSN == "" {
		problems = append(problems, "DATABASE_DSN is required for "+c.Database.Driver)
	}
	switch c.Ledger.StockPolicy {
	case StockKeep, StockReverse:
	default:
		problems = append(problems, "unknown STOCK_POLICY "+string(c.Ledger.StockPolicy))
	}
	switch c.Ledger.StatusPolicy {
	case StatusOpen, StatusStrict:
	default:
		problems = append(problems, "unknown STATUS_POLICY "+string(c.Ledger.StatusPolicy))
	}
	if !c.App.Dev && (c.App.SessionSecret == "" || c.App.SessionSecret == DevSessionSecret) {
		problems = append(problems, "SESSION_SECRET must be set outside dev mode")
	}
	if len(c.Ledger.InvoicePrefix) == 0 {
		problems = append(problems, "INVOICE_PREFIX must not be empty")
	}
	return problems
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
