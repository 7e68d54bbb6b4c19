package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "DB_PATH", "INVOICE_PREFIX", "STOCK_POLICY", "STATUS_POLICY", "SESSION_SECRET"} {
		t.Setenv(key, "")
	}
	t.Setenv("DEV", "1")
	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "seize_billing.db", cfg.Database.Path)
	assert.Equal(t, "SEZ", cfg.Ledger.InvoicePrefix)
	assert.Equal(t, StockKeep, cfg.Ledger.StockPolicy)
	assert.Equal(t, StatusOpen, cfg.Ledger.StatusPolicy)
	assert.Empty(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/seize")
	t.Setenv("STOCK_POLICY", "REVERSE")
	t.Setenv("STATUS_POLICY", "strict")
	t.Setenv("SERVER_READ_TIMEOUT", "30")
	t.Setenv("MIGRATIONS", "yes")
	t.Setenv("SESSION_SECRET", "4c2f9e1d")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, StockReverse, cfg.Ledger.StockPolicy)
	assert.Equal(t, StatusStrict, cfg.Ledger.StatusPolicy)
	assert.Equal(t, 30, cfg.Server.ReadTimeout)
	assert.True(t, cfg.App.Migrations)
	assert.Empty(t, cfg.Validate())
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("SESSION_SECRET", "4c2f9e1d")
	cfg := Load()
	cfg.Database.Driver = "oracle"
	cfg.Ledger.StockPolicy = "sometimes"
	cfg.Ledger.StatusPolicy = "loose"
	cfg.Ledger.InvoicePrefix = ""

	problems := cfg.Validate()
	require.Len(t, problems, 5)
	assert.Contains(t, problems, "unknown DB_DRIVER oracle")
	assert.Contains(t, problems, "unknown STOCK_POLICY sometimes")
}

func TestValidateRejectsDevSecretOutsideDev(t *testing.T) {
	for _, key := range []string{"SESSION_SECRET", "DEV", "DB_DRIVER", "STOCK_POLICY", "STATUS_POLICY", "INVOICE_PREFIX"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	assert.Equal(t, DevSessionSecret, cfg.App.SessionSecret)
	assert.Equal(t, []string{"SESSION_SECRET must be set outside dev mode"}, cfg.Validate())

	cfg.App.Dev = true
	assert.Empty(t, cfg.Validate())

	cfg.App.Dev = false
	cfg.App.SessionSecret = "4c2f9e1d"
	assert.Empty(t, cfg.Validate())
}
