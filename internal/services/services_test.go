package services

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/auth"
	"github.com/diewo77/seize-billing/internal/config"
	"github.com/diewo77/seize-billing/internal/db"
	"github.com/diewo77/seize-billing/internal/metrics"
	"github.com/diewo77/seize-billing/internal/models"
)

var testNow = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)

const testToday = "2026-03-14"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(d))
	return d
}

type fixture struct {
	db       *gorm.DB
	clock    *testclock.Clock
	seq      *Sequencer
	invoices *InvoiceService
	reports  *ReportService
	expenses *ExpenseService
	catalog  *CatalogService
	metrics  *metrics.Collector
}

func newFixture(t *testing.T, ledger config.LedgerConfig) *fixture {
	t.Helper()
	d := setupTestDB(t)
	clk := testclock.NewClock(testNow)
	seq := NewSequencer(d, ledger.InvoicePrefix)
	m := metrics.NewCollector()
	return &fixture{
		db:       d,
		clock:    clk,
		seq:      seq,
		invoices: NewInvoiceService(d, seq, ledger, clk, m),
		reports:  NewReportService(d, clk),
		expenses: NewExpenseService(d, clk),
		catalog:  NewCatalogService(d),
		metrics:  m,
	}
}

func adminCtx() context.Context {
	return auth.WithActor(context.Background(), auth.Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin})
}

func clerkCtx() context.Context {
	return auth.WithActor(context.Background(), auth.Actor{UserID: 2, Username: "priya", Role: models.RoleSalesman})
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(name string, qty int, price, rate string) ItemInput {
	return ItemInput{ProductName: name, Quantity: qty, Price: dec(price), TaxRate: dec(rate)}
}

func (f *fixture) addProduct(t *testing.T, name string, stock, minStock int, price string) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: dec(price), TaxRate: dec("18"), Stock: stock, MinStock: minStock}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) stockOf(t *testing.T, name string) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.Where("name = ?", name).First(&p).Error)
	return p.Stock
}

func (f *fixture) createInvoice(t *testing.T, customer, date string, items ...ItemInput) string {
	t.Helper()
	number, err := f.invoices.Create(adminCtx(), InvoiceHeader{CustomerName: customer, Date: date}, items)
	require.NoError(t, err)
	return number
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
