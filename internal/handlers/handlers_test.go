package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/auth"
	"github.com/diewo77/seize-billing/internal/config"
	"github.com/diewo77/seize-billing/internal/db"
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/services"
)

type testEnv struct {
	db       *gorm.DB
	invoices *InvoiceHandler
	products *ProductHandler
	expenses *ExpenseHandler
	reports  *ReportHandler
	company  *CompanyHandler
	users    *UserHandler
	auth     *AuthHandler
	sessions *auth.Sessions
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := d.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(d); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Seed(d); err != nil {
		t.Fatalf("seed: %v", err)
	}

	clk := testclock.NewClock(time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC))
	ledger := config.DefaultLedger()
	invoiceSvc := services.NewInvoiceService(d, services.NewSequencer(d, ledger.InvoicePrefix), ledger, clk, nil)
	userSvc := services.NewUserService(d)
	sessions := auth.NewSessions("test-secret", userSvc.Actor)
	return &testEnv{
		db:       d,
		invoices: NewInvoiceHandler(invoiceSvc),
		products: NewProductHandler(services.NewCatalogService(d)),
		expenses: NewExpenseHandler(services.NewExpenseService(d, clk)),
		reports:  NewReportHandler(services.NewReportService(d, clk), invoiceSvc),
		company:  NewCompanyHandler(services.NewCompanyService(d)),
		users:    NewUserHandler(userSvc),
		auth:     NewAuthHandler(userSvc, sessions),
		sessions: sessions,
	}
}

func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(auth.WithActor(r.Context(), auth.Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin}))
}

func asClerk(r *http.Request) *http.Request {
	return r.WithContext(auth.WithActor(r.Context(), auth.Actor{UserID: 2, Username: "priya", Role: models.RoleSalesman}))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func TestReportFilterParsesQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/reports/stock?from=2026-01-01&to=2026-01-31&category=Rent&low=1", nil)
	f := reportFilter(r)
	if f.From != "2026-01-01" || f.To != "2026-01-31" || f.Category != models.ExpenseRent || !f.LowOnly {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/products/12", nil)
	r.SetPathValue("id", "12")
	if id, err := pathID(r); err != nil || id != 12 {
		t.Fatalf("expected 12, got %d err=%v", id, err)
	}
	r.SetPathValue("id", "abc")
	if _, err := pathID(r); err == nil {
		t.Fatal("expected error for non numeric id")
	}
}
