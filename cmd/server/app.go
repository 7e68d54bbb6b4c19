package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/diewo77/seize-billing/internal/auth"
	"github.com/diewo77/seize-billing/internal/config"
	"github.com/diewo77/seize-billing/internal/handlers"
	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/metrics"
	"github.com/diewo77/seize-billing/internal/services"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	db       *gorm.DB
	sessions *auth.Sessions
	metrics  *metrics.Collector
	registry *prometheus.Registry

	authH    *handlers.AuthHandler
	invoiceH *handlers.InvoiceHandler
	productH *handlers.ProductHandler
	expenseH *handlers.ExpenseHandler
	reportH  *handlers.ReportHandler
	companyH *handlers.CompanyHandler
	userH    *handlers.UserHandler
}

// NewApp wires services and handlers over conn and configures all routes.
func NewApp(conn *gorm.DB, cfg *config.Config, clk clock.Clock, collector *metrics.Collector) *App {
	invoices := services.NewInvoiceService(conn, services.NewSequencer(conn, cfg.Ledger.InvoicePrefix), cfg.Ledger, clk, collector)
	users := services.NewUserService(conn)
	sessions := auth.NewSessions(cfg.App.SessionSecret, users.Actor)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collector, collectors.NewGoCollector())

	app := &App{
		mux:      http.NewServeMux(),
		db:       conn,
		sessions: sessions,
		metrics:  collector,
		registry: registry,
		authH:    handlers.NewAuthHandler(users, sessions),
		invoiceH: handlers.NewInvoiceHandler(invoices),
		productH: handlers.NewProductHandler(services.NewCatalogService(conn)),
		expenseH: handlers.NewExpenseHandler(services.NewExpenseService(conn, clk)),
		reportH:  handlers.NewReportHandler(services.NewReportService(conn, clk), invoices),
		companyH: handlers.NewCompanyHandler(services.NewCompanyService(conn)),
		userH:    handlers.NewUserHandler(users),
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	withLogging(a.metrics, a.sessions.Middleware(a.mux)).ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// Public
	a.mux.HandleFunc("GET /health", a.health)
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.Handle("GET /metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.mux.HandleFunc("POST /login", a.authH.Login)
	a.mux.HandleFunc("POST /logout", a.authH.Logout)

	// Authenticated
	a.mux.Handle("GET /me", requireAuth(a.authH.Me))
	a.mux.Handle("GET /dashboard", requireAuth(a.reportH.Dashboard))
	a.mux.Handle("GET /reports/{kind}", requireAuth(a.reportH.Report))

	ih := a.invoiceH
	a.mux.Handle("GET /invoices/next-number", requireAuth(ih.NextNumber))
	a.mux.Handle("POST /invoices/calculate", requireAuth(ih.Calculate))
	a.mux.Handle("GET /invoices", requireAuth(ih.List))
	a.mux.Handle("POST /invoices", requireAuth(ih.Create))
	a.mux.Handle("GET /invoices/{number}", requireAuth(ih.View))
	a.mux.Handle("POST /invoices/{number}", requireAuth(ih.Update))
	a.mux.Handle("POST /invoices/{number}/status", requireAuth(ih.SetStatus))
	a.mux.Handle("POST /invoices/{number}/delete", requireAuth(ih.Delete))

	ph := a.productH
	a.mux.Handle("GET /products", requireAuth(ph.List))
	a.mux.Handle("POST /products", requireAuth(ph.Create))
	a.mux.Handle("GET /products/{id}", requireAuth(ph.View))
	a.mux.Handle("POST /products/{id}", requireAuth(ph.Update))

	a.mux.Handle("GET /expenses", requireAuth(a.expenseH.List))
	a.mux.Handle("POST /expenses", requireAuth(a.expenseH.Create))

	a.mux.Handle("GET /settings", requireAuth(a.companyH.Edit))
	a.mux.Handle("POST /settings", requireAuth(a.companyH.Update))

	// Admin
	a.mux.Handle("GET /users", auth.RequireAdmin(http.HandlerFunc(a.userH.List)))
	a.mux.Handle("POST /users", auth.RequireAdmin(http.HandlerFunc(a.userH.Create)))
}

func requireAuth(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(h)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	status, dbState := http.StatusOK, "ok"
	if err := a.db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		logger.Warningf("health check: %v", err)
		status, dbState = http.StatusServiceUnavailable, "unavailable"
	}
	httpx.JSON(w, status, map[string]string{"status": http.StatusText(status), "database": dbState})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging tags each request with an id, logs it and records its duration.
func withLogging(m *metrics.Collector, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		m.ObserveRequest(r.Method, rec.status, elapsed)
		logger.Debugf("[%s] %s %s %d %s", id, r.Method, r.URL.Path, rec.status, elapsed)
	})
}
