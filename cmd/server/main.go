package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/clock"
	"github.com/juju/loggo"

	"github.com/diewo77/seize-billing/internal/config"
	"github.com/diewo77/seize-billing/internal/db"
	"github.com/diewo77/seize-billing/internal/metrics"
	"github.com/diewo77/seize-billing/internal/services"
)

var logger = loggo.GetLogger("seize.server")

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	reportFlag      = flag.String("report", "", "Print a report and exit (dashboard, sales, profitLoss, stock, gst, expense)")
	fromFlag        = flag.String("from", "", "Report start date (YYYY-MM-DD)")
	toFlag          = flag.String("to", "", "Report end date (YYYY-MM-DD)")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	if err := loggo.ConfigureLoggers(cfg.App.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL %q: %v\n", cfg.App.LogLevel, err)
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		logger.Criticalf("invalid configuration: %s", strings.Join(problems, "; "))
		os.Exit(1)
	}

	conn, err := db.Open(cfg.Database)
	if err != nil {
		logger.Criticalf("failed to open database: %v", err)
		os.Exit(1)
	}
	logger.Infof("ledger at %s", db.Describe(cfg.Database))

	if err := db.Migrate(conn, cfg); err != nil {
		logger.Criticalf("migration failed: %v", err)
		os.Exit(1)
	}
	if *migrateOnlyFlag {
		logger.Infof("migrations completed successfully")
		return
	}

	if *seedOnlyFlag || cfg.Database.Seed {
		if err := db.Seed(conn); err != nil {
			logger.Criticalf("seeding failed: %v", err)
			os.Exit(1)
		}
		if *seedOnlyFlag {
			logger.Infof("seeding completed successfully")
			return
		}
	}

	if *reportFlag != "" {
		reports := services.NewReportService(conn, clock.WallClock)
		filter := services.ReportFilter{From: *fromFlag, To: *toFlag}
		if err := printReport(context.Background(), os.Stdout, reports, services.ReportKind(*reportFlag), filter); err != nil {
			logger.Criticalf("report failed: %v", err)
			os.Exit(1)
		}
		return
	}

	app := NewApp(conn, cfg, clock.WallClock, metrics.NewCollector())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Infof("server starting on port %s (dev=%v, stock=%s, status=%s)",
			cfg.Server.Port, cfg.App.Dev, cfg.Ledger.StockPolicy, cfg.Ledger.StatusPolicy)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Criticalf("server error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("error during shutdown: %v", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Infof("server stopped gracefully")
}
