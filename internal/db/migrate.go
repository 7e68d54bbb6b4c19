package db

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diewo77/seize-billing/internal/config"
	"github.com/diewo77/seize-billing/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank import registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var logger = loggo.GetLogger("seize.db")

//go:embed migrations/*.sql
var migrationFiles embed.FS

// coreTables must exist once migrations ran.
var coreTables = []string{"users", "company", "products", "invoices", "invoice_items", "expenses"}

// Open connects to the configured engine. Network engines are retried a few
// times to give the server time to start.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if cfg.Debug {
		logLevel = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	switch cfg.Driver {
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Annotatef(err, "creating database directory %s", dir)
			}
		}
		// Foreign keys are off by default in sqlite; invoice_items cascade on them.
		dsn := cfg.Path + "?_foreign_keys=on"
		logger.Infof("opening sqlite database %s", cfg.Path)
		conn, err := gorm.Open(sqlite.Open(dsn), gcfg)
		return conn, errors.Annotate(err, "opening sqlite")
	case "postgres":
		dsn := NormalizeDSN(cfg.DSN)
		logger.Infof("connecting to postgres: %s", MaskDSN(dsn))
		return openWithRetry(postgres.Open(dsn), gcfg)
	case "mysql":
		dsn := NormalizeMySQLDSN(cfg.DSN)
		logger.Infof("connecting to mysql: %s", MaskDSN(dsn))
		return openWithRetry(mysql.Open(dsn), gcfg)
	}
	return nil, errors.NotSupportedf("database driver %q", cfg.Driver)
}

func openWithRetry(dialector gorm.Dialector, gcfg *gorm.Config) (*gorm.DB, error) {
	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		logger.Warningf("database connection attempt %d/10 failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, errors.Annotate(err, "failed to connect database after retries")
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, errors.Annotate(pingErr, "db ping failed")
	}
	return conn, nil
}

// Migrate brings the schema up to date. Postgres installs with MIGRATIONS=1
// run the versioned SQL files through golang-migrate; every other setup uses
// GORM AutoMigrate.
func Migrate(conn *gorm.DB, cfg *config.Config) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		if err := runSQLMigrations(ToURLDSN(NormalizeDSN(cfg.Database.DSN))); err != nil {
			return errors.Annotate(err, "sql migrations failed")
		}
	} else if err := AutoMigrate(conn); err != nil {
		return errors.Trace(err)
	}

	for _, table := range coreTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// AutoMigrate creates or updates every ledger table from the models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return errors.Annotatef(err, "automigrate %T", m)
		}
	}
	return nil
}

// runSQLMigrations executes the embedded migrations with golang-migrate.
func runSQLMigrations(dsn string) error {
	names, err := MigrationNames()
	if err != nil {
		return err
	}
	logger.Infof("applying embedded migrations %v", names)
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	version, dirty, _ := m.Version()
	logger.Infof("sql migrations at version %d (dirty=%v)", version, dirty)
	return nil
}

// MigrationNames lists the embedded migration files, for diagnostics.
func MigrationNames() ([]string, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Describe tells the operator where the ledger lives, without secrets.
func Describe(cfg config.DatabaseConfig) string {
	if cfg.Driver == "sqlite" || cfg.Driver == "" {
		return fmt.Sprintf("sqlite:%s", cfg.Path)
	}
	return fmt.Sprintf("%s:%s", cfg.Driver, MaskDSN(cfg.DSN))
}
