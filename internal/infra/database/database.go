// Package database opens the relational store shared by the repositories
// and owns the schema and the driver-specific error classification.
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/quewww/blog/internal/infra/logging"
)

// Supported driver names.
const (
	DriverSQLite    = "sqlite"  // modernc.org/sqlite, pure Go
	DriverSQLiteCGO = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPgx       = "pgx"     // github.com/jackc/pgx/v5/stdlib
)

// ErrUnsupportedDriver is returned for driver names not listed above.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

//nolint:gochecknoinits
func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Config holds the connection settings of the store.
type Config struct {
	Driver          string        `yaml:"driver" env:"DRIVER" env-default:"sqlite" env-description:"sqlite, sqlite3 or pgx"`
	DSN             string        `yaml:"dsn" env:"DSN" env-default:"var/storage/blog.db" env-description:"file path for sqlite drivers, connection URL for pgx"`
	BusyTimeout     time.Duration `yaml:"busy_timeout" env:"BUSY_TIMEOUT" env-default:"5s"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME" env-default:"5m"`
}

// IsSQLite reports whether the configured driver is one of the SQLite drivers.
func (cfg Config) IsSQLite() bool {
	return cfg.Driver == DriverSQLite || cfg.Driver == DriverSQLiteCGO
}

// Open connects to the store described by cfg and verifies the connection.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	log := logging.GetLogger("infra.database").With(
		logging.Group("db", "driver", cfg.Driver),
	)

	dsn := cfg.DSN

	switch cfg.Driver {
	case DriverSQLite, DriverSQLiteCGO:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}

		dsn = sqliteDSN(cfg.Driver, dsn, cfg.BusyTimeout)
	case DriverPgx:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if cfg.IsSQLite() {
		// sqlite allows a single writer; serialize through one connection
		db.SetMaxOpenConns(1)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.DebugContext(ctx, "database opened")

	return db, nil
}

func sqliteDSN(driver, dsn string, busyTimeout time.Duration) string {
	var params []string

	switch driver {
	case DriverSQLite:
		params = []string{
			"_pragma=foreign_keys(1)",
			fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
		}
	case DriverSQLiteCGO:
		params = []string{
			"_foreign_keys=on",
			fmt.Sprintf("_busy_timeout=%d", busyTimeout.Milliseconds()),
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + strings.Join(params, "&")
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	path, _, _ = strings.Cut(path, "?")

	if path == "" || strings.HasPrefix(path, ":memory:") {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}

	return nil
}
