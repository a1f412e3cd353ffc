// Package db opens the configured database and applies the embedded
// migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"

	"cyberkids_accounts/internal/config"
	"cyberkids_accounts/internal/repository"
	"cyberkids_accounts/internal/repository/migrations"
)

const (
	sqliteDriverName   = "sqlite"
	postgresDriverName = "pgx"
)

// sqlitePragmas are applied by the driver on every new connection.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

// Open connects to the database described by cfg and pings it, retrying
// with exponential backoff. It does not run migrations.
func Open(ctx context.Context, cfg config.DBConfig) (*sql.DB, repository.Dialect, error) {
	var (
		db      *sql.DB
		dialect repository.Dialect
		err     error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		dialect = repository.DialectSQLite
		db, err = sql.Open(sqliteDriverName, SQLiteDSN(cfg.Path))
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite at %q: %w", cfg.Path, err)
		}
		// Conservative pool settings for SQLite
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case config.DriverPostgres:
		dialect = repository.DialectPostgres
		db, err = sql.Open(postgresDriverName, cfg.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	default:
		return nil, "", fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	if err := pingWithRetry(ctx, db, cfg.ConnectRetries, cfg.ConnectBackoff); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, dialect, nil
}

// SQLiteDSN appends the connection pragmas to path.
func SQLiteDSN(path string) string {
	q := url.Values{}
	for _, p := range sqlitePragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func pingWithRetry(ctx context.Context, db *sql.DB, retries uint64, base time.Duration) error {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(retries, retry.NewExponential(base))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Migrate applies all pending migrations for dialect and returns how many
// were applied.
func Migrate(ctx context.Context, db *sql.DB, dialect repository.Dialect) (int, error) {
	var gooseDialect goose.Dialect
	switch dialect {
	case repository.DialectSQLite:
		gooseDialect = goose.DialectSQLite3
	case repository.DialectPostgres:
		gooseDialect = goose.DialectPostgres
	default:
		return 0, fmt.Errorf("unsupported dialect %q", dialect)
	}

	fsys, err := migrations.For(string(dialect))
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("apply migrations: %w", err)
	}
	return len(results), nil
}
