package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"timesheet-service/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

// New opens the database selected by cfg.Driver, waits for it to answer
// and applies the pool settings.
func New(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	var (
		db  *bun.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
	default:
		db = open(PostgresDSN(cfg))
		configurePool(db, cfg)
	}

	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	if err := Ping(ctx, db, timeout); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("database connected successfully", "driver", cfg.Driver)
	return db, nil
}

func PostgresDSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		sslMode,
	)
}

// NewWithDSN creates a new Postgres connection with a custom DSN (useful for testing)
func NewWithDSN(dsn string) (*bun.DB, error) {
	db := open(dsn)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return db, nil
}

func open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// NewSQLite opens a SQLite database file. Use ":memory:" for a throwaway
// database; the pool is pinned to a single connection so it stays alive.
func NewSQLite(path string) (*bun.DB, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Ping retries until the database answers or timeout elapses.
// A zero timeout means a single attempt.
func Ping(ctx context.Context, db *bun.DB, timeout time.Duration) error {
	if timeout <= 0 {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("error pinging database: %w", err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := db.PingContext(ctx)
		if err != nil {
			slog.Warn("database not reachable yet", "attempt", attempt, "error", err)
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return fmt.Errorf("error pinging database after %d attempts: %w", attempt, err)
	}
	return nil
}

func configurePool(db *bun.DB, cfg config.DatabaseConfig) {
	sqlDB := db.DB

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 25
	}
	sqlDB.SetMaxOpenConns(maxOpen)

	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 10
	}
	sqlDB.SetMaxIdleConns(maxIdle)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 300
	}
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 60
	}
	sqlDB.SetConnMaxIdleTime(time.Duration(connMaxIdleTime) * time.Second)

	slog.Info("database pool configured",
		"max_open_conns", maxOpen,
		"max_idle_conns", maxIdle,
		"conn_max_lifetime_seconds", connMaxLifetime,
		"conn_max_idle_time_seconds", connMaxIdleTime,
	)
}

func Close(db *bun.DB) {
	if db != nil {
		db.Close()
	}
}

var schema = map[dialect.Name][]string{
	dialect.PG: {
		`CREATE TABLE IF NOT EXISTS timesheets (
			id BIGSERIAL PRIMARY KEY,
			project_id BIGINT NOT NULL DEFAULT 0,
			created_at DATE NULL,
			minutes INTEGER NOT NULL DEFAULT 0
		)`,
	},
	dialect.SQLite: {
		`CREATE TABLE IF NOT EXISTS timesheets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL DEFAULT 0,
			created_at DATE NULL,
			minutes INTEGER NOT NULL DEFAULT 0
		)`,
	},
}

// RunMigrations creates the timesheets table for the connected dialect.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	name := db.Dialect().Name()
	statements, ok := schema[name]
	if !ok {
		return fmt.Errorf("no migrations for dialect %s", name)
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	slog.Info("database migrations completed successfully", "dialect", name.String())
	return nil
}
