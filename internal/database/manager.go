package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"mahberhub/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Manager wraps the postgres connection pool with query logging,
// migrations and health reporting.
type Manager struct {
	db     *sql.DB
	logger *zap.Logger
	config *config.DatabaseConfig
	mu     sync.RWMutex
}

// NewManager opens the connection pool and verifies connectivity,
// retrying with exponential backoff until the connect timeout elapses.
func NewManager(cfg *config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	ping := func() error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("database not ready, retrying", zap.Error(err))
			return err
		}
		return nil
	}
	if err := backoff.Retry(ping, backoff.WithContext(backoff.NewExponentialBackOff(), ctx)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return &Manager{db: db, logger: logger, config: cfg}, nil
}

// DB returns the underlying database connection
func (m *Manager) DB() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

// Migrate applies pending migrations. It uses a separate connection so
// closing the migrator cannot tear down the main pool.
func (m *Manager) Migrate(migrationsPath string) error {
	migrationDB, err := sql.Open("postgres", m.config.URL)
	if err != nil {
		return fmt.Errorf("failed to create migration connection: %w", err)
	}
	defer migrationDB.Close()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer migrator.Close()

	currentVersion, dirty, err := migrator.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := migrator.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.Info("migrations completed",
		zap.Uint("from_version", currentVersion),
		zap.Uint("to_version", newVersion),
	)
	return nil
}

// ExecContext executes a statement and logs slow queries
func (m *Manager) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := m.db.ExecContext(ctx, query, args...)
	m.observe("exec", query, start, err)
	return result, err
}

// QueryContext executes a multi-row query and logs slow queries
func (m *Manager) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := m.db.QueryContext(ctx, query, args...)
	m.observe("query", query, start, err)
	return rows, err
}

// QueryRowContext executes a single-row query and logs slow queries
func (m *Manager) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := m.db.QueryRowContext(ctx, query, args...)
	m.observe("query_row", query, start, nil)
	return row
}

// BeginTx starts a new transaction with context
func (m *Manager) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		m.logger.Error("failed to begin transaction", zap.Error(err))
	}
	return tx, err
}

func (m *Manager) observe(kind, query string, start time.Time, err error) {
	duration := time.Since(start)
	if err != nil {
		m.logger.Error("query execution failed",
			zap.Error(err),
			zap.String("type", kind),
			zap.String("query", truncateQuery(query)),
		)
		return
	}
	if duration > m.config.SlowQueryThreshold {
		m.logger.Warn("slow query detected",
			zap.String("type", kind),
			zap.Duration("duration", duration),
			zap.String("query", truncateQuery(query)),
		)
	}
}

// Health reports connectivity and pool statistics
func (m *Manager) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{CheckedAt: time.Now()}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := m.db.PingContext(pingCtx); err != nil {
		status.Healthy = false
		status.Error = err.Error()
		return status
	}
	status.Healthy = true
	status.Latency = time.Since(start)

	stats := m.db.Stats()
	status.OpenConnections = stats.OpenConnections
	status.InUse = stats.InUse
	status.Idle = stats.Idle
	return status
}

// Close closes the database connection
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		m.logger.Info("closing database connection")
		return m.db.Close()
	}
	return nil
}

// Stats returns database statistics
func (m *Manager) Stats() sql.DBStats {
	return m.db.Stats()
}

// HealthStatus describes the result of a health probe
type HealthStatus struct {
	Healthy         bool          `json:"healthy"`
	Error           string        `json:"error,omitempty"`
	Latency         time.Duration `json:"latency"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	CheckedAt       time.Time     `json:"checked_at"`
}

func truncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}
