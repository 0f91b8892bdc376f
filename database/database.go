package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gallery-api/config"
	"gallery-api/internal/logging"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the persistence adapter: a gorm handle over a bounded pgx pool.
// Every call runs under the configured query timeout so a saturated pool
// surfaces as context.DeadlineExceeded instead of hanging the request.
type DB struct {
	gorm    *gorm.DB
	sql     *sql.DB
	timeout time.Duration
}

// PoolStats is the subset of sql.DBStats exposed by /api/health.
type PoolStats struct {
	MaxOpen      int    `json:"maxOpen"`
	Open         int    `json:"open"`
	InUse        int    `json:"inUse"`
	Idle         int    `json:"idle"`
	WaitCount    int64  `json:"waitCount"`
	WaitDuration string `json:"waitDuration"`
}

func Open(cfg *config.Config) (*DB, error) {
	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}

	g, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMinIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	db := &DB{gorm: g, sql: sqlDB, timeout: cfg.DBQueryTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logging.Info().
		Int("max_open", cfg.DBMaxOpenConns).
		Int("min_idle", cfg.DBMinIdleConns).
		Msg("connected to postgres")
	return db, nil
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.timeout)
}

// Gorm returns a handle bound to ctx. The caller must invoke the returned
// cancel func once the statement has finished.
func (db *DB) Gorm(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := db.withTimeout(ctx)
	return db.gorm.WithContext(ctx), cancel
}

// Query runs a parameterized SELECT and scans the rows into dest.
func (db *DB) Query(ctx context.Context, dest any, text string, params ...any) error {
	g, cancel := db.Gorm(ctx)
	defer cancel()
	return g.Raw(text, params...).Scan(dest).Error
}

// Exec runs a parameterized statement and reports the affected row count.
func (db *DB) Exec(ctx context.Context, text string, params ...any) (int64, error) {
	g, cancel := db.Gorm(ctx)
	defer cancel()
	res := g.Exec(text, params...)
	return res.RowsAffected, res.Error
}

// Transaction commits when fn returns nil and rolls back otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	g, cancel := db.Gorm(ctx)
	defer cancel()
	return g.Transaction(fn)
}

func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	return db.sql.PingContext(ctx)
}

func (db *DB) Stats() PoolStats {
	s := db.sql.Stats()
	return PoolStats{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration.String(),
	}
}

// SQL exposes the pool for collectors that read sql.DBStats directly.
func (db *DB) SQL() *sql.DB { return db.sql }

func (db *DB) Close() error {
	return db.sql.Close()
}
