package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"

	"github.com/Ramsey-B/fern/pkg/metrics"
)

// DB is the subset of sqlx.DB behavior the service depends on, plus
// context-scoped transaction support.
type DB interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	Close() error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	PingContext(ctx context.Context) error
	SetConnMaxLifetime(d time.Duration)
	SetMaxIdleConns(n int)
	SetMaxOpenConns(n int)
	Stats() sql.DBStats
	GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error)
}

type DatabaseInstance struct {
	*sqlx.DB
	logger ectologger.Logger
}

func NewDatabaseInstance(db *sqlx.DB, logger ectologger.Logger) DB {
	return &DatabaseInstance{
		DB:     db,
		logger: logger,
	}
}

func (db *DatabaseInstance) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, Tx, error) {
	return GetTx(ctx, db.logger, db, opts)
}

func (db *DatabaseInstance) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := db.DB.GetContext(ctx, dest, query, args...)
	metrics.DatabaseQueryDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	return err
}

func (db *DatabaseInstance) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	start := time.Now()
	err := db.DB.SelectContext(ctx, dest, query, args...)
	metrics.DatabaseQueryDuration.WithLabelValues("select").Observe(time.Since(start).Seconds())
	return err
}

func (db *DatabaseInstance) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	metrics.DatabaseQueryDuration.WithLabelValues("exec").Observe(time.Since(start).Seconds())
	return result, err
}
