// Package postgres builds the pgx connection pool the Ledger Store reads
// and writes through.
package postgres

import (
	"context"
	"fmt"

	"github.com/brc20indexer/core/pkg/logger"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	pgxslog "github.com/mcosta74/pgx-slog"
)

const (
	DefaultMaxConns = 16
	DefaultMinConns = 0
	DefaultLogLevel = tracelog.LogLevelError
)

// Config holds everything needed to open a pool against the ledger
// database. URL, when set, is used as the connection string in place of
// Host, Port, User, Password, DBName and SSLMode; MaxConns, MinConns and
// Debug still apply.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string

	MaxConns int32
	MinConns int32

	Debug bool
}

// NewPool opens and pings a connection pool configured per conf.
func NewPool(ctx context.Context, conf Config) (*pgxpool.Pool, error) {
	connConfig, err := pgxpool.ParseConfig(conf.String())
	if err != nil {
		return nil, errors.Wrap(err, "parse pool config")
	}
	connConfig.MaxConns = orDefault(conf.MaxConns, DefaultMaxConns)
	connConfig.MinConns = orDefault(conf.MinConns, DefaultMinConns)
	connConfig.ConnConfig.Tracer = conf.QueryTracer()

	pool, err := pgxpool.NewWithConfig(ctx, connConfig)
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	return pool, nil
}

// String builds the DSN connection string (or returns URL verbatim if set).
func (conf Config) String() string {
	if conf.URL != "" {
		return conf.URL
	}
	host := orDefaultString(conf.Host, "127.0.0.1")
	port := orDefaultString(conf.Port, "5432")
	sslMode := orDefaultString(conf.SSLMode, "prefer")
	dbName := orDefaultString(conf.DBName, "postgres")

	connString := fmt.Sprintf("host=%s dbname=%s port=%s sslmode=%s", host, dbName, port, sslMode)
	if conf.User != "" {
		connString = fmt.Sprintf("%s user=%s", connString, conf.User)
	}
	if conf.Password != "" {
		connString = fmt.Sprintf("%s password=%s", connString, conf.Password)
	}
	return connString
}

// QueryTracer bridges pgx query tracing into the package logger.
func (conf Config) QueryTracer() pgx.QueryTracer {
	level := DefaultLogLevel
	if conf.Debug {
		level = tracelog.LogLevelTrace
	}
	return &tracelog.TraceLog{
		Logger:   pgxslog.NewLogger(logger.With("package", "postgres")),
		LogLevel: level,
	}
}

func orDefault(v, def int32) int32 {
	if v == 0 {
		return def
	}
	return v
}

func orDefaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
