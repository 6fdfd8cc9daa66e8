package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/multitracer"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"

	"github.com/akave-ai/seclog/internal/config"
)

// DSN builds a postgres connection URL from the database config.
func DSN(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// PoolConfig parses the DSN and applies pool sizing and tracing. Queries are
// logged through zerolog at dbLevel; with newRelic set, they are also
// reported as datastore segments of the request's transaction.
func PoolConfig(cfg config.DatabaseConfig, logger zerolog.Logger, dbLevel string, newRelic bool) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(min(cfg.MaxIdleConns, cfg.MaxOpenConns))
	poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second

	tracers := make([]pgx.QueryTracer, 0, 2)
	if level, err := tracelog.LogLevelFromString(dbLevel); err == nil && level != tracelog.LogLevelNone {
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   zerologadapter.NewLogger(logger.With().Str("component", "pgx").Logger()),
			LogLevel: level,
		})
	}
	if newRelic {
		tracers = append(tracers, nrpgx5.NewTracer())
	}
	switch len(tracers) {
	case 0:
	case 1:
		poolCfg.ConnConfig.Tracer = tracers[0]
	default:
		poolCfg.ConnConfig.Tracer = multitracer.New(tracers...)
	}
	return poolCfg, nil
}

// NewPool opens the pool and checks that the database answers.
func NewPool(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
