package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/akave-ai/seclog/internal/config"
	"github.com/akave-ai/seclog/internal/database"
	"github.com/akave-ai/seclog/internal/logger"
	"github.com/akave-ai/seclog/internal/server"
	"github.com/akave-ai/seclog/internal/storage"
)

func main() {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		boot.Fatal().Err(err).Msg("could not load config")
	}
	log := logger.New(cfg.Observability)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, database.DSN(cfg.Database), log); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}

	var opts server.Options
	nr := cfg.Observability.NewRelic
	if nr.Enabled {
		app, err := newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.Observability.ServiceName),
			newrelic.ConfigLicense(nr.LicenseKey),
			newrelic.ConfigEnabled(true),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("new relic")
		}
		defer app.Shutdown(5 * time.Second)
		opts.NewRelic = app
	}

	poolCfg, err := database.PoolConfig(cfg.Database, log, cfg.Observability.Logging.DBLevel, nr.Enabled)
	if err != nil {
		log.Fatal().Err(err).Msg("database config")
	}
	pool, err := database.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database pool")
	}
	defer pool.Close()

	if cfg.Storage != nil {
		if o3 := storage.NewO3Client(cfg.Storage.O3); o3 != nil {
			if err := o3.EnsureBucket(ctx); err != nil {
				log.Warn().Err(err).Msg("o3 ensure bucket, archive uploads may fail")
			}
			opts.Archiver = o3
			log.Info().Str("bucket", cfg.Storage.O3.Bucket).Msg("batch archive enabled")
		}
	}

	srv, err := server.New(cfg, log, pool, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}
	if err := srv.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
