package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/ultra_import/internal/cache"
	"github.com/GTDGit/ultra_import/internal/catalog"
	"github.com/GTDGit/ultra_import/internal/config"
	"github.com/GTDGit/ultra_import/internal/service"
	"github.com/GTDGit/ultra_import/internal/sink"
	"github.com/GTDGit/ultra_import/pkg/ultra"
)

// main is the entrypoint of the Ultra catalog import.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ultra",
		Short:         "Import the Ultra B2B catalog into a yml_catalog feed",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newExportCmd(), newServeCmd(), newTokenCmd())
	return root
}

// loadConfig loads configuration and sets up the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.Env)
	return cfg, nil
}

// app holds the wired export components.
type app struct {
	cfg     *config.Config
	session *ultra.Session
	redis   *cache.RedisClient
	export  *service.ExportService
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	// 1. Ultra session
	a.session = ultra.NewSession(ultra.Config{
		Endpoint:  cfg.Ultra.Endpoint,
		Namespace: cfg.Ultra.Namespace,
		Username:  cfg.Ultra.Username,
		Password:  cfg.Ultra.Password,
		Timeout:   cfg.Ultra.Timeout,
		RateLimit: cfg.Ultra.RateLimit,
		Debug:     !cfg.IsProduction(),
	})

	// 2. Export lock
	var locker service.Locker
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = redisClient
		locker = cache.NewRedisExportLock(redisClient, cfg.Export.LockTTL)
		log.Info().Msg("redis connected successfully")
	} else {
		locker = cache.NewLocalExportLock()
	}

	// 3. Sinks
	var s3Saver sink.Saver
	s3Sink, err := sink.NewS3Sink(ctx, cfg.S3.Region, cfg.S3.Endpoint)
	if err != nil {
		log.Warn().Err(err).Msg("S3 sink initialization failed - s3:// output paths will be rejected")
	} else {
		s3Saver = s3Sink
	}
	router := sink.NewRouter(sink.NewFileSink(), s3Saver)

	// 4. Services
	fetcher := service.NewFetchCoordinator(a.session, cfg.Export.PollAttempts, cfg.Export.PollSleep)
	builder := catalog.NewBuilder(cfg.Export.ProductURL, cfg.Export.Vendor)
	a.export = service.NewExportService(fetcher, builder, router, locker, a.session, service.ExportOptions{
		DefaultOutputPath: cfg.Export.OutputPath,
		CommitAfterExport: cfg.Export.CommitAfterExport,
	})

	return a, nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	zerolog.DurationFieldUnit = time.Millisecond
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// errUsage marks invalid command line input.
var errUsage = errors.New("invalid usage")
