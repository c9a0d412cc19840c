package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/ultra_import/internal/handler"
	"github.com/GTDGit/ultra_import/internal/metrics"
	"github.com/GTDGit/ultra_import/internal/middleware"
	"github.com/GTDGit/ultra_import/internal/service"
	"github.com/GTDGit/ultra_import/internal/utils"
	"github.com/GTDGit/ultra_import/internal/worker"
)

func newExportCmd() *cobra.Command {
	var (
		all    bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run one catalog export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.export.Export(ctx, service.ExportRequest{FullSync: all, OutputPath: output})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "request full datasets instead of changes since the last commit")
	cmd.Flags().StringVar(&output, "output", "", "output path (local file or s3://bucket/key); defaults to ULTRA_OUTPUT_PATH")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin export API and run scheduled exports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireJWTSecret(); err != nil {
				return err
			}
			log.Info().Str("env", cfg.Env).Msg("starting ultra import")

			// 1. Create context for graceful shutdown
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			// 2. Setup router
			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			router.Use(gin.Recovery())
			router.Use(middleware.LoggingMiddleware())
			setupRoutes(router, a)

			// 3. Start scheduled exports
			if cfg.Export.Interval > 0 {
				go worker.NewExportWorker(a.export, cfg.Export.Interval).Start(ctx)
			}

			// 4. Start HTTP server
			srv := &http.Server{
				Addr:    ":" + cfg.Port,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Msg("Starting server")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			// 5. Wait for interrupt signal
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			}

			log.Info().Msg("Shutting down server...")

			// 6. Cancel context to stop workers
			cancel()

			// 7. Shutdown HTTP server with timeout
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Server forced to shutdown")
			}
			log.Info().Msg("Server exited")
			return nil
		},
	}
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, a *app) {
	var redisPinger handler.Pinger
	if a.redis != nil {
		redisPinger = a.redis
	}
	health := handler.NewHealthHandler(a.session, redisPinger)
	exports := handler.NewExportHandler(a.export)
	jwtMw := middleware.NewJWTMiddleware(utils.NewJWTManager(a.cfg.JWTSecret), middleware.NewInvalidAuthRateLimiter())

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1")
	v1.GET("/health", health.GetHealth)

	admin := v1.Group("/admin", jwtMw.Handle())
	admin.POST("/exports", exports.CreateExport)
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an admin API token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if subject == "" {
				return fmt.Errorf("%w: --subject is required", errUsage)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireJWTSecret(); err != nil {
				return err
			}

			token, err := utils.NewJWTManager(cfg.JWTSecret).GenerateJWT(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (who the token is issued to)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
