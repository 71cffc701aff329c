package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forum-geni/pkg/config"
	"forum-geni/pkg/handlers"
	"forum-geni/pkg/services"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the gallery pages, the gallery API and the admin area.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, logger, service, err := setup(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			return serveWebsite(ctx, cfg, service, logger)
		},
	}
}

// serveWebsite runs the web server until ctx is cancelled
func serveWebsite(ctx context.Context, cfg *config.Config, service *services.Service, logger *zap.Logger) error {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.WarmSchedule != "" {
		warmer, err := services.NewWarmer(service, cfg.RootFolderID, cfg.WarmSchedule, logger)
		if err != nil {
			return err
		}
		warmer.Start()
		defer warmer.Stop()
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Gallery:          service,
		RootFolderID:     cfg.RootFolderID,
		RevalidateSecret: cfg.RevalidateSecret,
		JWTSecret:        cfg.JWTSecret,
		ViewsDir:         cfg.ViewsDir,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("root_folder", cfg.RootFolderID),
			zap.String("cache_backend", cfg.CacheBackend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
