package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-salesbot-backend/internal/config"
	httpapi "github.com/tbourn/go-salesbot-backend/internal/http"
	"github.com/tbourn/go-salesbot-backend/internal/observability"
	"github.com/tbourn/go-salesbot-backend/internal/store"
	"github.com/tbourn/go-salesbot-backend/internal/sysutil"
	"github.com/tbourn/go-salesbot-backend/internal/upstream"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func status(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

// serve runs the server until ctx is cancelled, then drains in-flight
// requests, flushes traces, and closes the stores.
func serve(ctx context.Context, cfg config.Config) error {
	logger := sysutil.ConfigureLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	stores, err := store.Open(ctx, cfg.Store, store.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn().Err(err).Msg("store close")
		}
	}()

	model, err := upstream.NewModelClient(ctx, cfg.Model)
	if err != nil {
		return err
	}
	if c, ok := model.(io.Closer); ok {
		defer c.Close()
	}
	notifier, err := upstream.NewNotifier(cfg.Notify, upstream.NewHTTPClient(cfg.Model.Timeout))
	if err != nil {
		return err
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, cfg, httpapi.Deps{
		Stores:   stores,
		Model:    model,
		Notifier: notifier,
		Log:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	logBanner(logger, cfg, model, notifier)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutdown signal received, draining")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func logBanner(logger zerolog.Logger, cfg config.Config, model upstream.ModelClient, notifier upstream.Notifier) {
	logger.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Env).
		Str("store", cfg.Store.Driver).
		Str("quota_store", cfg.Store.QuotaDriver).
		Msg("server running")
	logger.Info().
		Str("provider", model.Name()).
		Str("model", status(model.Configured())).
		Str("channel", notifier.Name()).
		Str("notifications", status(notifier.Configured())).
		Msg("upstreams")
}
