package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seo-optimizer/reportview/analysis"
	"github.com/seo-optimizer/reportview/config"
	"github.com/seo-optimizer/reportview/metrics"
	"github.com/seo-optimizer/reportview/server"
	"github.com/seo-optimizer/reportview/stats"
	"github.com/seo-optimizer/reportview/storage"
	"github.com/seo-optimizer/reportview/view"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the report web service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			logger, err := a.logger(cfg, true)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func newTracker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (view.Tracker, func(), error) {
	if !cfg.UseRedis() {
		logger.Info("tracking submissions in memory")
		return storage.NewMemoryTracker(), func() {}, nil
	}

	client, err := storage.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("tracking submissions in redis", zap.String("addr", cfg.RedisAddr))
	return storage.NewRedisTracker(client, cfg.AnalyzerTimeout+time.Minute), func() { client.Close() }, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	setupGinMode(cfg.GinMode)

	tracker, closeTracker, err := newTracker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTracker()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	monthly, err := stats.NewStorage(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer monthly.Close()
	monthly.Cleanup(12)

	traffic, err := stats.NewTraffic(cfg.DataDir)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, server.Deps{
		Analyzer: analysis.NewClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout),
		Tracker:  tracker,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Stats:    monthly,
		Traffic:  traffic,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("server started",
		zap.String("url", fmt.Sprintf("http://localhost:%s", cfg.Port)),
		zap.String("analyzer", cfg.AnalyzerURL),
	)

	select {
	case err := <-errCh:
		return fmt.Errorf("could not start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	if err := traffic.Save(); err != nil {
		logger.Warn("failed to save traffic statistics", zap.Error(err))
	}

	logger.Info("server exiting")
	return nil
}
