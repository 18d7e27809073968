package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vigil-reporter/internal/config"
	"vigil-reporter/internal/exporter"
	"vigil-reporter/internal/logging"
	"vigil-reporter/internal/version"
	"vigil-reporter/reporter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("reporter exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	metrics := exporter.NewMetrics(cfg.ProbeID, cfg.NodeID, cfg.ReplicaID)
	rep, err := newReporter(cfg, metrics, logger)
	if err != nil {
		return err
	}

	logger.Info("starting vigil reporter",
		slog.String("version", version.Value()),
		slog.String("reportUrl", rep.ReportURL()),
		slog.String("replicaId", cfg.ReplicaID),
		slog.Duration("interval", rep.Interval()),
	)

	task, err := rep.Run(ctx)
	if err != nil {
		return fmt.Errorf("start reporter: %w", err)
	}

	if cfg.ListenAddr != "" {
		server := exporter.NewServer(cfg.ListenAddr, exporter.NewRouter(metrics), logger)
		if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			task.Stop()
			task.Wait()
			return fmt.Errorf("status server: %w", err)
		}
	}

	task.Wait()
	logger.Info("vigil reporter stopped")
	return nil
}

func newReporter(cfg config.Config, observer reporter.Observer, logger *slog.Logger) (*reporter.Reporter, error) {
	return reporter.New(cfg.URL, cfg.Token).
		ProbeID(cfg.ProbeID).
		NodeID(cfg.NodeID).
		ReplicaID(cfg.ReplicaID).
		Interval(cfg.Interval()).
		Logger(logger).
		Observer(observer).
		TryBuild()
}
