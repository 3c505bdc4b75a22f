// Package main is the entry point for the real-time transaction processor.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"txstream/internal/config"
	"txstream/internal/kafka"
	"txstream/internal/processor"
	"txstream/internal/startup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("booting rt-processor",
		"brokers", cfg.Kafka.Brokers,
		"raw_topic", cfg.Kafka.RawTopic,
		"clean_topic", cfg.Kafka.CleanTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repeated connection failure at startup is fatal, unlike record
	// errors in the steady-state loop.
	if err := startup.WaitForBroker(ctx, &cfg.Kafka, logger); err != nil {
		logger.Error("startup aborted", "error", err)
		os.Exit(1)
	}

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	reader, err := kafka.NewReader(&cfg.Kafka, logger)
	if err != nil {
		logger.Error("failed to create kafka reader", "error", err)
		os.Exit(1)
	}

	producer, err := kafka.NewProducer(&cfg.Kafka, cfg.Kafka.CleanTopic, logger)
	if err != nil {
		logger.Error("failed to create kafka producer", "error", err)
		reader.Close()
		os.Exit(1)
	}

	proc := processor.New(cfg.Processor, reader, producer, logger)

	logger.Info("processor ready",
		"raw_topic", cfg.Kafka.RawTopic,
		"clean_topic", cfg.Kafka.CleanTopic,
	)

	if err := proc.Run(ctx); err != nil {
		logger.Error("processor exited with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
