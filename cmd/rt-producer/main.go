// Package main is the synthetic raw event generator. It publishes
// occasionally malformed transaction events to the raw topic so the
// processor has something to repair.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"txstream/internal/config"
	"txstream/internal/gen"
	"txstream/internal/kafka"
	"txstream/internal/startup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := startup.WaitForBroker(ctx, &cfg.Kafka, logger); err != nil {
		logger.Error("startup aborted", "error", err)
		os.Exit(1)
	}

	producer, err := kafka.NewProducer(&cfg.Kafka, cfg.Kafka.RawTopic, logger)
	if err != nil {
		logger.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	generator := gen.New(gen.Config{
		StartSeq:   cfg.Generator.StartSeq,
		Seed:       cfg.Generator.Seed,
		DirtyRatio: cfg.Generator.DirtyRatio,
	})

	logger.Info("rt-producer started",
		"topic", cfg.Kafka.RawTopic,
		"interval", cfg.Generator.Interval,
		"start_seq", cfg.Generator.StartSeq,
	)

	ticker := time.NewTicker(cfg.Generator.Interval)
	defer ticker.Stop()

	for {
		seq := generator.Seq()
		rec := generator.Next()

		if err := producer.PublishJSON(ctx, uuid.NewString(), rec); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("failed to publish raw event", "seq", seq, "error", err)
		} else {
			logger.Info("raw event sent", "seq", seq)
		}

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-ticker.C:
		}
	}
}
