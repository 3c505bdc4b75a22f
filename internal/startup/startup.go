// Package startup verifies broker reachability before the pipeline starts.
// Repeated failure to connect at startup is fatal, unlike steady-state
// record errors which are logged and skipped.
package startup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"txstream/internal/kafka"
)

// WaitForBroker dials the first configured broker until it answers a
// metadata request, retrying with a fixed backoff up to the configured
// attempt bound. Returns an error when the bound is exhausted or the
// context is canceled.
func WaitForBroker(ctx context.Context, cfg *kafka.Config, logger *slog.Logger) error {
	dialer, err := cfg.Dialer()
	if err != nil {
		return err
	}

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.ConnectBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", cfg.Brokers[0])
		if err == nil {
			brokers, berr := conn.Brokers()
			conn.Close()
			if berr == nil {
				logger.Info("kafka broker reachable",
					"broker", cfg.Brokers[0],
					"cluster_size", len(brokers),
					"attempt", attempt,
				)
				return nil
			}
			err = berr
		}

		lastErr = err
		logger.Warn("kafka not ready",
			"broker", cfg.Brokers[0],
			"error", err,
			"attempt", attempt,
			"max_attempts", attempts,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("startup: kafka unreachable after %d attempts: %w", attempts, lastErr)
}
