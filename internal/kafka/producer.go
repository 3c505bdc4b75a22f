package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrProducerClosed is returned when publishing after Close.
var ErrProducerClosed = fmt.Errorf("kafka: producer is closed")

// Producer publishes canonical records to an output topic. Messages are
// buffered up to BatchSize and written synchronously with bounded retries;
// Flush forces out whatever is buffered. With the default BatchSize of 1
// every Publish is an immediate, acknowledged write.
//
// Producer is owned by the single worker loop and is not safe for
// concurrent use.
type Producer struct {
	writer  *kafka.Writer
	config  *Config
	logger  *slog.Logger
	pending []kafka.Message
	closed  atomic.Bool

	messagesProduced atomic.Int64
	bytesProduced    atomic.Int64
	retries          atomic.Int64
	writeErrors      atomic.Int64
}

// NewProducer creates a producer for the given topic.
func NewProducer(config *Config, topic string, logger *slog.Logger) (*Producer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	dialer, err := config.Dialer()
	if err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  1, // retries are handled here, with backoff
		WriteTimeout: config.WriteTimeout,
		ReadTimeout:  config.ReadTimeout,
		RequiredAcks: kafka.RequiredAcks(config.RequiredAcks),
		Transport: &kafka.Transport{
			Dial: dialer.DialFunc,
			TLS:  dialer.TLS,
			SASL: dialer.SASLMechanism,
		},
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...), "component", "kafka-writer")
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...), "component", "kafka-writer")
		}),
	}

	p := &Producer{
		writer:  writer,
		config:  config,
		logger:  logger,
		pending: make([]kafka.Message, 0, config.BatchSize),
	}

	logger.Info("kafka producer initialized",
		"brokers", config.Brokers,
		"topic", topic,
		"batch_size", config.BatchSize,
		"required_acks", config.RequiredAcks,
	)

	return p, nil
}

// Publish buffers a message and flushes once the buffer reaches BatchSize.
// A returned error means the triggering flush exhausted its retries; the
// failed batch is dropped so one poisoned publish cannot wedge the loop.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	p.pending = append(p.pending, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})

	if len(p.pending) >= p.config.BatchSize {
		return p.Flush(ctx)
	}
	return nil
}

// PublishJSON marshals the value to JSON and publishes it.
func (p *Producer) PublishJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kafka: failed to marshal message: %w", err)
	}
	return p.Publish(ctx, []byte(key), data)
}

// Flush writes all buffered messages, bounded by PublishTimeout per
// attempt and MaxRetries attempts with exponential backoff. On failure the
// whole batch is dropped; with BatchSize > 1 that includes earlier buffered
// records, so the drop is reported with the keys of every lost message.
func (p *Producer) Flush(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}

	batch := p.pending
	p.pending = p.pending[:0]

	var lastErr error
	backoff := p.config.RetryBackoff

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			p.retries.Add(1)
			p.logger.Debug("retrying kafka publish",
				"attempt", attempt,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				p.logDroppedBatch(batch, ctx.Err())
				return ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}

		writeCtx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
		err := p.writer.WriteMessages(writeCtx, batch...)
		cancel()

		if err == nil {
			p.messagesProduced.Add(int64(len(batch)))
			for _, msg := range batch {
				p.bytesProduced.Add(int64(len(msg.Value) + len(msg.Key)))
			}
			return nil
		}

		lastErr = err
		p.writeErrors.Add(1)
		p.logger.Warn("kafka publish failed",
			"error", err,
			"attempt", attempt+1,
			"max_attempts", p.config.MaxRetries+1,
			"batch", len(batch),
		)

		if isNonRetryableError(err) {
			p.logDroppedBatch(batch, err)
			return fmt.Errorf("kafka: non-retryable error: %w", err)
		}
	}

	p.logDroppedBatch(batch, lastErr)
	return fmt.Errorf("kafka: failed after %d attempts: %w", p.config.MaxRetries+1, lastErr)
}

// logDroppedBatch records which messages a failed flush discarded.
func (p *Producer) logDroppedBatch(batch []kafka.Message, err error) {
	keys := make([]string, len(batch))
	for i, msg := range batch {
		keys[i] = string(msg.Key)
	}
	p.logger.Error("dropping unflushed batch",
		"dropped", len(batch),
		"keys", keys,
		"error", err,
	)
}

// Pending returns the number of buffered, unflushed messages.
func (p *Producer) Pending() int {
	return len(p.pending)
}

// MessagesProduced returns the number of acknowledged messages.
func (p *Producer) MessagesProduced() int64 {
	return p.messagesProduced.Load()
}

// Close flushes buffered messages and releases the output connection. The
// connection is released even when the final flush fails; the flush error
// is logged, not returned.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil // Already closed
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()
	if err := p.Flush(ctx); err != nil {
		p.logger.Error("final flush failed during shutdown", "error", err)
	}

	p.logger.Info("closing kafka producer",
		"messages_produced", p.messagesProduced.Load(),
		"bytes_produced", p.bytesProduced.Load(),
	)

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("kafka: failed to close producer: %w", err)
	}
	return nil
}

// isNonRetryableError checks if an error should not be retried.
func isNonRetryableError(err error) bool {
	switch err {
	case kafka.MessageSizeTooLarge,
		kafka.InvalidTopic,
		kafka.TopicAuthorizationFailed,
		kafka.ClusterAuthorizationFailed:
		return true
	}
	return false
}
