// Package processor runs the normalization, dedup, and scoring loop that
// turns raw transaction events into canonical records.
package processor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"txstream/internal/dedup"
	"txstream/internal/kafka"
	"txstream/internal/metrics"
	"txstream/internal/normalize"
	"txstream/internal/risk"
	"txstream/internal/schema"
)

// Source supplies raw messages from the input stream.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Sink accepts canonical records for the output stream.
type Sink interface {
	PublishJSON(ctx context.Context, key string, value any) error
	Flush(ctx context.Context) error
	Close() error
}

// Config holds processor settings.
type Config struct {
	// FlushInterval is the period between forced flushes of buffered
	// output writes. Zero disables periodic flushing.
	FlushInterval time.Duration `yaml:"flush_interval"`

	// DedupMaxKeys bounds the number of (user, minute) keys retained for
	// duplicate suppression.
	DedupMaxKeys int `yaml:"dedup_max_keys"`

	// HeartbeatEvery emits a progress log line after every N processed
	// records. Zero disables heartbeats.
	HeartbeatEvery int `yaml:"heartbeat_every"`

	// FetchErrorBackoff is the pause after a failed fetch before retrying.
	FetchErrorBackoff time.Duration `yaml:"fetch_error_backoff"`
}

// DefaultConfig returns the default processor configuration.
func DefaultConfig() Config {
	return Config{
		FlushInterval:     2 * time.Second,
		DedupMaxKeys:      50000,
		HeartbeatEvery:    200,
		FetchErrorBackoff: time.Second,
	}
}

// Stats is a snapshot of the processor's progress counters.
type Stats struct {
	Consumed   uint64
	Published  uint64
	Suppressed uint64
	Errors     uint64
}

// Processor is the single-worker pipeline: read one, process one, write
// one. It owns all cross-record state; nothing here is shared between
// goroutines.
type Processor struct {
	cfg        Config
	source     Source
	sink       Sink
	normalizer *normalize.Normalizer
	window     *dedup.Window
	validator  *schema.Validator
	logger     *slog.Logger

	stats         Stats
	lastFlush     time.Time
	lastHeartbeat uint64
}

// New creates a Processor wired to the given source and sink.
func New(cfg Config, source Source, sink Sink, logger *slog.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		source:     source,
		sink:       sink,
		normalizer: normalize.New(normalize.DefaultConfig()),
		window:     dedup.NewWindow(cfg.DedupMaxKeys),
		validator:  schema.NewValidator(),
		logger:     logger,
	}
}

// Run consumes until the context is canceled or the source is exhausted,
// then flushes buffered output and releases both connections. Record-level
// failures are logged and skipped; Run only returns early on a nil source.
func (p *Processor) Run(ctx context.Context) error {
	p.lastFlush = time.Now()
	p.logger.Info("processor started", "dedup_max_keys", p.window.Cap(), "flush_interval", p.cfg.FlushInterval)

	for {
		msg, err := p.source.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				break
			}
			p.logger.Error("failed to fetch message", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.FetchErrorBackoff):
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		p.stats.Consumed++
		metrics.RecordsConsumed.Inc()

		p.handle(ctx, msg)
		p.maybeFlush(ctx)
		p.maybeHeartbeat()
	}

	p.shutdown()
	return nil
}

// handle is the per-record boundary: any failure inside is logged with the
// record's source position and the loop moves on.
func (p *Processor) handle(ctx context.Context, msg kafka.Message) {
	raw, err := schema.DecodeRaw(msg.Value)
	if err != nil {
		p.recordError(msg, "decode raw event", err)
		return
	}

	rec := p.normalizer.Normalize(raw)

	if p.window.Observe(dedup.KeyFor(rec.UserSeq, rec.CreateDT)) {
		// Duplicates are dropped silently; they only show up in the
		// aggregate counters.
		p.stats.Suppressed++
		metrics.DuplicatesSuppressed.Inc()
		return
	}

	res := risk.Apply(rec)

	if err := p.validator.Validate(rec); err != nil {
		p.recordError(msg, "validate canonical record", err)
		return
	}

	key := strconv.FormatInt(rec.UserSeq, 10)
	if err := p.sink.PublishJSON(ctx, key, rec); err != nil {
		p.recordError(msg, "publish clean record", err)
		return
	}

	p.stats.Published++
	metrics.RecordsPublished.Inc()
	metrics.RiskScore.Observe(res.Risk)
	if res.Label == 1 {
		metrics.FraudFlagged.Inc()
	}

	p.logger.Info("clean record published",
		"raw_partition", msg.Partition,
		"raw_offset", msg.Offset,
		"transaction_seq", rec.TransactionSeq,
		"label", res.Label,
		"risk", res.Risk,
	)
}

func (p *Processor) recordError(msg kafka.Message, stage string, err error) {
	p.stats.Errors++
	metrics.RecordErrors.Inc()
	p.logger.Error("record processing error",
		"stage", stage,
		"error", err,
		"raw_partition", msg.Partition,
		"raw_offset", msg.Offset,
	)
}

func (p *Processor) maybeFlush(ctx context.Context) {
	if p.cfg.FlushInterval <= 0 {
		return
	}
	if time.Since(p.lastFlush) < p.cfg.FlushInterval {
		return
	}
	if err := p.sink.Flush(ctx); err != nil {
		p.logger.Error("periodic flush failed", "error", err)
	}
	p.lastFlush = time.Now()
}

func (p *Processor) maybeHeartbeat() {
	if p.cfg.HeartbeatEvery <= 0 {
		return
	}
	if p.stats.Published == 0 || p.stats.Published == p.lastHeartbeat {
		return
	}
	if p.stats.Published%uint64(p.cfg.HeartbeatEvery) != 0 {
		return
	}
	p.lastHeartbeat = p.stats.Published
	p.logger.Info("heartbeat",
		"consumed", p.stats.Consumed,
		"published", p.stats.Published,
		"suppressed", p.stats.Suppressed,
		"errors", p.stats.Errors,
		"window_keys", p.window.Len(),
	)
}

// shutdown forces a final flush and releases both connections. Release
// happens even when the flush fails.
func (p *Processor) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.sink.Flush(ctx); err != nil {
		p.logger.Error("final flush failed", "error", err)
	}
	if err := p.sink.Close(); err != nil {
		p.logger.Error("failed to close sink", "error", err)
	}
	if err := p.source.Close(); err != nil {
		p.logger.Error("failed to close source", "error", err)
	}

	p.logger.Info("processor shutdown complete",
		"consumed", p.stats.Consumed,
		"published", p.stats.Published,
		"suppressed", p.stats.Suppressed,
		"errors", p.stats.Errors,
	)
}

// Stats returns a snapshot of the progress counters.
func (p *Processor) Stats() Stats {
	return p.stats
}
