// Package config handles configuration loading for the txstream pipeline.
//
// Configuration comes from an optional YAML file plus environment variable
// overrides. The environment names match the original deployment surface
// (BOOTSTRAP_SERVERS, TOPIC_RAW, TOPIC_CLEAN, GROUP_ID, FLUSH_INTERVAL_SEC,
// DEDUP_MAX_KEYS, HEARTBEAT_EVERY).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"txstream/internal/kafka"
	"txstream/internal/processor"
)

// Config holds the complete application configuration.
type Config struct {
	Kafka     kafka.Config     `yaml:"kafka"`
	Processor processor.Config `yaml:"processor"`
	Generator GeneratorConfig  `yaml:"generator"`
	Pinot     PinotConfig      `yaml:"pinot"`
	Metrics   MetricsConfig    `yaml:"metrics"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// GeneratorConfig holds synthetic producer settings.
type GeneratorConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StartSeq   int64         `yaml:"start_seq"`
	Seed       int64         `yaml:"seed"`        // 0 seeds from the clock
	DirtyRatio float64       `yaml:"dirty_ratio"` // share of deliberately malformed events
}

// PinotConfig holds the analytical read-side settings.
type PinotConfig struct {
	BrokerURL string        `yaml:"broker_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Kafka:     *kafka.DefaultConfig(),
		Processor: processor.DefaultConfig(),
		Generator: GeneratorConfig{
			Interval:   5 * time.Second,
			StartSeq:   1,
			DirtyRatio: 0.10,
		},
		Pinot: PinotConfig{
			BrokerURL: "http://localhost:8099",
			Timeout:   60 * time.Second,
		},
		Metrics: MetricsConfig{Addr: ""},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads configuration from the file named by TXSTREAM_CONFIG_PATH
// (default configs/config.yaml; a missing file falls back to defaults) and
// then applies environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := os.Getenv("TXSTREAM_CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BOOTSTRAP_SERVERS"); v != "" {
		c.Kafka.Brokers = splitBrokers(v)
	}
	if v := os.Getenv("TOPIC_RAW"); v != "" {
		c.Kafka.RawTopic = v
	}
	if v := os.Getenv("TOPIC_CLEAN"); v != "" {
		c.Kafka.CleanTopic = v
	}
	if v := os.Getenv("GROUP_ID"); v != "" {
		c.Kafka.ConsumerGroup = v
	}
	if v := os.Getenv("FLUSH_INTERVAL_SEC"); v != "" {
		if sec, err := strconv.ParseFloat(v, 64); err == nil && sec >= 0 {
			c.Processor.FlushInterval = time.Duration(sec * float64(time.Second))
		}
	}
	if v := os.Getenv("DEDUP_MAX_KEYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Processor.DedupMaxKeys = n
		}
	}
	if v := os.Getenv("HEARTBEAT_EVERY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Processor.HeartbeatEvery = n
		}
	}
	if v := os.Getenv("PINOT_BROKER_URL"); v != "" {
		c.Pinot.BrokerURL = v
	}
	if v := os.Getenv("TXSTREAM_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("TXSTREAM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for values the pipeline cannot run
// with.
func (c *Config) Validate() error {
	if err := c.Kafka.Validate(); err != nil {
		return err
	}
	if c.Processor.DedupMaxKeys < 1 {
		return fmt.Errorf("config: dedup_max_keys must be at least 1, got %d", c.Processor.DedupMaxKeys)
	}
	if c.Processor.FlushInterval < 0 {
		return fmt.Errorf("config: flush_interval must not be negative")
	}
	if c.Processor.HeartbeatEvery < 0 {
		return fmt.Errorf("config: heartbeat_every must not be negative")
	}
	if c.Generator.DirtyRatio < 0 || c.Generator.DirtyRatio > 1 {
		return fmt.Errorf("config: dirty_ratio must be within [0, 1], got %v", c.Generator.DirtyRatio)
	}
	return nil
}

func splitBrokers(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
