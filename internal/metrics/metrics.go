// Package metrics exposes pipeline counters via Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txstream_records_consumed_total",
		Help: "Raw records fetched from the input topic.",
	})
	RecordsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txstream_records_published_total",
		Help: "Canonical records published to the clean topic.",
	})
	DuplicatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txstream_duplicates_suppressed_total",
		Help: "Records suppressed by the dedup window.",
	})
	RecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txstream_record_errors_total",
		Help: "Records skipped after a decode, validation, or publish error.",
	})
	FraudFlagged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txstream_fraud_flagged_total",
		Help: "Published records labeled as fraud.",
	})
	RiskScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "txstream_risk_score",
		Help:    "Distribution of computed risk scores.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})
)
