// Package gen produces synthetic raw transaction events for the raw topic.
// A share of the events is deliberately dirtied (missing fields, wrong
// types, mixed timestamp formats) so the processor's normalization path is
// exercised end to end.
package gen

import (
	"fmt"
	"math/rand/v2"
	"time"

	"txstream/internal/schema"
)

var (
	countries      = []string{"VN", "KR", "JP", "SG"}
	idTypes        = []string{"ID", "PASSPORT", "DL"}
	paymentMethods = []string{"CASH", "CARD", "BANK", "WALLET", "CRYPTO"}

	firstNames = []string{"Minh", "Ji-ho", "Haruto", "Wei", "Linh", "Soo-ah", "Aiko", "Mei"}
	lastNames  = []string{"Nguyen", "Kim", "Sato", "Tan", "Tran", "Park", "Tanaka", "Lim"}
)

// Config holds generator settings.
type Config struct {
	StartSeq   int64
	Seed       int64   // 0 seeds from the clock
	DirtyRatio float64 // share of deliberately malformed events
}

// Generator emits raw events with an incrementing transaction sequence.
type Generator struct {
	rng        *rand.Rand
	seq        int64
	dirtyRatio float64
	now        func() time.Time
}

// New creates a Generator. A non-zero seed makes the output deterministic.
func New(cfg Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	startSeq := cfg.StartSeq
	if startSeq < 1 {
		startSeq = 1
	}
	dirty := cfg.DirtyRatio
	if dirty < 0 || dirty > 1 {
		dirty = 0.10
	}
	return &Generator{
		rng:        rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1)),
		seq:        startSeq,
		dirtyRatio: dirty,
		now:        time.Now,
	}
}

// Next returns the next raw event. Roughly DirtyRatio of the events are
// dirtied: half lose country_code, half carry a string-typed 24h amount.
func (g *Generator) Next() schema.RawEvent {
	now := g.now().UTC()
	today := now.Truncate(24 * time.Hour)

	rec := schema.RawEvent{
		"transaction_seq":           g.seq,
		"user_seq":                  g.rng.Int64N(9_000_000) + 1_000_000,
		"receiving_country":         pick(g.rng, countries),
		"country_code":              pick(g.rng, countries),
		"id_type":                   pick(g.rng, idTypes),
		"stay_qualify":              pick(g.rng, []string{"YES", "NO"}),
		"visa_expire_date":          g.randDate(today, today.AddDate(1, 0, 0)),
		"user_name":                 pick(g.rng, firstNames) + " " + pick(g.rng, lastNames),
		"payment_method":            pick(g.rng, paymentMethods),
		"autodebit_account":         g.rng.Float64(),
		"register_date":             g.randDate(date(1990, 1, 1), today),
		"first_transaction_date":    g.randDate(date(1990, 1, 1), today),
		"birth_date":                g.randDate(date(1960, 1, 1), date(2005, 12, 31)),
		"recheck_date":              g.randDate(date(1990, 1, 1), today),
		"invite_code":               fmt.Sprintf("INV-%04d", g.rng.IntN(10000)),
		"face_pin_date":             g.randDate(date(1990, 1, 1), today),
		"transaction_count_24hour":  g.rng.Int64N(61),
		"transaction_amount_24hour": g.rng.Int64N(20_000_001),
		"transaction_count_1week":   g.rng.Int64N(151),
		"transaction_amount_1week":  g.rng.Int64N(80_000_001),
		"transaction_count_1month":  g.rng.Int64N(261),
		"transaction_amount_1month": g.rng.Int64N(200_000_001),
		"label":                     g.rng.IntN(2), // the processor relabels by rule
		"create_dt":                 g.timestamp(now),
		"deposit_amount":            10_000 + g.rng.Float64()*(10_000_000-10_000),
	}
	g.seq++

	r := g.rng.Float64()
	switch {
	case r < g.dirtyRatio/2:
		delete(rec, "country_code")
	case r < g.dirtyRatio:
		rec["transaction_amount_24hour"] = fmt.Sprintf("%d", rec["transaction_amount_24hour"])
	}

	return rec
}

// Seq returns the next sequence number Next will emit.
func (g *Generator) Seq() int64 {
	return g.seq
}

// timestamp emits mixed formats so the processor must canonicalize:
// 60% canonical, 20% ISO-8601, 20% DD/MM/YYYY.
func (g *Generator) timestamp(now time.Time) string {
	switch r := g.rng.Float64(); {
	case r < 0.6:
		return now.Format(schema.DateTimeLayout)
	case r < 0.8:
		return now.Format("2006-01-02T15:04:05.000000")
	default:
		return now.Format("02/01/2006 15:04:05")
	}
}

func (g *Generator) randDate(start, end time.Time) string {
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return start.AddDate(0, 0, g.rng.IntN(days+1)).Format(schema.DateLayout)
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.IntN(len(options))]
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
