package gen

import (
	"encoding/json"
	"testing"
	"time"

	"txstream/internal/schema"
)

func TestGenerator_SeqIncrements(t *testing.T) {
	g := New(Config{StartSeq: 100, Seed: 1})

	for want := int64(100); want < 105; want++ {
		rec := g.Next()
		if got := rec["transaction_seq"].(int64); got != want {
			t.Errorf("transaction_seq = %d, want %d", got, want)
		}
	}
	if g.Seq() != 105 {
		t.Errorf("Seq() = %d, want 105", g.Seq())
	}
}

func TestGenerator_DeterministicWithSeed(t *testing.T) {
	a := New(Config{Seed: 42})
	b := New(Config{Seed: 42})
	a.now = func() time.Time { return time.Date(2024, 3, 15, 8, 30, 0, 0, time.UTC) }
	b.now = a.now

	for i := 0; i < 20; i++ {
		ja, _ := json.Marshal(a.Next())
		jb, _ := json.Marshal(b.Next())
		if string(ja) != string(jb) {
			t.Fatalf("event %d diverged:\n%s\n%s", i, ja, jb)
		}
	}
}

func TestGenerator_CleanEventHasAllFields(t *testing.T) {
	g := New(Config{Seed: 7, DirtyRatio: 0})

	fields := []string{
		"transaction_seq", "user_seq", "receiving_country", "country_code",
		"id_type", "stay_qualify", "visa_expire_date", "user_name",
		"payment_method", "autodebit_account", "register_date",
		"first_transaction_date", "birth_date", "recheck_date",
		"invite_code", "face_pin_date", "transaction_count_24hour",
		"transaction_amount_24hour", "transaction_count_1week",
		"transaction_amount_1week", "transaction_count_1month",
		"transaction_amount_1month", "label", "create_dt", "deposit_amount",
	}

	for i := 0; i < 50; i++ {
		rec := g.Next()
		for _, f := range fields {
			if _, ok := rec[f]; !ok {
				t.Fatalf("event %d missing field %q", i, f)
			}
		}
	}
}

func TestGenerator_DirtyRatio(t *testing.T) {
	g := New(Config{Seed: 11, DirtyRatio: 1.0})

	missingCountry, stringAmount := 0, 0
	const n = 200
	for i := 0; i < n; i++ {
		rec := g.Next()
		if _, ok := rec["country_code"]; !ok {
			missingCountry++
		}
		if _, ok := rec["transaction_amount_24hour"].(string); ok {
			stringAmount++
		}
	}
	if missingCountry+stringAmount != n {
		t.Errorf("dirty events = %d of %d, want all dirty at ratio 1.0", missingCountry+stringAmount, n)
	}
	if missingCountry == 0 || stringAmount == 0 {
		t.Errorf("dirt variants = %d missing-country, %d string-amount; want both present", missingCountry, stringAmount)
	}
}

func TestGenerator_TimestampsNormalize(t *testing.T) {
	// Every emitted create_dt, whatever its format, must be recoverable by
	// the canonicalizer without falling back to the current clock.
	g := New(Config{Seed: 3})
	fixed := time.Date(2024, 3, 15, 8, 30, 45, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	want := fixed.Format(schema.DateTimeLayout)
	for i := 0; i < 50; i++ {
		rec := g.Next()
		ts := rec["create_dt"].(string)
		got, ok := parseAny(ts)
		if !ok {
			t.Fatalf("event %d: create_dt %q did not parse", i, ts)
		}
		if got != want {
			t.Errorf("event %d: create_dt %q canonicalized to %q, want %q", i, ts, got, want)
		}
	}
}

func parseAny(ts string) (string, bool) {
	layouts := []string{
		schema.DateTimeLayout,
		"2006-01-02T15:04:05.000000",
		"02/01/2006 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, ts); err == nil {
			return parsed.Format(schema.DateTimeLayout), true
		}
	}
	return "", false
}

func TestGenerator_Bounds(t *testing.T) {
	g := New(Config{Seed: 5, DirtyRatio: 0})

	for i := 0; i < 100; i++ {
		rec := g.Next()
		if n := rec["transaction_count_24hour"].(int64); n < 0 || n > 60 {
			t.Errorf("transaction_count_24hour = %d, want within [0, 60]", n)
		}
		if amt := rec["deposit_amount"].(float64); amt < 10_000 || amt > 10_000_000 {
			t.Errorf("deposit_amount = %v, want within [10000, 10000000]", amt)
		}
		if label := rec["label"].(int); label != 0 && label != 1 {
			t.Errorf("label = %d, want 0 or 1", label)
		}
	}
}
