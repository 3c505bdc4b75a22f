// Package normalize converts raw transaction events to the canonical
// record schema. Normalization is total: any input shape produces a fully
// populated record, substituting documented defaults for missing or
// malformed fields.
package normalize

import (
	"regexp"
	"time"

	"txstream/internal/schema"
)

// timestampLayouts are tried in priority order when canonicalizing
// create_dt. The first successful parse wins.
var timestampLayouts = []string{
	schema.DateTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"2006/01/02 15:04:05",
}

// datetimeExtract pulls a date and time substring out of timestamps that
// carry extra decoration the layouts above cannot handle, such as a
// trailing timezone offset.
var datetimeExtract = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}:\d{2})`)

// Config holds normalizer settings.
type Config struct {
	// DefaultCountry is used when both country_code and receiving_country
	// are absent.
	DefaultCountry string `yaml:"default_country"`
}

// DefaultConfig returns the default normalizer configuration.
func DefaultConfig() Config {
	return Config{DefaultCountry: "VN"}
}

// Normalizer maps raw events to canonical records.
type Normalizer struct {
	defaultCountry string
	now            func() time.Time
}

// New creates a Normalizer.
func New(cfg Config) *Normalizer {
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = "VN"
	}
	return &Normalizer{
		defaultCountry: cfg.DefaultCountry,
		now:            time.Now,
	}
}

// Normalize builds a canonical record from a raw event. It never fails and
// performs no I/O; every field of the result is populated.
func (n *Normalizer) Normalize(raw schema.RawEvent) *schema.CanonicalRecord {
	today := n.now().UTC().Format(schema.DateLayout)

	return &schema.CanonicalRecord{
		TransactionSeq:   raw.Int("transaction_seq", 0),
		UserSeq:          raw.Int("user_seq", 0),
		ReceivingCountry: raw.String("receiving_country", raw.String("country_code", n.defaultCountry)),
		CountryCode:      raw.String("country_code", raw.String("receiving_country", n.defaultCountry)),
		IDType:           raw.String("id_type", "ID"),
		StayQualify:      raw.String("stay_qualify", "YES"),
		VisaExpireDate:   dateOrDefault(raw.String("visa_expire_date", today), today),
		UserName:         raw.String("user_name", "Unknown"),
		PaymentMethod:    raw.String("payment_method", "CASH"),
		AutodebitAccount: raw.Float("autodebit_account", 0),
		RegisterDate:         dateOrDefault(raw.String("register_date", today), today),
		FirstTransactionDate: dateOrDefault(raw.String("first_transaction_date", today), today),
		BirthDate:            dateOrDefault(raw.String("birth_date", "1980-01-01"), "1980-01-01"),
		RecheckDate:          dateOrDefault(raw.String("recheck_date", today), today),
		InviteCode:           raw.String("invite_code", "INV-0000"),
		FacePinDate:          dateOrDefault(raw.String("face_pin_date", today), today),
		TransactionCount24Hour:  raw.Int("transaction_count_24hour", 0),
		TransactionAmount24Hour: raw.Int("transaction_amount_24hour", 0),
		TransactionCount1Week:   raw.Int("transaction_count_1week", 0),
		TransactionAmount1Week:  raw.Int("transaction_amount_1week", 0),
		TransactionCount1Month:  raw.Int("transaction_count_1month", 0),
		TransactionAmount1Month: raw.Int("transaction_amount_1month", 0),
		Label:         int(raw.Int("label", 0)),
		CreateDT:      n.CanonicalTimestamp(raw.String("create_dt", "")),
		DepositAmount: raw.Float("deposit_amount", 0),
	}
}

// CanonicalTimestamp reformats a timestamp of any supported shape to the
// canonical layout. Empty or unparseable input yields the current UTC time.
func (n *Normalizer) CanonicalTimestamp(s string) string {
	if s == "" {
		return n.now().UTC().Format(schema.DateTimeLayout)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(schema.DateTimeLayout)
		}
	}

	if m := datetimeExtract.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse(schema.DateTimeLayout, m[1]+" "+m[2]); err == nil {
			return t.Format(schema.DateTimeLayout)
		}
	}

	return n.now().UTC().Format(schema.DateTimeLayout)
}

// dateOrDefault keeps s when it is a valid canonical date, otherwise the
// default. Unparseable dates are recovered here so they never fail
// downstream validation.
func dateOrDefault(s, def string) string {
	if _, err := time.Parse(schema.DateLayout, s); err != nil {
		return def
	}
	return s
}
