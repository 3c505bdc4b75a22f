// Package risk implements the additive rule-based fraud scorer applied to
// every canonical record before publication.
package risk

import "txstream/internal/schema"

// LabelThreshold is the minimum risk score that flags a record as fraud.
const LabelThreshold = 0.35

// Rule trigger bounds, in the same currency unit as the wire amounts.
const (
	amount24HourLimit = 30_000_000
	amount1WeekLimit  = 150_000_000
	amount1MonthLimit = 300_000_000
	count24HourLimit  = 60
	depositLimit      = 10_000_000
)

// highRiskMethods are payment channels that add risk on their own.
var highRiskMethods = map[string]struct{}{
	"CRYPTO": {},
	"WALLET": {},
}

// Result is the outcome of scoring one record.
type Result struct {
	// Risk is the summed rule weight, clamped to [0, 1].
	Risk float64
	// Label is 1 when the record is flagged as fraud.
	Label int
}

// Score computes the risk score and label for a record. It is pure and
// deterministic: all triggered rule weights are summed independently,
// clamped to 1.0, and compared against LabelThreshold. A record that
// arrives already labeled as fraud keeps its label regardless of the
// computed risk.
func Score(rec *schema.CanonicalRecord) Result {
	score := 0.0

	// Amount and velocity spikes.
	if rec.TransactionAmount24Hour > amount24HourLimit {
		score += 0.25
	}
	if rec.TransactionAmount1Week > amount1WeekLimit {
		score += 0.20
	}
	if rec.TransactionAmount1Month > amount1MonthLimit {
		score += 0.10
	}
	if rec.TransactionCount24Hour > count24HourLimit {
		score += 0.15
	}

	// Unusual route or payment channel.
	if _, ok := highRiskMethods[rec.PaymentMethod]; ok {
		score += 0.10
	}
	if rec.ReceivingCountry != "" && rec.CountryCode != "" && rec.ReceivingCountry != rec.CountryCode {
		score += 0.10
	}

	// Large single deposit.
	if rec.DepositAmount > depositLimit {
		score += 0.05
	}

	if score > 1.0 {
		score = 1.0
	}

	label := 0
	if score >= LabelThreshold {
		label = 1
	}
	if rec.Label == 1 {
		// Never downgrade a known-fraud flag.
		label = 1
	}

	return Result{Risk: score, Label: label}
}

// Apply scores a record and overwrites its label with the result.
func Apply(rec *schema.CanonicalRecord) Result {
	res := Score(rec)
	rec.Label = res.Label
	return res
}
