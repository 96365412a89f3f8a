// Package score implements the seven sub-score engines and the
// composite aggregator. Every sub-score is a 0-100 value where higher
// means lower risk; the composite blends them with fixed weights and
// maps the result onto a risk tier.
package score

import (
	"time"
)

// Tier is the risk band of a composite score.
type Tier string

const (
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// TierFor maps a composite score onto its band.
func TierFor(score float64) Tier {
	switch {
	case score >= 70:
		return TierLow
	case score >= 40:
		return TierMedium
	case score >= 20:
		return TierHigh
	default:
		return TierCritical
	}
}

// SubScore is one engine's result with its diagnostic label.
type SubScore struct {
	Score  float64 `json:"score"`
	Status string  `json:"status,omitempty"`
}

// Report is the full composite analysis of one instrument.
type Report struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Industry string `json:"industry"`

	Composite float64 `json:"composite"`
	Tier      Tier    `json:"tier"`

	FinancialHealth     SubScore `json:"financial_health"`
	Valuation           SubScore `json:"valuation"`
	HistoricalValuation SubScore `json:"historical_valuation"`
	Volatility          SubScore `json:"volatility"`
	Trend               SubScore `json:"trend"`
	Turnover            SubScore `json:"turnover"`
	Momentum            SubScore `json:"momentum"`

	Warnings []string `json:"warnings,omitempty"`
	Summary  *Summary `json:"summary,omitempty"`

	AsOf        time.Time `json:"as_of"`
	GeneratedAt time.Time `json:"generated_at"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
