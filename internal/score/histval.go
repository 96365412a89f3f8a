package score

import (
	"math"

	"github.com/riskrank/riskrank/internal/indicators"
	"github.com/riskrank/riskrank/internal/providers"
)

// HistoricalValuationResult carries the own-history valuation score.
type HistoricalValuationResult struct {
	Score        float64  `json:"score"`
	PEPercentile *float64 `json:"pe_percentile,omitempty"`
	PBPercentile *float64 `json:"pb_percentile,omitempty"`
	PSPercentile *float64 `json:"ps_percentile,omitempty"`
	Status       string   `json:"status"`
}

// ScoreHistoricalValuation locates each current multiple within the
// instrument's own three-year history, after an adaptive outlier
// filter, and blends the banded percentile scores 40/30/30 with
// renormalization over whichever metrics have data.
func ScoreHistoricalValuation(current providers.ValuationSnapshot, history []providers.ValuationSnapshot) HistoricalValuationResult {
	type metric struct {
		weight   float64
		current  *float64
		pick     func(providers.ValuationSnapshot) *float64
		iqrUpper float64 // IQR multiplier for the upper fence
		hardCap  float64 // fallback cap for thin histories
	}
	metrics := []metric{
		{0.4, current.PE, func(v providers.ValuationSnapshot) *float64 { return v.PE }, 5, 1000},
		{0.3, current.PB, func(v providers.ValuationSnapshot) *float64 { return v.PB }, 3, 80},
		{0.3, current.PS, func(v providers.ValuationSnapshot) *float64 { return v.PS }, 3, 80},
	}

	var weighted, weightSum float64
	percentiles := make([]*float64, len(metrics))

	for i, m := range metrics {
		if m.current == nil {
			continue
		}
		values := historyColumn(history, m.pick)
		filtered := filterOutliers(values, m.iqrUpper, m.hardCap)
		if len(filtered) == 0 {
			continue
		}
		pct := indicators.FractionBelow(filtered, *m.current, 0.5) * 100
		percentiles[i] = &pct
		weighted += percentileBand(pct) * m.weight
		weightSum += m.weight
	}

	score := 50.0
	if weightSum > 0 {
		score = clamp(weighted/weightSum, 0, 100)
	}

	status := "历史中位"
	switch {
	case score >= 85:
		status = "历史低位"
	case score <= 30:
		status = "历史高位"
	}

	return HistoricalValuationResult{
		Score:        score,
		PEPercentile: percentiles[0],
		PBPercentile: percentiles[1],
		PSPercentile: percentiles[2],
		Status:       status,
	}
}

func historyColumn(history []providers.ValuationSnapshot, pick func(providers.ValuationSnapshot) *float64) []float64 {
	var out []float64
	for _, h := range history {
		if v := pick(h); v != nil && *v > 0.1 {
			out = append(out, *v)
		}
	}
	return out
}

// filterOutliers drops implausible history points. Rich histories get
// an IQR fence (asymmetric: the upper fence is generous because
// multiples spike on earnings troughs); thin ones just a hard cap.
func filterOutliers(values []float64, iqrUpper, hardCap float64) []float64 {
	if len(values) <= 10 {
		out := make([]float64, 0, len(values))
		for _, v := range values {
			if v < hardCap {
				out = append(out, v)
			}
		}
		return out
	}
	q1 := indicators.InterpolatedQuantile(values, 0.25)
	q3 := indicators.InterpolatedQuantile(values, 0.75)
	iqr := q3 - q1
	lower := math.Max(0.1, q1-1.5*iqr)
	upper := q3 + iqrUpper*iqr

	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lower && v <= upper {
			out = append(out, v)
		}
	}
	return out
}

// percentileBand maps a history percentile onto a risk score: cheap
// against your own history is safe, rich is not.
func percentileBand(pct float64) float64 {
	switch {
	case pct < 10:
		return 95
	case pct < 25:
		return 85
	case pct < 50:
		return 70
	case pct < 75:
		return 50
	case pct < 90:
		return 30
	default:
		return 15
	}
}
