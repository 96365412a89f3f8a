package score

import (
	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/indicators"
	"github.com/riskrank/riskrank/internal/providers"
)

// minPeerSample is the smallest peer sample a fair range may be built
// from; below it the metric scores neutral.
const minPeerSample = 10

// Plausibility caps for peer multiples; values outside are data noise.
const (
	maxPeerPE = 1000
	maxPeerPB = 100
	maxPeerPS = 100
)

// FairRange is the peer-derived fair band of one multiple. A zero
// range means the band could not be built.
type FairRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

func (r FairRange) valid() bool { return r.Low != 0 || r.High != 0 }

// ValuationInputs are the collaborator-supplied facts the engine reads.
type ValuationInputs struct {
	Current        providers.ValuationSnapshot
	PeerValuations []providers.ValuationSnapshot
	Macro          providers.MacroSnapshot
	Industry       string
	IsLeader       bool
	// DividendYieldPct is the two-year average cash yield in percent,
	// nil when no dividend history exists.
	DividendYieldPct *float64
}

// ValuationResult carries the relative valuation score.
type ValuationResult struct {
	Score           float64   `json:"score"`
	PEScore         float64   `json:"pe_score"`
	PBScore         float64   `json:"pb_score"`
	PSScore         float64   `json:"ps_score"`
	DividendScore   float64   `json:"dividend_score"`
	PERange         FairRange `json:"pe_range"`
	PBRange         FairRange `json:"pb_range"`
	PSRange         FairRange `json:"ps_range"`
	MacroMultiplier float64   `json:"macro_multiplier"`
	IndustryType    string    `json:"industry_type"`
	Status          string    `json:"status"`
}

// ScoreValuation prices the instrument against its industry peers:
// fair ranges from the peer sample's 20th-80th percentile band, the
// upper bound stretched by the macro environment and by leader status,
// then banded scores blended with industry-type weights.
func ScoreValuation(in ValuationInputs) ValuationResult {
	multiplier := macroMultiplier(in.Macro)

	peRange := fairRange(peerColumn(in.PeerValuations, func(v providers.ValuationSnapshot) *float64 { return v.PE }, maxPeerPE))
	pbRange := fairRange(peerColumn(in.PeerValuations, func(v providers.ValuationSnapshot) *float64 { return v.PB }, maxPeerPB))
	psRange := fairRange(peerColumn(in.PeerValuations, func(v providers.ValuationSnapshot) *float64 { return v.PS }, maxPeerPS))

	peRange.High *= multiplier
	pbRange.High *= multiplier
	psRange.High *= multiplier

	if in.IsLeader {
		peRange.High *= 1.25
		pbRange.High *= 1.5
		psRange.High *= 1.25
	}

	peScore := metricScore(in.Current.PE, peRange)
	pbScore := metricScore(in.Current.PB, pbRange)
	psScore := metricScore(in.Current.PS, psRange)
	divScore := dividendScore(in.DividendYieldPct)

	w := config.ValuationWeightsFor(in.Industry)
	total := clamp(peScore*w.PE+pbScore*w.PB+psScore*w.PS+divScore*w.Dividend, 0, 100)

	status := "估值合理"
	if total < 50 {
		status = "估值偏高"
	} else if total > 85 {
		status = "估值偏低"
	}

	return ValuationResult{
		Score:           total,
		PEScore:         peScore,
		PBScore:         pbScore,
		PSScore:         psScore,
		DividendScore:   divScore,
		PERange:         peRange,
		PBRange:         pbRange,
		PSRange:         psRange,
		MacroMultiplier: multiplier,
		IndustryType:    string(config.TypeOf(in.Industry)),
		Status:          status,
	}
}

func peerColumn(peers []providers.ValuationSnapshot, pick func(providers.ValuationSnapshot) *float64, limit float64) []float64 {
	var out []float64
	for _, p := range peers {
		v := pick(p)
		if v != nil && *v > 0 && *v < limit {
			out = append(out, *v)
		}
	}
	return out
}

// fairRange is the 20th-80th percentile band of the peer sample, by
// truncating index to match how the bands were calibrated.
func fairRange(values []float64) FairRange {
	if len(values) < minPeerSample {
		return FairRange{}
	}
	return FairRange{
		Low:  indicators.IndexQuantile(values, 0.2),
		High: indicators.IndexQuantile(values, 0.8),
	}
}

// macroMultiplier stretches or squeezes the fair-range ceiling with
// the rate, liquidity, and market-valuation environment, within
// [0.85, 1.15].
func macroMultiplier(m providers.MacroSnapshot) float64 {
	mult := 1.0
	if m.TreasuryYield10Y > 3.0 {
		mult *= 0.95
	} else if m.TreasuryYield10Y < 2.5 {
		mult *= 1.05
	}
	if m.M2Growth > 10 {
		mult *= 1.03
	} else if m.M2Growth < 8 {
		mult *= 0.97
	}
	if m.BenchmarkPE > 20 {
		mult *= 0.95
	} else if m.BenchmarkPE < 12 {
		mult *= 1.05
	}
	return clamp(mult, 0.85, 1.15)
}

// metricScore bands one multiple against its fair range. Below the
// range is rewarded, above is penalized, and a missing value or
// unbuildable range is neutral.
func metricScore(value *float64, r FairRange) float64 {
	if value == nil || !r.valid() {
		return 50
	}
	v := *value
	if v >= r.Low && v <= r.High {
		return 100
	}
	if v < r.Low {
		if r.Low == 0 {
			return 50
		}
		dev := (r.Low - v) / r.Low
		switch {
		case dev < 0.2:
			return 90
		case dev < 0.5:
			return 80
		case dev < 1.0:
			return 60
		default:
			return 40
		}
	}
	if r.High == 0 {
		return 50
	}
	dev := (v - r.High) / r.High
	switch {
	case dev < 0.2:
		return 80
	case dev < 0.5:
		return 60
	case dev < 1.0:
		return 40
	default:
		return 20
	}
}

// dividendScore bands the two-year average cash yield. The band is not
// monotonic: extreme yields usually mean a falling price, not
// generosity.
func dividendScore(yieldPct *float64) float64 {
	if yieldPct == nil {
		return 40
	}
	y := *yieldPct
	switch {
	case y < 1:
		return 40
	case y < 2:
		return 60
	case y < 3:
		return 80
	case y < 5:
		return 100
	default:
		return 90
	}
}
