package score

import (
	"github.com/riskrank/riskrank/internal/indicators"
	"github.com/riskrank/riskrank/internal/market"
)

// VolatilityResult carries the volatility score and its components.
type VolatilityResult struct {
	Score            float64 `json:"score"`
	Annualized       float64 `json:"annualized"`
	AbsoluteScore    float64 `json:"absolute_score"`
	RelativeScore    float64 `json:"relative_score"`
	RelativeRatio    float64 `json:"relative_ratio"`
	AbsoluteWeight   float64 `json:"absolute_weight"`
	RelativeWeight   float64 `json:"relative_weight"`
	MarketPercentile float64 `json:"market_percentile"`
	SurgeRatio       float64 `json:"surge_ratio"`
	Level            string  `json:"level"`
}

// ScoreVolatility blends an absolute volatility band score with a
// relative-to-benchmark score. The blend weights adapt to where the
// market's own volatility sits in its two-year history: calm markets
// emphasize the relative read, stressed markets the absolute one.
//
// benchmarkVol is the industry average annualized volatility when
// available, otherwise the index volatility. indexSeries should cover
// about two years (504 bars) for the regime percentile.
func ScoreVolatility(stockSeries, indexSeries []market.PricePoint, benchmarkVol float64) VolatilityResult {
	returns := market.DailyReturns(stockSeries)
	vol := indicators.AnnualizedVolatility(returns)

	absScore := absoluteVolScore(vol * 100)

	ratio := 1.0
	if benchmarkVol > 0 {
		ratio = vol / benchmarkVol
	}
	relScore := relativeVolScore(ratio)

	pct := marketVolPercentile(indexSeries)
	relWeight := adaptiveRelativeWeight(pct)
	absWeight := 1 - relWeight

	surge := 1.0
	if len(returns) >= 20 {
		v5 := indicators.AnnualizedVolatility(returns[len(returns)-5:])
		v20 := indicators.AnnualizedVolatility(returns[len(returns)-20:])
		if v20 > 0 {
			surge = v5 / v20
		}
	}

	score := clamp(absScore*absWeight+relScore*relWeight, 0, 100)

	return VolatilityResult{
		Score:            score,
		Annualized:       vol,
		AbsoluteScore:    absScore,
		RelativeScore:    relScore,
		RelativeRatio:    ratio,
		AbsoluteWeight:   absWeight,
		RelativeWeight:   relWeight,
		MarketPercentile: pct,
		SurgeRatio:       surge,
		Level:            volLevel(vol * 100),
	}
}

// absoluteVolScore bands annualized volatility in percent. Very low
// volatility reads as stale rather than safe.
func absoluteVolScore(volPct float64) float64 {
	switch {
	case volPct < 5:
		return 60
	case volPct < 20:
		return 100
	case volPct < 30:
		return 80
	case volPct < 40:
		return 60
	default:
		return 40
	}
}

// relativeVolScore bands the stock/benchmark volatility ratio. Well
// under the benchmark is suspicious, slightly under is best.
func relativeVolScore(ratio float64) float64 {
	switch {
	case ratio < 0.5:
		return 85
	case ratio < 0.8:
		return 90
	case ratio < 1.2:
		return 80
	case ratio < 1.5:
		return 60
	case ratio < 2.0:
		return 40
	default:
		return 20
	}
}

// marketVolPercentile locates the market's current one-year volatility
// within its rolling one-year windows over the supplied history.
func marketVolPercentile(indexSeries []market.PricePoint) float64 {
	returns := market.DailyReturns(indexSeries)
	window := indicators.TradingDaysPerYear
	if len(returns) <= window {
		return 0.5
	}
	current := indicators.AnnualizedVolatility(returns[len(returns)-window:])
	var history []float64
	for start := 0; start+window <= len(returns); start++ {
		history = append(history, indicators.AnnualizedVolatility(returns[start:start+window]))
	}
	return indicators.FractionBelow(history, current, 0.5)
}

// adaptiveRelativeWeight shifts weight toward the relative score in
// calm regimes and away from it in stressed ones, within [0.35, 0.65].
func adaptiveRelativeWeight(pct float64) float64 {
	switch {
	case pct <= 0.15:
		w := 0.50 + (0.15-pct)/0.15*0.15
		if w > 0.65 {
			w = 0.65
		}
		return w
	case pct >= 0.85:
		w := 0.50 - (pct-0.85)/0.15*0.15
		if w < 0.35 {
			w = 0.35
		}
		return w
	default:
		return 0.5
	}
}

func volLevel(volPct float64) string {
	switch {
	case volPct < 20:
		return "低波动"
	case volPct < 40:
		return "中等波动"
	default:
		return "高波动"
	}
}
