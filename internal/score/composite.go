package score

import (
	"math"

	"github.com/riskrank/riskrank/internal/config"
)

// Aggregate blends the seven sub-scores with the configured weights
// and rounds to two decimals. The weight set must already validate.
func Aggregate(w config.Weights, financial, volatility, valuation, historical, trend, turnover, momentum float64) (float64, Tier) {
	composite := financial*w.FinancialHealth +
		volatility*w.Volatility +
		valuation*w.Valuation +
		historical*w.HistoricalValuation +
		trend*w.Trend +
		turnover*w.Turnover +
		momentum*w.Momentum
	composite = math.Round(clamp(composite, 0, 100)*100) / 100
	return composite, TierFor(composite)
}
