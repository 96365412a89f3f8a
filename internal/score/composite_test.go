package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskrank/riskrank/internal/config"
)

func TestAggregate(t *testing.T) {
	w := config.DefaultConfig().Weights
	require.NoError(t, w.Validate())

	score, tier := Aggregate(w, 100, 100, 100, 100, 100, 100, 100)
	assert.Equal(t, 100.0, score)
	assert.Equal(t, TierLow, tier)

	score, tier = Aggregate(w, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, 0.0, score)
	assert.Equal(t, TierCritical, tier)

	// zeroing out the heaviest factor costs its weight
	score, _ = Aggregate(w, 0, 100, 100, 100, 100, 100, 100)
	assert.InDelta(t, 100-100*w.FinancialHealth, score, 1e-9)
}

func TestAggregateRounds(t *testing.T) {
	w := config.DefaultConfig().Weights
	score, _ := Aggregate(w, 33.333, 0, 0, 0, 0, 0, 0)
	// 33.333 * 0.25 = 8.33325, rounded to two decimals
	assert.Equal(t, 8.33, score)
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, TierLow, TierFor(70))
	assert.Equal(t, TierMedium, TierFor(69.99))
	assert.Equal(t, TierMedium, TierFor(40))
	assert.Equal(t, TierHigh, TierFor(39.99))
	assert.Equal(t, TierHigh, TierFor(20))
	assert.Equal(t, TierCritical, TierFor(19.99))
}

func TestBuildSummary(t *testing.T) {
	w := config.DefaultConfig().Weights
	r := &Report{
		FinancialHealth:     SubScore{Score: 30},
		Valuation:           SubScore{Score: 90},
		HistoricalValuation: SubScore{Score: 90},
		Volatility:          SubScore{Score: 90},
		Trend:               SubScore{Score: 55},
		Turnover:            SubScore{Score: 90},
		Momentum:            SubScore{Score: 90},
	}
	s := BuildSummary(w, r)
	require.Len(t, s.TopRisks, 3)
	// the heavy, low-scoring factor leads
	assert.Equal(t, "财务健康", s.TopRisks[0].Factor)
	assert.InDelta(t, 70*w.FinancialHealth, s.TopRisks[0].Penalty, 1e-9)
	assert.Equal(t, "趋势", s.TopRisks[1].Factor)

	// hints only name the factors under 60
	require.Len(t, s.Hints, 2)
	assert.Contains(t, s.Hints[0], "财务健康")
	assert.Contains(t, s.Hints[1], "趋势")
}
