package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riskrank/riskrank/internal/providers"
)

// peHistory builds a history with only the PE column populated, running
// from low to high one unit per day.
func peHistory(n int, base float64) []providers.ValuationSnapshot {
	out := make([]providers.ValuationSnapshot, n)
	for i := range out {
		out[i] = providers.ValuationSnapshot{PE: f64(base + float64(i))}
	}
	return out
}

func TestScoreHistoricalValuationLowEnd(t *testing.T) {
	got := ScoreHistoricalValuation(
		providers.ValuationSnapshot{PE: f64(11)},
		peHistory(100, 10),
	)
	// only a handful of history points sit below: bottom decile
	assert.Equal(t, 95.0, got.Score)
	assert.Equal(t, "历史低位", got.Status)
	assert.NotNil(t, got.PEPercentile)
	assert.Less(t, *got.PEPercentile, 10.0)
	assert.Nil(t, got.PBPercentile)
}

func TestScoreHistoricalValuationHighEnd(t *testing.T) {
	got := ScoreHistoricalValuation(
		providers.ValuationSnapshot{PE: f64(108)},
		peHistory(100, 10),
	)
	assert.Equal(t, 15.0, got.Score)
	assert.Equal(t, "历史高位", got.Status)
}

func TestScoreHistoricalValuationNoData(t *testing.T) {
	got := ScoreHistoricalValuation(providers.ValuationSnapshot{}, nil)
	assert.Equal(t, 50.0, got.Score)
	assert.Equal(t, "历史中位", got.Status)

	// a current value with no usable history is also neutral
	got = ScoreHistoricalValuation(providers.ValuationSnapshot{PE: f64(20)}, nil)
	assert.Equal(t, 50.0, got.Score)
}

func TestScoreHistoricalValuationRenormalizes(t *testing.T) {
	// PE and PB present, PS missing: weights renormalize over 0.4+0.3
	history := make([]providers.ValuationSnapshot, 100)
	for i := range history {
		history[i] = providers.ValuationSnapshot{
			PE: f64(10 + float64(i)),
			PB: f64(1 + float64(i)*0.1),
		}
	}
	got := ScoreHistoricalValuation(
		providers.ValuationSnapshot{PE: f64(11), PB: f64(10.5)},
		history,
	)
	// PE at the bottom (95), PB at the top (15):
	// (95*0.4 + 15*0.3) / 0.7
	assert.InDelta(t, (95*0.4+15*0.3)/0.7, got.Score, 1e-9)
}

func TestFilterOutliersHardCap(t *testing.T) {
	got := filterOutliers([]float64{5, 10, 2000}, 5, 1000)
	assert.Equal(t, []float64{5, 10}, got)
}

func TestFilterOutliersIQRFence(t *testing.T) {
	values := make([]float64, 0, 16)
	for v := 10.0; v <= 24; v++ {
		values = append(values, v)
	}
	values = append(values, 10000)
	got := filterOutliers(values, 5, 1000)
	assert.Len(t, got, 15)
	assert.NotContains(t, got, 10000.0)
}

func TestPercentileBand(t *testing.T) {
	assert.Equal(t, 95.0, percentileBand(5))
	assert.Equal(t, 85.0, percentileBand(20))
	assert.Equal(t, 70.0, percentileBand(40))
	assert.Equal(t, 50.0, percentileBand(60))
	assert.Equal(t, 30.0, percentileBand(85))
	assert.Equal(t, 15.0, percentileBand(95))
}
