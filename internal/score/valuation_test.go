package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskrank/riskrank/internal/providers"
)

func f64(v float64) *float64 { return &v }

func neutralMacro() providers.MacroSnapshot {
	return providers.MacroSnapshot{TreasuryYield10Y: 2.8, M2Growth: 9.0, BenchmarkPE: 15.0}
}

// peerSet builds n peers whose PE runs from base upward one unit per
// peer, PB and PS scaled down.
func peerSet(n int, base float64) []providers.ValuationSnapshot {
	out := make([]providers.ValuationSnapshot, n)
	for i := range out {
		pe := base + float64(i)
		out[i] = providers.ValuationSnapshot{
			PE: f64(pe), PB: f64(pe / 10), PS: f64(pe / 5),
		}
	}
	return out
}

func TestFairRange(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	r := fairRange(values)
	assert.Equal(t, 3.0, r.Low)  // index int(12*0.2)=2
	assert.Equal(t, 10.0, r.High) // index int(12*0.8)=9

	// thin samples produce no range
	assert.False(t, fairRange(values[:9]).valid())
}

func TestMacroMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, macroMultiplier(neutralMacro()))

	stressed := providers.MacroSnapshot{TreasuryYield10Y: 3.5, M2Growth: 7.0, BenchmarkPE: 25.0}
	assert.InDelta(t, 0.95*0.97*0.95, macroMultiplier(stressed), 1e-9)

	easy := providers.MacroSnapshot{TreasuryYield10Y: 2.0, M2Growth: 11.0, BenchmarkPE: 10.0}
	assert.InDelta(t, 1.05*1.03*1.05, macroMultiplier(easy), 1e-9)
}

func TestMetricScore(t *testing.T) {
	r := FairRange{Low: 10, High: 20}
	assert.Equal(t, 100.0, metricScore(f64(15), r))
	assert.Equal(t, 100.0, metricScore(f64(10), r))
	assert.Equal(t, 90.0, metricScore(f64(9), r))  // 10% under
	assert.Equal(t, 60.0, metricScore(f64(4), r))  // 60% under
	assert.Equal(t, 80.0, metricScore(f64(22), r)) // 10% over
	assert.Equal(t, 20.0, metricScore(f64(45), r)) // 125% over
	assert.Equal(t, 50.0, metricScore(nil, r))
	assert.Equal(t, 50.0, metricScore(f64(15), FairRange{}))
}

func TestDividendScore(t *testing.T) {
	assert.Equal(t, 40.0, dividendScore(nil))
	assert.Equal(t, 40.0, dividendScore(f64(0.5)))
	assert.Equal(t, 60.0, dividendScore(f64(1.5)))
	assert.Equal(t, 80.0, dividendScore(f64(2.5)))
	assert.Equal(t, 100.0, dividendScore(f64(4)))
	// an extreme yield usually means a collapsed price
	assert.Equal(t, 90.0, dividendScore(f64(8)))
}

func TestScoreValuationThinPeerSample(t *testing.T) {
	got := ScoreValuation(ValuationInputs{
		Current:        providers.ValuationSnapshot{PE: f64(30)},
		PeerValuations: peerSet(5, 10),
		Macro:          neutralMacro(),
		Industry:       "综合",
	})
	// every metric neutral, dividend unknown: 50*0.7 + 40*0.3
	assert.Equal(t, 50.0, got.PEScore)
	assert.InDelta(t, 47.0, got.Score, 1e-9)
	assert.Equal(t, "估值偏高", got.Status)
}

func TestScoreValuationInRange(t *testing.T) {
	got := ScoreValuation(ValuationInputs{
		Current:        providers.ValuationSnapshot{PE: f64(15), PB: f64(1.5), PS: f64(3)},
		PeerValuations: peerSet(20, 10),
		Macro:          neutralMacro(),
		Industry:       "综合",
		DividendYieldPct: f64(4),
	})
	require.True(t, got.PERange.valid())
	assert.Equal(t, 100.0, got.PEScore)
	assert.Equal(t, 100.0, got.PBScore)
	assert.Equal(t, 100.0, got.PSScore)
	assert.Equal(t, 100.0, got.DividendScore)
	assert.Equal(t, 100.0, got.Score)
	assert.Equal(t, "估值偏低", got.Status)
}

func TestScoreValuationLeaderWidening(t *testing.T) {
	in := ValuationInputs{
		Current:        providers.ValuationSnapshot{PE: f64(40)},
		PeerValuations: peerSet(20, 10),
		Macro:          neutralMacro(),
		Industry:       "综合",
	}
	base := ScoreValuation(in)
	in.IsLeader = true
	leader := ScoreValuation(in)

	assert.InDelta(t, base.PERange.High*1.25, leader.PERange.High, 1e-9)
	assert.GreaterOrEqual(t, leader.PEScore, base.PEScore)
}

func TestScoreValuationFiltersImplausiblePeers(t *testing.T) {
	peers := peerSet(20, 10)
	peers = append(peers, providers.ValuationSnapshot{PE: f64(5000)}, providers.ValuationSnapshot{PE: f64(-3)})
	got := ScoreValuation(ValuationInputs{
		Current:        providers.ValuationSnapshot{PE: f64(15)},
		PeerValuations: peers,
		Macro:          neutralMacro(),
		Industry:       "综合",
	})
	// the junk peers must not stretch the band
	assert.Less(t, got.PERange.High, 100.0)
}
