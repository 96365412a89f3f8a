package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riskrank/riskrank/internal/providers"
)

func neutralPercentiles() FinancialPercentiles {
	return FinancialPercentiles{
		ROE: 0.5, NetMargin: 0.5, GrossMargin: 0.5, EPS: 0.5,
		OpCFPerShare: 0.5, CFOToRevenue: 0.5,
	}
}

func topPercentiles() FinancialPercentiles {
	return FinancialPercentiles{} // zero fraction better on every metric
}

func healthyInputs() FinancialInputs {
	return FinancialInputs{
		Industry: "综合",
		Profit:   providers.ProfitSnapshot{ROE: f64(18)},
		CashFlow: providers.CashFlowSnapshot{CFOToNetProfit: f64(1.5)},
		Balance: providers.BalanceSnapshot{
			CurrentRatio: f64(2.5), QuickRatio: f64(1.2), InterestCover: f64(10),
		},
		Trend: providers.ProfitTrend{
			NetProfits:         []float64{5, 4},
			OperatingCashFlows: []float64{6, 5, 4},
		},
		Percentiles: topPercentiles(),
	}
}

func TestScoreFinancialHealthTopOfClass(t *testing.T) {
	got := ScoreFinancialHealth(healthyInputs())
	assert.Equal(t, 100.0, got.Profitability)
	assert.Equal(t, 100.0, got.CashQuality)
	assert.Equal(t, 100.0, got.Solvency)
	assert.Equal(t, 100.0, got.RiskFlags)
	assert.Equal(t, 100.0, got.Score)
	assert.Empty(t, got.WarningSignals)
	assert.Equal(t, "低风险", got.WarningLevel)
	assert.Equal(t, "低风险（已验证）", got.Validation)
}

func TestScoreFinancialHealthSTCap(t *testing.T) {
	in := healthyInputs()
	in.IsST = true
	got := ScoreFinancialHealth(in)
	// perfect ratios cannot lift an ST name above the cap
	assert.True(t, got.IsST)
	assert.LessOrEqual(t, got.Score, 40.0)
	assert.Equal(t, 40.0, got.Score)
	assert.Equal(t, 50.0, got.RiskFlags)
}

func TestScoreFinancialHealthConsecutiveLoss(t *testing.T) {
	in := FinancialInputs{
		Industry:    "综合",
		Trend:       providers.ProfitTrend{NetProfits: []float64{-5, -3}},
		Percentiles: neutralPercentiles(),
	}
	got := ScoreFinancialHealth(in)
	assert.True(t, got.ConsecutiveLoss)
	// all-neutral dimensions blend to 52, then the 20-point deduction
	assert.InDelta(t, 32.0, got.Score, 1e-9)
}

func TestScoreFinancialHealthNegativeCashFlow(t *testing.T) {
	in := FinancialInputs{
		Industry:    "综合",
		Trend:       providers.ProfitTrend{OperatingCashFlows: []float64{-1, -2, -3}},
		Percentiles: neutralPercentiles(),
	}
	got := ScoreFinancialHealth(in)
	assert.True(t, got.NegativeCF3Y)
	// neutral blend 53 minus the 15-point deduction
	assert.InDelta(t, 38.0, got.Score, 1e-9)
}

func TestSolvencyIndustryAdjusted(t *testing.T) {
	// identical near-band-edge ratios must band differently once the
	// industry coefficient is applied: 0.95 current ratio reads 1.007
	// for 医药生物 (1.06) but 0.808 for 煤炭 (0.85)
	base := FinancialInputs{
		Balance: providers.BalanceSnapshot{
			CurrentRatio: f64(0.95), QuickRatio: f64(0.49), InterestCover: f64(2.9),
		},
		Percentiles: neutralPercentiles(),
	}

	pharma := base
	pharma.Industry = "医药生物"
	coal := base
	coal.Industry = "煤炭"

	gotPharma := ScoreFinancialHealth(pharma)
	gotCoal := ScoreFinancialHealth(coal)

	assert.InDelta(t, 60.0, gotPharma.Solvency, 1e-9)
	assert.InDelta(t, 40.0, gotCoal.Solvency, 1e-9)
	assert.Greater(t, gotPharma.Score, gotCoal.Score)
}

func TestEarlyWarningSignals(t *testing.T) {
	in := FinancialInputs{
		Industry: "综合",
		CashFlow: providers.CashFlowSnapshot{CFOToNetProfit: f64(0.5)},
		Balance: providers.BalanceSnapshot{
			CurrentRatio: f64(0.8), InterestCover: f64(1.0),
		},
		Percentiles: neutralPercentiles(),
	}
	got := ScoreFinancialHealth(in)
	assert.Len(t, got.WarningSignals, 3)
	assert.Equal(t, "高风险", got.WarningLevel)
	assert.Equal(t, "违约概率>30%", got.WarningOdds)
}

func TestWarningLevels(t *testing.T) {
	level, _ := warningLevel(0)
	assert.Equal(t, "低风险", level)
	level, _ = warningLevel(1)
	assert.Equal(t, "中风险", level)
	level, _ = warningLevel(2)
	assert.Equal(t, "较高风险", level)
	level, _ = warningLevel(5)
	assert.Equal(t, "高风险", level)
}

func TestCrossValidate(t *testing.T) {
	assert.Equal(t, "高风险（已验证）", crossValidate(30, 3))
	assert.Equal(t, "需要关注", crossValidate(70, 1))
	assert.Equal(t, "低风险（已验证）", crossValidate(90, 0))
	assert.Equal(t, "一般", crossValidate(55, 0))
}

func TestThresholdScore(t *testing.T) {
	bands := []band{{0.5, 0}, {0.8, 40}, {1.0, 60}, {1.2, 80}}
	assert.Equal(t, 0.0, thresholdScore(0.3, bands, 100))
	assert.Equal(t, 40.0, thresholdScore(0.6, bands, 100))
	assert.Equal(t, 60.0, thresholdScore(0.9, bands, 100))
	assert.Equal(t, 80.0, thresholdScore(1.1, bands, 100))
	assert.Equal(t, 100.0, thresholdScore(1.5, bands, 100))
	assert.Equal(t, 50.0, nilableThreshold(nil, bands))
}
