package score

import (
	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/providers"
)

// FinancialPercentiles are the subject's industry percentiles for the
// peer-ranked statement metrics, each as "fraction of peers doing
// better" (0.5 when the comparison had no basis).
type FinancialPercentiles struct {
	ROE          float64 `json:"roe"`
	NetMargin    float64 `json:"net_margin"`
	GrossMargin  float64 `json:"gross_margin"`
	EPS          float64 `json:"eps"`
	OpCFPerShare float64 `json:"op_cf_per_share"`
	CFOToRevenue float64 `json:"cfo_to_revenue"`
}

// FinancialInputs are the facts the financial health engine reads.
type FinancialInputs struct {
	Industry string
	// RawLabel is the unclassified industry label, used for
	// sub-industry coefficient refinement.
	RawLabel    string
	Profit      providers.ProfitSnapshot
	CashFlow    providers.CashFlowSnapshot
	Balance     providers.BalanceSnapshot
	Trend       providers.ProfitTrend
	IsST        bool
	Percentiles FinancialPercentiles
}

// FinancialResult carries the financial health score, its dimension
// scores, and the early-warning assessment.
type FinancialResult struct {
	Score         float64 `json:"score"`
	Profitability float64 `json:"profitability"`
	CashQuality   float64 `json:"cash_quality"`
	Solvency      float64 `json:"solvency"`
	RiskFlags     float64 `json:"risk_flags"`

	IsST            bool `json:"is_st"`
	ConsecutiveLoss bool `json:"consecutive_loss"`
	NegativeCF3Y    bool `json:"negative_cf_3y"`

	WarningSignals []string `json:"warning_signals,omitempty"`
	WarningLevel   string   `json:"warning_level"`
	WarningOdds    string   `json:"warning_odds"`
	Validation     string   `json:"validation"`
}

// ScoreFinancialHealth blends profitability, cash quality, solvency,
// and hard risk flags, then applies the flag deductions on top so a
// flagged name cannot hide behind good ratios.
func ScoreFinancialHealth(in FinancialInputs) FinancialResult {
	profitability := 0.4*pctScore(in.Percentiles.ROE) +
		0.3*pctScore(in.Percentiles.NetMargin) +
		0.2*pctScore(in.Percentiles.GrossMargin) +
		0.1*pctScore(in.Percentiles.EPS)

	coeff := config.IndustryCoefficient(in.Industry, in.RawLabel)
	cfoToNP := in.CashFlow.CFOToNetProfit
	var cfoScore float64 = 50
	if cfoToNP != nil {
		cfoScore = thresholdScore(*cfoToNP*coeff, []band{
			{0.5, 0}, {0.8, 40}, {1.0, 60}, {1.2, 80},
		}, 100)
	}
	cashQuality := 0.4*cfoScore +
		0.3*pctScore(in.Percentiles.OpCFPerShare) +
		0.3*pctScore(in.Percentiles.CFOToRevenue)

	// solvency ratios are industry-adjusted before banding: a 0.9
	// current ratio reads differently for a utility than for a
	// software house
	solvency := 0.4*nilableThreshold(scaleRatio(in.Balance.CurrentRatio, coeff), []band{
		{0.5, 0}, {1.0, 40}, {1.5, 60}, {2.0, 80},
	}) + 0.3*nilableThreshold(scaleRatio(in.Balance.QuickRatio, coeff), []band{
		{0.3, 0}, {0.5, 40}, {0.8, 60}, {1.0, 80},
	}) + 0.3*nilableThreshold(scaleRatio(in.Balance.InterestCover, coeff), []band{
		{2, 0}, {3, 40}, {5, 60}, {8, 80},
	})

	consecutiveLoss := len(in.Trend.NetProfits) >= 2 &&
		in.Trend.NetProfits[0] < 0 && in.Trend.NetProfits[1] < 0
	negativeCF := len(in.Trend.OperatingCashFlows) >= 3 &&
		in.Trend.OperatingCashFlows[0] < 0 &&
		in.Trend.OperatingCashFlows[1] < 0 &&
		in.Trend.OperatingCashFlows[2] < 0

	riskFlags := 100.0
	if in.IsST {
		riskFlags -= 50
	}
	if consecutiveLoss {
		riskFlags -= 30
	}
	if negativeCF {
		riskFlags -= 20
	}
	riskFlags = clamp(riskFlags, 0, 100)

	total := 0.35*profitability + 0.30*cashQuality + 0.25*solvency + 0.10*riskFlags

	// hard deductions on top of the weighted blend
	if in.IsST && total > 40 {
		total = 40
	}
	if consecutiveLoss {
		total -= 20
	}
	if negativeCF {
		total -= 15
	}
	total = clamp(total, 0, 100)

	signals := earlyWarningSignals(in)
	level, odds := warningLevel(len(signals))

	return FinancialResult{
		Score:           total,
		Profitability:   clamp(profitability, 0, 100),
		CashQuality:     clamp(cashQuality, 0, 100),
		Solvency:        clamp(solvency, 0, 100),
		RiskFlags:       riskFlags,
		IsST:            in.IsST,
		ConsecutiveLoss: consecutiveLoss,
		NegativeCF3Y:    negativeCF,
		WarningSignals:  signals,
		WarningLevel:    level,
		WarningOdds:     odds,
		Validation:      crossValidate(total, len(signals)),
	}
}

// pctScore turns a "fraction better" percentile into a 0-100 score.
func pctScore(pct float64) float64 {
	return (1 - pct) * 100
}

type band struct {
	below float64
	score float64
}

// thresholdScore returns the score of the first band the value falls
// under, or the ceiling score past every band.
func thresholdScore(v float64, bands []band, top float64) float64 {
	for _, b := range bands {
		if v < b.below {
			return b.score
		}
	}
	return top
}

func nilableThreshold(v *float64, bands []band) float64 {
	if v == nil {
		return 50
	}
	return thresholdScore(*v, bands, 100)
}

// scaleRatio applies the industry coefficient to a nilable ratio.
func scaleRatio(v *float64, coeff float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * coeff
	return &scaled
}

// earlyWarningSignals flags the three statement reads that most often
// precede distress.
func earlyWarningSignals(in FinancialInputs) []string {
	var signals []string
	if in.CashFlow.CFOToNetProfit != nil && *in.CashFlow.CFOToNetProfit < 0.8 {
		signals = append(signals, "经营现金流/净利润低于0.8")
	}
	if in.Balance.InterestCover != nil && *in.Balance.InterestCover < 1.5 {
		signals = append(signals, "利息保障倍数低于1.5")
	}
	if in.Balance.CurrentRatio != nil && *in.Balance.CurrentRatio < 1.0 {
		signals = append(signals, "流动比率低于1.0")
	}
	return signals
}

func warningLevel(signalCount int) (level, odds string) {
	switch {
	case signalCount == 0:
		return "低风险", "违约概率<5%"
	case signalCount == 1:
		return "中风险", "违约概率5%-15%"
	case signalCount == 2:
		return "较高风险", "违约概率15%-30%"
	default:
		return "高风险", "违约概率>30%"
	}
}

// crossValidate checks whether the score and the signal count tell the
// same story.
func crossValidate(total float64, signalCount int) string {
	switch {
	case total < 40 && signalCount >= 2:
		return "高风险（已验证）"
	case total >= 60 && total <= 80 && signalCount >= 1:
		return "需要关注"
	case total > 80 && signalCount == 0:
		return "低风险（已验证）"
	default:
		return "一般"
	}
}
