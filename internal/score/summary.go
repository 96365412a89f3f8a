package score

import (
	"fmt"
	"sort"

	"github.com/riskrank/riskrank/internal/config"
)

// RiskContributor is one factor's weighted contribution to overall
// risk: how many composite points the factor costs.
type RiskContributor struct {
	Factor  string  `json:"factor"`
	Score   float64 `json:"score"`
	Penalty float64 `json:"penalty"`
}

// Summary is the narrative digest attached to a report.
type Summary struct {
	TopRisks []RiskContributor `json:"top_risks"`
	Hints    []string          `json:"hints,omitempty"`
}

// BuildSummary ranks the factors by weighted deficit and derives the
// monitoring hints from the worst ones.
func BuildSummary(w config.Weights, r *Report) *Summary {
	contributors := []RiskContributor{
		{Factor: "财务健康", Score: r.FinancialHealth.Score, Penalty: (100 - r.FinancialHealth.Score) * w.FinancialHealth},
		{Factor: "波动率", Score: r.Volatility.Score, Penalty: (100 - r.Volatility.Score) * w.Volatility},
		{Factor: "相对估值", Score: r.Valuation.Score, Penalty: (100 - r.Valuation.Score) * w.Valuation},
		{Factor: "历史估值", Score: r.HistoricalValuation.Score, Penalty: (100 - r.HistoricalValuation.Score) * w.HistoricalValuation},
		{Factor: "趋势", Score: r.Trend.Score, Penalty: (100 - r.Trend.Score) * w.Trend},
		{Factor: "换手率", Score: r.Turnover.Score, Penalty: (100 - r.Turnover.Score) * w.Turnover},
		{Factor: "动量", Score: r.Momentum.Score, Penalty: (100 - r.Momentum.Score) * w.Momentum},
	}
	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].Penalty > contributors[j].Penalty
	})
	top := contributors
	if len(top) > 3 {
		top = top[:3]
	}

	var hints []string
	for _, c := range top {
		if c.Score < 60 {
			hints = append(hints, fmt.Sprintf("关注%s（得分%.1f）", c.Factor, c.Score))
		}
	}

	return &Summary{TopRisks: top, Hints: hints}
}
