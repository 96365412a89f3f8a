package score

import (
	"fmt"
	"math"

	"github.com/riskrank/riskrank/internal/config"
)

// TurnoverResult carries the turnover anomaly score.
type TurnoverResult struct {
	Score         float64 `json:"score"`
	ActualPct     float64 `json:"actual_pct"`
	BenchmarkPct  float64 `json:"benchmark_pct"`
	RelativeRatio float64 `json:"relative_ratio"`
	Deviation     float64 `json:"deviation"`
	CapGroup      string  `json:"cap_group"`
	Status        string  `json:"status"`
}

// ScoreTurnover compares the actual daily turnover rate against the
// cap-group benchmark scaled by the industry factor. Excess turnover
// is penalized five times harder than quiet turnover. All rates are in
// percent.
func ScoreTurnover(actualPct float64, capGroup config.CapGroup, industry string) TurnoverResult {
	benchmark := capGroup.BenchmarkTurnoverPct * config.TurnoverFactor(industry)

	ratio := 1.0
	if benchmark > 0 {
		ratio = actualPct / benchmark
	}

	var deviation float64
	if ratio > 1 {
		deviation = (ratio - 1) * 100 * 1.5
	} else {
		deviation = (1 - ratio) * 100 * 0.3
	}

	score := turnoverBand(math.Abs(deviation))

	status := "正常"
	if ratio > 1.5 {
		status = "放量"
	} else if ratio < 0.5 {
		status = "缩量"
	}

	return TurnoverResult{
		Score:         score,
		ActualPct:     actualPct,
		BenchmarkPct:  benchmark,
		RelativeRatio: ratio,
		Deviation:     deviation,
		CapGroup:      capGroup.Name,
		Status:        fmt.Sprintf("%s（偏离%.1f）", status, deviation),
	}
}

func turnoverBand(absDeviation float64) float64 {
	switch {
	case absDeviation < 10:
		return 100
	case absDeviation < 20:
		return 85
	case absDeviation < 40:
		return 70
	case absDeviation < 70:
		return 55
	case absDeviation < 100:
		return 40
	default:
		return 25
	}
}
