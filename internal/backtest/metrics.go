package backtest

import (
	"math"
	"sort"

	"github.com/riskrank/riskrank/internal/score"
)

// TierStat aggregates outcomes within one risk tier.
type TierStat struct {
	Tier             score.Tier `json:"tier"`
	Count            int        `json:"count"`
	AvgComposite     float64    `json:"avg_composite"`
	AvgForwardReturn float64    `json:"avg_forward_return"`
	// WinRate is the share of snapshots with a positive forward return.
	WinRate float64 `json:"win_rate"`
}

// Summary aggregates predictive quality across every window.
type Summary struct {
	TotalSnapshots  int `json:"total_snapshots"`
	ScoredSnapshots int `json:"scored_snapshots"`
	FailedSnapshots int `json:"failed_snapshots"`

	TierStats map[score.Tier]*TierStat `json:"tier_stats"`

	// OverallForwardReturn is the mean forward return across every
	// scored snapshot that carries one, nil when none do.
	OverallForwardReturn *float64 `json:"overall_forward_return,omitempty"`

	// RankCorrelation is the Spearman correlation between composite
	// score and forward return over all scored snapshots, nil with
	// fewer than three usable pairs.
	RankCorrelation *float64 `json:"rank_correlation,omitempty"`

	// SeparationRate is the share of windows where the safer half of
	// the book (by tier) outperformed the riskier half.
	SeparationRate *float64 `json:"separation_rate,omitempty"`

	ErrorCount int      `json:"error_count"`
	Errors     []string `json:"errors,omitempty"`
}

// maxErrorSamples bounds the error list carried in artifacts.
const maxErrorSamples = 10

func summarize(windows []*Window) *Summary {
	s := &Summary{TierStats: make(map[score.Tier]*TierStat)}

	var scores, returns []float64
	var separated, comparable int

	for _, w := range windows {
		var safeSum, riskySum float64
		var safeN, riskyN int

		for _, snap := range w.Snapshots {
			s.TotalSnapshots++
			if snap.Err != "" {
				s.FailedSnapshots++
				s.ErrorCount++
				if len(s.Errors) < maxErrorSamples {
					s.Errors = append(s.Errors, snap.Code+": "+snap.Err)
				}
				continue
			}
			s.ScoredSnapshots++

			stat := s.TierStats[snap.Tier]
			if stat == nil {
				stat = &TierStat{Tier: snap.Tier}
				s.TierStats[snap.Tier] = stat
			}
			stat.Count++
			stat.AvgComposite += snap.Composite

			if snap.ForwardReturn == nil {
				continue
			}
			r := *snap.ForwardReturn
			stat.AvgForwardReturn += r
			if r > 0 {
				stat.WinRate++
			}
			scores = append(scores, snap.Composite)
			returns = append(returns, r)

			if snap.Tier == score.TierLow || snap.Tier == score.TierMedium {
				safeSum += r
				safeN++
			} else {
				riskySum += r
				riskyN++
			}
		}

		if safeN > 0 && riskyN > 0 {
			comparable++
			if safeSum/float64(safeN) > riskySum/float64(riskyN) {
				separated++
			}
		}
	}

	for _, stat := range s.TierStats {
		if stat.Count > 0 {
			stat.AvgComposite /= float64(stat.Count)
		}
	}
	normalizeTierStats(s.TierStats, windows)

	if len(returns) > 0 {
		var sum float64
		for _, r := range returns {
			sum += r
		}
		overall := sum / float64(len(returns))
		s.OverallForwardReturn = &overall
	}
	if rho, ok := spearman(scores, returns); ok {
		s.RankCorrelation = &rho
	}
	if comparable > 0 {
		rate := float64(separated) / float64(comparable)
		s.SeparationRate = &rate
	}
	return s
}

// normalizeTierStats divides the per-tier running sums by the number of
// snapshots that actually carried a forward return.
func normalizeTierStats(stats map[score.Tier]*TierStat, windows []*Window) {
	counts := make(map[score.Tier]int)
	for _, w := range windows {
		for _, snap := range w.Snapshots {
			if snap.Err == "" && snap.ForwardReturn != nil {
				counts[snap.Tier]++
			}
		}
	}
	for tier, stat := range stats {
		if n := counts[tier]; n > 0 {
			stat.AvgForwardReturn /= float64(n)
			stat.WinRate /= float64(n)
		}
	}
}

// spearman computes the Spearman rank correlation of two equal-length
// samples, averaging ranks over ties. Fewer than three pairs or a
// degenerate sample yields no value.
func spearman(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n != len(ys) || n < 3 {
		return 0, false
	}
	rx := ranks(xs)
	ry := ranks(ys)

	var mx, my float64
	for i := 0; i < n; i++ {
		mx += rx[i]
		my += ry[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		dx := rx[i] - mx
		dy := ry[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0, false
	}
	return cov / math.Sqrt(vx*vy), true
}

// ranks assigns 1-based ranks with ties sharing their average rank.
func ranks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := (float64(i+1) + float64(j+1)) / 2
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
