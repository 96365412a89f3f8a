package score

import (
	"math"

	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/indicators"
	"github.com/riskrank/riskrank/internal/market"
)

// MomentumResult carries the RSI-based momentum score.
type MomentumResult struct {
	Score       float64  `json:"score"`
	RSI         float64  `json:"rsi"`
	Sigma       float64  `json:"sigma"`
	BaseScore   float64  `json:"base_score"`
	SignalScore float64  `json:"signal_score"`
	Signals     []string `json:"signals,omitempty"`
	Status      string   `json:"status"`
}

// ScoreMomentum maps the current RSI onto a bell curve centered at the
// neutral 50, with the bell width adapted to cap size and realized
// volatility, then nudges the result by confirmed RSI signals. The
// series is typically 90 daily bars.
func ScoreMomentum(series []market.PricePoint, capGroup config.CapGroup) MomentumResult {
	closes := market.Closes(series)
	rsiValues := indicators.RSI(closes, 14)
	currentRSI := 50.0
	if len(rsiValues) > 0 && rsiValues[len(rsiValues)-1] != 0 {
		currentRSI = rsiValues[len(rsiValues)-1]
	}

	returns := market.DailyReturns(series)
	vol := 0.2
	if len(returns) >= 2 {
		vol = indicators.AnnualizedVolatility(returns)
	}

	sigma := dynamicSigma(vol, capGroup)
	base := rsiBellScore(currentRSI, sigma)
	signal, signals := rsiSignals(rsiValues, closes)

	final := clamp(base*0.95+signal*0.05, 0, 100)

	status := "中性"
	if currentRSI > 70 {
		status = "超买"
	} else if currentRSI < 30 {
		status = "超卖"
	}

	return MomentumResult{
		Score:       final,
		RSI:         currentRSI,
		Sigma:       sigma,
		BaseScore:   base,
		SignalScore: signal,
		Signals:     signals,
		Status:      status,
	}
}

// rsiBellScore is 100 at RSI 50, falling off as a Gaussian with the
// given width.
func rsiBellScore(rsi, sigma float64) float64 {
	return 100 * math.Exp(-((rsi-50)*(rsi-50))/(2*sigma*sigma))
}

// dynamicSigma widens the bell for smaller caps and higher volatility,
// bounded to [10, 20].
func dynamicSigma(volatility float64, capGroup config.CapGroup) float64 {
	const baseSigma = 15.0
	volFactor := clamp(volatility*100/20, 0.5, 1.5)
	return clamp(baseSigma*capGroup.RSISigmaFactor*volFactor, 10, 20)
}

// rsiSignals scores confirmed divergences and persistence signals over
// the last 14 bars, bounded to [-20, 20]. Negative means elevated risk.
func rsiSignals(rsiValues, closes []float64) (float64, []string) {
	if len(rsiValues) < 14 || len(closes) < 14 {
		return 0, nil
	}
	rsi := rsiValues[len(rsiValues)-14:]
	prices := closes[len(closes)-14:]

	score := 0.0
	var signals []string

	// top divergence: price makes the window high with a 2% push while
	// RSI sits 10% under its own high
	hiIdx, loIdx := 0, 0
	rsiHiIdx, rsiLoIdx := 0, 0
	for i := 1; i < 14; i++ {
		if prices[i] > prices[hiIdx] {
			hiIdx = i
		}
		if prices[i] < prices[loIdx] {
			loIdx = i
		}
		if rsi[i] > rsi[rsiHiIdx] {
			rsiHiIdx = i
		}
		if rsi[i] < rsi[rsiLoIdx] {
			rsiLoIdx = i
		}
	}
	if hiIdx == 13 && hiIdx > 0 && prices[hiIdx-1] != 0 {
		priceChange := (prices[hiIdx] - prices[hiIdx-1]) / prices[hiIdx-1] * 100
		if priceChange >= 2 && rsiHiIdx != 13 && rsi[rsiHiIdx] != 0 {
			rsiChange := (rsi[13] - rsi[rsiHiIdx]) / rsi[rsiHiIdx] * 100
			if rsiChange <= -10 {
				score -= 15
				signals = append(signals, "RSI顶背离")
			}
		}
	}
	if loIdx == 13 && loIdx > 0 && prices[loIdx-1] != 0 {
		priceChange := (prices[loIdx] - prices[loIdx-1]) / prices[loIdx-1] * 100
		if priceChange <= -2 && rsiLoIdx != 13 && rsi[rsiLoIdx] != 0 {
			rsiChange := (rsi[13] - rsi[rsiLoIdx]) / rsi[rsiLoIdx] * 100
			if rsiChange >= 10 {
				score += 15
				signals = append(signals, "RSI底背离")
			}
		}
	}

	if rsi[11] > 65 && rsi[12] > 65 && rsi[13] > 65 {
		score -= 10
		signals = append(signals, "RSI超买确认")
	}
	if rsi[11] < 35 && rsi[12] < 35 && rsi[13] < 35 {
		score += 10
		signals = append(signals, "RSI超卖确认")
	}

	return clamp(score, -20, 20), signals
}
