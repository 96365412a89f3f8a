package score

import (
	"math"

	"github.com/riskrank/riskrank/internal/indicators"
	"github.com/riskrank/riskrank/internal/market"
)

// Trend states, strongest up first.
const (
	TrendStrongUp   = "强劲上升"
	TrendClearUp    = "明显上升"
	TrendMildUp     = "温和上升"
	TrendSideways   = "震荡"
	TrendMildDown   = "温和下降"
	TrendClearDown  = "明显下降"
	TrendStrongDown = "强劲下降"
)

var trendBaseScores = map[string]float64{
	TrendStrongUp:   80,
	TrendClearUp:    70,
	TrendMildUp:     60,
	TrendSideways:   50,
	TrendMildDown:   40,
	TrendClearDown:  30,
	TrendStrongDown: 20,
}

// TrendResult carries the trend score and its warning diagnostics.
type TrendResult struct {
	Score        float64 `json:"score"`
	State        string  `json:"state"`
	Strength     string  `json:"strength"`
	ADX          float64 `json:"adx"`
	Exhaustion   float64 `json:"exhaustion"`
	Conversion   float64 `json:"conversion"`
	WarningLevel string  `json:"warning_level"`
	DurationDays int     `json:"duration_days"`
}

// ScoreTrend evaluates the moving-average trend of a daily series
// (typically 300 bars): base score by MA alignment, ADX strength
// adjustment, then a discount by the exhaustion warning.
func ScoreTrend(series []market.PricePoint) TrendResult {
	closes := market.Closes(series)
	highs := make([]float64, len(series))
	lows := make([]float64, len(series))
	volumes := market.Volumes(series)
	for i, p := range series {
		highs[i] = p.High
		lows[i] = p.Low
	}

	ma10 := indicators.SMA(closes, 10)
	ma20 := indicators.SMA(closes, 20)
	mas := indicators.LatestMAs(closes)

	rsiValues := indicators.RSI(closes, 14)
	currentRSI := 50.0
	if len(rsiValues) > 0 {
		currentRSI = rsiValues[len(rsiValues)-1]
	}
	kValues, _ := indicators.Stochastic(highs, lows, closes, 14)
	currentK := 50.0
	if len(kValues) > 0 {
		currentK = kValues[len(kValues)-1]
	}
	adxValues := indicators.ADX(highs, lows, closes, 14)
	currentADX := 25.0
	if len(adxValues) > 0 && adxValues[len(adxValues)-1] != 0 {
		currentADX = adxValues[len(adxValues)-1]
	}
	returns := market.DailyReturns(series)
	vol := 0.2
	if len(returns) >= 2 {
		vol = indicators.AnnualizedVolatility(returns)
	}

	state := trendState(mas)
	base := trendBaseScores[state]
	adjusted := adjustForStrength(state, currentADX, base)

	exhaustion, duration := trendExhaustion(currentRSI, rsiValues, currentK, closes, volumes, ma10, ma20)
	conversion, warning := trendConversion(ma10, ma20, closes, adxValues, vol, volumes)

	final := clamp(adjusted*(1-math.Min(exhaustion/120, 0.5)), 0, 100)

	return TrendResult{
		Score:        final,
		State:        state,
		Strength:     trendStrength(currentADX),
		ADX:          currentADX,
		Exhaustion:   exhaustion,
		Conversion:   conversion,
		WarningLevel: warning,
		DurationDays: duration,
	}
}

func trendState(m indicators.MASet) string {
	if m.MA10 == 0 || m.MA20 == 0 || m.MA50 == 0 || m.MA60 == 0 || m.MA200 == 0 {
		return TrendSideways
	}
	switch {
	case m.MA10 > m.MA20*1.01 && m.MA20 > m.MA50*1.01 && m.MA50 > m.MA60*1.01 && m.MA60 > m.MA200*1.01:
		return TrendStrongUp
	case m.MA10 > m.MA20 && m.MA20 > m.MA50 && m.MA50 > m.MA60 && m.MA60 > m.MA200:
		return TrendClearUp
	case m.MA10 > m.MA20 && m.MA20 > m.MA60 && m.MA60 > m.MA200:
		return TrendMildUp
	case m.MA10 < m.MA20*0.99 && m.MA20 < m.MA50*0.99 && m.MA50 < m.MA60*0.99 && m.MA60 < m.MA200*0.99:
		return TrendStrongDown
	case m.MA10 < m.MA20 && m.MA20 < m.MA50 && m.MA50 < m.MA60 && m.MA60 < m.MA200:
		return TrendClearDown
	case m.MA10 < m.MA20 && m.MA20 < m.MA60 && m.MA60 < m.MA200:
		return TrendMildDown
	default:
		return TrendSideways
	}
}

func isUpState(state string) bool {
	return state == TrendStrongUp || state == TrendClearUp || state == TrendMildUp
}

func isDownState(state string) bool {
	return state == TrendStrongDown || state == TrendClearDown || state == TrendMildDown
}

// adjustForStrength moves the base score by up to 10 points on ADX
// extremes. Sideways trends get half the adjustment; weak-trend
// adjustments pull the score toward the neutral 50.
func adjustForStrength(state string, adx, base float64) float64 {
	factor := 1.0
	if state == TrendSideways {
		factor = 0.5
	}
	step := math.Trunc(10 * factor)
	switch {
	case adx > 35:
		if isUpState(state) {
			base = math.Min(100, base+step)
		} else if isDownState(state) {
			base = math.Max(0, base-step)
		}
	case adx < 20:
		if isUpState(state) {
			base = math.Max(50, base-step)
		} else if isDownState(state) {
			base = math.Min(50, base+step)
		}
	}
	return clamp(base, 0, 100)
}

func trendStrength(adx float64) string {
	switch {
	case adx < 20:
		return "弱趋势"
	case adx < 40:
		return "中等趋势"
	default:
		return "强趋势"
	}
}

// trendExhaustion scores how stretched the current trend looks, capped
// at 120: overbought/oversold oscillators, RSI divergence, fading
// volume, and sheer trend age.
func trendExhaustion(rsi float64, rsiValues []float64, stochK float64,
	closes, volumes []float64, ma10, ma20 []float64) (float64, int) {

	score := 0.0
	if rsi > 70 || rsi < 30 {
		score += 30
	}
	if stochK > 80 || stochK < 20 {
		score += 30
	}
	if div := detectRSIDivergence(closes, rsiValues, 14); div != divergenceNone {
		score += 40
	}
	if len(closes) > 5 && len(volumes) > 5 {
		p := closes[len(closes)-5:]
		v := volumes[len(volumes)-5:]
		if p[4] > p[0] && v[4] < v[0]*0.8 {
			score += 30
		} else if p[4] < p[0] && v[4] < v[0]*0.8 {
			score += 15
		}
	}
	duration := trendDuration(len(closes), ma10, ma20)
	switch {
	case duration > 120:
		score += 30
	case duration > 80:
		score += 20
	case duration > 40:
		score += 10
	}
	return clamp(score, 0, 120), duration
}

// trendConversion scores how likely the trend is to flip, capped at
// 130, and derives the warning level from it.
func trendConversion(ma10, ma20 []float64, closes []float64, adx []float64,
	vol float64, volumes []float64) (float64, string) {

	score := 0.0
	if len(ma10) > 0 && len(ma20) > 0 {
		m10, m20 := ma10[len(ma10)-1], ma20[len(ma20)-1]
		if m10 != 0 && m20 != 0 && math.Abs((m10-m20)/m20*100) < 1 {
			score += 25
		}
	}
	ma200 := indicators.SMA(closes, 200)
	if len(ma10) > 0 && len(ma200) > 0 {
		m10, m200 := ma10[len(ma10)-1], ma200[len(ma200)-1]
		if m10 != 0 && m200 != 0 && (m10 > m200*1.01 || m10 < m200*0.99) {
			score += 30
		}
	}
	if len(adx) > 5 {
		recent := adx[len(adx)-5:]
		spiked := recent[0] > 35 || recent[1] > 35 || recent[2] > 35
		collapsed := recent[3] < 28 && recent[4] < 28
		if spiked && collapsed {
			score += 30
		}
	}
	if vol > 0.3 {
		score += 25
	}
	if len(volumes) > 5 {
		recent := volumes[len(volumes)-5:]
		avg := (recent[0] + recent[1] + recent[2] + recent[3]) / 4
		if recent[4] > avg*2 {
			score += 20
		}
	}
	score = clamp(score, 0, 130)

	var level string
	switch {
	case score < 25:
		level = "无预警（0级）"
	case score < 50:
		level = "轻度预警（1级）"
	case score < 80:
		level = "中度预警（2级）"
	default:
		level = "重度预警（3级）"
	}
	return score, level
}

// trendDuration counts bars since the last MA10/MA20 cross, scanning
// backward. No cross in the window means no established trend age.
func trendDuration(nBars int, maShort, maLong []float64) int {
	if len(maShort) < 2 || len(maLong) < 2 {
		return 0
	}
	for i := len(maShort) - 1; i > 0; i-- {
		goldenCross := maShort[i] > maLong[i] && maShort[i-1] <= maLong[i-1]
		deathCross := maShort[i] < maLong[i] && maShort[i-1] >= maLong[i-1]
		if goldenCross || deathCross {
			return nBars - i
		}
	}
	return 0
}

type divergence int

const (
	divergenceNone divergence = iota
	divergenceTop
	divergenceBottom
)

// detectRSIDivergence compares the two most recent local price
// extremes with the two most recent RSI extremes over lookback bars:
// price pushing 2% further while RSI fades 10% is a divergence.
func detectRSIDivergence(closes, rsiValues []float64, lookback int) divergence {
	if len(closes) < lookback+5 || len(rsiValues) < lookback+5 {
		return divergenceNone
	}
	prices := closes[len(closes)-lookback:]
	rsi := rsiValues[len(rsiValues)-lookback:]

	localPeaks := func(vals []float64, high bool) [][2]float64 {
		var out [][2]float64
		for i := 1; i < len(vals)-1; i++ {
			if high && vals[i] > vals[i-1] && vals[i] > vals[i+1] {
				out = append(out, [2]float64{float64(i), vals[i]})
			}
			if !high && vals[i] < vals[i-1] && vals[i] < vals[i+1] {
				out = append(out, [2]float64{float64(i), vals[i]})
			}
		}
		return out
	}

	priceHighs := localPeaks(prices, true)
	rsiHighs := localPeaks(rsi, true)
	if len(priceHighs) >= 2 && len(rsiHighs) >= 2 {
		ph1, ph2 := priceHighs[len(priceHighs)-1][1], priceHighs[len(priceHighs)-2][1]
		rh1, rh2 := rsiHighs[len(rsiHighs)-1][1], rsiHighs[len(rsiHighs)-2][1]
		if ph2 != 0 && rh2 != 0 {
			priceChange := (ph1 - ph2) / ph2 * 100
			rsiChange := (rh1 - rh2) / rh2 * 100
			if priceChange >= 2 && rsiChange <= -10 {
				return divergenceTop
			}
		}
	}

	priceLows := localPeaks(prices, false)
	rsiLows := localPeaks(rsi, false)
	if len(priceLows) >= 2 && len(rsiLows) >= 2 {
		pl1, pl2 := priceLows[len(priceLows)-1][1], priceLows[len(priceLows)-2][1]
		rl1, rl2 := rsiLows[len(rsiLows)-1][1], rsiLows[len(rsiLows)-2][1]
		if pl2 != 0 && rl2 != 0 {
			priceChange := (pl1 - pl2) / pl2 * 100
			rsiChange := (rl1 - rl2) / rl2 * 100
			if priceChange <= -2 && rsiChange >= 10 {
				return divergenceBottom
			}
		}
	}
	return divergenceNone
}
