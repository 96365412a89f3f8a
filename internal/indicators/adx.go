package indicators

import "math"

// ADX computes the average directional index with Wilder smoothing:
// true range and directional movement averaged over the first period,
// then smoothed, with the DX line itself Wilder-smoothed into ADX.
// The warmup prefix holds the zero sentinel.
func ADX(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	if period <= 0 || n < 2*period+1 || len(high) != n || len(low) != n {
		return out
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		tr[i] = math.Max(high[i]-low[i],
			math.Max(math.Abs(high[i]-close[i-1]), math.Abs(low[i]-close[i-1])))
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var atr, pdm, mdm float64
	for i := 1; i <= period; i++ {
		atr += tr[i]
		pdm += plusDM[i]
		mdm += minusDM[i]
	}

	dx := make([]float64, n)
	dx[period] = dxValue(pdm, mdm, atr)
	for i := period + 1; i < n; i++ {
		atr = atr - atr/float64(period) + tr[i]
		pdm = pdm - pdm/float64(period) + plusDM[i]
		mdm = mdm - mdm/float64(period) + minusDM[i]
		dx[i] = dxValue(pdm, mdm, atr)
	}

	var adx float64
	for i := period; i < 2*period; i++ {
		adx += dx[i]
	}
	adx /= float64(period)
	out[2*period-1] = adx
	for i := 2 * period; i < n; i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
		out[i] = adx
	}
	return out
}

func dxValue(pdm, mdm, atr float64) float64 {
	if atr == 0 {
		return 0
	}
	plusDI := pdm / atr * 100
	minusDI := mdm / atr * 100
	sum := plusDI + minusDI
	if sum == 0 {
		return 0
	}
	return math.Abs(plusDI-minusDI) / sum * 100
}
