package indicators

// Stochastic computes the %K and %D stochastic oscillator lines over
// period, with %D a 3-bar SMA of %K. A flat high/low range yields the
// neutral 50. Positions before period-1 hold the zero sentinel.
func Stochastic(high, low, close []float64, period int) (k, d []float64) {
	n := len(close)
	k = make([]float64, n)
	if period <= 0 || n < period || len(high) != n || len(low) != n {
		return k, make([]float64, n)
	}
	for i := period - 1; i < n; i++ {
		hh, ll := high[i], low[i]
		for j := i - period + 1; j <= i; j++ {
			if high[j] > hh {
				hh = high[j]
			}
			if low[j] < ll {
				ll = low[j]
			}
		}
		if hh == ll {
			k[i] = 50
			continue
		}
		k[i] = (close[i] - ll) / (hh - ll) * 100
	}
	d = SMA(k, 3)
	return k, d
}
