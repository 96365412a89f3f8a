package indicators

import "math"

// TradingDaysPerYear is the annualization basis for daily returns.
const TradingDaysPerYear = 252

// AnnualizedVolatility scales the standard deviation of daily returns
// by sqrt(252). Fewer than two returns yields zero.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(TradingDaysPerYear)
}

// StdDev is the sample standard deviation (n-1 denominator). Fewer
// than two values yields zero.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// Mean is the arithmetic mean, zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
