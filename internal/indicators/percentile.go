package indicators

import "sort"

// FractionBelow returns the fraction of values strictly below x, or
// fallback when the sample is empty.
func FractionBelow(values []float64, x, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	below := 0
	for _, v := range values {
		if v < x {
			below++
		}
	}
	return float64(below) / float64(len(values))
}

// IndexQuantile returns the element at floor(n*q) of the sorted copy of
// values. The truncating index matches how the fair-value ranges were
// originally calibrated, so it is kept over interpolation.
func IndexQuantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// InterpolatedQuantile returns the linearly interpolated quantile, used
// where a smooth estimate matters (IQR outlier bounds).
func InterpolatedQuantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
