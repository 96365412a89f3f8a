// Package indicators implements the technical indicators the scoring
// engines consume. All functions are pure: input slices are never
// mutated and the output length always matches the input length, with
// zero used as the warmup sentinel before an indicator has enough data.
package indicators

// SMA computes the simple moving average over period. Positions before
// period-1 hold the zero sentinel.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// MASet holds the moving averages the trend engine reads. A zero value
// means the series was too short for that window.
type MASet struct {
	MA10  float64 `json:"ma10"`
	MA20  float64 `json:"ma20"`
	MA50  float64 `json:"ma50"`
	MA60  float64 `json:"ma60"`
	MA200 float64 `json:"ma200"`
}

// LatestMAs computes the most recent value of each standard window.
func LatestMAs(closes []float64) MASet {
	last := func(period int) float64 {
		s := SMA(closes, period)
		if len(s) == 0 {
			return 0
		}
		return s[len(s)-1]
	}
	return MASet{
		MA10:  last(10),
		MA20:  last(20),
		MA50:  last(50),
		MA60:  last(60),
		MA200: last(200),
	}
}
