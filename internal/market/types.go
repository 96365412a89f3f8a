// Package market holds the shared data model for A-share instruments:
// normalized security codes, daily price bars, and reporting periods.
package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrInstrumentNotFound marks a security code that cannot be resolved.
// It is the only input error the pipeline treats as fatal.
var ErrInstrumentNotFound = errors.New("instrument not found")

// BenchmarkIndex is the exchange-prefixed code of the CSI 300 index,
// used for market-wide volatility and valuation context.
const BenchmarkIndex = "sh.000300"

// Instrument is a resolved security with the attributes the scoring
// pipeline needs up front.
type Instrument struct {
	Code           string  `json:"code"`            // normalized 6-digit code
	Name           string  `json:"name"`            // display name as reported
	Industry       string  `json:"industry"`        // raw industry label from the classifier
	Price          float64 `json:"price"`           // latest close
	CirculatingCap float64 `json:"circulating_cap"` // circulating market cap, 1e8 CNY
	SpecialStatus  bool    `json:"special_status"`  // under special treatment (ST)
}

// PricePoint is one daily bar. Return is the day-over-day close change;
// it is nil for the first bar of a series.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Amount float64   `json:"amount"`
	Return *float64  `json:"return,omitempty"`
}

// ReportingPeriod pins fundamentals to one fiscal quarter so every peer
// comparison reads the same statements.
type ReportingPeriod struct {
	Year    int `yaml:"year" json:"year"`
	Quarter int `yaml:"quarter" json:"quarter"`
}

func (p ReportingPeriod) String() string {
	return fmt.Sprintf("%dQ%d", p.Year, p.Quarter)
}

// NormalizeCode reduces the many shapes a security code arrives in
// ("600519", "sh.600519", "600519.SH") to the bare 6-digit form.
func NormalizeCode(raw string) (string, error) {
	s := raw
	for _, prefix := range []string{"sh.", "sz.", "SH.", "SZ."} {
		if len(s) > len(prefix) && s[:len(prefix)] == prefix {
			s = s[len(prefix):]
		}
	}
	for _, suffix := range []string{".SH", ".SZ", ".sh", ".sz"} {
		if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
			s = s[:len(s)-len(suffix)]
		}
	}
	if len(s) != 6 {
		return "", fmt.Errorf("normalize code %q: %w", raw, ErrInstrumentNotFound)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("normalize code %q: %w", raw, ErrInstrumentNotFound)
		}
	}
	return s, nil
}

// ExchangeCode prefixes a normalized code with its exchange: Shanghai
// for codes starting with 6, Shenzhen otherwise.
func ExchangeCode(code string) string {
	if len(code) > 0 && code[0] == '6' {
		return "sh." + code
	}
	return "sz." + code
}

// Closes extracts the close column from a series.
func Closes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Close
	}
	return out
}

// Volumes extracts the volume column from a series.
func Volumes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Volume
	}
	return out
}

// DailyReturns computes day-over-day close returns, skipping the first
// bar and any bar whose previous close is zero.
func DailyReturns(series []PricePoint) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Close
		if prev == 0 {
			continue
		}
		out = append(out, series[i].Close/prev-1)
	}
	return out
}

// FillReturns populates the Return field on each bar in place and
// returns the series for chaining.
func FillReturns(series []PricePoint) []PricePoint {
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Close
		if prev == 0 {
			continue
		}
		r := series[i].Close/prev - 1
		series[i].Return = &r
	}
	return series
}

// TruncateAfter returns the prefix of a series with dates at or before
// cutoff. The input must be date-ascending.
func TruncateAfter(series []PricePoint, cutoff time.Time) []PricePoint {
	n := len(series)
	for n > 0 && series[n-1].Date.After(cutoff) {
		n--
	}
	return series[:n]
}
