package indicators

import (
	"math"
	"testing"
)

func TestSMAWarmupAndMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := SMA(values, 3)
	if len(out) != len(values) {
		t.Fatalf("output length %d != input length %d", len(out), len(values))
	}
	for i := 0; i < 2; i++ {
		if out[i] != 0 {
			t.Errorf("warmup position %d = %f, want 0", i, out[i])
		}
	}
	want := []float64{2, 3, 4, 5}
	for i, w := range want {
		if math.Abs(out[i+2]-w) > 1e-12 {
			t.Errorf("SMA[%d] = %f, want %f", i+2, out[i+2], w)
		}
	}
}

func TestSMAShortSeries(t *testing.T) {
	out := SMA([]float64{1, 2}, 5)
	for i, v := range out {
		if v != 0 {
			t.Errorf("short series position %d = %f, want 0", i, v)
		}
	}
}

func TestRSIBounds(t *testing.T) {
	closes := []float64{10, 10.2, 10.1, 10.5, 10.3, 10.8, 10.6, 11, 10.9,
		11.2, 11.1, 11.5, 11.3, 11.8, 11.6, 12, 11.9, 12.3, 12.1, 12.5}
	out := RSI(closes, 14)
	for i, v := range out {
		if v < 0 || v > 100 {
			t.Errorf("RSI[%d] = %f out of [0,100]", i, v)
		}
	}
	if out[len(out)-1] == 0 {
		t.Error("last RSI should be past warmup")
	}
}

func TestRSIAllGainsSaturates(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 10 + float64(i)
	}
	out := RSI(closes, 14)
	if got := out[len(out)-1]; got != 100 {
		t.Errorf("monotonic rise RSI = %f, want 100", got)
	}
}

func TestRSIWarmupSentinel(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 10 + math.Sin(float64(i))
	}
	out := RSI(closes, 14)
	for i := 0; i < 14; i++ {
		if out[i] != 0 {
			t.Errorf("warmup RSI[%d] = %f, want 0", i, out[i])
		}
	}
}

func TestStochasticFlatRange(t *testing.T) {
	n := 20
	h := make([]float64, n)
	l := make([]float64, n)
	c := make([]float64, n)
	for i := range h {
		h[i], l[i], c[i] = 10, 10, 10
	}
	k, _ := Stochastic(h, l, c, 14)
	if k[n-1] != 50 {
		t.Errorf("flat range %%K = %f, want 50", k[n-1])
	}
}

func TestStochasticCloseAtHigh(t *testing.T) {
	n := 20
	h := make([]float64, n)
	l := make([]float64, n)
	c := make([]float64, n)
	for i := range h {
		h[i] = 10 + float64(i)
		l[i] = 9 + float64(i)
		c[i] = h[i]
	}
	k, _ := Stochastic(h, l, c, 14)
	if k[n-1] != 100 {
		t.Errorf("close at range high %%K = %f, want 100", k[n-1])
	}
}

func TestADXBoundsAndWarmup(t *testing.T) {
	n := 60
	h := make([]float64, n)
	l := make([]float64, n)
	c := make([]float64, n)
	for i := range h {
		base := 10 + 0.2*float64(i)
		h[i] = base + 0.3
		l[i] = base - 0.3
		c[i] = base
	}
	out := ADX(h, l, c, 14)
	for i := 0; i < 27; i++ {
		if out[i] != 0 {
			t.Errorf("warmup ADX[%d] = %f, want 0", i, out[i])
		}
	}
	for i, v := range out {
		if v < 0 || v > 100 {
			t.Errorf("ADX[%d] = %f out of [0,100]", i, v)
		}
	}
	if out[n-1] < 50 {
		t.Errorf("steady trend should read strong, got %f", out[n-1])
	}
}

func TestStdDevSample(t *testing.T) {
	if got := StdDev([]float64{3}); got != 0 {
		t.Errorf("single value stddev = %f, want 0", got)
	}
	// n-1 denominator: sqrt(32/7), not the population sqrt(32/8)=2
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	want := math.Sqrt(32.0 / 7.0)
	if got := StdDev(vals); math.Abs(got-want) > 1e-12 {
		t.Errorf("stddev = %f, want %f", got, want)
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	if got := AnnualizedVolatility([]float64{0.01}); got != 0 {
		t.Errorf("single return vol = %f, want 0", got)
	}
	rets := []float64{0.01, -0.01, 0.01, -0.01}
	want := StdDev(rets) * math.Sqrt(252)
	if got := AnnualizedVolatility(rets); math.Abs(got-want) > 1e-12 {
		t.Errorf("vol = %f, want %f", got, want)
	}
}

func TestFractionBelow(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	if got := FractionBelow(vals, 3, 0.5); got != 0.5 {
		t.Errorf("FractionBelow = %f, want 0.5", got)
	}
	if got := FractionBelow(nil, 3, 0.5); got != 0.5 {
		t.Errorf("empty sample should return fallback, got %f", got)
	}
}

func TestQuantiles(t *testing.T) {
	vals := []float64{5, 1, 4, 2, 3, 6, 7, 8, 9, 10}
	if got := IndexQuantile(vals, 0.2); got != 3 {
		t.Errorf("IndexQuantile(0.2) = %f, want 3", got)
	}
	if got := IndexQuantile(vals, 0.8); got != 9 {
		t.Errorf("IndexQuantile(0.8) = %f, want 9", got)
	}
	if got := InterpolatedQuantile(vals, 0.5); got != 5.5 {
		t.Errorf("InterpolatedQuantile(0.5) = %f, want 5.5", got)
	}
}
