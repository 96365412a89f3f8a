package industry

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	label string
	peers []string
	err   error
}

func (s *stubClassifier) IndustryLabel(_ context.Context, _ string) (string, error) {
	return s.label, s.err
}

func (s *stubClassifier) Peers(_ context.Context, _ string) ([]string, error) {
	return s.peers, s.err
}

func fp(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	e := NewEngine(&stubClassifier{label: "白酒"}, 1)
	got, err := e.Classify(context.Background(), "600519")
	require.NoError(t, err)
	assert.Equal(t, "食品饮料", got)
}

func TestPeersExcludesSelf(t *testing.T) {
	e := NewEngine(&stubClassifier{peers: []string{"600519", "000858", "600600"}}, 1)
	got, err := e.Peers(context.Background(), "食品饮料", "600519")
	require.NoError(t, err)
	assert.Equal(t, []string{"000858", "600600"}, got)
}

func TestPercentileMonotonic(t *testing.T) {
	peers := []float64{10, 20, 30, 40, 50}
	prev := 2.0
	// a larger value can never rank worse under HigherIsBetter
	for _, v := range []float64{5, 15, 25, 35, 45, 55} {
		p := Percentile(v, peers, HigherIsBetter)
		assert.LessOrEqual(t, p, prev, "value %f", v)
		prev = p
	}
}

func TestPercentileDirections(t *testing.T) {
	peers := []float64{1, 2, 3, 4}
	assert.Equal(t, 0.5, Percentile(2.5, peers, HigherIsBetter))
	assert.Equal(t, 0.5, Percentile(2.5, peers, LowerIsBetter))
	assert.Equal(t, 0.0, Percentile(10, peers, HigherIsBetter))
	assert.Equal(t, 1.0, Percentile(10, peers, LowerIsBetter))
}

func TestPercentileAndAverageNeutralCases(t *testing.T) {
	pct, avg := PercentileAndAverage(nil, []float64{1, 2}, HigherIsBetter)
	assert.Equal(t, NeutralPercentile, pct)
	assert.Equal(t, 0.0, avg)

	pct, avg = PercentileAndAverage(fp(1), nil, HigherIsBetter)
	assert.Equal(t, NeutralPercentile, pct)
	assert.Equal(t, 0.0, avg)
}

func TestPercentileAndAverage(t *testing.T) {
	pct, avg := PercentileAndAverage(fp(30), []float64{10, 20, 40, 50}, HigherIsBetter)
	assert.Equal(t, 0.5, pct)
	assert.Equal(t, 30.0, avg)
}

func TestPeerValuesSkipsFailuresAndNils(t *testing.T) {
	e := NewEngine(&stubClassifier{}, 4)
	fetch := func(_ context.Context, code string) (*float64, error) {
		switch code {
		case "a":
			return fp(1), nil
		case "b":
			return nil, errors.New("upstream down")
		case "c":
			return nil, nil
		default:
			return fp(2), nil
		}
	}
	values := e.PeerValues(context.Background(), []string{"a", "b", "c", "d"}, fetch)
	sort.Float64s(values)
	assert.Equal(t, []float64{1, 2}, values)
}

func TestPeerValuesOrderIndependent(t *testing.T) {
	e := NewEngine(&stubClassifier{}, 8)
	fetch := func(_ context.Context, code string) (*float64, error) {
		return fp(float64(len(code))), nil
	}
	codes := []string{"x", "xx", "xxx", "xxxx", "xxxxx"}
	values := e.PeerValues(context.Background(), codes, fetch)
	sort.Float64s(values)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, values)
}
