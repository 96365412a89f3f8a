package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riskrank/riskrank/internal/config"
)

func TestScoreTurnoverExcess(t *testing.T) {
	// double the benchmark: deviation (2-1)*100*1.5 = 150
	got := ScoreTurnover(2.0, largeCapGroup(), config.DefaultIndustry)
	assert.Equal(t, 2.0, got.RelativeRatio)
	assert.Equal(t, 150.0, got.Deviation)
	assert.Equal(t, 25.0, got.Score)
	assert.Contains(t, got.Status, "放量")
}

func TestScoreTurnoverQuiet(t *testing.T) {
	// half the benchmark only costs (1-0.5)*100*0.3 = 15
	got := ScoreTurnover(0.5, largeCapGroup(), config.DefaultIndustry)
	assert.Equal(t, 15.0, got.Deviation)
	assert.Equal(t, 85.0, got.Score)
	assert.Contains(t, got.Status, "正常")
}

func TestScoreTurnoverAsymmetry(t *testing.T) {
	// the same relative distance from the benchmark scores very
	// differently by direction
	hot := ScoreTurnover(1.5, largeCapGroup(), config.DefaultIndustry)
	cold := ScoreTurnover(0.5, largeCapGroup(), config.DefaultIndustry)
	assert.Less(t, hot.Score, cold.Score)
}

func TestScoreTurnoverIndustryFactor(t *testing.T) {
	// the industry factor rescales the benchmark before comparison
	plain := ScoreTurnover(1.0, largeCapGroup(), config.DefaultIndustry)
	assert.Equal(t, 100.0, plain.Score)
	assert.Equal(t, largeCapGroup().BenchmarkTurnoverPct, plain.BenchmarkPct)
}

func TestScoreTurnoverZeroBenchmark(t *testing.T) {
	got := ScoreTurnover(3.0, config.CapGroup{Name: "测试", BenchmarkTurnoverPct: 0}, config.DefaultIndustry)
	assert.Equal(t, 1.0, got.RelativeRatio)
	assert.Equal(t, 100.0, got.Score)
}
