// Package industry resolves an instrument's industry membership and
// ranks metric values against the industry's peer set.
package industry

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/providers"
)

// Direction states which way a metric is good. Percentiles are always
// reported as "fraction of peers doing better", so callers score them
// uniformly.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// NeutralPercentile is returned when a comparison has no basis: the
// subject value is missing or no peer reported the metric.
const NeutralPercentile = 0.5

// MetricFetch resolves one peer's metric value. A nil value (with nil
// error) means the peer does not report the metric.
type MetricFetch func(ctx context.Context, code string) (*float64, error)

// Engine ranks instruments inside their industry peer set.
type Engine struct {
	classifier providers.Classifier
	fetchLimit int
}

// NewEngine builds an engine with the configured fan-out bound.
func NewEngine(classifier providers.Classifier, fetchLimit int) *Engine {
	if fetchLimit < 1 {
		fetchLimit = 1
	}
	return &Engine{classifier: classifier, fetchLimit: fetchLimit}
}

// Classify resolves a code's level-1 industry category.
func (e *Engine) Classify(ctx context.Context, code string) (string, error) {
	label, err := e.classifier.IndustryLabel(ctx, code)
	if err != nil {
		return "", err
	}
	return config.ClassifyIndustry(label), nil
}

// Peers lists the industry roster minus the subject itself.
func (e *Engine) Peers(ctx context.Context, industry, selfCode string) ([]string, error) {
	roster, err := e.classifier.Peers(ctx, industry)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(roster))
	for _, code := range roster {
		if code != selfCode {
			out = append(out, code)
		}
	}
	return out, nil
}

// PeerValues collects one metric across codes with bounded concurrency.
// Peers that fail or do not report the metric are skipped; the order of
// the result is unspecified.
func (e *Engine) PeerValues(ctx context.Context, codes []string, fetch MetricFetch) []float64 {
	var mu sync.Mutex
	var values []float64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fetchLimit)
	for _, code := range codes {
		code := code
		g.Go(func() error {
			v, err := fetch(gctx, code)
			if err != nil {
				log.Debug().Str("peer", code).Err(err).Msg("peer metric unavailable")
				return nil
			}
			if v == nil {
				return nil
			}
			mu.Lock()
			values = append(values, *v)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return values
}

// Percentile returns the fraction of peers strictly better than value,
// under the metric's direction.
func Percentile(value float64, peerValues []float64, dir Direction) float64 {
	if len(peerValues) == 0 {
		return NeutralPercentile
	}
	better := 0
	for _, pv := range peerValues {
		if (dir == HigherIsBetter && pv > value) || (dir == LowerIsBetter && pv < value) {
			better++
		}
	}
	return float64(better) / float64(len(peerValues))
}

// PercentileAndAverage ranks value against peers, returning the
// neutral (0.5, 0) pair when the comparison has no basis.
func PercentileAndAverage(value *float64, peerValues []float64, dir Direction) (pct, avg float64) {
	if value == nil || len(peerValues) == 0 {
		return NeutralPercentile, 0
	}
	var sum float64
	for _, pv := range peerValues {
		sum += pv
	}
	return Percentile(*value, peerValues, dir), sum / float64(len(peerValues))
}
