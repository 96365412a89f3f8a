// Package fetch wraps upstream calls with the retry and pacing policy:
// exponential backoff on transient network failures, immediate
// propagation of everything else.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riskrank/riskrank/internal/config"
	"github.com/riskrank/riskrank/internal/metrics"
)

// transientMarkers are substrings that identify a retryable failure in
// provider error text, including the WinSock codes some upstreams leak
// through their gateways.
var transientMarkers = []string{
	"10060", "10054", "10057",
	"connection reset", "connection refused",
	"timeout", "temporarily unavailable", "EOF",
}

// Transient reports whether an error is worth retrying.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	// context cancellation is a caller decision, never retried
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// Retrier retries transient failures with exponential backoff.
type Retrier struct {
	maxRetries int
	baseDelay  time.Duration
	exponent   float64
	sleep      func(context.Context, time.Duration) error
}

// NewRetrier builds a Retrier from config.
func NewRetrier(cfg config.RetryConfig) *Retrier {
	return &Retrier{
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		exponent:   cfg.Exponent,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn, retrying transient failures up to the retry budget. The
// delay doubles (by the configured exponent) after each failed attempt.
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	delay := r.baseDelay
	var err error
	for attempt := 0; ; attempt++ {
		metrics.ProviderCalls.WithLabelValues(op).Inc()
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !Transient(err) {
			metrics.ProviderFailures.WithLabelValues(op).Inc()
			return err
		}
		if attempt+1 >= r.maxRetries {
			metrics.ProviderFailures.WithLabelValues(op).Inc()
			return fmt.Errorf("%s: %d attempts exhausted: %w", op, r.maxRetries, err)
		}
		metrics.ProviderRetries.WithLabelValues(op).Inc()
		log.Warn().Str("op", op).Int("attempt", attempt+1).
			Dur("delay", delay).Err(err).Msg("transient failure, retrying")
		if serr := r.sleep(ctx, delay); serr != nil {
			return serr
		}
		delay = time.Duration(float64(delay) * r.exponent)
	}
}
