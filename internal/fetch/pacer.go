package fetch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces upstream calls out so providers see a steady, polite
// request rate regardless of how bursty the pipeline is.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows one call per interval, with no burst allowance.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call slot or the context ends.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
