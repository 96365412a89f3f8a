package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testBreaker(cooldown time.Duration) (*Breaker, *time.Time) {
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Cooldown:         cooldown,
	})
	now := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b, _ := testBreaker(time.Minute)
	assert.Equal(t, BreakerClosed, b.State())

	b.Failure()
	b.Failure()
	assert.Equal(t, BreakerClosed, b.State())
	assert.True(t, b.Allow())

	b.Failure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b, _ := testBreaker(time.Minute)
	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b, now := testBreaker(time.Minute)
	b.Failure()
	b.Failure()
	b.Failure()
	assert.False(t, b.Allow())

	// cooldown elapsed: the next call probes
	*now = now.Add(2 * time.Minute)
	assert.True(t, b.Allow())
	assert.Equal(t, BreakerHalfOpen, b.State())

	b.Success()
	assert.Equal(t, BreakerHalfOpen, b.State())
	b.Success()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, now := testBreaker(time.Minute)
	b.Failure()
	b.Failure()
	b.Failure()
	*now = now.Add(2 * time.Minute)
	assert.True(t, b.Allow())

	b.Failure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())
}
