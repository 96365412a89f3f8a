package log

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressCounts(t *testing.T) {
	now := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	p := NewProgress("replay", 3)
	p.now = func() time.Time { return now }
	p.started = now

	p.Step("2025-03-03")
	now = now.Add(2 * time.Second)
	p.Step("2025-04-02")
	assert.Equal(t, 2, p.current)

	p.Step("")
	p.Done()
	assert.Equal(t, 3, p.current)
}

func TestSetupParsesLevel(t *testing.T) {
	// must not panic on garbage and must accept known levels
	Setup("debug")
	Setup("")
	Setup("not-a-level")
}
