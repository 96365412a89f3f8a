// Package log carries logging helpers shared by the long-running
// commands: global level setup and a step progress tracker.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Setup configures the global zerolog logger: console output on a
// TTY, JSON otherwise, at the given level name (empty means info).
func Setup(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Progress tracks a fixed number of steps and logs rate and ETA at
// step boundaries. Safe for concurrent use.
type Progress struct {
	mu      sync.Mutex
	name    string
	total   int
	current int
	started time.Time
	now     func() time.Time
}

// NewProgress starts tracking total steps under a task name.
func NewProgress(name string, total int) *Progress {
	p := &Progress{name: name, total: total, now: time.Now}
	p.started = p.now()
	return p
}

// Step records one completed step and logs the running ETA.
func (p *Progress) Step(detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	elapsed := p.now().Sub(p.started)

	ev := log.Info().Str("task", p.name).
		Int("step", p.current).Int("total", p.total)
	if detail != "" {
		ev = ev.Str("detail", detail)
	}
	if p.total > p.current {
		perStep := elapsed / time.Duration(p.current)
		eta := perStep * time.Duration(p.total-p.current)
		ev = ev.Dur("eta", eta.Round(time.Second))
	}
	ev.Msg("progress")
}

// Done logs the final elapsed time.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	log.Info().Str("task", p.name).
		Int("steps", p.current).
		Dur("elapsed", p.now().Sub(p.started).Round(time.Millisecond)).
		Msg("task complete")
}
