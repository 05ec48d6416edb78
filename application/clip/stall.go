package clip

import (
	"errors"
	"io"
	"sync/atomic"
	"time"
)

// errStalled is reported when the source makes no progress within the stall timeout
var errStalled = errors.New("source stalled")

// stallGuard fails the pipeline when a single read blocks for longer than timeout
type stallGuard struct {
	r       io.Reader
	timeout time.Duration
	onStall func()
	stalled atomic.Bool
}

func newStallGuard(r io.Reader, timeout time.Duration, onStall func()) *stallGuard {
	return &stallGuard{r: r, timeout: timeout, onStall: onStall}
}

func (g *stallGuard) Read(p []byte) (int, error) {
	if g.stalled.Load() {
		return 0, errStalled
	}
	if g.timeout <= 0 {
		return g.r.Read(p)
	}

	timer := time.AfterFunc(g.timeout, func() {
		g.stalled.Store(true)
		g.onStall()
	})
	n, err := g.r.Read(p)
	timer.Stop()

	if g.stalled.Load() {
		return n, errStalled
	}
	return n, err
}

// Stalled reports whether the guard fired
func (g *stallGuard) Stalled() bool {
	return g.stalled.Load()
}
