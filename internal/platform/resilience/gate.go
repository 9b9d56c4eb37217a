package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the spacing the stats provider tolerates between
// consecutive requests from one client.
const DefaultMinInterval = 600 * time.Millisecond

// Gate spaces outbound calls so that at most one call starts per interval,
// process-wide. Every caller sharing a Gate shares the budget.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
	waits    atomic.Int64
}

func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the caller may start a call or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	if g == nil {
		return nil
	}
	g.waits.Add(1)
	return g.limiter.Wait(ctx)
}

func (g *Gate) Interval() time.Duration {
	if g == nil {
		return 0
	}
	return g.interval
}

// Passed counts how many calls went through Wait.
func (g *Gate) Passed() int64 {
	if g == nil {
		return 0
	}
	return g.waits.Load()
}
