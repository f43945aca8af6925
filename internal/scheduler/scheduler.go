/*
Package scheduler
File: scheduler.go
Description:
    Drives the progression engine on a fixed logical tick, independent of how often
    anything renders.

    Each tick:
    1. Drains the clicks buffered since the previous tick and credits them.
    2. Accrues passive income for the measured wall-clock time since the previous tick,
       not the nominal tick length, so jitter and dropped ticks self-correct.
    3. Reports what happened to the optional tick hook.
*/

package scheduler

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/clock"
	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/engine"
)

// DefaultTickRate is the logic rate in ticks per second.
const DefaultTickRate = 60

// Engine is the part of the progression engine a tick needs.
type Engine interface {
	RegisterClicks(n int) float64
	Accrue(seconds float64) float64
}

var _ Engine = (*engine.Engine)(nil)

// TickReport describes one completed tick.
type TickReport struct {
	Seq     uint64        // 1 for the first tick
	Clicks  int           // Clicks drained and credited this tick
	Elapsed time.Duration // Measured time accrued this tick
	Earned  float64       // Currency gained this tick (clicks + income)
}

// Scheduler buffers click input and advances the engine once per tick.
type Scheduler struct {
	eng      Engine
	clk      clock.Clock
	interval time.Duration

	pending atomic.Int64 // Clicks since the last tick

	// mu serializes ticks and guards the fields below.
	mu     sync.Mutex
	last   time.Time
	seq    uint64
	onTick func(TickReport)
}

// New creates a scheduler running at tickRate ticks per second (DefaultTickRate if <= 0).
func New(eng Engine, clk clock.Clock, tickRate int) *Scheduler {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Scheduler{
		eng:      eng,
		clk:      clk,
		interval: time.Second / time.Duration(tickRate),
		last:     clk.Now(),
	}
}

// Interval is the nominal time between ticks.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Click buffers one click for the next tick.
func (s *Scheduler) Click() {
	s.AddClicks(1)
}

// AddClicks buffers n clicks for the next tick. n <= 0 is ignored.
// The buffer saturates at math.MaxInt64 rather than wrapping.
func (s *Scheduler) AddClicks(n int) {
	if n <= 0 {
		return
	}
	for {
		cur := s.pending.Load()
		next := cur + int64(n)
		if next < cur {
			next = math.MaxInt64
		}
		if s.pending.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Pending returns the number of clicks waiting for the next tick.
func (s *Scheduler) Pending() int {
	return int(s.pending.Load())
}

// OnTick sets a hook called after every tick. Pass nil to remove it.
// The hook runs on the ticking goroutine and must not block.
func (s *Scheduler) OnTick(fn func(TickReport)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = fn
}

// Tick runs one simulation step now. Run calls it on every timer fire;
// tests and tools may call it directly.
func (s *Scheduler) Tick() TickReport {
	s.mu.Lock()
	now := s.clk.Now()
	elapsed := now.Sub(s.last)
	if elapsed < 0 {
		elapsed = 0
	}
	s.last = now
	s.seq++

	clicks := int(s.pending.Swap(0))
	earned := s.eng.RegisterClicks(clicks)
	earned += s.eng.Accrue(elapsed.Seconds())

	report := TickReport{
		Seq:     s.seq,
		Clicks:  clicks,
		Elapsed: elapsed,
		Earned:  earned,
	}
	hook := s.onTick
	s.mu.Unlock()

	if hook != nil {
		hook(report)
	}
	return report
}

// Run ticks at the fixed interval until ctx is cancelled.
// Time spent before Run is not accrued.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.last = s.clk.Now()
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}
