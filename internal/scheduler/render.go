/*
Package scheduler
File: render.go
Description:
    Display-rate loop. Frames read engine state and never tick the simulation.
    Stop is sticky: once called, Run returns nil without drawing another frame.
*/

package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Illuminati-Cow/cmpm-121-f25-d1/internal/clock"
)

// FrameInfo is handed to the frame callback on every display refresh.
type FrameInfo struct {
	Seq   uint64
	Delta time.Duration // Time since the previous frame, for presentation effects only
}

// RenderLoop calls a frame callback at a display rate. It never advances the
// simulation: frames only read engine state. Its ticker is separate from the
// Scheduler's so display rate and simulation rate cannot affect each other.
type RenderLoop struct {
	clk      clock.Clock
	interval time.Duration
	frame    func(FrameInfo)
	running  atomic.Bool
	stopped  atomic.Bool
}

// NewRenderLoop creates a loop calling frame fps times per second (60 if fps <= 0).
func NewRenderLoop(fps int, clk clock.Clock, frame func(FrameInfo)) *RenderLoop {
	if fps <= 0 {
		fps = 60
	}
	return &RenderLoop{
		clk:      clk,
		interval: time.Second / time.Duration(fps),
		frame:    frame,
	}
}

// Interval is the nominal time between frames.
func (r *RenderLoop) Interval() time.Duration {
	return r.interval
}

// Running reports whether the loop is currently producing frames.
func (r *RenderLoop) Running() bool {
	return r.running.Load()
}

// Stop asks the loop to return before its next frame. A loop stopped before
// Run starts never draws; a stopped loop cannot be restarted.
func (r *RenderLoop) Stop() {
	r.stopped.Store(true)
	r.running.Store(false)
}

// Run produces frames until ctx is cancelled or Stop is called.
// It returns nil after Stop and ctx.Err() after cancellation.
func (r *RenderLoop) Run(ctx context.Context) error {
	if r.stopped.Load() {
		return nil
	}
	r.running.Store(true)
	defer r.running.Store(false)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	last := r.clk.Now()
	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if r.stopped.Load() {
				return nil
			}
			now := r.clk.Now()
			seq++
			r.frame(FrameInfo{Seq: seq, Delta: now.Sub(last)})
			last = now
		}
	}
}
