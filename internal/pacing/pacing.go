// Package pacing stages the scorer behind an artificial delay and drives the
// progress ticks shown while the visitor waits.
package pacing

import (
	"context"
	"fmt"
	"time"

	"github.com/resumeai/enhancer/internal/model"
)

// Clock hands out timer channels. Tests swap in InstantClock so nothing waits.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// RealClock is backed by the time package.
type RealClock struct{}

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// InstantClock fires every timer immediately.
type InstantClock struct{}

func (InstantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// Sleep blocks for d on clock or until ctx is done.
func Sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(d):
		return nil
	}
}

// AnalyzeFunc is the pure scoring step the runner delays.
type AnalyzeFunc func(resume, jobDescription string) model.AnalysisResult

// Runner delivers an analysis after a fixed delay and ticks progress meanwhile.
type Runner struct {
	analyze  AnalyzeFunc
	clock    Clock
	delay    time.Duration
	interval time.Duration
}

// NewRunner returns a runner that waits delay before scoring and calls the
// tick callback every interval in between. A zero interval disables ticks.
func NewRunner(analyze AnalyzeFunc, clock Clock, delay, interval time.Duration) *Runner {
	if clock == nil {
		clock = RealClock{}
	}
	return &Runner{
		analyze:  analyze,
		clock:    clock,
		delay:    delay,
		interval: interval,
	}
}

// MaxTicks is the most tick callbacks a single Run can make.
func (r *Runner) MaxTicks() int {
	if r.interval <= 0 {
		return 0
	}
	return int(r.delay / r.interval)
}

// Run blocks until the delayed result is ready or ctx is cancelled. onTick runs
// on the calling goroutine and is never called after Run returns.
func (r *Runner) Run(ctx context.Context, resume, jobDescription string, onTick func()) (model.AnalysisResult, error) {
	ready := r.clock.After(r.delay)
	if r.delay <= 0 {
		ready = InstantClock{}.After(0)
	}

	maxTicks := r.MaxTicks()
	var tick <-chan time.Time
	if maxTicks > 0 && onTick != nil {
		tick = r.clock.After(r.interval)
	}

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return model.AnalysisResult{}, fmt.Errorf("analysis cancelled: %w", ctx.Err())
		case <-ready:
			return r.analyze(resume, jobDescription), nil
		case <-tick:
			onTick()
			ticks++
			if ticks < maxTicks {
				tick = r.clock.After(r.interval)
			} else {
				tick = nil
			}
		}
	}
}
