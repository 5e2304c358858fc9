package pacing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resumeai/enhancer/internal/model"
)

func fakeAnalyze(resume, job string) model.AnalysisResult {
	return model.AnalysisResult{MatchPercentage: 42, Strengths: []string{resume}, Weaknesses: []string{job}}
}

func TestRunner_InstantClockDeliversResult(t *testing.T) {
	r := NewRunner(fakeAnalyze, InstantClock{}, 3*time.Second, 300*time.Millisecond)

	ticks := 0
	got, err := r.Run(context.Background(), "resume", "job", func() { ticks++ })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.MatchPercentage != 42 || got.Strengths[0] != "resume" || got.Weaknesses[0] != "job" {
		t.Errorf("unexpected result: %+v", got)
	}
	if ticks > r.MaxTicks() {
		t.Errorf("ticks = %d, want at most %d", ticks, r.MaxTicks())
	}
}

func TestRunner_RealClockTicksBeforeResult(t *testing.T) {
	r := NewRunner(fakeAnalyze, RealClock{}, 100*time.Millisecond, 20*time.Millisecond)

	ticks := 0
	start := time.Now()
	if _, err := r.Run(context.Background(), "a", "b", func() { ticks++ }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms delay, got %v", elapsed)
	}
	if ticks == 0 || ticks > 5 {
		t.Errorf("ticks = %d, want between 1 and 5", ticks)
	}
}

func TestRunner_ContextCancellation(t *testing.T) {
	r := NewRunner(fakeAnalyze, RealClock{}, 5*time.Second, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, "a", "b", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRunner_ZeroDelay(t *testing.T) {
	r := NewRunner(fakeAnalyze, RealClock{}, 0, 0)
	if r.MaxTicks() != 0 {
		t.Errorf("MaxTicks = %d, want 0", r.MaxTicks())
	}
	if _, err := r.Run(context.Background(), "a", "b", func() { t.Error("unexpected tick") }); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestSleep(t *testing.T) {
	if err := Sleep(context.Background(), InstantClock{}, time.Hour); err != nil {
		t.Errorf("Sleep with instant clock: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, RealClock{}, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep on cancelled ctx = %v, want context.Canceled", err)
	}
}
