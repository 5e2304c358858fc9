package ratelimit

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(minDelay time.Duration) (*ClientLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewClientLimiter(minDelay)
	l.now = clock.now
	return l, clock
}

func TestAllow_SameClient_EnforcesMinDelay(t *testing.T) {
	limiter, clock := newTestLimiter(2 * time.Second)

	if ok, _ := limiter.Allow("10.0.0.1"); !ok {
		t.Fatal("first submission should be allowed")
	}

	clock.advance(500 * time.Millisecond)
	ok, retryAfter := limiter.Allow("10.0.0.1")
	if ok {
		t.Fatal("second submission within min delay should be refused")
	}
	if retryAfter != 1500*time.Millisecond {
		t.Errorf("retryAfter = %v, want 1.5s", retryAfter)
	}

	clock.advance(1500 * time.Millisecond)
	if ok, _ := limiter.Allow("10.0.0.1"); !ok {
		t.Fatal("submission after min delay should be allowed")
	}
}

func TestAllow_RefusalDoesNotExtendWindow(t *testing.T) {
	limiter, clock := newTestLimiter(time.Second)

	limiter.Allow("a")
	clock.advance(900 * time.Millisecond)
	limiter.Allow("a") // refused
	clock.advance(100 * time.Millisecond)

	if ok, _ := limiter.Allow("a"); !ok {
		t.Fatal("refused attempts must not push the window forward")
	}
}

func TestAllow_DifferentClients_NoCrossBlocking(t *testing.T) {
	limiter, _ := newTestLimiter(time.Minute)

	if ok, _ := limiter.Allow("10.0.0.1"); !ok {
		t.Fatal("client 1 should be allowed")
	}
	if ok, _ := limiter.Allow("10.0.0.2"); !ok {
		t.Fatal("client 2 should not be blocked by client 1")
	}
}

func TestAllow_ZeroDelayAllowsEverything(t *testing.T) {
	limiter := NewClientLimiter(0)
	for i := 0; i < 5; i++ {
		if ok, _ := limiter.Allow("x"); !ok {
			t.Fatalf("submission %d refused with zero delay", i)
		}
	}
	if limiter.Len() != 0 {
		t.Errorf("zero-delay limiter should not track clients, got %d", limiter.Len())
	}
}

func TestPrune_RemovesExpiredClients(t *testing.T) {
	limiter, clock := newTestLimiter(time.Second)

	limiter.Allow("old")
	clock.advance(2 * time.Second)
	limiter.Allow("fresh")

	if removed := limiter.Prune(); removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}
	if limiter.Len() != 1 {
		t.Fatalf("Len = %d, want 1", limiter.Len())
	}
	if ok, _ := limiter.Allow("fresh"); ok {
		t.Error("fresh client should still be throttled after prune")
	}
}
