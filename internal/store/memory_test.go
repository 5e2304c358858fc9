package store

import (
	"testing"
	"time"

	"github.com/resumeai/enhancer/internal/wizard"
)

func TestMemoryLedger(t *testing.T) {
	l := NewMemoryLedger()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	if empty, _ := l.IsEmpty(); !empty {
		t.Error("expected new ledger to be empty")
	}
	if err := l.Record("old"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	clock = clock.Add(2 * time.Hour)
	if err := l.Record("fresh"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := l.Cleanup(time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if n, _ := l.Attempts("old"); n != 0 {
		t.Errorf("old Attempts = %d, want 0", n)
	}
	if n, _ := l.Attempts("fresh"); n != 1 {
		t.Errorf("fresh Attempts = %d, want 1", n)
	}
}

func TestNopLedger(t *testing.T) {
	l := NewNopLedger()
	if err := l.Record("s"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if n, _ := l.Attempts("s"); n != 0 {
		t.Errorf("Attempts = %d, want 0", n)
	}
}

func TestSessionStore_PutGetUpdate(t *testing.T) {
	s := NewSessionStore()
	if _, ok := s.Get("missing"); ok {
		t.Error("expected missing session")
	}

	s.Put("a", wizard.New(1, 10))
	got, ok := s.Update("a", func(st wizard.State) wizard.State {
		st.Resume = "resume"
		return st
	})
	if !ok || got.Resume != "resume" {
		t.Fatalf("Update = %+v, %v", got, ok)
	}
	stored, ok := s.Get("a")
	if !ok || stored.Resume != "resume" {
		t.Errorf("Get after Update = %+v, %v", stored, ok)
	}

	if _, ok := s.Update("missing", func(st wizard.State) wizard.State { return st }); ok {
		t.Error("Update of missing session reported ok")
	}

	s.Delete("a")
	if s.Len() != 0 {
		t.Errorf("Len after Delete = %d", s.Len())
	}
}

func TestSessionStore_CleanupKeepsActiveAnalyses(t *testing.T) {
	s := NewSessionStore()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	idle := wizard.New(1, 10)
	analyzing := wizard.New(1, 10)
	analyzing.Step = wizard.StepAnalyzing
	s.Put("idle", idle)
	s.Put("analyzing", analyzing)

	clock = clock.Add(2 * time.Hour)
	s.Put("recent", idle)

	if removed := s.Cleanup(time.Hour); removed != 1 {
		t.Errorf("Cleanup removed %d, want 1", removed)
	}
	if _, ok := s.Get("idle"); ok {
		t.Error("expected idle session to be dropped")
	}
	if _, ok := s.Get("analyzing"); !ok {
		t.Error("expected analyzing session to survive")
	}
	if _, ok := s.Get("recent"); !ok {
		t.Error("expected recent session to survive")
	}
}
