package store

import (
	"sync"
	"time"

	"github.com/resumeai/enhancer/internal/model"
)

var _ model.UsageLedger = (*MemoryLedger)(nil)

// MemoryLedger is the default in-process ledger.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string][]time.Time), now: time.Now}
}

func (l *MemoryLedger) Attempts(sessionID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[sessionID]), nil
}

func (l *MemoryLedger) Record(sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[sessionID] = append(l.entries[sessionID], l.now())
	return nil
}

func (l *MemoryLedger) Cleanup(olderThan time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-olderThan)
	for id, times := range l.entries {
		kept := times[:0]
		for _, t := range times {
			if !t.Before(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.entries, id)
		} else {
			l.entries[id] = kept
		}
	}
	return nil
}

func (l *MemoryLedger) IsEmpty() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries) == 0, nil
}
