package store

import "time"

// NopLedger never remembers anything. Used when ledger.disabled is set, so the
// allowance is tracked by the session state alone.
type NopLedger struct{}

// NewNopLedger returns a NopLedger.
func NewNopLedger() *NopLedger {
	return &NopLedger{}
}

// Attempts always reports zero.
func (l *NopLedger) Attempts(_ string) (int, error) {
	return 0, nil
}

// Record discards the analysis.
func (l *NopLedger) Record(_ string) error {
	return nil
}

func (l *NopLedger) Cleanup(_ time.Duration) error {
	return nil
}

func (l *NopLedger) IsEmpty() (bool, error) {
	return true, nil
}
