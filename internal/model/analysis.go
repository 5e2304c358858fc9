package model

import (
	"context"
	"time"
)

// AnalysisResult is what the scorer yields for one resume / job description pair.
type AnalysisResult struct {
	MatchPercentage int      `json:"match_percentage"`
	Strengths       []string `json:"strengths"`    // keywords present in the resume
	Weaknesses      []string `json:"weaknesses"`   // keywords in the job description but not the resume
	Enhancements    []string `json:"enhancements"` // always four entries
	ResumeHits      int      `json:"resume_hits"`
	JobHits         int      `json:"job_hits"` // zero means the percentage carries no signal
}

// UpsellEvent records a visitor reaching the paywall.
type UpsellEvent struct {
	SessionID string
	Reason    string // "repeat_attempt" or "unlock"
	Analyses  int    // completed analyses in the session
	At        time.Time
}

// Upsell reasons.
const (
	ReasonRepeatAttempt = "repeat_attempt"
	ReasonUnlock        = "unlock"
)

// UsageLedger counts completed free analyses per session.
type UsageLedger interface {
	Attempts(sessionID string) (int, error)
	Record(sessionID string) error
	Cleanup(olderThan time.Duration) error
	IsEmpty() (bool, error)
}

// Notifier announces upsell events. Implementations stop retrying or waiting
// once ctx is done.
type Notifier interface {
	Notify(ctx context.Context, events []UpsellEvent) error
}
