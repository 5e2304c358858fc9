// Package wizard models the four-step analysis wizard and its free-usage gate
// as a plain value. Every transition returns the next State; nothing is
// mutated in place, so front-ends can keep a State per session and tests can
// walk the flow without rendering anything.
package wizard

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/resumeai/enhancer/internal/model"
)

// Step is the wizard position.
type Step int

const (
	StepCollecting Step = iota + 1
	StepAnalyzing
	StepResultsPreview
	StepEnhancementsPreview
)

func (s Step) String() string {
	switch s {
	case StepCollecting:
		return "collecting"
	case StepAnalyzing:
		return "analyzing"
	case StepResultsPreview:
		return "results_preview"
	case StepEnhancementsPreview:
		return "enhancements_preview"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Default pacing and allowance values.
const (
	DefaultFreeAnalyses = 1
	DefaultProgressStep = 10
)

// MissingInputMessage is the notice shown when either input is empty.
const MissingInputMessage = "Please upload or paste your resume and job description before proceeding."

// InterruptedMessage is the notice shown when an analysis never completed.
const InterruptedMessage = "The analysis was interrupted. Please try again."

// State is one visitor's wizard session.
type State struct {
	Step           Step
	Resume         string
	JobDescription string
	Result         *model.AnalysisResult
	Analyses       int  // completed analyses
	FreeAnalyses   int  // allowance before the upsell gate closes
	ShowUpgrade    bool // upsell panel replaces the wizard view
	Progress       int  // 0..100
	ProgressStep   int
	Notice         string // last validation notice, cleared on the next valid action
}

// New returns a fresh session at the collecting step.
func New(freeAnalyses, progressStep int) State {
	if freeAnalyses < 1 {
		freeAnalyses = DefaultFreeAnalyses
	}
	if progressStep < 1 || progressStep >= 100 {
		progressStep = DefaultProgressStep
	}
	return State{
		Step:         StepCollecting,
		FreeAnalyses: freeAnalyses,
		ProgressStep: progressStep,
	}
}

// WithAnalyses seeds the completed-analysis count, e.g. from a usage ledger.
func (s State) WithAnalyses(n int) State {
	if n > s.Analyses {
		s.Analyses = n
	}
	return s
}

// AllowanceUsed reports whether the next submission hits the upsell gate.
func (s State) AllowanceUsed() bool {
	return s.Analyses >= s.FreeAnalyses
}

// SubmitLabel is the text of the analyze button.
func (s State) SubmitLabel() string {
	if s.AllowanceUsed() {
		return "Try Premium Analysis"
	}
	return "Analyze My Application"
}

// SetResume replaces the resume text.
func (s State) SetResume(text string) (State, error) {
	if err := s.require(StepCollecting); err != nil {
		return s, err
	}
	s.Resume = text
	return s, nil
}

// SetJobDescription replaces the job description text.
func (s State) SetJobDescription(text string) (State, error) {
	if err := s.require(StepCollecting); err != nil {
		return s, err
	}
	s.JobDescription = text
	return s, nil
}

// ClearResume empties the resume so it can be pasted again.
func (s State) ClearResume() (State, error) {
	return s.SetResume("")
}

type submission struct {
	Resume         string `validate:"required"`
	JobDescription string `validate:"required"`
}

var validate = validator.New()

// Submit asks for an analysis. Once the allowance is used the upsell panel is
// shown instead, whatever the inputs and from any step but StepAnalyzing.
// Otherwise empty inputs yield a *model.ValidationError and no step change,
// and valid inputs move the wizard to StepAnalyzing; the caller is expected to
// start the scorer.
func (s State) Submit() (State, error) {
	if s.AllowanceUsed() && s.Step != StepAnalyzing {
		s.ShowUpgrade = true
		s.Notice = ""
		return s, nil
	}
	if err := s.require(StepCollecting); err != nil {
		return s, err
	}
	if err := validateSubmission(s.Resume, s.JobDescription); err != nil {
		s.Notice = MissingInputMessage
		return s, err
	}
	s.Notice = ""
	s.Step = StepAnalyzing
	s.Progress = 0
	return s, nil
}

func validateSubmission(resume, jobDescription string) error {
	err := validate.Struct(submission{Resume: resume, JobDescription: jobDescription})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := "resume"
		if verrs[0].Field() == "JobDescription" {
			field = "job_description"
		}
		return &model.ValidationError{Field: field, Message: MissingInputMessage}
	}
	return fmt.Errorf("validating submission: %w", err)
}

// Tick advances the progress bar one step. Progress stops one step short of
// 100 until Resolve delivers the result.
func (s State) Tick() State {
	if s.Step != StepAnalyzing {
		return s
	}
	ceiling := max(100-s.ProgressStep, 0)
	s.Progress = min(s.Progress+s.ProgressStep, ceiling)
	return s
}

// Resolve stores the analysis result, counts it against the allowance and
// moves to the results preview.
func (s State) Resolve(result model.AnalysisResult) (State, error) {
	if err := s.require(StepAnalyzing); err != nil {
		return s, err
	}
	s.Result = &result
	s.Analyses++
	s.Progress = 100
	s.Step = StepResultsPreview
	return s, nil
}

// Abort returns an unfinished analysis to the collecting step without using
// the allowance.
func (s State) Abort() State {
	if s.Step != StepAnalyzing {
		return s
	}
	s.Step = StepCollecting
	s.Progress = 0
	s.Notice = InterruptedMessage
	return s
}

// ShowEnhancements moves from the results preview to the enhancements preview.
func (s State) ShowEnhancements() (State, error) {
	if err := s.require(StepResultsPreview); err != nil {
		return s, err
	}
	s.Step = StepEnhancementsPreview
	return s, nil
}

// Unlock is the "unlock full power" action: it shows the upsell panel.
func (s State) Unlock() (State, error) {
	if err := s.require(StepEnhancementsPreview); err != nil {
		return s, err
	}
	s.ShowUpgrade = true
	return s, nil
}

// StartOver goes back to the collecting step, keeping the inputs and the
// analysis count so the next Submit meets the gate.
func (s State) StartOver() (State, error) {
	if s.Step == StepAnalyzing {
		return s, fmt.Errorf("start over from %s: %w", s.Step, model.ErrInvalidTransition)
	}
	if s.Step == StepCollecting && !s.ShowUpgrade {
		return s, fmt.Errorf("start over from %s: %w", s.Step, model.ErrInvalidTransition)
	}
	s.Step = StepCollecting
	s.ShowUpgrade = false
	s.Progress = 0
	s.Notice = ""
	return s, nil
}

func (s State) require(step Step) error {
	if s.ShowUpgrade {
		return fmt.Errorf("%s action while upsell is shown: %w", step, model.ErrInvalidTransition)
	}
	if s.Step != step {
		return fmt.Errorf("expected step %s, at %s: %w", step, s.Step, model.ErrInvalidTransition)
	}
	return nil
}
