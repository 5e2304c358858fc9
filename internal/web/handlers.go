package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/wizard"
)

// maxUploadBytes bounds the multipart form, resume file included.
const maxUploadBytes = 1 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, st := s.session(w, r)
	s.renderIndex(w, http.StatusOK, st)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, _ := s.session(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "Could not read the submitted form.", http.StatusBadRequest)
		return
	}
	resume := s.resumeFromForm(r)
	jobDescription := r.FormValue("job_description")

	prev, next, err := s.transition(id, func(cur wizard.State) (wizard.State, error) {
		// The gate answers before the inputs matter, e.g. a resubmit of the
		// first step from the browser history.
		if cur.ShowUpgrade || cur.AllowanceUsed() {
			return cur.Submit()
		}
		st, err := cur.SetResume(resume)
		if err != nil {
			return cur, err
		}
		if st, err = st.SetJobDescription(jobDescription); err != nil {
			return cur, err
		}
		return st.Submit()
	})
	if err != nil {
		s.fail(w, next, err)
		return
	}

	switch {
	case next.Step == wizard.StepAnalyzing:
		s.startAnalysis(id, next)
	case next.ShowUpgrade && !prev.ShowUpgrade:
		s.announce(id, model.ReasonRepeatAttempt, next)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// resumeFromForm prefers an uploaded resume file over the text field. The
// file is taken as plain text; a read failure leaves the text field's value.
func (s *Server) resumeFromForm(r *http.Request) string {
	resume := r.FormValue("resume")

	file, _, err := r.FormFile("resume_file")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			s.logger.Debug("opening resume file", "error", err)
		}
		return resume
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.Debug("reading resume file", "error", err)
		return resume
	}
	return string(data)
}

func (s *Server) handleClearResume(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, wizard.State.ClearResume, "")
}

func (s *Server) handleEnhancements(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, wizard.State.ShowEnhancements, "")
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, wizard.State.Unlock, model.ReasonUnlock)
}

func (s *Server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	s.step(w, r, wizard.State.StartOver, "")
}

// step runs a single wizard transition and redirects back to the wizard.
// A non-empty reason announces the upsell the transition revealed.
func (s *Server) step(w http.ResponseWriter, r *http.Request, fn func(wizard.State) (wizard.State, error), reason string) {
	id, _ := s.session(w, r)
	_, next, err := s.transition(id, fn)
	if err != nil {
		s.fail(w, next, err)
		return
	}
	if reason != "" {
		s.announce(id, reason, next)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// startAnalysis runs the delayed scorer for a session that just entered the
// analyzing step. Progress ticks and the result are written back to the
// session store and published to progress streams.
func (s *Server) startAnalysis(id string, st wizard.State) {
	started := s.background(func(ctx context.Context) {
		result, err := s.runner.Run(ctx, st.Resume, st.JobDescription, func() {
			s.sessions.Update(id, wizard.State.Tick)
			s.hub.publish(id)
		})
		if err != nil {
			s.logger.Warn("analysis interrupted", "session", id, "error", err)
			s.sessions.Update(id, wizard.State.Abort)
			s.hub.publish(id)
			return
		}

		var resolveErr error
		s.sessions.Update(id, func(cur wizard.State) wizard.State {
			next, err := cur.Resolve(result)
			resolveErr = err
			return next
		})
		if resolveErr != nil {
			s.logger.Warn("discarding analysis result", "session", id, "error", resolveErr)
		} else if err := s.ledger.Record(id); err != nil {
			s.logger.Error("recording analysis in ledger", "session", id, "error", err)
		}
		s.logger.Info("analysis complete",
			"session", id,
			"match_percentage", result.MatchPercentage,
			"strengths", len(result.Strengths),
			"weaknesses", len(result.Weaknesses),
		)
		s.hub.publish(id)
	})
	if !started {
		s.sessions.Update(id, wizard.State.Abort)
	}
}

// announce sends an upsell event in the background.
func (s *Server) announce(id, reason string, st wizard.State) {
	event := model.UpsellEvent{
		SessionID: id,
		Reason:    reason,
		Analyses:  st.Analyses,
		At:        time.Now().UTC(),
	}
	s.background(func(ctx context.Context) {
		if err := s.notifier.Notify(ctx, []model.UpsellEvent{event}); err != nil {
			s.logger.Error("sending upsell notification", "session", id, "reason", reason, "error", err)
		}
	})
}

// background runs fn on its own goroutine unless the server is closing.
func (s *Server) background(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.jobs)
	}()
	return true
}
