package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/wizard"
)

var errSessionExpired = errors.New("session expired")

// sessionID returns the id carried by the session cookie, or "" when the
// cookie is missing or malformed.
func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(s.opts.CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

// session loads the visitor's wizard state, issuing a cookie and a fresh
// state when needed. A fresh state for a known cookie is seeded from the
// ledger so an expired session cannot reset the free allowance.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, wizard.State) {
	id := s.sessionID(r)
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     s.opts.CookieName,
			Value:    id,
			Path:     "/",
			MaxAge:   int(s.opts.CookieMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   s.opts.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if st, ok := s.sessions.Get(id); ok {
		return id, st
	}

	st := wizard.New(s.opts.FreeAnalyses, s.opts.ProgressStep)
	used, err := s.ledger.Attempts(id)
	if err != nil {
		s.logger.Warn("reading usage ledger", "session", id, "error", err)
	} else {
		st = st.WithAnalyses(used)
	}
	s.sessions.Put(id, st)
	return id, st
}

// transition applies fn to the stored session atomically and returns the state
// before and after. fn's error is returned alongside the state it produced.
func (s *Server) transition(id string, fn func(wizard.State) (wizard.State, error)) (prev, next wizard.State, err error) {
	_, ok := s.sessions.Update(id, func(cur wizard.State) wizard.State {
		prev = cur
		next, err = fn(cur)
		return next
	})
	if !ok {
		return prev, next, fmt.Errorf("session %s: %w", id, errSessionExpired)
	}
	return prev, next, err
}

// fail maps a transition error to a response.
func (s *Server) fail(w http.ResponseWriter, st wizard.State, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		s.renderIndex(w, http.StatusUnprocessableEntity, st)
	case errors.Is(err, model.ErrInvalidTransition), errors.Is(err, errSessionExpired):
		s.logger.Debug("rejected wizard action", "error", err)
		http.Error(w, "That action is not available right now. Please reload the page.", http.StatusConflict)
	default:
		s.logger.Error("wizard action failed", "error", err)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
	}
}
