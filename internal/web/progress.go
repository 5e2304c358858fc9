package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/resumeai/enhancer/internal/wizard"
)

// sseWriter writes Server-Sent Events.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &sseWriter{w: w, flusher: flusher}, nil
}

// writeEvent sends one named event with a JSON payload.
func (s *sseWriter) writeEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

type progressEvent struct {
	Progress int `json:"progress"`
}

type completeEvent struct {
	Step   string `json:"step"`
	Notice string `json:"notice,omitempty"`
}

// handleProgress streams the session's analysis progress. It sends a progress
// event whenever the bar moves and a single complete event once the session
// leaves the analyzing step.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sse, err := newSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := s.sessionID(r)
	updates, unsubscribe := s.hub.subscribe(id)
	defer unsubscribe()

	last := -1
	for {
		st, ok := s.sessions.Get(id)
		if !ok {
			st = wizard.New(s.opts.FreeAnalyses, s.opts.ProgressStep)
		}
		analyzing := st.Step == wizard.StepAnalyzing

		if st.Progress != last && (analyzing || st.Progress == 100) {
			if err := sse.writeEvent("progress", progressEvent{Progress: st.Progress}); err != nil {
				return
			}
			last = st.Progress
		}
		if !analyzing {
			sse.writeEvent("complete", completeEvent{Step: st.Step.String(), Notice: st.Notice})
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-s.jobs.Done():
			return
		case <-updates:
		}
	}
}

// hub fans session updates out to progress streams.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// subscribe returns a channel signalled after each update to the session.
// Signals coalesce; the subscriber re-reads the store on wake-up.
func (h *hub) subscribe(id string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[id] == nil {
		h.subs[id] = make(map[chan struct{}]struct{})
	}
	h.subs[id][ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[id], ch)
		if len(h.subs[id]) == 0 {
			delete(h.subs, id)
		}
	}
}

func (h *hub) publish(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[id] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
