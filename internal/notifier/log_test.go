package notifier

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/resumeai/enhancer/internal/model"
)

func TestLogNotifier_Notify_zeroEvents(t *testing.T) {
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err := n.Notify(context.Background(), nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify(context.Background(), []model.UpsellEvent{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
}

func TestLogNotifier_Notify_logsEachEvent(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	events := []model.UpsellEvent{
		{SessionID: "s1", Reason: model.ReasonUnlock, Analyses: 1, At: time.Now()},
		{SessionID: "s2", Reason: model.ReasonRepeatAttempt, Analyses: 1, At: time.Now()},
	}
	if err := n.Notify(context.Background(), events); err != nil {
		t.Fatalf("Notify = %v, want nil", err)
	}
	out := buf.String()
	if strings.Count(out, "upsell shown") != 2 {
		t.Errorf("expected two log lines, got:\n%s", out)
	}
	if !strings.Contains(out, "reason=repeat_attempt") || !strings.Contains(out, "session=s1") {
		t.Errorf("missing fields in log output:\n%s", out)
	}
}
