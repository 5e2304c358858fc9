package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/pacing"
	"github.com/resumeai/enhancer/internal/scorer"
	"github.com/resumeai/enhancer/internal/wizard"
)

type recordingNotifier struct {
	events []model.UpsellEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, events []model.UpsellEvent) error {
	n.events = append(n.events, events...)
	return n.err
}

func testOptions(n model.Notifier) Options {
	return Options{
		FreeAnalyses: 1,
		ProgressStep: 10,
		Clock:        pacing.InstantClock{},
		Analyze:      scorer.Analyze,
		Presenter:    wizard.Presenter{RockstarThreshold: wizard.DefaultRockstarThreshold},
		Notifier:     n,
		SessionID:    "cli",
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

// analyzed submits the prefilled inputs and delivers the analysis result.
func analyzed(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, key("ctrl+s"))
	if m.state.Step != wizard.StepAnalyzing {
		t.Fatalf("Step = %s after submit, want analyzing (notice %q)", m.state.Step, m.state.Notice)
	}
	m, _ = update(t, m, m.analyzeCmd()())
	if m.state.Step != wizard.StepResultsPreview {
		t.Fatalf("Step = %s after result, want results_preview", m.state.Step)
	}
	return m
}

func TestSubmit_EmptyInputsShowNotice(t *testing.T) {
	m := NewModel(testOptions(nil), "")
	m, cmd := update(t, m, key("ctrl+s"))

	if m.state.Step != wizard.StepCollecting {
		t.Errorf("Step = %s, want collecting", m.state.Step)
	}
	if m.state.Notice != wizard.MissingInputMessage {
		t.Errorf("Notice = %q", m.state.Notice)
	}
	if cmd != nil {
		t.Error("no command expected for a rejected submission")
	}
	if !strings.Contains(m.View(), wizard.MissingInputMessage) {
		t.Error("notice not rendered")
	}
}

func TestFullFlow(t *testing.T) {
	n := &recordingNotifier{}
	m := NewModel(testOptions(n), "Python and AWS engineer")
	m.jobDesc.SetValue("Looking for Python, AWS and React")

	m = analyzed(t, m)
	if m.state.Result.MatchPercentage != 67 {
		t.Errorf("MatchPercentage = %d, want 67", m.state.Result.MatchPercentage)
	}
	if m.state.Progress != 100 {
		t.Errorf("Progress = %d, want 100", m.state.Progress)
	}
	view := m.View()
	for _, want := range []string{"Match Score: 67%", "Let's polish that resume!", "React", wizard.LockedWeaknesses} {
		if !strings.Contains(view, want) {
			t.Errorf("results view missing %q", want)
		}
	}

	m, _ = update(t, m, key("enter"))
	if m.state.Step != wizard.StepEnhancementsPreview {
		t.Fatalf("Step = %s, want enhancements_preview", m.state.Step)
	}
	if !strings.Contains(m.View(), "Say you're an expert in React") {
		t.Error("enhancement with first weakness not rendered")
	}

	m, cmd := update(t, m, key("u"))
	if !m.state.ShowUpgrade {
		t.Fatal("unlock should show the upsell")
	}
	m, _ = update(t, m, cmd())
	if len(n.events) != 1 || n.events[0].Reason != model.ReasonUnlock || n.events[0].SessionID != "cli" {
		t.Errorf("events = %+v", n.events)
	}
	if !strings.Contains(m.View(), "Unlock the Full Power of AI!") {
		t.Error("upsell not rendered")
	}

	m, _ = update(t, m, key("r"))
	if m.state.Step != wizard.StepCollecting || m.state.ShowUpgrade {
		t.Fatalf("start over: Step = %s ShowUpgrade = %v", m.state.Step, m.state.ShowUpgrade)
	}
	if !strings.Contains(m.View(), "Try Premium Analysis") {
		t.Error("submit hint should offer premium analysis")
	}

	m, cmd = update(t, m, key("ctrl+s"))
	if !m.state.ShowUpgrade || m.state.Step != wizard.StepCollecting {
		t.Fatalf("repeat attempt: Step = %s ShowUpgrade = %v", m.state.Step, m.state.ShowUpgrade)
	}
	if m.state.Analyses != 1 {
		t.Errorf("Analyses = %d, want 1", m.state.Analyses)
	}
	update(t, m, cmd())
	if len(n.events) != 2 || n.events[1].Reason != model.ReasonRepeatAttempt {
		t.Errorf("events = %+v", n.events)
	}
}

func TestProgressTicks(t *testing.T) {
	m := NewModel(testOptions(nil), "React")
	m.jobDesc.SetValue("React")
	m, _ = update(t, m, key("ctrl+s"))

	for i := 0; i < 20; i++ {
		m, _ = update(t, m, progressTickMsg{gen: m.gen})
	}
	if m.state.Progress != 90 {
		t.Errorf("Progress = %d, want capped at 90 while pending", m.state.Progress)
	}

	stale := m.state.Progress
	m, _ = update(t, m, progressTickMsg{gen: m.gen - 1})
	if m.state.Progress != stale {
		t.Error("stale tick must be ignored")
	}
}

func TestAnalysisErrorAborts(t *testing.T) {
	m := NewModel(testOptions(nil), "React")
	m.jobDesc.SetValue("React")
	m, _ = update(t, m, key("ctrl+s"))

	m, _ = update(t, m, analysisDoneMsg{gen: m.gen, err: errors.New("boom")})
	if m.state.Step != wizard.StepCollecting || m.state.Notice != wizard.InterruptedMessage {
		t.Errorf("Step = %s Notice = %q", m.state.Step, m.state.Notice)
	}
	if m.state.Analyses != 0 {
		t.Errorf("Analyses = %d, want 0", m.state.Analyses)
	}
}

func TestStaleResultIgnored(t *testing.T) {
	m := NewModel(testOptions(nil), "React")
	m.jobDesc.SetValue("React")
	m, _ = update(t, m, key("ctrl+s"))

	m, _ = update(t, m, analysisDoneMsg{gen: m.gen + 1, result: model.AnalysisResult{MatchPercentage: 5}})
	if m.state.Step != wizard.StepAnalyzing {
		t.Errorf("Step = %s, want analyzing", m.state.Step)
	}
}

func TestClearResume(t *testing.T) {
	m := NewModel(testOptions(nil), "React developer")
	m, _ = update(t, m, key("ctrl+u"))
	if m.resume.Value() != "" || m.state.Resume != "" {
		t.Errorf("resume = %q / %q, want empty", m.resume.Value(), m.state.Resume)
	}
}

func TestTabSwitchesFocus(t *testing.T) {
	m := NewModel(testOptions(nil), "")
	m, _ = update(t, m, key("tab"))
	if m.focus != focusJob || !m.jobDesc.Focused() || m.resume.Focused() {
		t.Fatal("tab should focus the job description")
	}
	m, _ = update(t, m, key("tab"))
	if m.focus != focusResume || !m.resume.Focused() {
		t.Fatal("tab should cycle back to the resume")
	}
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(testOptions(nil), "")
	_, cmd := update(t, m, key("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should produce tea.QuitMsg")
	}
}

func TestNotifyFailureShownInUpsell(t *testing.T) {
	n := &recordingNotifier{err: errors.New("webhook down")}
	m := NewModel(testOptions(n), "React")
	m.jobDesc.SetValue("React")
	m = analyzed(t, m)
	m, _ = update(t, m, key("enter"))
	m, cmd := update(t, m, key("u"))
	m, _ = update(t, m, cmd())

	if !strings.Contains(m.View(), "webhook down") {
		t.Error("notification failure should be visible")
	}
}

func TestAnalyzeCmd_StopsWhenProgramEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := testOptions(nil)
	opts.Clock = pacing.RealClock{}
	opts.Delay = time.Hour
	opts.Context = ctx
	m := NewModel(opts, "React")
	m.jobDesc.SetValue("React")

	m, cmd := update(t, m, key("ctrl+s"))
	if cmd == nil || m.state.Step != wizard.StepAnalyzing {
		t.Fatalf("submit: Step = %s", m.state.Step)
	}
	cancel()

	done := make(chan tea.Msg, 1)
	go func() { done <- m.analyzeCmd()() }()
	select {
	case msg := <-done:
		res, ok := msg.(analysisDoneMsg)
		if !ok || !errors.Is(res.err, context.Canceled) {
			t.Fatalf("msg = %#v, want cancelled analysis", msg)
		}
		m, _ = update(t, m, res)
		if m.state.Step != wizard.StepCollecting {
			t.Errorf("Step after cancelled analysis = %s, want collecting", m.state.Step)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("analysis delay ignored cancellation")
	}
}
