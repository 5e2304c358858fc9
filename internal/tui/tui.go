// Package tui runs the analysis wizard in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/resumeai/enhancer/internal/model"
	"github.com/resumeai/enhancer/internal/pacing"
	"github.com/resumeai/enhancer/internal/wizard"
)

// Options configures the terminal wizard.
type Options struct {
	FreeAnalyses     int
	ProgressStep     int
	Delay            time.Duration
	ProgressInterval time.Duration
	Clock            pacing.Clock
	Analyze          pacing.AnalyzeFunc
	Presenter        wizard.Presenter
	Notifier         model.Notifier // optional
	SessionID        string

	// Context bounds pending delays and notifications. Run sets it to the
	// program's lifetime; nil means context.Background.
	Context context.Context
}

const (
	focusResume = iota
	focusJob
)

// progressTickMsg advances the bar of analysis gen.
type progressTickMsg struct{ gen int }

// analysisDoneMsg carries the delayed result of analysis gen.
type analysisDoneMsg struct {
	gen    int
	result model.AnalysisResult
	err    error
}

// notifiedMsg reports the outcome of an upsell notification.
type notifiedMsg struct{ err error }

// Model is the bubbletea model for the wizard.
type Model struct {
	opts  Options
	state wizard.State

	resume  textarea.Model
	jobDesc textarea.Model
	focus   int
	bar     progress.Model
	spin    spinner.Model

	// gen identifies the running analysis so stale ticks are ignored.
	gen       int
	notifyErr string
	width     int
}

// NewModel returns the wizard at its first step with resume prefilled.
func NewModel(opts Options, resume string) Model {
	if opts.Clock == nil {
		opts.Clock = pacing.RealClock{}
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	r := textarea.New()
	r.Placeholder = "Or paste your resume here..."
	r.ShowLineNumbers = false
	r.CharLimit = 0
	r.MaxHeight = 0
	r.SetValue(resume)
	r.Focus()

	j := textarea.New()
	j.Placeholder = "Paste job description here..."
	j.ShowLineNumbers = false
	j.CharLimit = 0
	j.MaxHeight = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		opts:    opts,
		state:   wizard.New(opts.FreeAnalyses, opts.ProgressStep),
		resume:  r,
		jobDesc: j,
		bar:     progress.New(progress.WithDefaultGradient()),
		spin:    sp,
	}
}

// State returns the wizard state.
func (m Model) State() wizard.State { return m.state }

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := max(msg.Width-6, 20)
		m.resume.SetWidth(w)
		m.jobDesc.SetWidth(w)
		m.bar.Width = w
		return m, nil

	case progressTickMsg:
		if msg.gen != m.gen || m.state.Step != wizard.StepAnalyzing {
			return m, nil
		}
		m.state = m.state.Tick()
		return m, m.tickCmd()

	case analysisDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.state = m.state.Abort()
			return m, nil
		}
		if next, err := m.state.Resolve(msg.result); err == nil {
			m.state = next
		}
		return m, nil

	case notifiedMsg:
		if msg.err != nil {
			m.notifyErr = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if m.state.Step != wizard.StepAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state.ShowUpgrade {
			return m.updateUpsell(msg)
		}
		switch m.state.Step {
		case wizard.StepCollecting:
			return m.updateCollecting(msg)
		case wizard.StepResultsPreview:
			return m.updateResults(msg)
		case wizard.StepEnhancementsPreview:
			return m.updateEnhancements(msg)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateCollecting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		if m.focus == focusResume {
			m.focus = focusJob
			m.resume.Blur()
			return m, m.jobDesc.Focus()
		}
		m.focus = focusResume
		m.jobDesc.Blur()
		return m, m.resume.Focus()
	case "ctrl+u":
		if next, err := m.state.ClearResume(); err == nil {
			m.state = next
			m.resume.Reset()
		}
		return m, nil
	case "ctrl+s":
		return m.submit()
	}

	var cmd tea.Cmd
	if m.focus == focusResume {
		m.resume, cmd = m.resume.Update(msg)
	} else {
		m.jobDesc, cmd = m.jobDesc.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	st, err := m.state.SetResume(m.resume.Value())
	if err == nil {
		st, err = st.SetJobDescription(m.jobDesc.Value())
	}
	if err == nil {
		st, err = st.Submit()
	}

	var verr *model.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return m, nil
	}
	wasGated := m.state.ShowUpgrade
	m.state = st
	if err != nil {
		return m, nil
	}

	if m.state.ShowUpgrade && !wasGated {
		return m, m.notifyCmd(model.ReasonRepeatAttempt)
	}
	if m.state.Step == wizard.StepAnalyzing {
		m.gen++
		return m, tea.Batch(m.analyzeCmd(), m.tickCmd(), m.spin.Tick)
	}
	return m, nil
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "m":
		if next, err := m.state.ShowEnhancements(); err == nil {
			m.state = next
		}
	case "r":
		return m.startOver()
	}
	return m, nil
}

func (m Model) updateEnhancements(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "enter", "u":
		next, err := m.state.Unlock()
		if err != nil {
			return m, nil
		}
		m.state = next
		return m, m.notifyCmd(model.ReasonUnlock)
	case "r":
		return m.startOver()
	}
	return m, nil
}

func (m Model) updateUpsell(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "r":
		return m.startOver()
	}
	return m, nil
}

func (m Model) startOver() (tea.Model, tea.Cmd) {
	next, err := m.state.StartOver()
	if err != nil {
		return m, nil
	}
	m.state = next
	m.focus = focusResume
	m.jobDesc.Blur()
	return m, m.resume.Focus()
}

// analyzeCmd waits out the delay on the configured clock, then scores.
func (m Model) analyzeCmd() tea.Cmd {
	gen := m.gen
	ctx, clock, delay, analyze := m.opts.Context, m.opts.Clock, m.opts.Delay, m.opts.Analyze
	resume, jobDescription := m.state.Resume, m.state.JobDescription
	return func() tea.Msg {
		if err := pacing.Sleep(ctx, clock, delay); err != nil {
			return analysisDoneMsg{gen: gen, err: err}
		}
		return analysisDoneMsg{gen: gen, result: analyze(resume, jobDescription)}
	}
}

func (m Model) tickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.opts.ProgressInterval, func(time.Time) tea.Msg {
		return progressTickMsg{gen: gen}
	})
}

func (m Model) notifyCmd(reason string) tea.Cmd {
	if m.opts.Notifier == nil {
		return nil
	}
	ctx, n := m.opts.Context, m.opts.Notifier
	event := model.UpsellEvent{
		SessionID: m.opts.SessionID,
		Reason:    reason,
		Analyses:  m.state.Analyses,
		At:        time.Now().UTC(),
	}
	return func() tea.Msg {
		return notifiedMsg{err: n.Notify(ctx, []model.UpsellEvent{event})}
	}
}

var stepTitles = []string{"Upload Resume", "AI Analysis", "Get Insights", "Enhance Resume"}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ResumeAI Enhancer · Supercharge Your Job Application"))
	b.WriteString("\n")

	if m.state.ShowUpgrade {
		b.WriteString(m.viewUpsell())
		b.WriteString(hintStyle.Render("r back to the wizard  q quit"))
		return b.String()
	}

	b.WriteString("  " + m.viewSteps() + "\n\n")

	switch m.state.Step {
	case wizard.StepCollecting:
		b.WriteString(m.viewCollecting())
		b.WriteString(hintStyle.Render("tab switch field  ctrl+s " + m.state.SubmitLabel() + "  ctrl+u paste resume  esc quit"))
	case wizard.StepAnalyzing:
		b.WriteString(fmt.Sprintf("  %s Our AI is analyzing your application...\n\n", m.spin.View()))
		b.WriteString("  " + m.bar.ViewAs(float64(m.state.Progress)/100) + "\n")
	case wizard.StepResultsPreview:
		b.WriteString(m.viewResults())
		b.WriteString(hintStyle.Render("enter show me the magic tricks  r start over  q quit"))
	case wizard.StepEnhancementsPreview:
		b.WriteString(m.viewEnhancements())
		b.WriteString(hintStyle.Render("enter unlock full AI power  r start over  q quit"))
	}
	return b.String()
}

func (m Model) viewSteps() string {
	parts := make([]string, len(stepTitles))
	for i, t := range stepTitles {
		if int(m.state.Step) > i {
			parts[i] = stepReachedStyle.Render(t)
		} else {
			parts[i] = stepPendingStyle.Render(t)
		}
	}
	return strings.Join(parts, stepPendingStyle.Render(" → "))
}

func (m Model) viewCollecting() string {
	var b strings.Builder
	if m.state.Notice != "" {
		b.WriteString("  " + noticeStyle.Render(m.state.Notice) + "\n")
	}
	resumeStyle, jobStyle := focusedPanelStyle, panelStyle
	if m.focus == focusJob {
		resumeStyle, jobStyle = panelStyle, focusedPanelStyle
	}
	b.WriteString(resumeStyle.Render(labelStyle.Render("Resume") + "\n" + m.resume.View()))
	b.WriteString("\n")
	b.WriteString(jobStyle.Render(labelStyle.Render("Job description") + "\n" + m.jobDesc.View()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewResults() string {
	if m.state.Result == nil {
		return ""
	}
	v := m.opts.Presenter.Preview(*m.state.Result)

	var b strings.Builder
	b.WriteString(labelStyle.Render("Analysis Results") + "\n\n")
	b.WriteString(scoreStyle.Render(fmt.Sprintf("Match Score: %d%%", v.MatchPercentage)) + "\n")
	b.WriteString(v.Verdict + "\n")
	if v.NoJobKeywords {
		b.WriteString(lockedStyle.Render("We couldn't spot any of the skills we look for in that job description.") + "\n")
	}
	b.WriteString("\n" + labelStyle.Render("Strengths:") + "\n")
	b.WriteString(renderItems(v.Strengths))
	b.WriteString("\n" + labelStyle.Render("Areas to Improve:") + "\n")
	b.WriteString(renderItems(v.Weaknesses))
	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m Model) viewEnhancements() string {
	if m.state.Result == nil {
		return ""
	}
	v := m.opts.Presenter.Preview(*m.state.Result)

	var b strings.Builder
	b.WriteString(labelStyle.Render("Resume Enhancement Suggestions") + "\n\n")
	b.WriteString(lockedStyle.Render("Caution: Use these at your own risk! 🚀") + "\n")
	b.WriteString(renderItems(v.Enhancements))
	b.WriteString("\nRemember, honesty is the best policy... most of the time. 😉")
	return panelStyle.Render(b.String()) + "\n"
}

func (m Model) viewUpsell() string {
	body := labelStyle.Render("Unlock the Full Power of AI!") + "\n\n" +
		"You've had a taste of our AI magic, but there's so much more waiting for you!\n" +
		"Upgrade now to access unlimited analyses, advanced insights, and our secret sauce for resume perfection.\n\n" +
		lockedStyle.Render("Upgrade to Royal Resume Status 👑") + "  see /pricing"
	if m.notifyErr != "" {
		body += "\n\n" + noticeStyle.Render("notification failed: "+m.notifyErr)
	}
	return upsellStyle.Render(body) + "\n"
}

func renderItems(items []wizard.Item) string {
	var b strings.Builder
	for _, it := range items {
		if it.Locked {
			b.WriteString("  " + lockedStyle.Render("🔒 "+it.Text) + "\n")
			continue
		}
		b.WriteString("  • " + it.Text + "\n")
	}
	return b.String()
}

// Run launches the wizard full-screen and returns its final state. Pending
// delays and notifications are cancelled when the program exits or ctx ends.
func Run(ctx context.Context, opts Options, resume string) (wizard.State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	opts.Context = ctx

	p := tea.NewProgram(NewModel(opts, resume), tea.WithAltScreen(), tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil {
		return wizard.State{}, err
	}
	return result.(Model).state, nil
}
