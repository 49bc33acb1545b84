// Package tui is the terminal front-end over a research session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/session"
)

const LoadingText = "Researching your query... Please wait a moment"

type Session interface {
	Snapshot() session.Snapshot
	Submit(ctx context.Context, req research.Request) (session.Snapshot, error)
	SubmitAnswers(ctx context.Context, answers []string) (session.Snapshot, error)
	Reset() (session.Snapshot, error)
}

type field int

const (
	fieldQuery field = iota
	fieldMode
	fieldBreadth
	fieldDepth
	fieldCount
)

type snapshotMsg struct {
	snap session.Snapshot
	err  error
}

type Model struct {
	ctx     context.Context
	session Session
	logger  *zap.Logger

	snap    session.Snapshot
	form    research.Form
	focus   field
	waiting bool
	notice  string

	answers []string
	current int

	query    textinput.Model
	answer   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	styles   styles
	width    int
}

func New(ctx context.Context, sess Session, mode research.Mode, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	st := defaultStyles()

	query := textinput.New()
	query.Placeholder = "What would you like to research?"
	query.Prompt = "│ "
	query.CharLimit = 2000
	query.Width = 72
	query.Focus()

	answer := textinput.New()
	answer.Placeholder = "Your answer (optional)"
	answer.Prompt = "│ "
	answer.CharLimit = 2000
	answer.Width = 72

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Spinner

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return Model{
		ctx:      ctx,
		session:  sess,
		logger:   logger.Named("tui"),
		snap:     sess.Snapshot(),
		form:     research.NewForm(mode),
		query:    query,
		answer:   answer,
		spinner:  sp,
		viewport: viewport.New(80, 20),
		renderer: renderer,
		styles:   st,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.query.Width = max(msg.Width-6, 1)
		m.answer.Width = max(msg.Width-6, 1)
		m.viewport.Width = max(msg.Width-2, 1)
		m.viewport.Height = max(msg.Height-6, 1)
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(msg.Width-4, 1)),
		)
		if m.snap.Phase == session.PhaseComplete {
			m.viewport.SetContent(m.renderResult())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		return m.applySnapshot(msg), nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.waiting {
			return m, nil
		}
		switch m.snap.Phase {
		case session.PhaseAwaitingFollowup:
			return m.updateFollowup(msg)
		case session.PhaseComplete:
			return m.updateComplete(msg)
		default:
			return m.updateQuery(msg)
		}
	}
	return m, nil
}

func (m Model) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		return m.setFocus((m.focus + 1) % fieldCount), nil
	case tea.KeyShiftTab, tea.KeyUp:
		return m.setFocus((m.focus + fieldCount - 1) % fieldCount), nil
	case tea.KeyEnter:
		m.form = m.form.WithQuery(m.query.Value())
		if strings.TrimSpace(m.form.Query) == "" {
			return m, nil
		}
		m.notice = ""
		return m.dispatch(m.submitCmd(m.form.Request()))
	case tea.KeyLeft, tea.KeyRight:
		if m.focus != fieldQuery {
			return m.adjust(msg.Type == tea.KeyRight), nil
		}
	}

	if m.focus != fieldQuery {
		return m, nil
	}
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m Model) setFocus(next field) Model {
	m.focus = next
	if next == fieldQuery {
		m.query.Focus()
	} else {
		m.query.Blur()
	}
	return m
}

// adjust moves the focused selector one step. Mode changes reset breadth and
// depth to the new mode's defaults.
func (m Model) adjust(up bool) Model {
	step := -1
	if up {
		step = 1
	}
	switch m.focus {
	case fieldMode:
		next := research.PrevMode(m.form.Mode)
		if up {
			next = research.NextMode(m.form.Mode)
		}
		m.form = m.form.WithMode(next)
	case fieldBreadth:
		m.form = m.form.WithBreadth(m.form.Breadth + step)
	case fieldDepth:
		m.form = m.form.WithDepth(m.form.Depth + step)
	}
	return m
}

func (m Model) updateFollowup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		return m.moveQuestion(m.current + 1), nil
	case tea.KeyShiftTab, tea.KeyUp:
		return m.moveQuestion(m.current - 1), nil
	case tea.KeyCtrlS:
		return m.submitAnswers()
	case tea.KeyEnter:
		if m.current < len(m.answers)-1 {
			return m.moveQuestion(m.current + 1), nil
		}
		return m.submitAnswers()
	}
	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	if m.current < len(m.answers) {
		m.answers[m.current] = m.answer.Value()
	}
	return m, cmd
}

func (m Model) moveQuestion(index int) Model {
	if index < 0 || index >= len(m.answers) {
		return m
	}
	m.answers[m.current] = m.answer.Value()
	m.current = index
	m.answer.SetValue(m.answers[index])
	m.answer.CursorEnd()
	return m
}

func (m Model) submitAnswers() (tea.Model, tea.Cmd) {
	if m.current < len(m.answers) {
		m.answers[m.current] = m.answer.Value()
	}
	if !research.AnyAnswered(m.answers) {
		m.notice = "Answer at least one question to continue."
		return m, nil
	}
	m.notice = ""
	answers := append([]string{}, m.answers...)
	return m.dispatch(func() tea.Msg {
		snap, err := m.session.SubmitAnswers(m.ctx, answers)
		return snapshotMsg{snap: snap, err: err}
	})
}

func (m Model) updateComplete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "n":
		snap, err := m.session.Reset()
		return m.applySnapshot(snapshotMsg{snap: snap, err: err}), nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) submitCmd(req research.Request) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.Submit(m.ctx, req)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) dispatch(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.waiting = true
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) applySnapshot(msg snapshotMsg) Model {
	m.waiting = false
	if msg.err != nil {
		m.logger.Warn("session rejected request", zap.Error(msg.err))
		m.notice = msg.err.Error()
		m.snap = m.session.Snapshot()
		return m
	}
	previous := m.snap.Phase
	m.snap = msg.snap

	switch m.snap.Phase {
	case session.PhaseAwaitingFollowup:
		if previous != session.PhaseAwaitingFollowup {
			m.answers = make([]string, len(m.snap.Questions))
			m.current = 0
			m.answer.SetValue("")
		}
		m.query.Blur()
		m.answer.Focus()
	case session.PhaseComplete:
		m.answer.Blur()
		m.viewport.SetContent(m.renderResult())
		m.viewport.GotoTop()
	default:
		if previous == session.PhaseComplete {
			m.form = research.NewForm(m.form.Mode)
			m.query.SetValue("")
		}
		m.answers = nil
		m.current = 0
		m = m.setFocus(fieldQuery)
	}
	return m
}

func (m Model) renderResult() string {
	text := m.snap.Display
	if m.renderer == nil {
		return text
	}
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return rendered
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Mini Researcher"))
	b.WriteString("\n")

	if m.waiting {
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), LoadingText)
		return b.String()
	}

	switch m.snap.Phase {
	case session.PhaseAwaitingFollowup:
		m.viewFollowup(&b)
	case session.PhaseComplete:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Footer.Render("n new research • ↑/↓ scroll • q quit"))
	default:
		m.viewQuery(&b)
	}
	return b.String()
}

func (m Model) viewQuery(b *strings.Builder) {
	b.WriteString(m.label(fieldQuery, "Query"))
	b.WriteString("\n")
	b.WriteString(m.query.View())
	b.WriteString("\n\n")

	info := research.Info(m.form.Mode)
	params := m.form.Params()
	fmt.Fprintf(b, "%s ◀ %s ▶  %s\n", m.label(fieldMode, "Mode"), info.Label, m.styles.Muted.Render(info.Description))
	for _, detail := range info.Details {
		b.WriteString(m.styles.Muted.Render("           • " + detail))
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s %s %d (%d-%d)\n", m.label(fieldBreadth, "Breadth"), slider(m.form.Breadth, params.MaxBreadth), m.form.Breadth, research.MinValue, params.MaxBreadth)
	fmt.Fprintf(b, "%s %s %d (%d-%d)\n", m.label(fieldDepth, "Depth"), slider(m.form.Depth, params.MaxDepth), m.form.Depth, research.MinValue, params.MaxDepth)

	m.viewNotices(b)
	b.WriteString(m.styles.Footer.Render("enter submit • tab next field • ←/→ adjust • esc quit"))
}

func (m Model) viewFollowup(b *strings.Builder) {
	total := len(m.snap.Questions)
	fmt.Fprintf(b, "A few follow-up questions (%d/%d)\n\n", m.current+1, total)
	for i, question := range m.snap.Questions {
		if i == m.current {
			b.WriteString(m.styles.Question.Render(fmt.Sprintf("%d. %s", i+1, question)))
			b.WriteString("\n")
			b.WriteString(m.answer.View())
			b.WriteString("\n")
			continue
		}
		answer := ""
		if i < len(m.answers) {
			answer = strings.TrimSpace(m.answers[i])
		}
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d. %s", i+1, question)))
		if answer != "" {
			b.WriteString(m.styles.Muted.Render(" → " + answer))
		}
		b.WriteString("\n")
	}

	m.viewNotices(b)
	b.WriteString(m.styles.Footer.Render("enter next/submit • tab/shift+tab move • ctrl+s submit • esc quit"))
}

func (m Model) viewNotices(b *strings.Builder) {
	if m.snap.Outcome.Failed() {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.snap.Display))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.notice))
		b.WriteString("\n")
	}
}

func (m Model) label(f field, text string) string {
	if m.focus == f && m.snap.Phase == session.PhaseAwaitingQuery {
		return m.styles.Focused.Render(fmt.Sprintf("%-9s", text+":"))
	}
	return m.styles.Label.Render(text + ":")
}

func slider(value, limit int) string {
	if limit < research.MinValue {
		return ""
	}
	filled := min(max(value, 0), limit)
	return "[" + strings.Repeat("■", filled) + strings.Repeat("□", limit-filled) + "]"
}
