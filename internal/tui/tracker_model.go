package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/models"
	"github.com/balkashynov/punch/internal/tracker"
)

const toastTTL = 4 * time.Second

// TrackerModel is the attendance widget: work/break timers, wall clock,
// actions and recent activity
type TrackerModel struct {
	width  int
	height int

	ctx    context.Context
	widget *tracker.Widget
	frame  tracker.Frame

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	// UI state
	pending bool // an action was sent and has not answered yet
	toast   string
	toastOK bool
	toastID int
}

// frameMsg carries a new snapshot from the widget
type frameMsg tracker.Frame

// framesClosedMsg is sent once the widget is unmounted
type framesClosedMsg struct{}

// actionDoneMsg reports the outcome of an attendance action
type actionDoneMsg struct {
	done string
	err  error
}

// refreshedMsg is sent after a manual refresh; frames carry the new state
type refreshedMsg struct{}

// clearToastMsg hides the toast it was scheduled for
type clearToastMsg struct{ id int }

// NewTrackerModel wraps a mounted widget
func NewTrackerModel(ctx context.Context, widget *tracker.Widget) TrackerModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))),
	)
	m := TrackerModel{
		ctx:     ctx,
		widget:  widget,
		frame:   widget.Snapshot(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
	m.syncKeys()
	return m
}

// Init starts listening for frames and the busy spinner
func (m TrackerModel) Init() tea.Cmd {
	return tea.Batch(
		waitForFrame(m.widget.Frames()),
		m.spinner.Tick,
	)
}

func waitForFrame(frames <-chan tracker.Frame) tea.Cmd {
	return func() tea.Msg {
		f, ok := <-frames
		if !ok {
			return framesClosedMsg{}
		}
		return frameMsg(f)
	}
}

// Update handles messages
func (m TrackerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = tracker.Frame(msg)
		m.syncKeys()
		return m, waitForFrame(m.widget.Frames())

	case framesClosedMsg, refreshedMsg:
		return m, nil

	case actionDoneMsg:
		m.pending = false
		if text, show := tracker.Notice(msg.err); show {
			return m.showToast(text, false)
		}
		if msg.err == nil && msg.done != "" {
			return m.showToast(msg.done, true)
		}
		return m, nil

	case clearToastMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m TrackerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.ClockIn):
		return m.dispatch("Clocked in", m.widget.ClockIn)

	case key.Matches(msg, m.keys.ClockOut):
		return m.dispatch("Clocked out", m.widget.ClockOut)

	case key.Matches(msg, m.keys.Break):
		if m.frame.CanEndBreak {
			return m.dispatch("Break ended", m.widget.EndBreak)
		}
		return m.dispatch("Break started", m.widget.StartBreak)

	case key.Matches(msg, m.keys.Refresh):
		widget, ctx := m.widget, m.ctx
		return m, func() tea.Msg {
			widget.Refresh(ctx)
			return refreshedMsg{}
		}
	}
	return m, nil
}

// dispatch runs an action off the UI loop. While one is pending further
// actions are ignored; the controller enforces the same.
func (m TrackerModel) dispatch(done string, fn func(context.Context) error) (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	m.pending = true
	m.syncKeys()
	ctx := m.ctx
	return m, func() tea.Msg {
		return actionDoneMsg{done: done, err: fn(ctx)}
	}
}

func (m TrackerModel) showToast(text string, ok bool) (tea.Model, tea.Cmd) {
	m.toast = text
	m.toastOK = ok
	m.toastID++
	m.syncKeys()
	id := m.toastID
	return m, tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return clearToastMsg{id: id}
	})
}

func (m *TrackerModel) syncKeys() {
	busy := m.pending || m.frame.Busy
	m.keys.sync(
		!busy && m.frame.CanClockIn,
		!busy && m.frame.CanClockOut,
		!busy && (m.frame.CanStartBreak || m.frame.CanEndBreak),
	)
}

// View renders the widget
func (m TrackerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := m.renderHelpBar()
	contentHeight := m.height - lipgloss.Height(helpBar) - 1

	// Narrow view: timer panel only
	if m.width < 90 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight),
			helpBar,
		)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2 // -2 for gap

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ", // Gap
		m.renderDetailsPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		helpBar,
	)
}

// renderTimerPanel renders the status banner, the big work clock and the
// break timer
func (m TrackerModel) renderTimerPanel(width, height int) string {
	var components []string

	center := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Align(lipgloss.Center).
			Width(width)
	}

	icon, color := stateBadge(m.frame.State)
	header := fmt.Sprintf("%s  %s", icon, strings.ToUpper(m.frame.State.String()))
	if m.pending || m.frame.Busy {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}
	components = append(components, center(color).Bold(true).Render(header))

	clockColor := ColorAccentBright
	if m.frame.State == tracker.StateBreak {
		clockColor = ColorDisabledText // frozen while on break
	}
	components = append(components, center(ColorPrimaryText).Render(bigClock(m.frame.Work.String(), clockColor)))

	switch m.frame.State {
	case tracker.StateBreak:
		components = append(components, center(ColorWarning).Bold(true).Render("Break "+m.frame.Break.String()))
	case tracker.StateNone:
		components = append(components, center(ColorSecondaryText).Italic(true).Render("Press i to clock in"))
	}

	if s := m.frame.Session; s != nil {
		components = append(components, center(ColorSecondaryText).Italic(true).Render("Clocked in at "+ClockTime(s.ClockIn)))
	}

	if m.toast != "" {
		toastColor := ColorError
		if m.toastOK {
			toastColor = ColorSuccess
		}
		components = append(components, center(toastColor).Bold(true).Render(m.toast))
	}

	content := strings.Join(components, "\n\n")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderDetailsPanel renders the wall clock, session details and recent
// activity
func (m TrackerModel) renderDetailsPanel(width, height int) string {
	var b strings.Builder
	inner := width - 8

	line := func(label, value, color string) {
		row := fmt.Sprintf("%s %s", label,
			lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(value))
		b.WriteString(lipgloss.NewStyle().Width(inner).Render(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	clockStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(inner).
		Padding(0, 1)
	b.WriteString(clockStyle.Render(m.frame.Now.Format(tracker.TimeLayout) + "\n" + m.frame.Now.Format(tracker.DateLayout)))
	b.WriteString("\n\n")

	if s := m.frame.Session; s != nil {
		location := "none"
		locationColor := ColorDisabledText
		if s.Location != nil && *s.Location != "" {
			location = *s.Location
			locationColor = ColorAccentBright
		}
		line("📍 Location:", location, locationColor)
		line("☕ Breaks:", fmt.Sprintf("%.0f min", s.TotalBreakMinutes), ColorSecondaryText)
		b.WriteString("\n")
	}

	separator := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBorder)).
		Render(strings.Repeat("─", min(inner, 40)))
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorPrimaryText)).Render("Recent activity"))
	b.WriteString("\n")
	b.WriteString(separator)
	b.WriteString("\n")

	if len(m.frame.History) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDisabledText)).Italic(true).Render("No recent activity"))
	}
	for _, r := range m.frame.History {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Render(FormatRecord(r)))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

// renderHelpBar renders the key help at the bottom
func (m TrackerModel) renderHelpBar() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Width(m.width).
		Align(lipgloss.Center).
		Render(m.help.View(m.keys))
}

func stateBadge(s tracker.State) (string, string) {
	switch s {
	case tracker.StateActive:
		return "●", ColorSuccess
	case tracker.StateBreak:
		return "☕", ColorWarning
	default:
		return "○", ColorSecondaryText
	}
}

// ClockTime formats an API timestamp as local HH:MM:SS, or "--:--:--"
func ClockTime(raw string) string {
	t, ok := models.ParseTimestamp(raw)
	if !ok {
		return tracker.ElapsedPlaceholder
	}
	return t.Local().Format(tracker.TimeLayout)
}

// FormatRecord renders one history row: day, in/out times, hours
func FormatRecord(r models.ActivityRecord) string {
	day := "??? ??"
	in := "--:--"
	if t, ok := models.ParseTimestamp(r.ClockIn); ok {
		t = t.Local()
		day = t.Format("Mon 02 Jan")
		in = t.Format("15:04")
	}
	out := "--:--"
	if r.ClockOut != nil {
		if t, ok := models.ParseTimestamp(*r.ClockOut); ok {
			out = t.Local().Format("15:04")
		}
	}
	hours := "-"
	if r.TotalHours != nil {
		hours = fmt.Sprintf("%.2fh", *r.TotalHours)
	}
	return fmt.Sprintf("%-10s  %s → %s  %6s  %s", day, in, out, hours, r.Status)
}
