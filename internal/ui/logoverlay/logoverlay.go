// Package logoverlay shows recent log entries above the editor without
// leaving the TUI.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/smartmd/internal/classify"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/theme"
	"github.com/zjrosen/smartmd/internal/ui/overlay"
)

const (
	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40

	// MaxEntries bounds the number of entries kept in memory.
	MaxEntries = 1000
)

// CloseMsg is sent when the overlay closes itself.
type CloseMsg struct{}

// Model is the log overlay state. Entries arrive as log events and are kept
// even while the overlay is hidden.
type Model struct {
	theme    *theme.Context
	visible  bool
	minLevel log.Level
	entries  []string
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay showing debug entries and above.
func New(th *theme.Context) Model {
	return Model{theme: th, minLevel: log.LevelDebug}
}

// Append records entry, dropping the oldest when full.
func (m *Model) Append(entry string) {
	m.entries = append(m.entries, strings.TrimSuffix(entry, "\n"))
	if over := len(m.entries) - MaxEntries; over > 0 {
		m.entries = append(m.entries[:0], m.entries[over:]...)
	}
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Entries returns the recorded entries matching the level filter.
func (m Model) Entries() []string {
	var out []string
	for _, e := range m.entries {
		if matchesLevel(e, m.minLevel) {
			out = append(out, e)
		}
	}
	return out
}

// Update handles keys while visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			m.entries = nil
			m.refreshViewport()
		case "d":
			m.setLevel(log.LevelDebug)
		case "i":
			m.setLevel(log.LevelInfo)
		case "w":
			m.setLevel(log.LevelWarn)
		case "e":
			m.setLevel(log.LevelError)
		case "j", "down":
			m.viewport.ScrollDown(1)
		case "k", "up":
			m.viewport.ScrollUp(1)
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		case "f2", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, nil
}

func (m *Model) setLevel(level log.Level) {
	m.minLevel = level
	m.refreshViewport()
}

// View renders the bordered log box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	styles := m.theme.Styles()
	boxWidth := m.boxWidth()

	title := styles.Text.Bold(true).PaddingLeft(1).Render("Logs")
	divider := styles.Muted.Render(strings.Repeat("─", boxWidth))

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(m.filterHint())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Color(theme.TokenTabBorder))).
		Width(boxWidth).
		Render(b.String())
}

// Overlay renders the box centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible reports whether the overlay is shown.
func (m Model) Visible() bool { return m.visible }

// Toggle flips visibility.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Hide closes the overlay.
func (m *Model) Hide() { m.visible = false }

// SetSize records the screen size.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	contentWidth := m.boxWidth() - 2

	// header, footer and borders take six rows
	height := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)

	m.viewport = viewport.New(contentWidth, height)
	m.viewport.SetContent(m.content(contentWidth))
}

func (m Model) content(width int) string {
	entries := m.Entries()
	if len(entries) == 0 {
		return m.theme.Styles().Muted.Italic(true).Render("No logs to display")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.colorize(e, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) colorize(entry string, width int) string {
	if ansi.StringWidth(entry) > width {
		entry = ansi.Truncate(entry, width-3, "...")
	}
	styles := m.theme.Styles()
	switch entryLevel(entry) {
	case log.LevelError:
		return m.statusStyle(classify.StatusAlert).Render(entry)
	case log.LevelWarn:
		return m.statusStyle(classify.StatusProgress).Render(entry)
	case log.LevelInfo:
		return m.statusStyle(classify.StatusInfo).Render(entry)
	case log.LevelDebug:
		return styles.Muted.Render(entry)
	}
	return styles.Text.Render(entry)
}

func (m Model) statusStyle(s classify.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Color(theme.StatusBarToken(s))))
}

func (m Model) filterHint() string {
	styles := m.theme.Styles()
	hints := []string{styles.Muted.Render("[c] Clear")}
	for _, opt := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if opt.level == m.minLevel {
			hints = append(hints, styles.Text.Bold(true).Render(opt.label))
		} else {
			hints = append(hints, styles.Muted.Render(opt.label))
		}
	}
	return strings.Join(hints, "  ")
}

// entryLevel reads the bracketed level written by log.Format. Entries
// without one report -1.
func entryLevel(entry string) log.Level {
	for _, l := range []log.Level{log.LevelError, log.LevelWarn, log.LevelInfo, log.LevelDebug} {
		if strings.Contains(entry, "["+l.String()+"]") {
			return l
		}
	}
	return -1
}

func matchesLevel(entry string, minLevel log.Level) bool {
	l := entryLevel(entry)
	return l < 0 || l >= minLevel
}
