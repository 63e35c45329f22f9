// Package tabbar renders the row of open documents and maps mouse clicks
// back to tabs.
package tabbar

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/smartmd/internal/tabs"
	"github.com/zjrosen/smartmd/internal/theme"
)

const (
	// MaxTitleWidth bounds a single tab label.
	MaxTitleWidth = 24
	modifiedDot   = "●"
	separator     = "│"
	zonePrefix    = "tab:"
)

// ZoneID is the bubblezone id of the tab with id.
func ZoneID(id string) string { return zonePrefix + id }

// Model draws the tab row.
type Model struct {
	theme *theme.Context
	width int
}

// New creates a tab bar colored by th.
func New(th *theme.Context) Model {
	return Model{theme: th}
}

// SetWidth sets the available width in cells.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// Label is the text shown for t.
func Label(t *tabs.Tab) string {
	title := truncate.StringWithTail(t.Title, MaxTitleWidth, "…")
	if t.Modified {
		title += " " + modifiedDot
	}
	return " " + title + " "
}

// View renders the tabs. When they do not fit, tabs are dropped from the
// left until the active one is visible.
func (m Model) View(list []*tabs.Tab, activeID string) string {
	if len(list) == 0 {
		return strings.Repeat(" ", m.width)
	}
	st := m.theme.Styles()
	sep := st.Muted.Render(separator)

	labels := make([]string, len(list))
	widths := make([]int, len(list))
	active := 0
	for i, t := range list {
		style := st.TabIdle
		if t.ID == activeID {
			style = st.TabActive
			active = i
		}
		labels[i] = zone.Mark(ZoneID(t.ID), style.Render(Label(t)))
		widths[i] = lipgloss.Width(Label(t)) + 1
	}

	first := 0
	total := 0
	for i := 0; i <= active; i++ {
		total += widths[i]
	}
	for total > m.width && first < active {
		total -= widths[first]
		first++
	}

	var b strings.Builder
	for i := first; i < len(list); i++ {
		b.WriteString(labels[i])
		b.WriteString(sep)
	}
	row := b.String()
	if m.width > 0 {
		row = ansi.Truncate(row, m.width, "")
		if pad := m.width - ansi.StringWidth(row); pad > 0 {
			row += strings.Repeat(" ", pad)
		}
	}
	return row
}

// TabAt returns the id of the tab under a mouse press.
func TabAt(msg tea.MouseMsg, list []*tabs.Tab) (string, bool) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return "", false
	}
	for _, t := range list {
		if z := zone.Get(ZoneID(t.ID)); z != nil && z.InBounds(msg) {
			return t.ID, true
		}
	}
	return "", false
}
