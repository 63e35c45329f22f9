// Package toaster shows short notifications above the editor.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/smartmd/internal/classify"
	"github.com/zjrosen/smartmd/internal/theme"
	"github.com/zjrosen/smartmd/internal/ui/overlay"
)

// Style determines the icon and border color of a toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// DefaultDuration is how long a toast stays up unless replaced.
const DefaultDuration = 3 * time.Second

// borderStatus maps toast styles onto the status palette so toasts follow
// the active theme.
var borderStatus = map[Style]classify.Status{
	StyleSuccess: classify.StatusDone,
	StyleError:   classify.StatusAlert,
	StyleInfo:    classify.StatusInfo,
	StyleWarn:    classify.StatusProgress,
}

var icons = map[Style]string{
	StyleSuccess: "✓",
	StyleError:   "✗",
	StyleInfo:    "i",
	StyleWarn:    "!",
}

// Model holds the toaster state.
type Model struct {
	theme   *theme.Context
	message string
	style   Style
	visible bool
	seq     int
}

// New creates a hidden toaster colored by th.
func New(th *theme.Context) Model {
	return Model{theme: th}
}

// Show displays message and returns the command that hides it again after
// DefaultDuration. A newer toast is not hidden by an older timer.
func (m Model) Show(message string, style Style) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.seq++
	return m, ScheduleDismiss(m.seq, DefaultDuration)
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool { return m.visible }

// Message returns the current text.
func (m Model) Message() string { return m.message }

// Update hides the toast when its own dismiss timer fires.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		return m.Hide()
	}
	return m
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}
	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())
	if m.theme != nil {
		color := m.theme.Color(theme.StatusBarToken(borderStatus[m.style]))
		style = style.BorderForeground(lipgloss.Color(color))
	}
	return style.Render(icons[m.style] + " " + m.message)
}

// Overlay renders the toast in the lower right corner of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.BottomRight,
		PadX:     1,
		PadY:     1,
	}, m.View(), bg)
}

// DismissMsg hides the toast shown with the same sequence number.
type DismissMsg struct {
	seq int
}

// ScheduleDismiss returns a command that dismisses toast seq after d.
func ScheduleDismiss(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{seq: seq}
	})
}
