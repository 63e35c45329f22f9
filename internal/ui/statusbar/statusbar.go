// Package statusbar renders the bottom status line.
package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/smartmd/internal/classify"
	"github.com/zjrosen/smartmd/internal/theme"
)

// Info is what the status line shows.
type Info struct {
	Path     string
	Modified bool
	Line     int
	Column   int
	Selected int // bytes selected
	Markers  string
	Status   classify.Status
	Help     []key.Binding
}

// Render draws info across width cells. The left side is clipped first when
// space runs out.
func Render(th *theme.Context, info Info, width int) string {
	st := th.Styles()
	bar := st.StatusBar

	left := info.Path
	if left == "" {
		left = "[untitled]"
	}
	if info.Modified {
		left += " [+]"
	}

	var right []string
	if info.Status != classify.StatusNone {
		glyph := lipgloss.NewStyle().
			Foreground(lipgloss.Color(th.Color(theme.StatusBarToken(info.Status)))).
			Inherit(bar).
			Render(theme.StatusBarGlyph)
		right = append(right, glyph+bar.Render(string(info.Status)))
	}
	if info.Markers != "" {
		right = append(right, "markers:"+info.Markers)
	}
	pos := fmt.Sprintf("%d:%d", info.Line, info.Column)
	if info.Selected > 0 {
		pos += fmt.Sprintf(" (%d sel)", info.Selected)
	}
	right = append(right, pos)
	if h := helpText(info.Help); h != "" {
		right = append(right, h)
	}
	rightText := strings.Join(right, bar.Render("  "))

	avail := width - ansi.StringWidth(rightText) - 2
	left = ansi.Truncate(left, max(avail, 0), "…")
	gap := max(width-ansi.StringWidth(left)-ansi.StringWidth(rightText)-2, 0)

	line := bar.Render(" "+left+strings.Repeat(" ", gap)) + bar.Render(rightText) + bar.Render(" ")
	return ansi.Truncate(line, width, "")
}

func helpText(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
