// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/smartmd/internal/keys"
	"github.com/zjrosen/smartmd/internal/theme"
	"github.com/zjrosen/smartmd/internal/ui/markdown"
	"github.com/zjrosen/smartmd/internal/ui/overlay"
)

// guideWidth is the wrap width of the rendered Markdown guide.
const guideWidth = 60

// Guide explains the live preview. It is rendered with glamour so the
// overlay shows what the editor hides.
const Guide = `## Live preview

Markers such as **bold**, *emphasis*, ` + "`code`" + ` and # headings are
hidden away from the cursor line when the marker mode is *current-line*.

- List items starting with *, - or + are drawn as bullets.
- Lines containing ✅ [x] ⚠️ ℹ️ 🔄 ❌ are colored by status.
- A line of --- becomes a horizontal rule.
`

type section struct {
	title    string
	bindings []key.Binding
}

// Model holds the help view state.
type Model struct {
	theme  *theme.Context
	width  int
	height int

	// shared between copies so the glamour renderer is built once per mode
	guide *guideCache
}

type guideCache struct {
	renderer *markdown.Renderer
}

// New creates the help overlay.
func New(th *theme.Context) Model {
	return Model{theme: th, guide: &guideCache{}}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

func (m Model) sections() []section {
	app := keys.App.FullHelp()
	ed := keys.Editor.FullHelp()
	return []section{
		{"Motion", ed[0]},
		{"Selection", append(append([]key.Binding{}, ed[1]...), ed[2]...)},
		{"Editing", ed[3]},
		{"Tabs", app[0]},
		{"Document", app[1]},
		{"General", app[2]},
	}
}

// View renders the help box on its own, centered.
func (m Model) View() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderContent())
}

// Overlay renders the help box on top of background.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.renderContent(), background)
}

func (m Model) renderContent() string {
	st := m.theme.Styles()
	sectionStyle := st.Text.Bold(true).MarginTop(1)
	keyStyle := st.Muted.Width(14)
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	secs := m.sections()
	cols := make([]string, 0, 3)
	for i := 0; i < len(secs); i += 2 {
		var col strings.Builder
		for _, s := range secs[i:min(i+2, len(secs))] {
			col.WriteString(sectionStyle.Render(s.title))
			col.WriteString("\n")
			for _, b := range s.bindings {
				h := b.Help()
				col.WriteString(keyStyle.Render(h.Key) + st.Text.Render(h.Desc) + "\n")
			}
		}
		style := columnStyle
		if i+2 >= len(secs) {
			style = lipgloss.NewStyle()
		}
		cols = append(cols, style.Render(col.String()))
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	body := columns
	if guide := m.renderGuide(); guide != "" {
		body += "\n" + guide
	}
	body += "\n" + st.Muted.MarginTop(1).Render("Press F1 or Esc to close")

	boxWidth := lipgloss.Width(body) + 4
	divider := st.Rule.Render(strings.Repeat("─", boxWidth))
	content := st.Text.Bold(true).PaddingLeft(2).Render("Keybindings") + "\n" +
		divider + "\n" +
		lipgloss.NewStyle().Padding(0, 2).Render(body)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Color(theme.TokenRule))).
		Width(boxWidth).
		Render(content)
}

// renderGuide renders Guide for the current mode. Failures leave the guide
// out rather than breaking the overlay.
func (m Model) renderGuide() string {
	if m.guide == nil {
		return ""
	}
	dark := m.theme.Dark()
	if !m.guide.renderer.Fits(guideWidth, dark) {
		r, err := markdown.New(guideWidth, dark)
		if err != nil {
			return ""
		}
		m.guide.renderer = r
	}
	out, err := m.guide.renderer.Render(Guide)
	if err != nil {
		return ""
	}
	return strings.Trim(out, "\n")
}
