package help

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/smartmd/internal/keys"
	"github.com/zjrosen/smartmd/internal/settings"
	"github.com/zjrosen/smartmd/internal/theme"
)

func newHelp(t *testing.T) (Model, *theme.Context) {
	t.Helper()
	th, err := theme.New(settings.ThemeLight, nil)
	require.NoError(t, err)
	t.Cleanup(th.Close)
	return New(th).SetSize(160, 60), th
}

func TestView_ListsEveryBinding(t *testing.T) {
	m, _ := newHelp(t)
	view := ansi.Strip(m.View())

	for _, title := range []string{"Motion", "Selection", "Editing", "Tabs", "Document", "General"} {
		require.Contains(t, view, title)
	}
	for _, group := range keys.App.FullHelp() {
		for _, b := range group {
			require.Contains(t, view, b.Help().Desc)
		}
	}
	require.Contains(t, view, "Press F1 or Esc to close")
}

func TestView_RendersGuideWithoutMarkers(t *testing.T) {
	m, _ := newHelp(t)
	view := ansi.Strip(m.View())

	require.Contains(t, view, "Live preview")
	require.NotContains(t, view, "## Live preview")
}

func TestGuideRendererFollowsThemeMode(t *testing.T) {
	m, th := newHelp(t)
	_ = m.View()
	require.NotNil(t, m.guide.renderer)
	require.False(t, m.guide.renderer.Dark())

	th.SetMode(settings.ThemeDark)
	_ = m.View()
	require.True(t, m.guide.renderer.Dark())
}

func TestOverlay_KeepsBackgroundHeight(t *testing.T) {
	m, _ := newHelp(t)
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 160)+"\n", 60), "\n")

	lines := strings.Split(m.Overlay(bg), "\n")
	require.Len(t, lines, 60)
	require.Equal(t, strings.Repeat(".", 160), lines[0])
}
