package tabbar

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/smartmd/internal/settings"
	"github.com/zjrosen/smartmd/internal/tabs"
	"github.com/zjrosen/smartmd/internal/theme"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func newBar(t *testing.T, width int) Model {
	t.Helper()
	th, err := theme.New(settings.ThemeLight, nil)
	require.NoError(t, err)
	t.Cleanup(th.Close)
	return New(th).SetWidth(width)
}

func tab(id, title string, modified bool) *tabs.Tab {
	return &tabs.Tab{ID: id, Title: title, Modified: modified}
}

func TestLabel(t *testing.T) {
	require.Equal(t, " notes.md ", Label(tab("a", "notes.md", false)))
	require.Equal(t, " notes.md ● ", Label(tab("a", "notes.md", true)))

	long := Label(tab("a", strings.Repeat("x", 40), false))
	require.Equal(t, MaxTitleWidth+2, ansi.StringWidth(long))
	require.Contains(t, long, "…")
}

func TestView_PadsToWidth(t *testing.T) {
	m := newBar(t, 40)
	out := zone.Scan(m.View([]*tabs.Tab{tab("a", "one", false), tab("b", "two", true)}, "a"))

	plain := ansi.Strip(out)
	require.Equal(t, 40, ansi.StringWidth(plain))
	require.True(t, strings.HasPrefix(plain, " one │ two ● │"))
}

func TestView_KeepsActiveTabVisible(t *testing.T) {
	m := newBar(t, 20)
	list := []*tabs.Tab{
		tab("a", "first", false),
		tab("b", "second", false),
		tab("c", "third", false),
	}
	plain := ansi.Strip(zone.Scan(m.View(list, "c")))

	require.Contains(t, plain, "third")
	require.NotContains(t, plain, "first")
	require.Equal(t, 20, ansi.StringWidth(plain))
}

func TestView_Empty(t *testing.T) {
	m := newBar(t, 10)
	require.Equal(t, strings.Repeat(" ", 10), m.View(nil, ""))
}

func TestTabAt(t *testing.T) {
	m := newBar(t, 40)
	list := []*tabs.Tab{tab("a", "one", false), tab("b", "two", false)}

	var z *zone.ZoneInfo
	for retries := 0; retries < 10; retries++ {
		_ = zone.Scan(m.View(list, "a"))
		z = zone.Get(ZoneID("b"))
		if z != nil && !z.IsZero() {
			break
		}
		// zones are registered by a background worker
		time.Sleep(time.Millisecond)
	}
	require.NotNil(t, z)
	require.False(t, z.IsZero())

	id, ok := TabAt(tea.MouseMsg{X: z.StartX + 1, Y: z.StartY, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}, list)
	require.True(t, ok)
	require.Equal(t, "b", id)

	_, ok = TabAt(tea.MouseMsg{X: z.StartX + 1, Y: z.StartY, Button: tea.MouseButtonWheelUp}, list)
	require.False(t, ok)
}
