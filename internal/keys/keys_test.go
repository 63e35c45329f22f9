package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func bindings(groups [][]key.Binding) []key.Binding {
	var out []key.Binding
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func TestNoDuplicateKeys(t *testing.T) {
	seen := map[string]string{}
	all := append(bindings(Editor.FullHelp()), bindings(App.FullHelp())...)
	for _, b := range all {
		for _, k := range b.Keys() {
			prev, dup := seen[k]
			require.False(t, dup, "%q bound to both %q and %q", k, prev, b.Help().Desc)
			seen[k] = b.Help().Desc
		}
	}
}

func TestEveryBindingHasHelp(t *testing.T) {
	for _, b := range append(bindings(Editor.FullHelp()), bindings(App.FullHelp())...) {
		require.NotEmpty(t, b.Keys())
		require.NotEmpty(t, b.Help().Key, b.Keys())
		require.NotEmpty(t, b.Help().Desc, b.Keys())
	}
}

func TestDocStartIsCtrlHome(t *testing.T) {
	require.Equal(t, []string{"ctrl+home"}, Editor.DocStart.Keys())
	require.Equal(t, []string{"ctrl+end"}, Editor.DocEnd.Keys())
}

func TestQuitBindings(t *testing.T) {
	require.Equal(t, []string{"ctrl+q", "ctrl+c"}, App.Quit.Keys())
}

func TestShortHelpSubsetOfFull(t *testing.T) {
	full := bindings(App.FullHelp())
	for _, b := range App.ShortHelp() {
		found := false
		for _, f := range full {
			if f.Help() == b.Help() {
				found = true
			}
		}
		require.True(t, found, b.Help().Desc)
	}
}
