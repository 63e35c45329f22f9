package settings

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/smartmd/internal/decoration"
)

func TestDecorationConfig(t *testing.T) {
	s := Defaults()
	s.EnableStatusColors = false
	s.ListMarkers["+"] = ListMarker{Enabled: false, Color: "#00FF00"}

	cfg := s.DecorationConfig()
	require.Equal(t, decoration.MarkersCurrentLine, cfg.Markers)
	require.True(t, cfg.Bullets)
	require.False(t, cfg.StatusLines)
	require.Equal(t, decoration.MarkerStyle{Enabled: false, Color: "#00FF00"}, cfg.ListMarkers["+"])
	require.True(t, cfg.ListMarkers["*"].Enabled)
}

func TestClone_IsDeep(t *testing.T) {
	a := Defaults()
	b := a.Clone()
	b.ListMarkers["*"] = ListMarker{Color: "#123456"}
	require.Empty(t, a.ListMarkers["*"].Color)
}

func TestNextViewMode_Cycles(t *testing.T) {
	m := decoration.MarkersVisible
	seen := []decoration.MarkerMode{m}
	for i := 0; i < 3; i++ {
		m = NextViewMode(m)
		seen = append(seen, m)
	}
	require.Equal(t, []decoration.MarkerMode{
		decoration.MarkersVisible, decoration.MarkersCurrentLine, decoration.MarkersHidden, decoration.MarkersVisible,
	}, seen)
}

func TestSwitchTheme_RemembersColorPerTheme(t *testing.T) {
	s := Defaults()
	s.ListMarkers["*"] = ListMarker{Enabled: true, Color: "#112233", LightColor: "#112233"}

	SwitchTheme(&s, ThemeDark)
	dark := s.ListMarkers["*"]
	require.Equal(t, ThemeDark, s.Theme)
	require.NotEqual(t, "#112233", dark.Color, "a near-black color is lifted on dark backgrounds")
	require.Equal(t, "#112233", dark.LightColor)

	dark.Color = "#ABCDEF"
	s.ListMarkers["*"] = dark
	SwitchTheme(&s, ThemeLight)
	require.Equal(t, "#112233", s.ListMarkers["*"].Color)

	SwitchTheme(&s, ThemeDark)
	require.Equal(t, "#ABCDEF", s.ListMarkers["*"].Color)
}

func TestSwitchTheme_InheritStaysInherit(t *testing.T) {
	s := Defaults()
	SwitchTheme(&s, ThemeDark)
	for _, ch := range MarkerChars {
		require.Empty(t, s.ListMarkers[ch].Color)
	}
}

func TestSwitchTheme_SameThemeNoop(t *testing.T) {
	s := Defaults()
	s.ListMarkers["-"] = ListMarker{Enabled: true, Color: "#FF0000"}
	SwitchTheme(&s, ThemeLight)
	require.Equal(t, ListMarker{Enabled: true, Color: "#FF0000"}, s.ListMarkers["-"])
}

func TestSet(t *testing.T) {
	s := Defaults()
	require.NoError(t, Set(&s, "markdownViewMode", "hidden"))
	require.NoError(t, Set(&s, "enableStatusColors", "false"))
	require.NoError(t, Set(&s, "autoSaveInterval", "2000"))
	require.NoError(t, Set(&s, "language", "en-US"))
	require.NoError(t, Set(&s, "listMarkers.-.enabled", "false"))
	require.NoError(t, Set(&s, "listMarkers.*.color", "#FF8800"))

	require.Equal(t, decoration.MarkersHidden, s.MarkdownViewMode)
	require.False(t, s.EnableStatusColors)
	require.Equal(t, 2000, s.AutoSaveInterval)
	require.Equal(t, LanguageEnUS, s.Language)
	require.False(t, s.ListMarkers["-"].Enabled)
	require.Equal(t, "#FF8800", s.ListMarkers["*"].Color)
	require.Equal(t, "#FF8800", s.ListMarkers["*"].LightColor)
}

func TestSet_Errors(t *testing.T) {
	s := Defaults()
	for key, value := range map[string]string{
		"theme":                 "blue",
		"markdownViewMode":      "never",
		"autoSaveInterval":      "5",
		"enableWordWrap":        "maybe",
		"fontSize":              "12",
		"listMarkers.#.enabled": "true",
		"listMarkers.*.size":    "2",
		"listMarkers.*":         "x",
	} {
		require.Error(t, Set(&s, key, value), key)
	}
	require.Equal(t, Defaults(), s)
}

func TestKeys_AllSettable(t *testing.T) {
	values := map[string]string{
		"theme": "dark", "language": "en-US", "markdownViewMode": "hidden", "autoSaveInterval": "3000",
	}
	for _, key := range Keys() {
		s := Defaults()
		v, ok := values[key]
		if !ok {
			v = "false"
			if len(key) > 6 && key[len(key)-6:] == ".color" {
				v = "#000000"
			}
		}
		require.NoError(t, Set(&s, key, v), key)
	}
}
