package settings

import "github.com/zjrosen/smartmd/internal/colorutil"

// SwitchTheme moves s to theme t, keeping one color per theme for every list
// marker: the current color is stored in the old theme's slot and the new
// theme's slot becomes current. When the new theme has no stored color, the
// current one is adjusted for contrast on the new background.
func SwitchTheme(s *Settings, t Theme) {
	if s.Theme == t {
		return
	}
	old := s.Theme
	for ch, m := range s.ListMarkers {
		if old.Dark() {
			m.DarkColor = m.Color
		} else {
			m.LightColor = m.Color
		}

		stored := m.LightColor
		if t.Dark() {
			stored = m.DarkColor
		}
		switch {
		case stored != "":
			m.Color = stored
		case m.Color != "":
			m.Color = colorutil.Suggested(m.Color, t.Dark())
		}
		s.ListMarkers[ch] = m
	}
	s.Theme = t
}
