// Package settings holds the user's editor preferences.
//
// Settings are persisted as a versioned JSON blob. Older blobs are brought
// up to CurrentVersion by one migration per version step before decoding
// into the typed Settings struct.
package settings

import (
	"fmt"

	"github.com/zjrosen/smartmd/internal/decoration"
)

// Theme is the color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Dark reports whether t is the dark theme.
func (t Theme) Dark() bool { return t == ThemeDark }

// Other returns the opposite theme.
func (t Theme) Other() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Language is the UI language.
type Language string

const (
	LanguagePtBR Language = "pt-BR"
	LanguageEnUS Language = "en-US"
)

// ListMarker configures how one bullet character is drawn. LightColor and
// DarkColor remember the color chosen under each theme.
type ListMarker struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Color      string `json:"color" yaml:"color"`
	LightColor string `json:"lightColor,omitempty" yaml:"lightColor,omitempty"`
	DarkColor  string `json:"darkColor,omitempty" yaml:"darkColor,omitempty"`
}

// MarkerChars are the configurable list markers.
var MarkerChars = []string{"*", "-", "+"}

// Settings is the current (CurrentVersion) preference set.
type Settings struct {
	Theme                     Theme                 `json:"theme" yaml:"theme"`
	Language                  Language              `json:"language" yaml:"language"`
	AutoSave                  bool                  `json:"autoSave" yaml:"autoSave"`
	AutoSaveInterval          int                   `json:"autoSaveInterval" yaml:"autoSaveInterval"` // ms
	ShowLineNumbers           bool                  `json:"showLineNumbers" yaml:"showLineNumbers"`
	EnableWordWrap            bool                  `json:"enableWordWrap" yaml:"enableWordWrap"`
	MarkdownViewMode          decoration.MarkerMode `json:"markdownViewMode" yaml:"markdownViewMode"`
	EnableStatusColors        bool                  `json:"enableStatusColors" yaml:"enableStatusColors"`
	EnableBulletPoints        bool                  `json:"enableBulletPoints" yaml:"enableBulletPoints"`
	EnableHighlightActiveLine bool                  `json:"enableHighlightActiveLine" yaml:"enableHighlightActiveLine"`
	RestoreCursorPosition     bool                  `json:"restoreCursorPosition" yaml:"restoreCursorPosition"`
	ListMarkers               map[string]ListMarker `json:"listMarkers" yaml:"listMarkers"`
}

// MinAutoSaveInterval is the smallest accepted auto-save interval in ms.
const MinAutoSaveInterval = 1000

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		Theme:                     ThemeLight,
		Language:                  LanguagePtBR,
		AutoSave:                  true,
		AutoSaveInterval:          5000,
		ShowLineNumbers:           false,
		EnableWordWrap:            true,
		MarkdownViewMode:          decoration.MarkersCurrentLine,
		EnableStatusColors:        true,
		EnableBulletPoints:        true,
		EnableHighlightActiveLine: true,
		RestoreCursorPosition:     true,
		ListMarkers:               DefaultListMarkers(),
	}
}

// DefaultListMarkers enables every marker with the inherited color.
func DefaultListMarkers() map[string]ListMarker {
	m := make(map[string]ListMarker, len(MarkerChars))
	for _, ch := range MarkerChars {
		m[ch] = ListMarker{Enabled: true}
	}
	return m
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.ListMarkers = make(map[string]ListMarker, len(s.ListMarkers))
	for k, v := range s.ListMarkers {
		out.ListMarkers[k] = v
	}
	return out
}

// Normalize replaces invalid values with defaults.
func (s *Settings) Normalize() {
	d := Defaults()
	if s.Theme != ThemeLight && s.Theme != ThemeDark {
		s.Theme = d.Theme
	}
	if s.Language != LanguagePtBR && s.Language != LanguageEnUS {
		s.Language = d.Language
	}
	if !s.MarkdownViewMode.Valid() {
		s.MarkdownViewMode = d.MarkdownViewMode
	}
	if s.AutoSaveInterval < MinAutoSaveInterval {
		s.AutoSaveInterval = d.AutoSaveInterval
	}
	if s.ListMarkers == nil {
		s.ListMarkers = DefaultListMarkers()
	}
	for k := range s.ListMarkers {
		if !validMarker(k) {
			delete(s.ListMarkers, k)
		}
	}
	for _, ch := range MarkerChars {
		if _, ok := s.ListMarkers[ch]; !ok {
			s.ListMarkers[ch] = ListMarker{Enabled: true}
		}
	}
}

// DecorationConfig derives the decoration features these settings enable.
func (s Settings) DecorationConfig() decoration.Config {
	markers := make(map[string]decoration.MarkerStyle, len(s.ListMarkers))
	for ch, m := range s.ListMarkers {
		markers[ch] = decoration.MarkerStyle{Enabled: m.Enabled, Color: m.Color}
	}
	return decoration.Config{
		Markers:     s.MarkdownViewMode,
		Bullets:     s.EnableBulletPoints,
		ListMarkers: markers,
		StatusLines: s.EnableStatusColors,
	}
}

// NextViewMode cycles visible, current-line, hidden.
func NextViewMode(m decoration.MarkerMode) decoration.MarkerMode {
	switch m {
	case decoration.MarkersVisible:
		return decoration.MarkersCurrentLine
	case decoration.MarkersCurrentLine:
		return decoration.MarkersHidden
	default:
		return decoration.MarkersVisible
	}
}

func validMarker(ch string) bool {
	for _, c := range MarkerChars {
		if c == ch {
			return true
		}
	}
	return false
}

// ErrUnknownMarker is returned for list marker keys other than MarkerChars.
type ErrUnknownMarker string

func (e ErrUnknownMarker) Error() string {
	return fmt.Sprintf("unknown list marker %q (want one of * - +)", string(e))
}
