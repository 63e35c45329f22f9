package settings

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zjrosen/smartmd/internal/decoration"
)

// Keys lists the names accepted by Set, in display order.
func Keys() []string {
	keys := []string{
		string(FieldTheme), string(FieldLanguage), string(FieldAutoSave), string(FieldAutoSaveInterval),
		string(FieldLineNumbers), string(FieldWordWrap), string(FieldViewMode), string(FieldStatusColors),
		string(FieldBulletPoints), string(FieldActiveLine), string(FieldRestoreCursor),
	}
	var markers []string
	for _, ch := range MarkerChars {
		markers = append(markers, "listMarkers."+ch+".enabled", "listMarkers."+ch+".color")
	}
	sort.Strings(markers)
	return append(keys, markers...)
}

// Set assigns the textual value to the setting named key.
func Set(s *Settings, key, value string) error {
	if rest, ok := strings.CutPrefix(key, "listMarkers."); ok {
		return setMarker(s, rest, value)
	}

	switch Field(key) {
	case FieldTheme:
		t := Theme(value)
		if t != ThemeLight && t != ThemeDark {
			return fmt.Errorf("theme must be light or dark, got %q", value)
		}
		SwitchTheme(s, t)
	case FieldLanguage:
		l := Language(value)
		if l != LanguagePtBR && l != LanguageEnUS {
			return fmt.Errorf("language must be pt-BR or en-US, got %q", value)
		}
		s.Language = l
	case FieldViewMode:
		m := decoration.MarkerMode(value)
		if !m.Valid() {
			return fmt.Errorf("markdownViewMode must be visible, current-line or hidden, got %q", value)
		}
		s.MarkdownViewMode = m
	case FieldAutoSaveInterval:
		n, err := strconv.Atoi(value)
		if err != nil || n < MinAutoSaveInterval {
			return fmt.Errorf("autoSaveInterval must be an integer >= %d", MinAutoSaveInterval)
		}
		s.AutoSaveInterval = n
	default:
		target := boolField(s, Field(key))
		if target == nil {
			return fmt.Errorf("unknown setting %q", key)
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, err)
		}
		*target = b
	}
	return nil
}

func boolField(s *Settings, f Field) *bool {
	switch f {
	case FieldAutoSave:
		return &s.AutoSave
	case FieldLineNumbers:
		return &s.ShowLineNumbers
	case FieldWordWrap:
		return &s.EnableWordWrap
	case FieldStatusColors:
		return &s.EnableStatusColors
	case FieldBulletPoints:
		return &s.EnableBulletPoints
	case FieldActiveLine:
		return &s.EnableHighlightActiveLine
	case FieldRestoreCursor:
		return &s.RestoreCursorPosition
	}
	return nil
}

func setMarker(s *Settings, rest, value string) error {
	ch, prop, ok := strings.Cut(rest, ".")
	if !ok {
		return fmt.Errorf("want listMarkers.<char>.<enabled|color>, got %q", "listMarkers."+rest)
	}
	if !validMarker(ch) {
		return ErrUnknownMarker(ch)
	}
	m := s.ListMarkers[ch]
	switch prop {
	case "enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("listMarkers.%s.enabled must be true or false: %w", ch, err)
		}
		m.Enabled = b
	case "color":
		m.Color = value
		if s.Theme.Dark() {
			m.DarkColor = value
		} else {
			m.LightColor = value
		}
	default:
		return fmt.Errorf("unknown list marker property %q", prop)
	}
	s.ListMarkers[ch] = m
	return nil
}
