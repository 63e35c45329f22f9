package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zjrosen/smartmd/internal/decoration"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = 4

// ErrFutureVersion is returned for blobs written by a newer release.
var ErrFutureVersion = errors.New("settings written by a newer version")

// Record is the persisted form: a schema version plus the JSON payload.
type Record struct {
	Version int
	Value   []byte
}

type migration func(data map[string]any)

// migrations[v] upgrades a version v payload to v+1.
var migrations = map[int]migration{
	1: migrateV1,
	2: migrateV2,
	3: migrateV3,
}

// Decode migrates rec to CurrentVersion and decodes it. Fields missing from
// the payload keep their defaults and invalid values are normalized.
func Decode(rec Record) (Settings, error) {
	version := rec.Version
	if version < 1 {
		version = 1
	}
	if version > CurrentVersion {
		return Settings{}, fmt.Errorf("%w: %d > %d", ErrFutureVersion, version, CurrentVersion)
	}

	data := map[string]any{}
	if len(rec.Value) > 0 {
		if err := json.Unmarshal(rec.Value, &data); err != nil {
			return Settings{}, fmt.Errorf("parse settings v%d: %w", version, err)
		}
	}
	for v := version; v < CurrentVersion; v++ {
		migrations[v](data)
	}

	migrated, err := json.Marshal(data)
	if err != nil {
		return Settings{}, fmt.Errorf("re-encode migrated settings: %w", err)
	}
	s := Defaults()
	if err := json.Unmarshal(migrated, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings v%d: %w", CurrentVersion, err)
	}
	s.Normalize()
	return s, nil
}

// Encode returns s as a CurrentVersion record.
func Encode(s Settings) (Record, error) {
	value, err := json.Marshal(s)
	if err != nil {
		return Record{}, fmt.Errorf("encode settings: %w", err)
	}
	return Record{Version: CurrentVersion, Value: value}, nil
}

// v1 had a single enableMarkdownPreview switch. Preview on becomes the
// cursor-line mode, off shows every marker.
func migrateV1(data map[string]any) {
	mode := decoration.MarkersVisible
	if on, _ := data["enableMarkdownPreview"].(bool); on {
		mode = decoration.MarkersCurrentLine
	}
	delete(data, "enableMarkdownPreview")
	if _, ok := data["markdownViewMode"]; !ok {
		data["markdownViewMode"] = string(mode)
	}
}

// v3 introduced the smart decorator switches.
func migrateV2(data map[string]any) {
	setDefault(data, "enableStatusColors", true)
	setDefault(data, "enableHighlightActiveLine", true)
	setDefault(data, "restoreCursorPosition", true)
}

// v4 introduced bullet glyphs and per-marker configuration. Font settings
// have no terminal equivalent and are dropped.
func migrateV3(data map[string]any) {
	setDefault(data, "enableBulletPoints", true)
	if _, ok := data["listMarkers"]; !ok {
		markers := map[string]any{}
		for _, ch := range MarkerChars {
			markers[ch] = map[string]any{"enabled": true, "color": ""}
		}
		data["listMarkers"] = markers
	}
	for _, k := range []string{"fontSize", "fontFamily", "editorFontSize", "lineHeight"} {
		delete(data, k)
	}
}

func setDefault(data map[string]any, key string, value any) {
	if _, ok := data[key]; !ok {
		data[key] = value
	}
}
