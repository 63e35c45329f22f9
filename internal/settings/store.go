package settings

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/pubsub"
)

// Field names one setting for change subscriptions.
type Field string

const (
	FieldTheme            Field = "theme"
	FieldLanguage         Field = "language"
	FieldAutoSave         Field = "autoSave"
	FieldLineNumbers      Field = "showLineNumbers"
	FieldWordWrap         Field = "enableWordWrap"
	FieldViewMode         Field = "markdownViewMode"
	FieldStatusColors     Field = "enableStatusColors"
	FieldBulletPoints     Field = "enableBulletPoints"
	FieldActiveLine       Field = "enableHighlightActiveLine"
	FieldRestoreCursor    Field = "restoreCursorPosition"
	FieldListMarkers      Field = "listMarkers"
	FieldAutoSaveInterval Field = "autoSaveInterval"
)

// DecorationFields are the fields DecorationConfig depends on.
var DecorationFields = []Field{FieldViewMode, FieldStatusColors, FieldBulletPoints, FieldListMarkers}

// Change is published after every mutation that changed at least one field.
type Change struct {
	Version  uint64
	Fields   []Field
	Settings Settings
}

// Has reports whether any of fields changed.
func (c Change) Has(fields ...Field) bool {
	for _, f := range c.Fields {
		for _, want := range fields {
			if f == want {
				return true
			}
		}
	}
	return false
}

// Repository persists the settings record.
type Repository interface {
	LoadSettings(ctx context.Context) (Record, bool, error)
	SaveSettings(ctx context.Context, rec Record) error
}

// Store owns the current settings and a version counter bumped on every
// effective change.
type Store struct {
	mu      sync.RWMutex
	current Settings
	version uint64
	repo    Repository
	broker  *pubsub.Broker[Change]
}

// Open loads settings from repo. A missing or unreadable record yields
// defaults; only a record from a newer release is an error.
func Open(ctx context.Context, repo Repository) (*Store, error) {
	s := &Store{current: Defaults(), repo: repo, broker: pubsub.NewBroker[Change]()}

	rec, found, err := repo.LoadSettings(ctx)
	switch {
	case err != nil:
		log.ErrorErr(log.CatSettings, "load settings, using defaults", err)
	case found:
		loaded, err := Decode(rec)
		if errors.Is(err, ErrFutureVersion) {
			return nil, err
		}
		if err != nil {
			log.ErrorErr(log.CatSettings, "malformed settings, using defaults", err, "version", rec.Version)
			break
		}
		if rec.Version != CurrentVersion {
			log.Info(log.CatSettings, "settings migrated", "from", rec.Version, "to", CurrentVersion)
		}
		s.current = loaded
	}
	return s, nil
}

// Close ends all subscriptions.
func (s *Store) Close() {
	s.broker.Close()
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Version returns how many effective changes have been applied.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe delivers changes touching any of fields; no fields means all.
func (s *Store) Subscribe(ctx context.Context, fields ...Field) <-chan pubsub.Event[Change] {
	return s.broker.SubscribeFiltered(ctx, fieldFilter(fields))
}

// Listener is Subscribe for Bubble Tea models.
func (s *Store) Listener(ctx context.Context, fields ...Field) *pubsub.ContinuousListener[Change] {
	return pubsub.NewFilteredListener(ctx, s.broker, fieldFilter(fields))
}

func fieldFilter(fields []Field) pubsub.Filter[Change] {
	if len(fields) == 0 {
		return nil
	}
	return func(e pubsub.Event[Change]) bool { return e.Payload.Has(fields...) }
}

// Update applies fn to a copy of the settings. If anything changed the
// version is bumped, subscribers are notified and the result is persisted.
// The in-memory state is updated even when persisting fails.
func (s *Store) Update(ctx context.Context, fn func(*Settings) error) (Change, error) {
	s.mu.Lock()
	next := s.current.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return Change{}, err
	}
	next.Normalize()
	fields := Diff(s.current, next)
	if len(fields) == 0 {
		version := s.version
		s.mu.Unlock()
		return Change{Version: version}, nil
	}
	s.current = next
	s.version++
	change := Change{Version: s.version, Fields: fields, Settings: next.Clone()}
	s.mu.Unlock()

	s.broker.Publish(pubsub.UpdatedEvent, change)
	log.Debug(log.CatSettings, "settings changed", "version", change.Version, "fields", fields)

	if err := s.persist(ctx, next); err != nil {
		return change, err
	}
	return change, nil
}

func (s *Store) persist(ctx context.Context, next Settings) error {
	rec, err := Encode(next)
	if err != nil {
		return err
	}
	if err := s.repo.SaveSettings(ctx, rec); err != nil {
		log.ErrorErr(log.CatSettings, "persist settings", err)
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetTheme switches theme, preserving list marker colors per theme.
func (s *Store) SetTheme(ctx context.Context, t Theme) (Change, error) {
	return s.Update(ctx, func(st *Settings) error {
		if t != ThemeLight && t != ThemeDark {
			return fmt.Errorf("unknown theme %q", t)
		}
		SwitchTheme(st, t)
		return nil
	})
}

// ToggleTheme switches to the other theme.
func (s *Store) ToggleTheme(ctx context.Context) (Change, error) {
	return s.SetTheme(ctx, s.Get().Theme.Other())
}

// SetViewMode sets the marker hiding mode.
func (s *Store) SetViewMode(ctx context.Context, m decoration.MarkerMode) (Change, error) {
	return s.Update(ctx, func(st *Settings) error {
		if !m.Valid() {
			return fmt.Errorf("unknown view mode %q", m)
		}
		st.MarkdownViewMode = m
		return nil
	})
}

// CycleViewMode advances the marker hiding mode.
func (s *Store) CycleViewMode(ctx context.Context) (Change, error) {
	return s.Update(ctx, func(st *Settings) error {
		st.MarkdownViewMode = NextViewMode(st.MarkdownViewMode)
		return nil
	})
}

// SetListMarker replaces the configuration of one marker character. The
// color is remembered for the current theme.
func (s *Store) SetListMarker(ctx context.Context, ch string, m ListMarker) (Change, error) {
	return s.Update(ctx, func(st *Settings) error {
		if !validMarker(ch) {
			return ErrUnknownMarker(ch)
		}
		if st.Theme.Dark() {
			m.DarkColor = m.Color
		} else {
			m.LightColor = m.Color
		}
		st.ListMarkers[ch] = m
		return nil
	})
}

// Reset restores defaults.
func (s *Store) Reset(ctx context.Context) (Change, error) {
	return s.Update(ctx, func(st *Settings) error {
		*st = Defaults()
		return nil
	})
}

// Diff lists the fields that differ between a and b, in declaration order.
func Diff(a, b Settings) []Field {
	var out []Field
	add := func(changed bool, f Field) {
		if changed {
			out = append(out, f)
		}
	}
	add(a.Theme != b.Theme, FieldTheme)
	add(a.Language != b.Language, FieldLanguage)
	add(a.AutoSave != b.AutoSave, FieldAutoSave)
	add(a.AutoSaveInterval != b.AutoSaveInterval, FieldAutoSaveInterval)
	add(a.ShowLineNumbers != b.ShowLineNumbers, FieldLineNumbers)
	add(a.EnableWordWrap != b.EnableWordWrap, FieldWordWrap)
	add(a.MarkdownViewMode != b.MarkdownViewMode, FieldViewMode)
	add(a.EnableStatusColors != b.EnableStatusColors, FieldStatusColors)
	add(a.EnableBulletPoints != b.EnableBulletPoints, FieldBulletPoints)
	add(a.EnableHighlightActiveLine != b.EnableHighlightActiveLine, FieldActiveLine)
	add(a.RestoreCursorPosition != b.RestoreCursorPosition, FieldRestoreCursor)
	add(!reflect.DeepEqual(a.ListMarkers, b.ListMarkers), FieldListMarkers)
	return out
}
