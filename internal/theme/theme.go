// Package theme derives terminal styles for decoration classes from the
// active light or dark palette.
package theme

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/smartmd/internal/classify"
	"github.com/zjrosen/smartmd/internal/colorutil"
	"github.com/zjrosen/smartmd/internal/pubsub"
	"github.com/zjrosen/smartmd/internal/settings"
)

// StatusBarGlyph is drawn in the left gutter of status lines.
const StatusBarGlyph = "▎"

// Styles is the resolved style set for one mode.
type Styles struct {
	Text       lipgloss.Style
	Muted      lipgloss.Style
	Rule       lipgloss.Style
	Bullet     lipgloss.Style
	ActiveLine lipgloss.Style
	Selection  lipgloss.Style
	Cursor     lipgloss.Style
	LineNumber lipgloss.Style
	TabActive  lipgloss.Style
	TabIdle    lipgloss.Style
	StatusBar  lipgloss.Style

	lines map[string]LineStyle
}

// LineStyle styles a classed line: Bar is drawn in the gutter and Body
// covers the text.
type LineStyle struct {
	Bar  lipgloss.Style
	Body lipgloss.Style
}

// Line returns the style of a line class such as "line-done".
func (s Styles) Line(class string) (LineStyle, bool) {
	ls, ok := s.lines[class]
	return ls, ok
}

// Context owns the current mode and its styles. Mode changes are published
// to subscribers instead of mutating shared globals.
type Context struct {
	mu        sync.RWMutex
	mode      settings.Theme
	overrides map[settings.Theme]Palette
	styles    Styles
	broker    *pubsub.Broker[settings.Theme]
}

// New creates a context in mode with optional per-mode token overrides.
func New(mode settings.Theme, overrides map[settings.Theme]Palette) (*Context, error) {
	for m, p := range overrides {
		for tok, hex := range p {
			if !isValidToken(tok) {
				return nil, fmt.Errorf("unknown color token %q in %s theme", tok, m)
			}
			if !colorutil.Valid(hex) {
				return nil, fmt.Errorf("invalid hex color for %s: %s", tok, hex)
			}
		}
	}
	c := &Context{mode: mode, overrides: overrides, broker: pubsub.NewBroker[settings.Theme]()}
	c.styles = c.build(mode)
	return c, nil
}

// Mode returns the active mode.
func (c *Context) Mode() settings.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Dark reports whether the dark mode is active.
func (c *Context) Dark() bool { return c.Mode().Dark() }

// Styles returns the styles of the active mode.
func (c *Context) Styles() Styles {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.styles
}

// SetMode switches mode and notifies subscribers. It returns false when the
// mode is already active.
func (c *Context) SetMode(mode settings.Theme) bool {
	c.mu.Lock()
	if c.mode == mode {
		c.mu.Unlock()
		return false
	}
	c.mode = mode
	c.styles = c.build(mode)
	c.mu.Unlock()

	c.broker.Publish(pubsub.UpdatedEvent, mode)
	return true
}

// Subscribe delivers mode changes.
func (c *Context) Subscribe(ctx context.Context) <-chan pubsub.Event[settings.Theme] {
	return c.broker.Subscribe(ctx)
}

// Close ends all subscriptions.
func (c *Context) Close() { c.broker.Close() }

// BulletStyle styles a bullet glyph. An empty or invalid color inherits the
// default bullet color; translucent colors are flattened onto the background.
func (c *Context) BulletStyle(color string) lipgloss.Style {
	st := c.Styles()
	if color == "" {
		return st.Bullet
	}
	hex, ok := colorutil.Opaque(color, c.Dark())
	if !ok {
		return st.Bullet
	}
	return st.Bullet.Foreground(lipgloss.Color(hex))
}

// Color resolves a token for the active mode to an opaque "#RRGGBB".
func (c *Context) Color(tok ColorToken) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolve(c.mode, tok)
}

func (c *Context) palette(mode settings.Theme) Palette {
	base := LightPalette
	if mode.Dark() {
		base = DarkPalette
	}
	p := maps.Clone(base)
	maps.Copy(p, c.overrides[mode])
	return p
}

func (c *Context) resolve(mode settings.Theme, tok ColorToken) string {
	hex, ok := colorutil.Opaque(c.palette(mode)[tok], mode.Dark())
	if !ok {
		return ""
	}
	return hex
}

func (c *Context) build(mode settings.Theme) Styles {
	color := func(tok ColorToken) lipgloss.Color { return lipgloss.Color(c.resolve(mode, tok)) }

	s := Styles{
		Text:       lipgloss.NewStyle().Foreground(color(TokenText)),
		Muted:      lipgloss.NewStyle().Foreground(color(TokenMuted)),
		Rule:       lipgloss.NewStyle().Foreground(color(TokenRule)),
		Bullet:     lipgloss.NewStyle().Foreground(color(TokenBullet)).Bold(true),
		ActiveLine: lipgloss.NewStyle().Background(color(TokenActiveLine)),
		Selection:  lipgloss.NewStyle().Background(color(TokenSelection)),
		Cursor:     lipgloss.NewStyle().Reverse(true),
		LineNumber: lipgloss.NewStyle().Foreground(color(TokenLineNumber)),
		TabActive:  lipgloss.NewStyle().Bold(true).Foreground(color(TokenTabActive)).Underline(true),
		TabIdle:    lipgloss.NewStyle().Foreground(color(TokenMuted)),
		StatusBar:  lipgloss.NewStyle().Background(color(TokenStatusBar)).Foreground(color(TokenText)),
		lines:      make(map[string]LineStyle, len(classify.Statuses)),
	}
	for _, st := range classify.Statuses {
		s.lines[st.Class()] = LineStyle{
			Bar:  lipgloss.NewStyle().Foreground(color(StatusBarToken(st))),
			Body: lipgloss.NewStyle().Background(color(StatusToken(st))),
		}
	}
	return s
}

// ParseOverrides converts config color maps ("status.done" => "#hex") per
// mode name into palettes.
func ParseOverrides(light, dark map[string]string) map[settings.Theme]Palette {
	out := map[settings.Theme]Palette{}
	add := func(mode settings.Theme, m map[string]string) {
		if len(m) == 0 {
			return
		}
		p := Palette{}
		for k, v := range m {
			p[ColorToken(strings.ToLower(k))] = v
		}
		out[mode] = p
	}
	add(settings.ThemeLight, light)
	add(settings.ThemeDark, dark)
	return out
}
