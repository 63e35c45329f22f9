// Package colorutil parses hex colors with optional alpha and keeps
// user-chosen colors readable when the theme changes.
package colorutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var hexPattern = regexp.MustCompile(`(?i)^#?[0-9a-f]{6}([0-9a-f]{2})?$`)

// Contrast limits on a 0-255 luminance scale.
const (
	MinDarkLuminance  = 60
	MaxLightLuminance = 195
)

var (
	black = colorful.Color{}
	white = colorful.Color{R: 1, G: 1, B: 1}
)

// RGBA is a color with straight alpha in [0, 1].
type RGBA struct {
	colorful.Color
	A        float64
	HasAlpha bool
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA"; the leading '#' is optional.
func ParseHex(s string) (RGBA, bool) {
	if !hexPattern.MatchString(s) {
		return RGBA{}, false
	}
	clean := strings.TrimPrefix(s, "#")
	c, err := colorful.Hex("#" + clean[:6])
	if err != nil {
		return RGBA{}, false
	}
	out := RGBA{Color: c, A: 1}
	if len(clean) == 8 {
		a, err := strconv.ParseUint(clean[6:], 16, 8)
		if err != nil {
			return RGBA{}, false
		}
		out.A = float64(a) / 255
		out.HasAlpha = true
	}
	return out, true
}

// Valid reports whether s is a color ParseHex accepts.
func Valid(s string) bool {
	_, ok := ParseHex(s)
	return ok
}

// Hex formats c as upper-case "#RRGGBB", with an alpha byte when c has one.
func (c RGBA) Hex() string {
	s := strings.ToUpper(c.Clamped().Hex())
	if c.HasAlpha {
		s += fmt.Sprintf("%02X", int(math.Round(c.A*255)))
	}
	return s
}

// Over blends c onto a black or white background and drops alpha.
func (c RGBA) Over(dark bool) colorful.Color {
	bg := white
	if dark {
		bg = black
	}
	return c.Color.BlendRgb(bg, 1-c.A)
}

// EffectiveLuminance returns the luminance (0-255) of hex composited over a
// black (dark) or white background. Unparseable colors report the
// background's own luminance.
func EffectiveLuminance(hex string, dark bool) float64 {
	c, ok := ParseHex(hex)
	if !ok {
		if dark {
			return 255
		}
		return 0
	}
	eff := c.Over(dark)
	return 255 * (0.2126*eff.R + 0.7152*eff.G + 0.0722*eff.B)
}

// Shift adds amount (on a 0-255 scale) to each channel, keeping alpha.
func Shift(hex string, amount float64) string {
	c, ok := ParseHex(hex)
	if !ok {
		return hex
	}
	d := amount / 255
	c.Color = colorful.Color{R: c.R + d, G: c.G + d, B: c.B + d}.Clamped()
	return c.Hex()
}

// Opaque returns hex composited over the theme background as "#RRGGBB",
// the form terminals accept. ok is false for malformed input.
func Opaque(hex string, dark bool) (string, bool) {
	c, ok := ParseHex(hex)
	if !ok {
		return "", false
	}
	return strings.ToUpper(c.Over(dark).Clamped().Hex()), true
}

// Suggested returns color unchanged when it is readable on the theme
// background. Otherwise it first tries raising opacity to 90% and then shifts
// the base color towards the background's opposite.
func Suggested(color string, dark bool) string {
	c, ok := ParseHex(color)
	if !ok {
		return color
	}
	if readable(EffectiveLuminance(color, dark), dark) {
		return color
	}

	base := RGBA{Color: c.Color, A: 1}
	baseHex := base.Hex()
	if readable(EffectiveLuminance(baseHex, dark), dark) {
		return baseHex + "E6"
	}

	prefix := strings.ToUpper(strings.TrimPrefix(color, "#")[:6])
	if dark {
		if prefix == "000000" {
			return "#FFFFFF"
		}
		return Shift(baseHex, 150)
	}
	if prefix == "FFFFFF" {
		return "#000000"
	}
	return Shift(baseHex, -150)
}

func readable(luma float64, dark bool) bool {
	if dark {
		return luma >= MinDarkLuminance
	}
	return luma <= MaxLightLuminance
}
