package theme

import "github.com/zjrosen/smartmd/internal/classify"

// ColorToken names a themeable color. Users override tokens in config.
type ColorToken string

const (
	TokenText       ColorToken = "text"
	TokenMuted      ColorToken = "text.muted"
	TokenRule       ColorToken = "rule"
	TokenBullet     ColorToken = "bullet"
	TokenActiveLine ColorToken = "line.active"
	TokenSelection  ColorToken = "selection"
	TokenLineNumber ColorToken = "line.number"
	TokenTabActive  ColorToken = "tab.active"
	TokenTabBorder  ColorToken = "tab.border"
	TokenStatusBar  ColorToken = "statusbar"
)

// StatusToken returns the background token of a status line.
func StatusToken(s classify.Status) ColorToken { return ColorToken("status." + string(s)) }

// StatusBarToken returns the left bar token of a status line.
func StatusBarToken(s classify.Status) ColorToken { return ColorToken("status." + string(s) + ".bar") }

// Palette maps tokens to "#RRGGBB" or "#RRGGBBAA". Translucent colors are
// composited over the mode's background before use.
type Palette map[ColorToken]string

// LightPalette is the default light palette.
var LightPalette = Palette{
	TokenText:       "#1F2937",
	TokenMuted:      "#9CA3AF",
	TokenRule:       "#94A3B866",
	TokenBullet:     "#4B5563",
	TokenActiveLine: "#0000000A",
	TokenSelection:  "#3B82F640",
	TokenLineNumber: "#9CA3AF",
	TokenTabActive:  "#2563EB",
	TokenTabBorder:  "#D1D5DB",
	TokenStatusBar:  "#E5E7EB",

	StatusToken(classify.StatusDone):         "#22C55E14",
	StatusBarToken(classify.StatusDone):      "#22C55E99",
	StatusToken(classify.StatusAlert):        "#FBBF2414",
	StatusBarToken(classify.StatusAlert):     "#FBBF2499",
	StatusToken(classify.StatusInfo):         "#3B82F614",
	StatusBarToken(classify.StatusInfo):      "#3B82F680",
	StatusToken(classify.StatusProgress):     "#8B5CF614",
	StatusBarToken(classify.StatusProgress):  "#8B5CF699",
	StatusToken(classify.StatusCancelled):    "#6B72800F",
	StatusBarToken(classify.StatusCancelled): "#6B728066",
}

// DarkPalette is the default dark palette.
var DarkPalette = Palette{
	TokenText:       "#E5E7EB",
	TokenMuted:      "#6B7280",
	TokenRule:       "#94A3B866",
	TokenBullet:     "#D1D5DB",
	TokenActiveLine: "#FFFFFF0D",
	TokenSelection:  "#3B82F659",
	TokenLineNumber: "#6B7280",
	TokenTabActive:  "#60A5FA",
	TokenTabBorder:  "#374151",
	TokenStatusBar:  "#1F2937",

	StatusToken(classify.StatusDone):         "#22C55E1F",
	StatusBarToken(classify.StatusDone):      "#22C55E99",
	StatusToken(classify.StatusAlert):        "#FBBF241F",
	StatusBarToken(classify.StatusAlert):     "#FBBF2499",
	StatusToken(classify.StatusInfo):         "#3B82F61F",
	StatusBarToken(classify.StatusInfo):      "#3B82F680",
	StatusToken(classify.StatusProgress):     "#8B5CF61F",
	StatusBarToken(classify.StatusProgress):  "#8B5CF699",
	StatusToken(classify.StatusCancelled):    "#6B728017",
	StatusBarToken(classify.StatusCancelled): "#6B728066",
}

func isValidToken(t ColorToken) bool {
	_, ok := LightPalette[t]
	return ok
}
