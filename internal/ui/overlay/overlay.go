// Package overlay draws a box on top of an already rendered screen without
// clearing it.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position is where the box is anchored.
type Position int

const (
	Center Position = iota
	Top
	Bottom
	// BottomRight anchors the box to the lower right corner.
	BottomRight
)

// Config controls placement.
type Config struct {
	Width    int
	Height   int
	Position Position
	// PadX is the distance from the right edge for BottomRight.
	PadX int
	// PadY is the distance from the top or bottom edge.
	PadY int
}

// Place renders fg on top of bg. Both may contain ANSI styling. Rows of fg
// that fall outside the screen are dropped and wide rows are clipped.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x, y := position(cfg, lipgloss.Width(fg), len(fgLines))
	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		if cfg.Width > 0 {
			line = ansi.Truncate(line, max(cfg.Width-x, 0), "")
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of bg starting at column x with fg.
func splice(bg, fg string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	var right string
	if end := x + ansi.StringWidth(fg); end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + fg + right
}

func position(cfg Config, w, h int) (x, y int) {
	switch cfg.Position {
	case Top:
		x, y = (cfg.Width-w)/2, cfg.PadY
	case Bottom:
		x, y = (cfg.Width-w)/2, cfg.Height-h-cfg.PadY
	case BottomRight:
		x, y = cfg.Width-w-cfg.PadX, cfg.Height-h-cfg.PadY
	default:
		x, y = (cfg.Width-w)/2, (cfg.Height-h)/2
	}
	return max(x, 0), max(y, 0)
}
