package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestPlace_Center(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	fg := "X"
	cfg := Config{Width: 5, Height: 3, Position: Center}

	lines := strings.Split(Place(cfg, fg, bg), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "AAXAA", lines[1])
	assert.Equal(t, "AAAAA", lines[0])
}

func TestPlace_ClipsWideForeground(t *testing.T) {
	bg := "AAA\nAAA\nAAA"
	fg := "XXXXX\nXXXXX"
	cfg := Config{Width: 3, Height: 3, Position: Center}

	lines := strings.Split(Place(cfg, fg, bg), "\n")
	assert.Len(t, lines, 3)
	for _, l := range lines {
		assert.LessOrEqual(t, ansi.StringWidth(l), 3)
	}
	assert.Equal(t, "XXX", lines[0])
}

func TestPlace_TopWithPadding(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	cfg := Config{Width: 5, Height: 3, Position: Top, PadY: 1}

	lines := strings.Split(Place(cfg, "XX", bg), "\n")
	assert.Equal(t, "AAAAA", lines[0])
	assert.Contains(t, lines[1], "XX")
}

func TestPlace_Bottom(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	cfg := Config{Width: 5, Height: 3, Position: Bottom}

	lines := strings.Split(Place(cfg, "XX", bg), "\n")
	assert.Contains(t, lines[2], "XX")
	assert.Equal(t, "AAAAA", lines[0])
}

func TestPlace_BottomRight(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	cfg := Config{Width: 5, Height: 3, Position: BottomRight, PadX: 1, PadY: 1}

	lines := strings.Split(Place(cfg, "XX", bg), "\n")
	assert.Equal(t, "AAXXA", lines[1])
	assert.Equal(t, "AAAAA", lines[2])
}

func TestPlace_PadsShortBackground(t *testing.T) {
	cfg := Config{Width: 4, Height: 3, Position: Bottom}

	lines := strings.Split(Place(cfg, "XX", "AB"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, " XX ", lines[2])
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("AAAAA")
	cfg := Config{Width: 5, Height: 1, Position: Center}

	out := Place(cfg, "X", styled)
	assert.Equal(t, "AAXAA", ansi.Strip(out))
}
