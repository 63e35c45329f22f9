package editor

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// TabWidth is how many columns a tab character occupies.
const TabWidth = 4

// prevBoundary returns the byte offset of the grapheme cluster that ends at
// offset. Offsets are relative to s.
func prevBoundary(s string, offset int) int {
	if offset <= 0 {
		return 0
	}
	prev := 0
	pos := 0
	state := -1
	rest := s
	for len(rest) > 0 && pos < offset {
		cluster, r, _, newState := uniseg.StepString(rest, state)
		prev = pos
		pos += len(cluster)
		rest = r
		state = newState
	}
	return prev
}

// nextBoundary returns the byte offset after the grapheme cluster starting
// at or containing offset.
func nextBoundary(s string, offset int) int {
	if offset >= len(s) {
		return len(s)
	}
	pos := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		cluster, r, _, newState := uniseg.StepString(rest, state)
		pos += len(cluster)
		if pos > offset {
			return pos
		}
		rest = r
		state = newState
	}
	return len(s)
}

// graphemeWidth returns the display width of one cluster.
func graphemeWidth(cluster string) int {
	if cluster == "\t" {
		return TabWidth
	}
	return runewidth.StringWidth(cluster)
}

// displayWidth returns the display width of s in terminal columns.
func displayWidth(s string) int {
	width := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		width += graphemeWidth(cluster)
		s = rest
		state = newState
	}
	return width
}

// offsetAtColumn returns the byte offset in line of the grapheme that
// covers display column col, or len(line) when col is past the end.
func offsetAtColumn(line string, col int) int {
	pos := 0
	width := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		cluster, r, _, newState := uniseg.StepString(rest, state)
		w := graphemeWidth(cluster)
		if width+w > col {
			return pos
		}
		width += w
		pos += len(cluster)
		rest = r
		state = newState
	}
	return len(line)
}

// wordStartBefore returns the offset where the word ending at offset begins,
// skipping whitespace first.
func wordStartBefore(s string, offset int) int {
	runes := []rune(s[:offset])
	i := len(runes)
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	word := i > 0 && isWordRune(runes[i-1])
	for i > 0 && !unicode.IsSpace(runes[i-1]) && isWordRune(runes[i-1]) == word {
		i--
	}
	return len(string(runes[:i]))
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
