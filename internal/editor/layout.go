package editor

import (
	"sort"

	"github.com/rivo/uniseg"

	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/surface"
)

// layout maps document lines to screen rows. With wrapping off every line
// is one row; with wrapping on a line takes as many rows as its text needs
// at the current text width.
type layout struct {
	doc   *document.Document
	wrap  int // wrap width in cells, 0 when not wrapping
	first []int
}

// wrapStarts returns the byte offsets in text at which each screen row
// begins. The first entry is always 0. Rows break between grapheme clusters;
// a cluster wider than width gets a row to itself.
func wrapStarts(text string, width int) []int {
	starts := []int{0}
	if width <= 0 {
		return starts
	}
	col, pos := 0, 0
	state := -1
	for rest := text; len(rest) > 0; {
		cluster, r, _, newState := uniseg.StepString(rest, state)
		w := graphemeWidth(cluster)
		if col > 0 && col+w > width {
			starts = append(starts, pos)
			col = 0
		}
		col += w
		pos += len(cluster)
		rest = r
		state = newState
	}
	return starts
}

// rowOf returns which row of a wrapped line shows the byte offset col.
func rowOf(starts []int, col int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > col }) - 1
}

func newLayout(doc *document.Document, wrap int) *layout {
	n := doc.LineCount()
	l := &layout{doc: doc, wrap: wrap, first: make([]int, n+1)}
	for i := 1; i <= n; i++ {
		rows := 1
		if wrap > 0 {
			rows = len(wrapStarts(doc.Line(i).Text, wrap))
		}
		l.first[i] = l.first[i-1] + rows
	}
	return l
}

// rows is the total row count.
func (l *layout) rows() int { return l.first[len(l.first)-1] }

// lineAtRow returns the number of the line shown at row, clamped to the
// document.
func (l *layout) lineAtRow(row int) int {
	row = min(max(row, 0), l.rows()-1)
	return sort.Search(len(l.first)-1, func(i int) bool { return l.first[i+1] > row }) + 1
}

func (l *layout) block(n int) surface.LineBlock {
	line := l.doc.Line(n)
	return surface.LineBlock{
		From:   line.From,
		To:     line.To,
		Top:    l.first[n-1],
		Height: l.first[n] - l.first[n-1],
	}
}

func (m *Model) textWidth() int {
	return max(m.width-m.gutterWidth(), 1)
}

func (m *Model) wrapWidth() int {
	if !m.opts.WordWrap {
		return 0
	}
	return m.textWidth()
}

// layout returns the row layout for the current document and width,
// rebuilding it when either changed.
func (m *Model) layout() *layout {
	wrap := m.wrapWidth()
	if m.lay == nil || m.lay.doc != m.doc || m.lay.wrap != wrap {
		m.lay = newLayout(m.doc, wrap)
	}
	return m.lay
}

// cursorRow returns the screen row of the selection head.
func (m *Model) cursorRow() int {
	lay := m.layout()
	line := m.doc.LineAt(m.sel.Head)
	row := lay.first[line.Number-1]
	if lay.wrap > 0 {
		row += rowOf(wrapStarts(line.Text, lay.wrap), m.sel.Head-line.From)
	}
	return row
}

// relayout keeps the line at the top of the screen in place after the wrap
// width changed, and reports whether the first visible row moved.
func (m *Model) relayout(anchor int) bool {
	prev := m.top
	m.top = m.LineBlockAt(anchor).Top
	if m.opts.WordWrap {
		m.left = 0
	}
	return m.top != prev
}
