// Package document provides immutable text snapshots with line lookup.
//
// Offsets are byte offsets into the UTF-8 text. A Document never changes once
// created; edits produce a new snapshot with the same ID and a higher Version.
package document

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Line describes one line of a document. To excludes the line break.
type Line struct {
	Number int // 1-based
	From   int
	To     int
	Text   string
}

// Document is an immutable text snapshot.
type Document struct {
	id      string
	version uint64
	text    string
	starts  []int // byte offset of each line start
}

// New creates a document with a fresh random identity at version 1.
func New(text string) *Document {
	return NewWithID(uuid.NewString(), text)
}

// NewWithID creates a document with an explicit identity at version 1.
func NewWithID(id, text string) *Document {
	return &Document{
		id:      id,
		version: 1,
		text:    text,
		starts:  lineStarts(text),
	}
}

// WithText returns a new snapshot of the same document with replaced text.
func (d *Document) WithText(text string) *Document {
	return &Document{
		id:      d.id,
		version: d.version + 1,
		text:    text,
		starts:  lineStarts(text),
	}
}

// Replace returns a new snapshot with [from, to) replaced by insert.
// Out-of-range offsets are clamped.
func (d *Document) Replace(from, to int, insert string) *Document {
	from = d.Clamp(from)
	to = d.Clamp(to)
	if to < from {
		from, to = to, from
	}
	var b strings.Builder
	b.Grow(len(d.text) - (to - from) + len(insert))
	b.WriteString(d.text[:from])
	b.WriteString(insert)
	b.WriteString(d.text[to:])
	return d.WithText(b.String())
}

func (d *Document) ID() string      { return d.id }
func (d *Document) Version() uint64 { return d.version }
func (d *Document) Text() string    { return d.text }
func (d *Document) Len() int        { return len(d.text) }

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int { return len(d.starts) }

// Clamp limits an offset to [0, Len()].
func (d *Document) Clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(d.text) {
		return len(d.text)
	}
	return offset
}

// Slice returns the text in [from, to), clamped to the document bounds.
func (d *Document) Slice(from, to int) string {
	from = d.Clamp(from)
	to = d.Clamp(to)
	if to <= from {
		return ""
	}
	return d.text[from:to]
}

// Line returns the 1-based line n, clamped to the valid range.
func (d *Document) Line(n int) Line {
	if n < 1 {
		n = 1
	}
	if n > len(d.starts) {
		n = len(d.starts)
	}
	from := d.starts[n-1]
	to := len(d.text)
	if n < len(d.starts) {
		to = d.starts[n] - 1
	}
	return Line{Number: n, From: from, To: to, Text: d.text[from:to]}
}

// LineAt returns the line containing offset.
func (d *Document) LineAt(offset int) Line {
	offset = d.Clamp(offset)
	// first start greater than offset, minus one
	idx := sort.SearchInts(d.starts, offset+1)
	return d.Line(idx)
}

func lineStarts(text string) []int {
	starts := make([]int, 1, strings.Count(text, "\n")+1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
