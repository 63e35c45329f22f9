// Package decoration builds the visual replacements drawn over a Markdown
// document: hidden markers, rule widgets, bullet glyphs and status line
// classes.
//
// Building happens in two steps. Candidates are collected per feature and
// simply concatenated; Resolve then sorts them and drops anything that
// overlaps an earlier candidate or falls outside the document. Only Resolve
// enforces the non-overlap guarantee of a Set.
package decoration

import (
	"fmt"
	"strings"
)

// Kind distinguishes span replacements from whole-line styling.
type Kind int

const (
	// Replace substitutes the span [From, To) with a widget.
	Replace Kind = iota
	// LineClass styles the line starting at From. It is zero-width.
	LineClass
)

func (k Kind) String() string {
	switch k {
	case Replace:
		return "replace"
	case LineClass:
		return "line"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Widget names what a Replace candidate draws in place of its span.
type Widget string

const (
	WidgetHidden Widget = "hidden"
	WidgetRule   Widget = "rule"
	WidgetBullet Widget = "bullet"
)

// Inherit is the bullet color used when none is configured.
const Inherit = "inherit"

// Payload carries what the rendering surface needs for one candidate.
type Payload struct {
	Widget Widget `json:"widget,omitempty"`
	Color  string `json:"color,omitempty"`
	Class  string `json:"class,omitempty"`
}

// Candidate is one proposed decoration.
type Candidate struct {
	From    int     `json:"from"`
	To      int     `json:"to"`
	Kind    Kind    `json:"kind"`
	Payload Payload `json:"payload"`
}

func (c Candidate) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-%d %s", c.From, c.To, c.Kind)
	if c.Payload.Widget != "" {
		fmt.Fprintf(&b, " widget=%s", c.Payload.Widget)
	}
	if c.Payload.Color != "" {
		fmt.Fprintf(&b, " color=%s", c.Payload.Color)
	}
	if c.Payload.Class != "" {
		fmt.Fprintf(&b, " class=%s", c.Payload.Class)
	}
	return b.String()
}

// Set is an ordered, non-overlapping sequence of candidates. A Set is never
// modified after Resolve returns it.
type Set struct {
	items []Candidate
}

// Empty is the set with no decorations.
var Empty = &Set{}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the i-th decoration.
func (s *Set) At(i int) Candidate { return s.items[i] }

// Items returns a copy of the decorations.
func (s *Set) Items() []Candidate {
	if s == nil {
		return nil
	}
	out := make([]Candidate, len(s.items))
	copy(out, s.items)
	return out
}

// Between calls visit for every decoration intersecting [from, to], in order.
// Zero-width decorations at from or to are included.
func (s *Set) Between(from, to int, visit func(Candidate)) {
	if s == nil {
		return
	}
	for _, c := range s.items {
		if c.From > to {
			return
		}
		if c.To < from || (c.To == from && c.From < c.To) {
			continue
		}
		visit(c)
	}
}

// Equal reports whether both sets hold the same decorations in the same order.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.items[i] != other.items[i] {
			return false
		}
	}
	return true
}
