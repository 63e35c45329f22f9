// Package surface defines what the decoration and cursor plugins need from
// the editing surface that hosts them.
package surface

import (
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/syntax"
)

// Selection is a cursor or selected range. Head is where the cursor is.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Cursor returns a collapsed selection at offset.
func Cursor(offset int) Selection { return Selection{Anchor: offset, Head: offset} }

// IsZero reports whether the selection is the collapsed cursor at 0.
func (s Selection) IsZero() bool { return s.Anchor == 0 && s.Head == 0 }

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// From returns the lower bound of the selection.
func (s Selection) From() int { return min(s.Anchor, s.Head) }

// To returns the upper bound of the selection.
func (s Selection) To() int { return max(s.Anchor, s.Head) }

// Clamp limits both ends to [0, n].
func (s Selection) Clamp(n int) Selection {
	return Selection{Anchor: clamp(s.Anchor, n), Head: clamp(s.Head, n)}
}

func clamp(v, n int) int {
	return min(max(v, 0), max(n, 0))
}

// UserEvent tags a transaction with the user action that caused it.
// Programmatic changes carry EventNone.
type UserEvent string

const (
	EventNone   UserEvent = ""
	EventSelect UserEvent = "select"
	EventInput  UserEvent = "input"
	EventDelete UserEvent = "delete"
	EventUndo   UserEvent = "undo"
	EventRedo   UserEvent = "redo"
)

// IsUser reports whether e is one of the recognised user actions.
func (e UserEvent) IsUser() bool {
	switch e {
	case EventSelect, EventInput, EventDelete, EventUndo, EventRedo:
		return true
	}
	return false
}

// Transaction is one state change folded into an Update.
type Transaction struct {
	Event      UserEvent
	DocChanged bool
}

// LineBlock is the layout of one document line. Top is its first screen
// row counted from the document start; Height is how many rows it occupies.
type LineBlock struct {
	From   int
	To     int
	Top    int
	Height int
}

// Layout converts between screen rows and document offsets.
type Layout interface {
	// LineBlockAt returns the block containing offset.
	LineBlockAt(offset int) LineBlock
	// LineAtHeight returns the block displayed at row.
	LineAtHeight(row int) LineBlock
}

// View is the live state of the surface. Reads always reflect the current
// state, never a snapshot taken when a plugin subscribed.
type View interface {
	Layout
	Document() *document.Document
	Selection() Selection
	// ScrollTop is the first visible row.
	ScrollTop() int
	// VisibleRanges are the document ranges currently on screen.
	VisibleRanges() []syntax.Range
}

// Host is a View that plugins may also steer.
type Host interface {
	View
	SetScrollTop(row int)
	// SetSelection moves the selection. The view only scrolls when
	// scrollIntoView is set.
	SetSelection(sel Selection, scrollIntoView bool)
}

// Update describes what changed in one dispatch.
type Update struct {
	View             View
	DocChanged       bool
	ViewportChanged  bool
	SelectionChanged bool
	Transactions     []Transaction
}

// Any reports whether anything changed.
func (u Update) Any() bool {
	return u.DocChanged || u.ViewportChanged || u.SelectionChanged
}

// IsUserEvent reports whether any transaction was caused by a user action.
func (u Update) IsUserEvent() bool {
	for _, tr := range u.Transactions {
		if tr.Event.IsUser() {
			return true
		}
	}
	return false
}

// DocLen returns the current document length.
func (u Update) DocLen() int {
	if u.View == nil || u.View.Document() == nil {
		return 0
	}
	return u.View.Document().Len()
}

// ScrollAnchor returns the offset of the topmost visible line.
func ScrollAnchor(v View) int {
	return v.LineAtHeight(v.ScrollTop()).From
}

// Plugin receives every update synchronously, before the frame renders.
type Plugin interface {
	Update(u Update)
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(Update)

// Update implements Plugin.
func (f PluginFunc) Update(u Update) { f(u) }
