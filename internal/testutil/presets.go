package testutil

import "time"

// WithStandardStates adds a small set of saved view states: a full entry,
// a scroll-only entry, a selection-only entry and one saved a month ago.
func (b *Builder) WithStandardStates() *Builder {
	return b.
		WithDocumentState("doc-full", Selection(4, 10), Scroll(120)).
		WithDocumentState("doc-scroll", Scroll(300)).
		WithDocumentState("doc-cursor", Cursor(7)).
		WithDocumentState("doc-old", Cursor(1), SavedAt(time.Now().AddDate(0, -1, 0)))
}
