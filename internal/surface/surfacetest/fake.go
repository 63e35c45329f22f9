// Package surfacetest provides an in-memory editing surface for tests.
package surfacetest

import (
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/surface"
	"github.com/zjrosen/smartmd/internal/syntax"
)

// Host lays out one row per line with a fixed viewport height.
type Host struct {
	Doc    *document.Document
	Sel    surface.Selection
	Top    int
	Height int

	// ScrolledIntoView records the last SetSelection scroll flag.
	ScrolledIntoView bool
	SelectionSets    int
	ScrollSets       int
}

var _ surface.Host = (*Host)(nil)

// New returns a host showing text with a viewport of height rows.
func New(id, text string, height int) *Host {
	return &Host{Doc: document.NewWithID(id, text), Height: height}
}

func (h *Host) Document() *document.Document { return h.Doc }
func (h *Host) Selection() surface.Selection { return h.Sel }
func (h *Host) ScrollTop() int               { return h.Top }

// VisibleRanges covers the lines from Top to Top+Height-1.
func (h *Host) VisibleRanges() []syntax.Range {
	first := h.Doc.Line(h.Top + 1)
	last := h.Doc.Line(h.Top + max(h.Height, 1))
	return []syntax.Range{{From: first.From, To: last.To}}
}

func (h *Host) LineBlockAt(offset int) surface.LineBlock {
	l := h.Doc.LineAt(offset)
	return surface.LineBlock{From: l.From, To: l.To, Top: l.Number - 1, Height: 1}
}

func (h *Host) LineAtHeight(row int) surface.LineBlock {
	l := h.Doc.Line(row + 1)
	return surface.LineBlock{From: l.From, To: l.To, Top: l.Number - 1, Height: 1}
}

func (h *Host) SetScrollTop(row int) {
	h.ScrollSets++
	h.Top = min(max(row, 0), h.Doc.LineCount()-1)
}

func (h *Host) SetSelection(sel surface.Selection, scrollIntoView bool) {
	h.SelectionSets++
	h.Sel = sel
	h.ScrolledIntoView = scrollIntoView
}

// Update builds an update for the host's current state.
func (h *Host) Update(doc, viewport, selection bool, events ...surface.UserEvent) surface.Update {
	u := surface.Update{View: h, DocChanged: doc, ViewportChanged: viewport, SelectionChanged: selection}
	for _, e := range events {
		u.Transactions = append(u.Transactions, surface.Transaction{Event: e, DocChanged: doc})
	}
	return u
}
