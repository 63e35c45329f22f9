// Package editor is the terminal editing surface. It owns the document
// snapshot, selection and scroll position, reports every change to its
// plugins before the next frame renders, and draws the decorations they
// publish.
package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/keys"
	"github.com/zjrosen/smartmd/internal/surface"
	"github.com/zjrosen/smartmd/internal/syntax"
	"github.com/zjrosen/smartmd/internal/theme"
)

// wheelStep is how many rows one mouse wheel notch scrolls.
const wheelStep = 3

// DecorationSource supplies the decorations to draw.
type DecorationSource interface {
	Decorations() *decoration.Set
}

// Options are the display switches taken from settings.
type Options struct {
	ShowLineNumbers     bool
	HighlightActiveLine bool
	// WordWrap soft-wraps long lines instead of scrolling horizontally.
	WordWrap bool
}

// ChangeMsg is sent after a user edit changed the document.
type ChangeMsg struct {
	Doc *document.Document
}

type change struct {
	doc       bool
	viewport  bool
	selection bool
	event     surface.UserEvent
}

func (c change) any() bool { return c.doc || c.viewport || c.selection }

// Model is the editing surface. It is used by pointer because plugins keep
// a reference to it as their surface.View.
type Model struct {
	doc     *document.Document
	sel     surface.Selection
	top     int
	left    int
	width   int
	height  int
	goalCol int
	focused bool
	opts    Options

	lay     *layout
	hist    history
	plugins []surface.Plugin
	decos   DecorationSource
	theme   *theme.Context

	dispatching bool
	queued      []change
}

var _ surface.Host = (*Model)(nil)

// New creates a focused editor over an empty document.
func New(th *theme.Context) *Model {
	return &Model{
		doc:     document.New(""),
		goalCol: -1,
		focused: true,
		height:  1,
		width:   80,
		theme:   th,
	}
}

// AddPlugin registers p for updates. Plugins run in registration order.
func (m *Model) AddPlugin(p surface.Plugin) {
	m.plugins = append(m.plugins, p)
}

// SetDecorations sets where decorations are read from when rendering.
func (m *Model) SetDecorations(src DecorationSource) {
	m.decos = src
}

// SetOptions replaces the display options. The line at the top of the
// screen stays there when wrapping or the gutter width changes.
func (m *Model) SetOptions(opts Options) {
	if opts == m.opts {
		return
	}
	anchor := surface.ScrollAnchor(m)
	m.opts = opts
	m.dispatch(change{viewport: m.relayout(anchor)})
}

// Options returns the display options.
func (m *Model) Options() Options { return m.opts }

// Focus gives the editor keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard focus; the cursor is not drawn.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the editor has focus.
func (m *Model) Focused() bool { return m.focused }

// SetSize sets the viewport size in cells.
func (m *Model) SetSize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == m.width && height == m.height {
		return
	}
	anchor := surface.ScrollAnchor(m)
	m.width, m.height = width, height
	m.relayout(anchor)
	m.ensureCursorVisible()
	m.dispatch(change{viewport: true})
}

// Size returns the viewport size in cells.
func (m *Model) Size() (width, height int) { return m.width, m.height }

// SetDocument shows another document. Selection and scroll are reset and
// plugins see a programmatic update, the same as a fresh mount.
func (m *Model) SetDocument(doc *document.Document) {
	m.doc = doc
	m.sel = surface.Selection{}
	m.top, m.left = 0, 0
	m.goalCol = -1
	m.hist.reset()
	m.dispatch(change{doc: true, viewport: true, selection: true})
}

// Reload replaces the text of the current document after an external change
// and places the selection at sel.
func (m *Model) Reload(doc *document.Document, sel surface.Selection) {
	m.doc = doc
	m.sel = sel.Clamp(doc.Len())
	m.goalCol = -1
	m.hist.reset()
	m.ensureCursorVisible()
	m.dispatch(change{doc: true, viewport: true, selection: true})
}

// CanUndo reports whether there is an edit to undo.
func (m *Model) CanUndo() bool { return len(m.hist.undo) > 0 }

// CanRedo reports whether there is an undone edit to redo.
func (m *Model) CanRedo() bool { return len(m.hist.redo) > 0 }

// surface.View

func (m *Model) Document() *document.Document { return m.doc }
func (m *Model) Selection() surface.Selection { return m.sel }
func (m *Model) ScrollTop() int               { return m.top }

// VisibleRanges covers the lines currently on screen.
func (m *Model) VisibleRanges() []syntax.Range {
	lay := m.layout()
	first := m.doc.Line(lay.lineAtRow(m.top))
	last := m.doc.Line(lay.lineAtRow(m.top + m.height - 1))
	return []syntax.Range{{From: first.From, To: last.To}}
}

// LineBlockAt returns the layout of the line containing offset. A wrapped
// line is one block spanning several rows.
func (m *Model) LineBlockAt(offset int) surface.LineBlock {
	return m.layout().block(m.doc.LineAt(offset).Number)
}

// LineAtHeight returns the layout of the line shown at row.
func (m *Model) LineAtHeight(row int) surface.LineBlock {
	lay := m.layout()
	return lay.block(lay.lineAtRow(row))
}

// surface.Host

// SetScrollTop scrolls so row is the first visible row.
func (m *Model) SetScrollTop(row int) {
	row = min(max(row, 0), m.layout().rows()-1)
	if row == m.top {
		return
	}
	m.top = row
	m.dispatch(change{viewport: true})
}

// SetSelection moves the selection without recording a user action.
func (m *Model) SetSelection(sel surface.Selection, scrollIntoView bool) {
	sel = sel.Clamp(m.doc.Len())
	c := change{selection: sel != m.sel}
	m.sel = sel
	m.goalCol = -1
	if scrollIntoView {
		c.viewport = m.ensureCursorVisible()
	}
	m.dispatch(c)
}

// dispatch reports c to every plugin. Changes made by a plugin while it is
// being notified are queued and reported once the current round finishes.
func (m *Model) dispatch(c change) {
	if !c.any() {
		return
	}
	if m.dispatching {
		m.queued = append(m.queued, c)
		return
	}
	m.dispatching = true
	u := surface.Update{
		View:             m,
		DocChanged:       c.doc,
		ViewportChanged:  c.viewport,
		SelectionChanged: c.selection,
		Transactions:     []surface.Transaction{{Event: c.event, DocChanged: c.doc}},
	}
	for _, p := range m.plugins {
		p.Update(u)
	}
	m.dispatching = false

	if len(m.queued) > 0 {
		next := m.queued[0]
		m.queued = m.queued[1:]
		m.dispatch(next)
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update handles keys and mouse input.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.KeyMsg:
		before := m.doc
		m.handleKey(msg)
		if m.doc != before {
			doc := m.doc
			return m, func() tea.Msg { return ChangeMsg{Doc: doc} }
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	k := keys.Editor
	switch {
	case key.Matches(msg, k.Left):
		m.moveHorizontal(-1, false)
	case key.Matches(msg, k.Right):
		m.moveHorizontal(1, false)
	case key.Matches(msg, k.SelectLeft):
		m.moveHorizontal(-1, true)
	case key.Matches(msg, k.SelectRight):
		m.moveHorizontal(1, true)
	case key.Matches(msg, k.Up):
		m.moveVertical(-1, false)
	case key.Matches(msg, k.Down):
		m.moveVertical(1, false)
	case key.Matches(msg, k.SelectUp):
		m.moveVertical(-1, true)
	case key.Matches(msg, k.SelectDown):
		m.moveVertical(1, true)
	case key.Matches(msg, k.PageUp):
		m.movePage(-1)
	case key.Matches(msg, k.PageDown):
		m.movePage(1)
	case key.Matches(msg, k.LineStart):
		m.moveTo(m.doc.LineAt(m.sel.Head).From, false)
	case key.Matches(msg, k.LineEnd):
		m.moveTo(m.doc.LineAt(m.sel.Head).To, false)
	case key.Matches(msg, k.SelectLineStart):
		m.moveTo(m.doc.LineAt(m.sel.Head).From, true)
	case key.Matches(msg, k.SelectLineEnd):
		m.moveTo(m.doc.LineAt(m.sel.Head).To, true)
	case key.Matches(msg, k.DocStart):
		m.moveTo(0, false)
	case key.Matches(msg, k.DocEnd):
		m.moveTo(m.doc.Len(), false)
	case key.Matches(msg, k.SelectAll):
		m.selectRange(surface.Selection{Anchor: 0, Head: m.doc.Len()})
	case key.Matches(msg, k.ScrollUp):
		m.scrollBy(-1)
	case key.Matches(msg, k.ScrollDown):
		m.scrollBy(1)
	case key.Matches(msg, k.Newline):
		m.hist.breakGroup()
		m.insert("\n")
		m.hist.breakGroup()
	case key.Matches(msg, k.Tab):
		m.insert("\t")
	case key.Matches(msg, k.DeleteBackward):
		m.deleteBackward()
	case key.Matches(msg, k.DeleteForward):
		m.deleteForward()
	case key.Matches(msg, k.DeleteWordBack):
		m.deleteWordBackward()
	case key.Matches(msg, k.Undo):
		m.undo()
	case key.Matches(msg, k.Redo):
		m.redo()
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace:
		text := string(msg.Runes)
		if msg.Paste {
			text = strings.ReplaceAll(text, "\r\n", "\n")
		}
		m.insert(text)
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollBy(-wheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollBy(wheelStep)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		m.moveTo(m.offsetAtCell(msg.X, msg.Y), false)
	}
}

// offsetAtCell maps a click at screen cell (x, y) to a document offset.
func (m *Model) offsetAtCell(x, y int) int {
	lay := m.layout()
	row := m.top + y
	if row >= lay.rows() {
		return m.doc.Len()
	}
	n := lay.lineAtRow(row)
	line := m.doc.Line(n)
	col := max(x-m.gutterWidth(), 0) + m.left
	if lay.wrap == 0 {
		return line.From + offsetAtColumn(line.Text, col)
	}

	starts := wrapStarts(line.Text, lay.wrap)
	seg := row - lay.first[n-1]
	from, to := starts[seg], len(line.Text)
	if seg+1 < len(starts) {
		to = starts[seg+1]
	}
	text := line.Text[from:to]
	off := offsetAtColumn(text, col)
	if off == len(text) && seg+1 < len(starts) {
		// past the end of a wrapped row lands on its last cluster
		off = prevBoundary(text, off)
	}
	return line.From + from + off
}

// Motion

func (m *Model) moveHorizontal(dir int, extend bool) {
	head := m.sel.Head
	switch {
	case !extend && !m.sel.Empty() && dir < 0:
		head = m.sel.From()
	case !extend && !m.sel.Empty() && dir > 0:
		head = m.sel.To()
	case dir < 0:
		head = prevBoundary(m.doc.Text(), head)
	default:
		head = nextBoundary(m.doc.Text(), head)
	}
	m.moveTo(head, extend)
}

func (m *Model) moveVertical(lines int, extend bool) {
	cur := m.doc.LineAt(m.sel.Head)
	target := cur.Number + lines
	goal := m.goalCol
	if goal < 0 {
		goal = displayWidth(cur.Text[:m.sel.Head-cur.From])
	}
	var head int
	switch {
	case target < 1:
		head = 0
	case target > m.doc.LineCount():
		head = m.doc.Len()
	default:
		l := m.doc.Line(target)
		head = l.From + offsetAtColumn(l.Text, goal)
	}
	m.moveTo(head, extend)
	m.goalCol = goal
}

func (m *Model) movePage(dir int) {
	m.top = min(max(m.top+dir*m.height, 0), m.layout().rows()-1)
	m.moveVertical(dir*m.height, false)
}

func (m *Model) moveTo(head int, extend bool) {
	head = m.doc.Clamp(head)
	anchor := head
	if extend {
		anchor = m.sel.Anchor
	}
	m.selectRange(surface.Selection{Anchor: anchor, Head: head})
}

func (m *Model) selectRange(sel surface.Selection) {
	m.sel = sel
	m.goalCol = -1
	m.hist.breakGroup()
	// motions that hit a document edge still report a user selection
	m.dispatch(change{selection: true, viewport: m.ensureCursorVisible(), event: surface.EventSelect})
}

func (m *Model) scrollBy(rows int) {
	m.SetScrollTop(m.top + rows)
}

// ensureCursorVisible scrolls the minimum needed to show the cursor and
// reports whether the first visible row changed.
func (m *Model) ensureCursorVisible() bool {
	prev := m.top
	row := m.cursorRow()
	if row < m.top {
		m.top = row
	}
	if row >= m.top+m.height {
		m.top = row - m.height + 1
	}
	if m.opts.WordWrap {
		m.left = 0
		return m.top != prev
	}

	line := m.doc.LineAt(m.sel.Head)
	textWidth := m.textWidth()
	col := displayWidth(line.Text[:m.sel.Head-line.From])
	if col < m.left {
		m.left = col
	}
	if col >= m.left+textWidth {
		m.left = col - textWidth + 1
	}
	return m.top != prev
}

// Editing

func (m *Model) snapshot() snapshot {
	return snapshot{text: m.doc.Text(), sel: m.sel}
}

func (m *Model) replace(from, to int, insert string, event surface.UserEvent) {
	m.hist.record(m.snapshot(), event, m.sel.Head)
	m.doc = m.doc.Replace(from, to, insert)
	m.sel = surface.Cursor(from + len(insert))
	m.hist.settle(m.sel.Head)
	m.goalCol = -1
	prevTop := m.top
	m.ensureCursorVisible()
	m.dispatch(change{doc: true, selection: true, viewport: m.top != prevTop, event: event})
}

func (m *Model) insert(text string) {
	if text == "" {
		return
	}
	m.replace(m.sel.From(), m.sel.To(), text, surface.EventInput)
}

func (m *Model) deleteBackward() {
	if !m.sel.Empty() {
		m.replace(m.sel.From(), m.sel.To(), "", surface.EventDelete)
		return
	}
	if m.sel.Head == 0 {
		return
	}
	m.replace(prevBoundary(m.doc.Text(), m.sel.Head), m.sel.Head, "", surface.EventDelete)
}

func (m *Model) deleteForward() {
	if !m.sel.Empty() {
		m.replace(m.sel.From(), m.sel.To(), "", surface.EventDelete)
		return
	}
	if m.sel.Head >= m.doc.Len() {
		return
	}
	m.replace(m.sel.Head, nextBoundary(m.doc.Text(), m.sel.Head), "", surface.EventDelete)
}

func (m *Model) deleteWordBackward() {
	if !m.sel.Empty() {
		m.deleteBackward()
		return
	}
	line := m.doc.LineAt(m.sel.Head)
	from := line.From + wordStartBefore(line.Text, m.sel.Head-line.From)
	if from == m.sel.Head {
		m.deleteBackward()
		return
	}
	m.hist.breakGroup()
	m.replace(from, m.sel.Head, "", surface.EventDelete)
	m.hist.breakGroup()
}

func (m *Model) undo() {
	s, ok := m.hist.popUndo(m.snapshot())
	if !ok {
		return
	}
	m.restore(s, surface.EventUndo)
}

func (m *Model) redo() {
	s, ok := m.hist.popRedo(m.snapshot())
	if !ok {
		return
	}
	m.restore(s, surface.EventRedo)
}

func (m *Model) restore(s snapshot, event surface.UserEvent) {
	m.doc = m.doc.WithText(s.text)
	m.sel = s.sel.Clamp(m.doc.Len())
	m.goalCol = -1
	prevTop := m.top
	m.ensureCursorVisible()
	m.dispatch(change{doc: true, selection: true, viewport: m.top != prevTop, event: event})
}
