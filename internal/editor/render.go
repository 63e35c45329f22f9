package editor

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/theme"
)

const (
	ruleGlyph   = "─"
	bulletGlyph = "•"
)

func (m *Model) gutterWidth() int {
	w := lipgloss.Width(theme.StatusBarGlyph)
	if m.opts.ShowLineNumbers {
		w += len(strconv.Itoa(m.doc.LineCount())) + 1
	}
	return w
}

// View renders the visible rows.
func (m *Model) View() string {
	set := decoration.Empty
	if m.decos != nil {
		if s := m.decos.Decorations(); s != nil {
			set = s
		}
	}
	st := m.theme.Styles()
	lay := m.layout()

	rows := make([]string, 0, m.height)
	var (
		shown    int
		rendered []string
	)
	for r := 0; r < m.height; r++ {
		row := m.top + r
		if row >= lay.rows() {
			rows = append(rows, strings.Repeat(" ", m.width))
			continue
		}
		n := lay.lineAtRow(row)
		if n != shown {
			shown = n
			rendered = m.renderLine(m.doc.Line(n), set, st, lay)
		}
		rows = append(rows, rendered[row-lay.first[n-1]])
	}
	return strings.Join(rows, "\n")
}

type lineRenderer struct {
	m     *Model
	st    theme.Styles
	body  lipgloss.Style
	out   []*strings.Builder
	width int

	// breaks are the absolute offsets that start a new row.
	breaks []int

	cursor        int
	cursorPending bool
}

// renderLine returns the screen rows of line l, one per layout row.
func (m *Model) renderLine(l document.Line, set *decoration.Set, st theme.Styles, lay *layout) []string {
	var (
		class    string
		replaces []decoration.Candidate
	)
	set.Between(l.From, l.To, func(c decoration.Candidate) {
		switch {
		case c.Kind == decoration.LineClass && c.From == l.From:
			class = c.Payload.Class
		case c.Kind == decoration.Replace && c.From >= l.From && c.From < l.To:
			replaces = append(replaces, c)
		}
	})

	bar := " "
	body := lipgloss.NewStyle()
	if ls, ok := st.Line(class); ok {
		bar = ls.Bar.Render(theme.StatusBarGlyph)
		body = ls.Body
	} else if m.opts.HighlightActiveLine && m.doc.LineAt(m.sel.Head).Number == l.Number {
		body = st.ActiveLine
	}

	gutter := bar
	cont := bar
	if m.opts.ShowLineNumbers {
		digits := len(strconv.Itoa(m.doc.LineCount()))
		num := strconv.Itoa(l.Number)
		gutter += st.LineNumber.Render(strings.Repeat(" ", digits-len(num))+num) + " "
		cont += strings.Repeat(" ", digits+1)
	}

	textWidth := m.textWidth()
	r := &lineRenderer{m: m, st: st, body: body, width: m.left + textWidth, cursor: -1, out: []*strings.Builder{{}}}
	if lay.wrap > 0 {
		r.width = lay.wrap
		for _, start := range wrapStarts(l.Text, lay.wrap)[1:] {
			r.breaks = append(r.breaks, l.From+start)
		}
	}
	if m.focused && m.sel.Head >= l.From && m.sel.Head <= l.To {
		r.cursor = m.sel.Head
	}
	r.line(l, replaces)

	rows := make([]string, len(r.out))
	for i := range r.out {
		content := ansi.Cut(r.out[i].String(), m.left, m.left+textWidth)
		if pad := textWidth - ansi.StringWidth(content); pad > 0 {
			content += body.Render(strings.Repeat(" ", pad))
		}
		if i == 0 {
			rows[i] = gutter + content
		} else {
			rows[i] = cont + content
		}
	}
	return rows
}

// advance starts a new row for every break at or before off.
func (r *lineRenderer) advance(off int) {
	for len(r.breaks) > 0 && r.breaks[0] <= off {
		r.breaks = r.breaks[1:]
		r.out = append(r.out, &strings.Builder{})
	}
}

func (r *lineRenderer) line(l document.Line, replaces []decoration.Candidate) {
	text := l.Text
	pos := 0
	state := -1
	for pos < len(text) {
		off := l.From + pos
		r.advance(off)
		if len(replaces) > 0 && replaces[0].From == off {
			c := replaces[0]
			replaces = replaces[1:]
			r.widget(c)
			next := min(c.To-l.From, len(text))
			if next > pos {
				pos = next
				state = -1
				continue
			}
		}
		cluster, _, _, newState := uniseg.StepString(text[pos:], state)
		state = newState
		r.cell(off, cluster)
		pos += len(cluster)
	}
	r.advance(l.To)
	if r.cursor == l.To || r.cursorPending {
		r.cur().WriteString(r.st.Cursor.Render(" "))
	}
}

func (r *lineRenderer) widget(c decoration.Candidate) {
	covers := r.cursor >= c.From && r.cursor < c.To
	switch c.Payload.Widget {
	case decoration.WidgetRule:
		r.emit(strings.Repeat(ruleGlyph, max(r.width, 1)), r.st.Rule, c.From, covers)
	case decoration.WidgetBullet:
		r.emit(bulletGlyph, r.m.theme.BulletStyle(c.Payload.Color), c.From, covers)
	default:
		if covers {
			r.cursorPending = true
		}
	}
}

func (r *lineRenderer) cell(off int, cluster string) {
	if cluster == "\t" {
		cluster = strings.Repeat(" ", TabWidth)
	}
	cursor := off == r.cursor || r.cursorPending
	r.cursorPending = false
	r.emit(cluster, r.st.Text, off, cursor)
}

func (r *lineRenderer) emit(s string, role lipgloss.Style, off int, cursor bool) {
	style := role
	sel := r.m.sel
	if !sel.Empty() && off >= sel.From() && off < sel.To() {
		style = style.Inherit(r.st.Selection)
	}
	style = style.Inherit(r.body)
	if cursor {
		style = style.Reverse(true)
		r.cursorPending = false
		r.cursor = -1
	}
	r.cur().WriteString(style.Render(s))
}

func (r *lineRenderer) cur() *strings.Builder {
	return r.out[len(r.out)-1]
}
