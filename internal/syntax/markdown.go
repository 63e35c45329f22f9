package syntax

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var parser = goldmark.New(goldmark.WithExtensions(extension.Strikethrough)).Parser()

// Markdown is a Tree built from goldmark's AST.
//
// goldmark records content segments rather than delimiter positions, so mark
// spans are recovered from the source around those segments. Constructs whose
// delimiters cannot be located unambiguously are left out rather than guessed.
type Markdown struct {
	nodes   []Node
	maxSpan int
	length  int
}

// Parse builds a Markdown tree for src.
func Parse(src string) (tree *Markdown, err error) {
	defer func() {
		if r := recover(); r != nil {
			tree, err = nil, fmt.Errorf("parsing markdown: %v", r)
		}
	}()

	source := []byte(src)
	root := parser.Parse(text.NewReader(source))

	c := &collector{src: source}
	c.collectStarts(root)
	if err := ast.Walk(root, c.visit); err != nil {
		return nil, fmt.Errorf("walking markdown tree: %w", err)
	}

	sort.SliceStable(c.nodes, func(i, j int) bool {
		if c.nodes[i].From != c.nodes[j].From {
			return c.nodes[i].From < c.nodes[j].From
		}
		return c.nodes[i].To < c.nodes[j].To
	})
	maxSpan := 0
	for _, n := range c.nodes {
		if n.To-n.From > maxSpan {
			maxSpan = n.To - n.From
		}
	}
	return &Markdown{nodes: c.nodes, maxSpan: maxSpan, length: len(source)}, nil
}

// Nodes returns every mark node in document order.
func (m *Markdown) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}

// Iterate implements Tree.
func (m *Markdown) Iterate(from, to int, visit func(Node) bool) error {
	if from < 0 || to > m.length || from > to {
		return fmt.Errorf("iterate range [%d,%d] outside document of length %d", from, to, m.length)
	}
	start := sort.Search(len(m.nodes), func(i int) bool {
		return m.nodes[i].From >= from-m.maxSpan
	})
	for _, n := range m.nodes[start:] {
		if n.From > to {
			break
		}
		if n.To < from {
			continue
		}
		if !visit(n) {
			return nil
		}
	}
	return nil
}

type collector struct {
	src      []byte
	nodes    []Node
	lastStop int
	starts   []int // sorted content segment starts, used to bound gap scans
}

func (c *collector) add(name string, from, to int) {
	if from < 0 || to > len(c.src) || from >= to {
		return
	}
	c.nodes = append(c.nodes, Node{Name: name, From: from, To: to})
}

func (c *collector) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	switch v := n.(type) {
	case *ast.Heading:
		c.heading(v)
	case *ast.ThematicBreak:
		c.thematicBreak()
	case *ast.ListItem:
		c.listItem(v)
	case *ast.Emphasis:
		name := EmphasisMark
		if v.Level >= 2 {
			name = StrongMark
		}
		c.delimited(v, name)
	case *ast.CodeSpan:
		c.delimited(v, CodeMark)
	case *ast.Link:
		c.delimited(v, LinkMark)
	case *ast.Image:
		c.delimited(v, LinkMark)
	case *extast.Strikethrough:
		c.delimited(v, StrikethroughMark)
	}

	switch {
	case n.Type() == ast.TypeBlock && n.Lines().Len() > 0:
		last := n.Lines().At(n.Lines().Len() - 1)
		c.lastStop = max(c.lastStop, last.Stop)
	case n.Kind() == ast.KindText:
		c.lastStop = max(c.lastStop, n.(*ast.Text).Segment.Stop)
	}
	return ast.WalkContinue, nil
}

func (c *collector) collectStarts(root ast.Node) {
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			c.starts = append(c.starts, n.Lines().At(0).Start)
		}
		if t, ok := n.(*ast.Text); ok {
			c.starts = append(c.starts, t.Segment.Start)
		}
		return ast.WalkContinue, nil
	})
	sort.Ints(c.starts)
}

// lineBounds returns the start of the line containing pos and the offset of
// its terminating newline (or len(src)).
func (c *collector) lineBounds(pos int) (int, int) {
	if pos > len(c.src) {
		pos = len(c.src)
	}
	start := pos
	for start > 0 && c.src[start-1] != '\n' {
		start--
	}
	end := pos
	for end < len(c.src) && c.src[end] != '\n' {
		end++
	}
	return start, end
}

func (c *collector) heading(h *ast.Heading) {
	lines := h.Lines()
	if lines.Len() == 0 {
		c.emptyHeading()
		return
	}
	first := lines.At(0)
	lineStart, lineEnd := c.lineBounds(first.Start)

	// ATX: a run of '#' before the content, separated by blanks.
	q := first.Start
	for q > lineStart && isBlank(c.src[q-1]) {
		q--
	}
	hashEnd := q
	for q > lineStart && c.src[q-1] == '#' {
		q--
	}
	if q < hashEnd {
		c.add(HeadingMark, q, hashEnd)
		c.closingSequence(lines.At(lines.Len()-1).Stop, lineEnd)
		return
	}

	// Setext: the underline is the line after the last content line.
	last := lines.At(lines.Len() - 1)
	_, contentEnd := c.lineBounds(max(last.Start, last.Stop-1))
	if contentEnd >= len(c.src) {
		return
	}
	underStart, underEnd := contentEnd+1, 0
	_, underEnd = c.lineBounds(underStart)
	p := underStart
	for p < underEnd && p-underStart < 3 && c.src[p] == ' ' {
		p++
	}
	if p >= underEnd || (c.src[p] != '=' && c.src[p] != '-') {
		return
	}
	ch := c.src[p]
	e := p
	for e < underEnd && c.src[e] == ch {
		e++
	}
	c.add(HeadingMark, p, e)
	c.lastStop = max(c.lastStop, underEnd)
}

// closingSequence marks an optional trailing run of '#' on an ATX heading.
func (c *collector) closingSequence(contentStop, lineEnd int) {
	r := contentStop
	for r < lineEnd && isBlank(c.src[r]) {
		r++
	}
	if r >= lineEnd || c.src[r] != '#' {
		return
	}
	s := r
	for s < lineEnd && c.src[s] == '#' {
		s++
	}
	t := s
	for t < lineEnd && (isBlank(c.src[t]) || c.src[t] == '\r') {
		t++
	}
	if t == lineEnd {
		c.add(HeadingMark, r, s)
	}
}

// emptyHeading locates an ATX heading with no content ("#", "## ##") on the
// first matching line between the previous content and the next content
// segment.
func (c *collector) emptyHeading() {
	lo := c.lastStop
	hi := len(c.src)
	if i := sort.SearchInts(c.starts, lo+1); i < len(c.starts) {
		hi = c.starts[i]
	}

	pos := lo
	if pos > 0 && c.src[pos-1] != '\n' {
		_, end := c.lineBounds(pos)
		pos = end + 1
	}
	for pos < hi && pos < len(c.src) {
		_, end := c.lineBounds(pos)
		if opening, closing, ok := emptyHeadingLine(c.src[pos:min(end, hi)]); ok {
			c.add(HeadingMark, pos+opening[0], pos+opening[1])
			if closing[1] > 0 {
				c.add(HeadingMark, pos+closing[0], pos+closing[1])
			}
			c.lastStop = max(c.lastStop, end)
			return
		}
		pos = end + 1
	}
}

// thematicBreak locates the break between the previous content and the next
// content segment.
func (c *collector) thematicBreak() {
	lo := c.lastStop
	hi := len(c.src)
	if i := sort.SearchInts(c.starts, lo+1); i < len(c.starts) {
		hi = c.starts[i]
	}

	pos := lo
	if pos > 0 && c.src[pos-1] != '\n' {
		_, end := c.lineBounds(pos)
		pos = end + 1
	}
	for pos < hi && pos < len(c.src) {
		_, end := c.lineBounds(pos)
		if from, to, ok := thematicBreakLine(c.src[pos:end]); ok {
			c.add(HorizontalRule, pos+from, pos+to)
			c.lastStop = max(c.lastStop, end)
			return
		}
		pos = end + 1
	}
}

func (c *collector) listItem(li *ast.ListItem) {
	s, ok := firstStart(li)
	if !ok {
		return
	}
	lineStart, _ := c.lineBounds(s)

	// Nested items can share a line ("- - x"); ancestors starting on the
	// same content own the earlier markers.
	depth := 0
	for p := li.Parent(); p != nil; p = p.Parent() {
		item, isItem := p.(*ast.ListItem)
		if !isItem {
			continue
		}
		if fs, ok := firstStart(item); ok && fs == s {
			depth++
			continue
		}
		break
	}

	marks := listMarkers(c.src[lineStart:s])
	if depth >= len(marks) {
		return
	}
	m := marks[depth]
	c.add(ListMark, lineStart+m.From, lineStart+m.To)
}

func (c *collector) delimited(n ast.Node, name string) {
	full, inner, ok := c.spans(n)
	if !ok {
		return
	}
	switch n.(type) {
	case *ast.Link, *ast.Image:
		c.linkMarks(full, inner, name)
	default:
		c.add(name, full.From, inner.From)
		c.add(name, inner.To, full.To)
	}
}

func (c *collector) linkMarks(full, inner Range, name string) {
	c.add(name, full.From, inner.From) // "[" or "!["
	c.add(name, inner.To, inner.To+1)  // "]"
	p := inner.To + 1
	if p < len(c.src) && c.src[p] == '(' && full.To-1 > p {
		c.add(name, p, p+1)
		c.add(name, full.To-1, full.To)
	}
}

// spans returns the full span (with delimiters) and the inner content span of
// an inline node.
func (c *collector) spans(n ast.Node) (full, inner Range, ok bool) {
	switch v := n.(type) {
	case *ast.Text:
		r := Range{From: v.Segment.Start, To: v.Segment.Stop}
		return r, r, true
	case *ast.RawHTML:
		if v.Segments == nil || v.Segments.Len() == 0 {
			return full, inner, false
		}
		r := Range{From: v.Segments.At(0).Start, To: v.Segments.At(v.Segments.Len() - 1).Stop}
		return r, r, true
	}

	inner, ok = c.childSpan(n)
	if !ok {
		return full, inner, false
	}

	switch v := n.(type) {
	case *ast.Emphasis:
		from, to := inner.From-v.Level, inner.To+v.Level
		if from < 0 || to > len(c.src) {
			return full, inner, false
		}
		ch := c.src[from]
		if ch != '*' && ch != '_' || !allByte(c.src[from:inner.From], ch) || !allByte(c.src[inner.To:to], ch) {
			return full, inner, false
		}
		return Range{From: from, To: to}, inner, true

	case *ast.CodeSpan:
		a, b := inner.From, inner.To
		if a > 0 && c.src[a-1] == ' ' {
			a--
		}
		if b < len(c.src) && c.src[b] == ' ' {
			b++
		}
		open := countBack(c.src, a, '`')
		closing := countFwd(c.src, b, '`')
		if open == 0 || open != closing {
			return full, inner, false
		}
		return Range{From: a - open, To: b + closing}, Range{From: a, To: b}, true

	case *extast.Strikethrough:
		open := countBack(c.src, inner.From, '~')
		closing := countFwd(c.src, inner.To, '~')
		if open == 0 || open > 2 || open != closing {
			return full, inner, false
		}
		return Range{From: inner.From - open, To: inner.To + closing}, inner, true

	case *ast.Link, *ast.Image:
		prefix := 1
		if _, isImage := v.(*ast.Image); isImage {
			prefix = 2
		}
		from := inner.From - prefix
		if from < 0 || c.src[inner.From-1] != '[' || inner.To >= len(c.src) || c.src[inner.To] != ']' {
			return full, inner, false
		}
		end := inner.To + 1
		if end < len(c.src) {
			switch c.src[end] {
			case '(':
				closing, found := matchParen(c.src, end)
				if !found {
					return full, inner, false
				}
				end = closing + 1
			case '[':
				for i := end + 1; i < len(c.src) && c.src[i] != '\n'; i++ {
					if c.src[i] == ']' {
						end = i + 1
						break
					}
				}
			}
		}
		return Range{From: from, To: end}, inner, true
	}
	return full, inner, false
}

func (c *collector) childSpan(n ast.Node) (Range, bool) {
	first, last := n.FirstChild(), n.LastChild()
	if first == nil || last == nil {
		return Range{}, false
	}
	f, _, ok := c.spans(first)
	if !ok {
		return Range{}, false
	}
	l, _, ok := c.spans(last)
	if !ok {
		return Range{}, false
	}
	return Range{From: f.From, To: l.To}, true
}

func firstStart(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start, true
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if s, ok := firstStart(child); ok {
			return s, true
		}
	}
	return 0, false
}

// listMarkers finds bullet and ordered markers at the start of a line,
// skipping indentation and blockquote prefixes.
func listMarkers(line []byte) []Range {
	var out []Range
	i := 0
	for i < len(line) {
		switch ch := line[i]; {
		case isBlank(ch) || ch == '>':
			i++
		case ch == '*' || ch == '-' || ch == '+':
			if i+1 < len(line) && !isBlank(line[i+1]) {
				return out
			}
			out = append(out, Range{From: i, To: i + 1})
			i++
		case ch >= '0' && ch <= '9':
			j := i
			for j < len(line) && j-i < 9 && line[j] >= '0' && line[j] <= '9' {
				j++
			}
			if j >= len(line) || (line[j] != '.' && line[j] != ')') {
				return out
			}
			if j+1 < len(line) && !isBlank(line[j+1]) {
				return out
			}
			out = append(out, Range{From: i, To: j + 1})
			i = j + 1
		default:
			return out
		}
	}
	return out
}

// thematicBreakLine reports the span of a thematic break on one line.
// emptyHeadingLine reports the opening '#' run of an ATX heading that has
// no content, and its closing run if there is one. Only blanks and
// container markers may precede the opening run.
func emptyHeadingLine(line []byte) (opening, closing [2]int, ok bool) {
	end := len(line)
	for end > 0 && (isBlank(line[end-1]) || line[end-1] == '\r') {
		end--
	}
	run := func(stop int) int {
		i := stop
		for i > 0 && line[i-1] == '#' {
			i--
		}
		return i
	}

	start := run(end)
	if start == end || (start > 0 && !isBlank(line[start-1])) {
		return opening, closing, false
	}
	opening = [2]int{start, end}

	q := start
	for q > 0 && isBlank(line[q-1]) {
		q--
	}
	if q > 0 && line[q-1] == '#' {
		if s := run(q); s == 0 || isBlank(line[s-1]) {
			closing = opening
			opening = [2]int{s, q}
		}
	}

	if opening[1]-opening[0] > 6 {
		return opening, closing, false
	}
	for _, b := range line[:opening[0]] {
		if !isBlank(b) && !strings.ContainsRune(">-+*.)0123456789", rune(b)) {
			return opening, closing, false
		}
	}
	return opening, closing, true
}

func thematicBreakLine(line []byte) (int, int, bool) {
	i := 0
	for i < len(line) && (isBlank(line[i]) || line[i] == '>') {
		i++
	}
	if i >= len(line) {
		return 0, 0, false
	}
	ch := line[i]
	if ch != '*' && ch != '-' && ch != '_' {
		return 0, 0, false
	}
	count, end := 0, i
	for j := i; j < len(line); j++ {
		switch {
		case line[j] == ch:
			count++
			end = j + 1
		case isBlank(line[j]) || line[j] == '\r':
		default:
			return 0, 0, false
		}
	}
	if count < 3 {
		return 0, 0, false
	}
	return i, end, true
}

func matchParen(src []byte, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		case '\n':
			if i+1 < len(src) && src[i+1] == '\n' {
				return 0, false
			}
		}
	}
	return 0, false
}

func countBack(src []byte, pos int, ch byte) int {
	n := 0
	for pos-n-1 >= 0 && src[pos-n-1] == ch {
		n++
	}
	return n
}

func countFwd(src []byte, pos int, ch byte) int {
	n := 0
	for pos+n < len(src) && src[pos+n] == ch {
		n++
	}
	return n
}

func allByte(b []byte, ch byte) bool {
	for _, x := range b {
		if x != ch {
			return false
		}
	}
	return true
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }
