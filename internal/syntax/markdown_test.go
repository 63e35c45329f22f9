package syntax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/smartmd/internal/document"
)

func marks(t *testing.T, src string) []Node {
	t.Helper()
	tree, err := Parse(src)
	require.NoError(t, err)
	return tree.Nodes()
}

func named(nodes []Node, name string) []Node {
	var out []Node
	for _, n := range nodes {
		if n.Name == name {
			out = append(out, n)
		}
	}
	return out
}

func TestParse_ATXHeading(t *testing.T) {
	nodes := marks(t, "# Title\nbody")
	require.Equal(t, []Node{{Name: HeadingMark, From: 0, To: 1}}, nodes)
}

func TestParse_ATXHeadingClosingSequence(t *testing.T) {
	nodes := named(marks(t, "## Title ##\n"), HeadingMark)
	require.Equal(t, []Node{
		{Name: HeadingMark, From: 0, To: 2},
		{Name: HeadingMark, From: 9, To: 11},
	}, nodes)
}

func TestParse_EmptyATXHeading(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []Node
	}{
		{"bare", "#", []Node{{Name: HeadingMark, From: 0, To: 1}}},
		{"trailing space", "# ", []Node{{Name: HeadingMark, From: 0, To: 1}}},
		{"closing sequence", "### ###\n", []Node{
			{Name: HeadingMark, From: 0, To: 3},
			{Name: HeadingMark, From: 4, To: 7},
		}},
		{"after paragraph", "text\n##\n", []Node{{Name: HeadingMark, From: 5, To: 7}}},
		{"followed by heading", "# \n## x ##", []Node{
			{Name: HeadingMark, From: 0, To: 1},
			{Name: HeadingMark, From: 3, To: 5},
			{Name: HeadingMark, From: 8, To: 10},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, named(marks(t, tt.src), HeadingMark))
		})
	}
}

func TestEmptyHeadingLine(t *testing.T) {
	opening, closing, ok := emptyHeadingLine([]byte("> ## ##  "))
	require.True(t, ok)
	require.Equal(t, [2]int{2, 4}, opening)
	require.Equal(t, [2]int{5, 7}, closing)

	for _, line := range []string{"", "   ", "#######", "[a]: /u #", "x#"} {
		_, _, ok := emptyHeadingLine([]byte(line))
		require.False(t, ok, "%q", line)
	}
}

func TestParse_SetextHeading(t *testing.T) {
	nodes := named(marks(t, "Title\n=====\n"), HeadingMark)
	require.Equal(t, []Node{{Name: HeadingMark, From: 6, To: 11}}, nodes)
}

func TestParse_BulletListItem(t *testing.T) {
	nodes := marks(t, "* item")
	require.Equal(t, []Node{{Name: ListMark, From: 0, To: 1}}, nodes)
}

func TestParse_OrderedListItem(t *testing.T) {
	nodes := named(marks(t, "1. one\n2. two\n"), ListMark)
	require.Equal(t, []Node{
		{Name: ListMark, From: 0, To: 2},
		{Name: ListMark, From: 7, To: 9},
	}, nodes)
}

func TestParse_NestedListSameLine(t *testing.T) {
	nodes := named(marks(t, "- - x"), ListMark)
	require.Equal(t, []Node{
		{Name: ListMark, From: 0, To: 1},
		{Name: ListMark, From: 2, To: 3},
	}, nodes)
}

func TestParse_EmphasisIsNotListMark(t *testing.T) {
	nodes := marks(t, "*word*")
	require.Empty(t, named(nodes, ListMark))
	require.Equal(t, []Node{
		{Name: EmphasisMark, From: 0, To: 1},
		{Name: EmphasisMark, From: 5, To: 6},
	}, nodes)
}

func TestParse_Strong(t *testing.T) {
	nodes := marks(t, "**b**")
	require.Equal(t, []Node{
		{Name: StrongMark, From: 0, To: 2},
		{Name: StrongMark, From: 3, To: 5},
	}, nodes)
}

func TestParse_CodeSpan(t *testing.T) {
	nodes := marks(t, "a `c` d")
	require.Equal(t, []Node{
		{Name: CodeMark, From: 2, To: 3},
		{Name: CodeMark, From: 4, To: 5},
	}, nodes)
}

func TestParse_Link(t *testing.T) {
	nodes := marks(t, "[a](b)")
	require.Equal(t, []Node{
		{Name: LinkMark, From: 0, To: 1},
		{Name: LinkMark, From: 2, To: 3},
		{Name: LinkMark, From: 3, To: 4},
		{Name: LinkMark, From: 5, To: 6},
	}, nodes)
}

func TestParse_Strikethrough(t *testing.T) {
	nodes := marks(t, "~~s~~")
	require.Equal(t, []Node{
		{Name: StrikethroughMark, From: 0, To: 2},
		{Name: StrikethroughMark, From: 3, To: 5},
	}, nodes)
}

func TestParse_HorizontalRule(t *testing.T) {
	nodes := marks(t, "---")
	require.Equal(t, []Node{{Name: HorizontalRule, From: 0, To: 3}}, nodes)

	nodes = named(marks(t, "para\n\n***\n\nnext"), HorizontalRule)
	require.Equal(t, []Node{{Name: HorizontalRule, From: 6, To: 9}}, nodes)
}

func TestParse_NodesWithinBounds(t *testing.T) {
	src := "# h\n\n* a **b** `c`\n- [x](y)\n\n---\n~~z~~ _e_\n"
	for _, n := range marks(t, src) {
		require.GreaterOrEqual(t, n.From, 0)
		require.LessOrEqual(t, n.From, n.To)
		require.LessOrEqual(t, n.To, len(src))
	}
}

func TestMarkdownIterate_RangeAndEarlyStop(t *testing.T) {
	tree, err := Parse("# A\n\n**b**")
	require.NoError(t, err)

	var got []Node
	require.NoError(t, tree.Iterate(5, 7, func(n Node) bool {
		got = append(got, n)
		return true
	}))
	require.Equal(t, []Node{{Name: StrongMark, From: 5, To: 7}}, got)

	count := 0
	require.NoError(t, tree.Iterate(0, 10, func(Node) bool {
		count++
		return false
	}))
	require.Equal(t, 1, count)
}

func TestMarkdownIterate_OutOfRange(t *testing.T) {
	tree, err := Parse("abc")
	require.NoError(t, err)
	require.Error(t, tree.Iterate(0, 10, func(Node) bool { return true }))
	require.Error(t, tree.Iterate(-1, 2, func(Node) bool { return true }))
}

func TestStaticIterate(t *testing.T) {
	s := Static{
		{Name: HeadingMark, From: 0, To: 1},
		{Name: ListMark, From: 10, To: 11},
	}
	var got []string
	require.NoError(t, s.Iterate(5, 20, func(n Node) bool {
		got = append(got, n.Name)
		return true
	}))
	require.Equal(t, []string{ListMark}, got)
}

func TestProvider_CachesPerVersion(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(false)
	doc := document.NewWithID("d", "# a")

	first, err := p.Tree(ctx, doc)
	require.NoError(t, err)
	second, err := p.Tree(ctx, doc)
	require.NoError(t, err)
	require.Same(t, first, second)

	next := doc.WithText("# ab")
	third, err := p.Tree(ctx, next)
	require.NoError(t, err)
	require.NotSame(t, first, third)

	p.Forget(ctx, doc)
	fourth, err := p.Tree(ctx, doc)
	require.NoError(t, err)
	require.NotSame(t, first, fourth)
}
