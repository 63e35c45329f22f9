// Package syntax exposes a flat view of a Markdown syntax tree.
//
// Consumers only see mark nodes (the delimiters of headings, emphasis, code,
// links, list items and horizontal rules) as {Name, From, To} spans. Nesting
// is never exposed.
package syntax

// Mark node names.
const (
	HeadingMark       = "heading-mark"
	EmphasisMark      = "emphasis-mark"
	StrongMark        = "strong-mark"
	CodeMark          = "code-mark"
	LinkMark          = "link-mark"
	ListMark          = "list-mark"
	HorizontalRule    = "horizontal-rule"
	StrikethroughMark = "strikethrough-mark"
)

// Node is a named span of the document. Offsets are byte offsets.
type Node struct {
	Name string
	From int
	To   int
}

// Range is a half-open byte range [From, To).
type Range struct {
	From int
	To   int
}

// Tree is the query interface the decoration pipeline consumes.
type Tree interface {
	// Iterate calls visit for every node overlapping [from, to] in document
	// order. Iteration stops early when visit returns false.
	Iterate(from, to int, visit func(Node) bool) error
}

// Static is a Tree over a fixed node list. Nodes must be sorted by From.
type Static []Node

// Iterate implements Tree.
func (s Static) Iterate(from, to int, visit func(Node) bool) error {
	for _, n := range s {
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
