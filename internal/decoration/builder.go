package decoration

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zjrosen/smartmd/internal/classify"
	"github.com/zjrosen/smartmd/internal/colorutil"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/syntax"
)

// MarkerMode controls when Markdown markers are hidden.
type MarkerMode string

const (
	MarkersVisible     MarkerMode = "visible"
	MarkersHidden      MarkerMode = "hidden"
	MarkersCurrentLine MarkerMode = "current-line"
)

// Valid reports whether m is a known mode.
func (m MarkerMode) Valid() bool {
	switch m {
	case MarkersVisible, MarkersHidden, MarkersCurrentLine:
		return true
	}
	return false
}

// MarkerStyle is the per-character bullet configuration.
type MarkerStyle struct {
	Enabled bool
	Color   string
}

// Config selects which features contribute candidates. It is read-only to
// the builder.
type Config struct {
	Markers     MarkerMode
	Bullets     bool
	ListMarkers map[string]MarkerStyle // keyed by "*", "-", "+"; missing keys are enabled
	StatusLines bool
}

// Input is the editor state a build reads.
type Input struct {
	Doc  *document.Document
	Tree syntax.Tree
	// Visible ranges; nil means the whole document.
	Visible []syntax.Range
	// Head is the selection head, used by MarkersCurrentLine.
	Head int
}

var errNoTree = errors.New("no syntax tree")

// hideable names are replaced with an invisible widget.
var hideable = map[string]bool{
	syntax.HeadingMark:       true,
	syntax.EmphasisMark:      true,
	syntax.StrongMark:        true,
	syntax.CodeMark:          true,
	syntax.LinkMark:          true,
	syntax.StrikethroughMark: true,
}

// Compute builds and resolves the decorations for in. Any failure while
// building is logged and yields an empty set.
func Compute(in Input, cfg Config) *Set {
	if in.Doc == nil {
		return Empty
	}
	cands, err := Build(in, cfg)
	if err != nil {
		log.ErrorErr(log.CatDeco, "decoration build failed", err, "doc", in.Doc.ID())
		return Empty
	}
	return Resolve(cands, in.Doc.Len())
}

// Build returns the raw candidates of every enabled feature, concatenated.
// Panics during traversal are recovered and reported as errors.
func Build(in Input, cfg Config) (cands []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			cands, err = nil, fmt.Errorf("traversal panic: %v", r)
		}
	}()

	if in.Doc == nil || in.Doc.Len() == 0 {
		return nil, nil
	}
	ranges := NormalizeRanges(in.Visible, in.Doc.Len())

	needTree := (cfg.Markers != "" && cfg.Markers != MarkersVisible) || cfg.Bullets
	if needTree && in.Tree == nil {
		return nil, errNoTree
	}

	if cfg.Markers == MarkersHidden || cfg.Markers == MarkersCurrentLine {
		got, err := markerCandidates(in, ranges, cfg.Markers)
		if err != nil {
			return nil, fmt.Errorf("markers: %w", err)
		}
		cands = append(cands, got...)
	}
	if cfg.Bullets {
		got, err := bulletCandidates(in, ranges, cfg.ListMarkers)
		if err != nil {
			return nil, fmt.Errorf("bullets: %w", err)
		}
		cands = append(cands, got...)
	}
	if cfg.StatusLines {
		cands = append(cands, statusCandidates(in.Doc, ranges)...)
	}
	return cands, nil
}

func markerCandidates(in Input, ranges []syntax.Range, mode MarkerMode) ([]Candidate, error) {
	doc := in.Doc
	text := doc.Text()
	cursorLine := doc.LineAt(in.Head).Number

	var out []Candidate
	for _, r := range ranges {
		err := in.Tree.Iterate(r.From, r.To, func(n syntax.Node) bool {
			if !inBounds(n, doc.Len()) {
				return true
			}
			widget := WidgetHidden
			switch {
			case n.Name == syntax.HorizontalRule:
				widget = WidgetRule
			case !hideable[n.Name]:
				return true
			}
			if mode == MarkersCurrentLine && doc.LineAt(n.From).Number == cursorLine {
				return true
			}
			to := n.To
			if n.Name == syntax.HeadingMark && to < len(text) && (text[to] == ' ' || text[to] == '\t') {
				to++
			}
			out = append(out, Candidate{From: n.From, To: to, Kind: Replace, Payload: Payload{Widget: widget}})
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func bulletCandidates(in Input, ranges []syntax.Range, styles map[string]MarkerStyle) ([]Candidate, error) {
	doc := in.Doc
	text := doc.Text()

	var out []Candidate
	for _, r := range ranges {
		err := in.Tree.Iterate(r.From, r.To, func(n syntax.Node) bool {
			if n.Name != syntax.ListMark || !inBounds(n, doc.Len()) {
				return true
			}
			var next byte
			if n.To < len(text) {
				next = text[n.To]
			}
			ch, ok := classify.QualifiesAsBullet(text[n.From:n.To], next)
			if !ok {
				return true
			}
			color := Inherit
			if style, found := styles[ch]; found {
				if !style.Enabled {
					return true
				}
				if colorutil.Valid(style.Color) {
					color = style.Color
				}
			}
			out = append(out, Candidate{
				From:    n.From,
				To:      n.To,
				Kind:    Replace,
				Payload: Payload{Widget: WidgetBullet, Color: color},
			})
			return true
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func statusCandidates(doc *document.Document, ranges []syntax.Range) []Candidate {
	var out []Candidate
	last := 0
	for _, r := range ranges {
		first := max(doc.LineAt(r.From).Number, last+1)
		end := doc.LineAt(r.To).Number
		for n := first; n <= end; n++ {
			line := doc.Line(n)
			if status := classify.LineStatus(line.Text); status != classify.StatusNone {
				out = append(out, Candidate{
					From:    line.From,
					To:      line.From,
					Kind:    LineClass,
					Payload: Payload{Class: status.Class()},
				})
			}
		}
		last = max(last, end)
	}
	return out
}

// NormalizeRanges clamps ranges to [0, docLen], drops inverted ones and
// merges overlapping or touching ranges. A nil input covers the document.
func NormalizeRanges(ranges []syntax.Range, docLen int) []syntax.Range {
	if ranges == nil {
		return []syntax.Range{{From: 0, To: docLen}}
	}
	clean := make([]syntax.Range, 0, len(ranges))
	for _, r := range ranges {
		r.From = min(max(r.From, 0), docLen)
		r.To = min(max(r.To, 0), docLen)
		if r.From > r.To {
			continue
		}
		clean = append(clean, r)
	}
	sort.Slice(clean, func(i, j int) bool {
		if clean[i].From != clean[j].From {
			return clean[i].From < clean[j].From
		}
		return clean[i].To < clean[j].To
	})

	merged := clean[:0]
	for _, r := range clean {
		if n := len(merged); n > 0 && r.From <= merged[n-1].To {
			merged[n-1].To = max(merged[n-1].To, r.To)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

func inBounds(n syntax.Node, docLen int) bool {
	return n.From >= 0 && n.From <= n.To && n.To <= docLen
}
