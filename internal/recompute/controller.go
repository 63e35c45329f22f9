// Package recompute keeps a view's decoration set current.
//
// The Controller is a surface.Plugin. Each update is checked against the
// sensitivity of the enabled features and, when relevant, decorations are
// rebuilt synchronously and the published set is swapped whole. Readers
// never see a partially built set.
package recompute

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/surface"
	"github.com/zjrosen/smartmd/internal/syntax"
	"github.com/zjrosen/smartmd/internal/tracing"
)

// Trigger is a set of update kinds.
type Trigger uint8

const (
	OnDoc Trigger = 1 << iota
	OnViewport
	OnSelection

	OnAll = OnDoc | OnViewport | OnSelection
)

// Matches reports whether u carries any change in t.
func (t Trigger) Matches(u surface.Update) bool {
	return (t&OnDoc != 0 && u.DocChanged) ||
		(t&OnViewport != 0 && u.ViewportChanged) ||
		(t&OnSelection != 0 && u.SelectionChanged)
}

// Sensitivity returns the union of triggers the enabled features react to.
// Hidden markers depend on the document only; the cursor line, bullets and
// status lines also follow the viewport and selection.
func Sensitivity(cfg decoration.Config) Trigger {
	var t Trigger
	switch cfg.Markers {
	case decoration.MarkersHidden:
		t |= OnDoc
	case decoration.MarkersCurrentLine:
		t |= OnAll
	}
	if cfg.Bullets || cfg.StatusLines {
		t |= OnAll
	}
	return t
}

// TreeSource returns the syntax tree for a document snapshot.
type TreeSource interface {
	Tree(ctx context.Context, doc *document.Document) (syntax.Tree, error)
}

// TreeSourceFunc adapts a function to TreeSource.
type TreeSourceFunc func(ctx context.Context, doc *document.Document) (syntax.Tree, error)

// Tree implements TreeSource.
func (f TreeSourceFunc) Tree(ctx context.Context, doc *document.Document) (syntax.Tree, error) {
	return f(ctx, doc)
}

// Controller owns the published decoration set of one view.
type Controller struct {
	view   surface.View
	trees  TreeSource
	tracer trace.Tracer

	cfg       decoration.Config
	trigger   Trigger
	published atomic.Pointer[decoration.Set]
	runs      atomic.Uint64
}

var _ surface.Plugin = (*Controller)(nil)

// Option configures a Controller.
type Option func(*Controller)

// WithTracer records each recompute as a span.
func WithTracer(t trace.Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

// New creates a controller for view and computes the initial set.
func New(view surface.View, trees TreeSource, cfg decoration.Config, opts ...Option) *Controller {
	c := &Controller{
		view:   view,
		trees:  trees,
		tracer: noop.NewTracerProvider().Tracer("recompute"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setConfig(cfg)
	c.Recompute("init")
	return c
}

// Update implements surface.Plugin.
func (c *Controller) Update(u surface.Update) {
	if !c.trigger.Matches(u) {
		return
	}
	c.Recompute(reason(u))
}

// Reconfigure replaces the feature configuration and recomputes.
func (c *Controller) Reconfigure(cfg decoration.Config) {
	c.setConfig(cfg)
	c.Recompute("config")
}

// Config returns the active configuration.
func (c *Controller) Config() decoration.Config {
	return c.cfg
}

// Decorations returns the currently published set. It is never nil.
func (c *Controller) Decorations() *decoration.Set {
	if set := c.published.Load(); set != nil {
		return set
	}
	return decoration.Empty
}

// Runs returns how many recomputes have completed.
func (c *Controller) Runs() uint64 {
	return c.runs.Load()
}

// Recompute rebuilds the set from the view's current state and publishes it.
func (c *Controller) Recompute(why string) {
	ctx, span := c.tracer.Start(context.Background(), tracing.SpanRecompute)
	defer span.End()

	doc := c.view.Document()
	in := decoration.Input{Doc: doc, Head: c.view.Selection().Head}

	// Without a viewport trigger a scroll would reveal stale decorations,
	// so such configurations cover the whole document.
	if c.trigger&OnViewport != 0 {
		in.Visible = c.view.VisibleRanges()
	}

	set := decoration.Empty
	if c.trigger != 0 && doc != nil {
		tree, err := c.trees.Tree(ctx, doc)
		if err != nil {
			log.ErrorErr(log.CatDeco, "syntax tree unavailable", err, "doc", doc.ID())
		}
		in.Tree = tree
		set = decoration.Compute(in, c.cfg)
	}
	c.published.Store(set)
	c.runs.Add(1)

	if doc != nil {
		visible := doc.Len()
		if in.Visible != nil {
			visible = 0
			for _, r := range decoration.NormalizeRanges(in.Visible, doc.Len()) {
				visible += r.To - r.From
			}
		}
		span.SetAttributes(
			attribute.String(tracing.AttrDocID, doc.ID()),
			attribute.Int64(tracing.AttrDocVersion, int64(doc.Version())),
			attribute.Int(tracing.AttrDocLength, doc.Len()),
			attribute.Int(tracing.AttrVisibleBytes, visible),
		)
	}
	span.SetAttributes(
		attribute.String(tracing.AttrReason, why),
		attribute.Int(tracing.AttrDecorations, set.Len()),
	)
}

func (c *Controller) setConfig(cfg decoration.Config) {
	c.cfg = cfg
	c.trigger = Sensitivity(cfg)
}

func reason(u surface.Update) string {
	switch {
	case u.DocChanged:
		return "doc"
	case u.SelectionChanged:
		return "selection"
	default:
		return "viewport"
	}
}
