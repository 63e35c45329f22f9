package recompute

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"pgregory.net/rapid"

	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/surface"
	"github.com/zjrosen/smartmd/internal/surface/surfacetest"
	"github.com/zjrosen/smartmd/internal/syntax"
	"github.com/zjrosen/smartmd/internal/tracing"
)

func hiddenAt(from, to int) decoration.Candidate {
	return decoration.Candidate{From: from, To: to, Kind: decoration.Replace, Payload: decoration.Payload{Widget: decoration.WidgetHidden}}
}

func TestSensitivity(t *testing.T) {
	require.Equal(t, Trigger(0), Sensitivity(decoration.Config{Markers: decoration.MarkersVisible}))
	require.Equal(t, OnDoc, Sensitivity(decoration.Config{Markers: decoration.MarkersHidden}))
	require.Equal(t, OnAll, Sensitivity(decoration.Config{Markers: decoration.MarkersCurrentLine}))
	require.Equal(t, OnAll, Sensitivity(decoration.Config{Bullets: true}))
	require.Equal(t, OnAll, Sensitivity(decoration.Config{Markers: decoration.MarkersHidden, StatusLines: true}))
}

func TestNew_ComputesInitialSet(t *testing.T) {
	host := surfacetest.New("d", "# Title\nbody", 10)
	host.Sel = surface.Cursor(10)

	c := New(host, syntax.NewProvider(false), decoration.Config{Markers: decoration.MarkersCurrentLine})
	require.Equal(t, uint64(1), c.Runs())
	require.Equal(t, []decoration.Candidate{hiddenAt(0, 2)}, c.Decorations().Items())
}

func TestUpdate_CurrentLineFollowsSelection(t *testing.T) {
	host := surfacetest.New("d", "# Title\nbody", 10)
	host.Sel = surface.Cursor(10)
	c := New(host, syntax.NewProvider(false), decoration.Config{Markers: decoration.MarkersCurrentLine})
	before := c.Decorations()

	host.Sel = surface.Cursor(2)
	c.Update(host.Update(false, false, true, surface.EventSelect))

	require.Equal(t, 0, c.Decorations().Len())
	// the earlier set is untouched
	require.Equal(t, []decoration.Candidate{hiddenAt(0, 2)}, before.Items())
}

func TestUpdate_HiddenModeIgnoresSelectionAndViewport(t *testing.T) {
	host := surfacetest.New("d", "# Title\nbody", 10)
	c := New(host, syntax.NewProvider(false), decoration.Config{Markers: decoration.MarkersHidden})
	require.Equal(t, uint64(1), c.Runs())

	host.Sel = surface.Cursor(3)
	c.Update(host.Update(false, false, true, surface.EventSelect))
	c.Update(host.Update(false, true, false))
	require.Equal(t, uint64(1), c.Runs())

	host.Doc = host.Doc.WithText("## Title\nbody")
	c.Update(host.Update(true, false, false, surface.EventInput))
	require.Equal(t, uint64(2), c.Runs())
	require.Equal(t, []decoration.Candidate{hiddenAt(0, 3)}, c.Decorations().Items())
}

func TestUpdate_HiddenModeCoversWholeDocument(t *testing.T) {
	host := surfacetest.New("d", "a\nb\n**c**", 1)
	c := New(host, syntax.NewProvider(false), decoration.Config{Markers: decoration.MarkersHidden})
	require.Equal(t, 2, c.Decorations().Len(), "marks below the viewport are hidden too")
}

func TestUpdate_BulletsOnlyInViewport(t *testing.T) {
	host := surfacetest.New("d", "* a\n* b\n* c\n* d", 2)
	c := New(host, syntax.NewProvider(false), decoration.Config{Bullets: true})
	require.Equal(t, 2, c.Decorations().Len())
	require.Equal(t, 0, c.Decorations().At(0).From)

	host.Top = 2
	c.Update(host.Update(false, true, false))
	require.Equal(t, 2, c.Decorations().Len())
	require.Equal(t, host.Doc.Line(3).From, c.Decorations().At(0).From)
}

func TestReconfigure(t *testing.T) {
	host := surfacetest.New("d", "**b**\n✅ ok", 10)
	c := New(host, syntax.NewProvider(false), decoration.Config{Markers: decoration.MarkersVisible})
	require.Equal(t, 0, c.Decorations().Len())

	c.Reconfigure(decoration.Config{Markers: decoration.MarkersHidden, StatusLines: true})
	require.Equal(t, 3, c.Decorations().Len())
	require.Equal(t, decoration.MarkersHidden, c.Config().Markers)

	c.Reconfigure(decoration.Config{Markers: decoration.MarkersVisible})
	require.Equal(t, 0, c.Decorations().Len())
}

func TestRecompute_TreeErrorPublishesEmptySet(t *testing.T) {
	host := surfacetest.New("d", "# a", 10)
	failing := TreeSourceFunc(func(context.Context, *document.Document) (syntax.Tree, error) {
		return nil, errors.New("parser unavailable")
	})
	c := New(host, failing, decoration.Config{Markers: decoration.MarkersHidden})
	require.Equal(t, 0, c.Decorations().Len())
	require.Equal(t, uint64(1), c.Runs())
}

func TestRecompute_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	host := surfacetest.New("doc-7", "# a", 10)
	New(host, syntax.NewProvider(false), decoration.Config{Markers: decoration.MarkersHidden}, WithTracer(tp.Tracer("test")))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, tracing.SpanRecompute, spans[0].Name())

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	require.Equal(t, "doc-7", attrs[tracing.AttrDocID])
	require.Equal(t, "init", attrs[tracing.AttrReason])
	require.EqualValues(t, 1, attrs[tracing.AttrDecorations])
}

// Recomputing with no state change publishes an identical set.
func TestRecompute_Idempotent(t *testing.T) {
	lines := []string{"# h", "* item", "**b** and `c`", "✅ done", "plain", "---", "- [x] ok", "~~s~~"}
	rapid.Check(t, func(rt *rapid.T) {
		picked := rapid.SliceOfN(rapid.SampledFrom(lines), 1, 12).Draw(rt, "lines")
		text := ""
		for i, l := range picked {
			if i > 0 {
				text += "\n"
			}
			text += l
		}
		host := surfacetest.New("d", text, rapid.IntRange(1, 6).Draw(rt, "height"))
		host.Top = rapid.IntRange(0, host.Doc.LineCount()-1).Draw(rt, "top")
		host.Sel = surface.Cursor(rapid.IntRange(0, host.Doc.Len()).Draw(rt, "head"))

		cfg := decoration.Config{
			Markers:     rapid.SampledFrom([]decoration.MarkerMode{decoration.MarkersHidden, decoration.MarkersCurrentLine}).Draw(rt, "mode"),
			Bullets:     rapid.Bool().Draw(rt, "bullets"),
			StatusLines: rapid.Bool().Draw(rt, "status"),
		}
		c := New(host, syntax.NewProvider(false), cfg)
		first := c.Decorations()
		c.Recompute("again")
		if !c.Decorations().Equal(first) {
			rt.Fatalf("recompute changed the set for %q: %v vs %v", text, first.Items(), c.Decorations().Items())
		}
	})
}
