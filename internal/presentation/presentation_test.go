package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/settings"
)

func sampleReport() DecorationReportDTO {
	doc := document.NewWithID("d", "# Hi\n- [x] done\n")
	set := decoration.Resolve([]decoration.Candidate{
		{From: 0, To: 2, Kind: decoration.Replace, Payload: decoration.Payload{Widget: decoration.WidgetHidden}},
		{From: 5, To: 5, Kind: decoration.LineClass, Payload: decoration.Payload{Class: "line-done"}},
	}, doc.Len())
	return FromDecorationSet("a.md", doc, 0, decoration.MarkersHidden, set)
}

func TestFromDecorationSet(t *testing.T) {
	r := sampleReport()

	require.Equal(t, "a.md", r.Path)
	require.Equal(t, 3, r.Lines)
	require.Len(t, r.Decorations, 2)
	require.Equal(t, "# ", r.Decorations[0].Text)
	require.Equal(t, 1, r.Decorations[0].Line)
	require.Equal(t, "line", r.Decorations[1].Kind)
	require.Equal(t, "- [x] done", r.Decorations[1].Text, "line decorations show their line")
	require.Equal(t, 2, r.Decorations[1].Line)
}

func TestFormatDecorations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatDecorations(sampleReport()))

	require.Equal(t,
		"1:0-2 replace widget=hidden \"# \"\n"+
			"2:5-5 line class=line-done \"- [x] done\"\n",
		buf.String())
}

func TestFormatDecorationsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatDecorationsJSON(sampleReport()))

	var got DecorationReportDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "hidden", got.Mode)
	require.Len(t, got.Decorations, 2)
}

func TestFormatSettings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatSettings(settings.Defaults()))

	out := buf.String()
	require.Contains(t, out, "theme: light\n")
	require.Contains(t, out, "markdownViewMode: current-line\n")
	require.Contains(t, out, "listMarkers:\n")
}
