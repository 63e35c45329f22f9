package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func stubSpan(name string, attrs ...attribute.KeyValue) sdktrace.ReadOnlySpan {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return tracetest.SpanStub{
		Name:       name,
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Microsecond),
		Attributes: attrs,
	}.Snapshot()
}

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), "line: %s", scanner.Text())
		out = append(out, rec)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestNewFileExporter_CreatesFileAndDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")

	exporter, err := NewFileExporter(path, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultFileMaxBytes, exporter.maxBytes)

	_, err = os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestNewSpanRecord_Recompute(t *testing.T) {
	rec := NewSpanRecord(stubSpan(SpanRecompute,
		attribute.String(AttrDocID, "doc-1"),
		attribute.Int64(AttrDocVersion, 7),
		attribute.Int(AttrDocLength, 120),
		attribute.Int(AttrVisibleBytes, 80),
		attribute.String(AttrReason, "selection"),
		attribute.Int(AttrDecorations, 4),
	))

	require.Equal(t, SpanRecompute, rec.Name)
	require.InDelta(t, 1.5, rec.DurationMs, 0.001)
	require.Equal(t, &DocRecord{ID: "doc-1", Version: 7, Length: 120}, rec.Doc)
	require.Equal(t, &RecomputeRecord{Reason: "selection", Published: 4, VisibleBytes: 80}, rec.Recompute)
	require.Nil(t, rec.Restore)
	require.Nil(t, rec.File)
	require.Empty(t, rec.Extra)
	require.Empty(t, rec.Error)
}

func TestNewSpanRecord_RestoreAndFileSpans(t *testing.T) {
	restore := NewSpanRecord(stubSpan(SpanRestore,
		attribute.String(AttrDocID, "doc-2"),
		attribute.Bool(AttrSkipped, true),
	))
	require.Equal(t, SpanRestore, restore.Name)
	require.Equal(t, "doc-2", restore.Doc.ID)
	require.Equal(t, &RestoreRecord{Skipped: true}, restore.Restore)
	require.Nil(t, restore.Recompute)

	save := NewSpanRecord(stubSpan(SpanFileSave,
		attribute.String(AttrPath, "/tmp/notes.md"),
		attribute.Int(AttrBytes, 42),
		attribute.String("custom.key", "x"),
	))
	require.Equal(t, &FileRecord{Path: "/tmp/notes.md", Bytes: 42}, save.File)
	require.Nil(t, save.Doc)
	require.Equal(t, map[string]any{"custom.key": "x"}, save.Extra)
}

func TestNewSpanRecord_ErrorStatus(t *testing.T) {
	span := tracetest.SpanStub{
		Name:   SpanReload,
		Status: sdktrace.Status{Code: codes.Error, Description: "permission denied"},
	}.Snapshot()
	require.Equal(t, "permission denied", NewSpanRecord(span).Error)

	span = tracetest.SpanStub{Name: SpanReload, Status: sdktrace.Status{Code: codes.Error}}.Snapshot()
	require.Equal(t, "error", NewSpanRecord(span).Error)

	span = tracetest.SpanStub{Name: SpanReload, Status: sdktrace.Status{Code: codes.Ok}}.Snapshot()
	require.Empty(t, NewSpanRecord(span).Error)
}

func TestFileExporter_WritesOneLinePerSpan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path, 0)
	require.NoError(t, err)

	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{
		stubSpan(SpanRecompute, attribute.String(AttrReason, "doc")),
		stubSpan(SpanRestore, attribute.Bool(AttrSkipped, false)),
		stubSpan(SpanFileSave, attribute.String(AttrPath, "a.md")),
	})
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))

	recs := readRecords(t, path)
	require.Len(t, recs, 3)
	require.Equal(t, SpanRecompute, recs[0].Name)
	require.Equal(t, "doc", recs[0].Recompute.Reason)
	require.Equal(t, SpanRestore, recs[1].Name)
	require.False(t, recs[1].Restore.Skipped)
	require.Equal(t, "a.md", recs[2].File.Path)
}

func TestFileExporter_AppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	for range 2 {
		exporter, err := NewFileExporter(path, 0)
		require.NoError(t, err)
		require.NoError(t, exporter.ExportSpans(context.Background(),
			[]sdktrace.ReadOnlySpan{stubSpan(SpanRecompute)}))
		require.NoError(t, exporter.Shutdown(context.Background()))
	}
	require.Len(t, readRecords(t, path), 2)
}

func TestFileExporter_RollsOverAtMaxBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	line, err := json.Marshal(NewSpanRecord(stubSpan(SpanRecompute)))
	require.NoError(t, err)
	lineLen := int64(len(line) + 1)

	// Room for two lines per file.
	exporter, err := NewFileExporter(path, 2*lineLen)
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, exporter.ExportSpans(context.Background(),
			[]sdktrace.ReadOnlySpan{stubSpan(SpanRecompute)}))
	}
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Len(t, readRecords(t, path), 1, "fifth span starts the third file")
	require.Len(t, readRecords(t, path+".1"), 2, "only the latest backup is kept")

	info, err := os.Stat(path + ".1")
	require.NoError(t, err)
	require.LessOrEqual(t, info.Size(), 2*lineLen)
}

func TestFileExporter_OversizedSpanStillWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path, 10)
	require.NoError(t, err)

	require.NoError(t, exporter.ExportSpans(context.Background(),
		[]sdktrace.ReadOnlySpan{stubSpan(SpanReload, attribute.String(AttrPath, "big.md"))}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	recs := readRecords(t, path)
	require.Len(t, recs, 1)
	require.Equal(t, "big.md", recs[0].File.Path)
}

func TestFileExporter_ExportAfterShutdownIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path, 0)
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.NoError(t, exporter.ExportSpans(context.Background(),
		[]sdktrace.ReadOnlySpan{stubSpan(SpanRecompute)}))
	require.Empty(t, readRecords(t, path))
}

func TestFileExporter_ConcurrentExports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(path, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{
				stubSpan(SpanRecompute, attribute.Int(AttrDecorations, i)),
			})
		}()
	}
	wg.Wait()
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Len(t, readRecords(t, path), 8)
}
