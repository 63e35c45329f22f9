package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultFileMaxBytes is the size at which the trace file rolls over.
const DefaultFileMaxBytes int64 = 10 << 20

// FileExporter writes one JSON line per span. When the file would grow past
// maxBytes it is renamed to path+".1", replacing any earlier backup, and a
// fresh file is started, so a long editing session keeps at most two files.
type FileExporter struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	size     int64
}

// NewFileExporter opens path for appending, creating parent directories.
// maxBytes <= 0 uses DefaultFileMaxBytes.
func NewFileExporter(path string, maxBytes int64) (*FileExporter, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultFileMaxBytes
	}
	e := &FileExporter{path: path, maxBytes: maxBytes}
	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *FileExporter) open() error {
	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- path is cleaned
	if err != nil {
		return fmt.Errorf("open trace file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat trace file: %w", err)
	}
	e.file = f
	e.size = info.Size()
	return nil
}

func (e *FileExporter) roll() error {
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("close trace file: %w", err)
	}
	e.file = nil
	if err := os.Rename(e.path, e.path+".1"); err != nil {
		return fmt.Errorf("roll trace file: %w", err)
	}
	return e.open()
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}

	for _, span := range spans {
		line, err := json.Marshal(NewSpanRecord(span))
		if err != nil {
			return fmt.Errorf("encode span: %w", err)
		}
		line = append(line, '\n')

		if e.size > 0 && e.size+int64(len(line)) > e.maxBytes {
			if err := e.roll(); err != nil {
				return err
			}
		}
		n, err := e.file.Write(line)
		e.size += int64(n)
		if err != nil {
			return fmt.Errorf("write span: %w", err)
		}
	}
	return nil
}

// Shutdown closes the file. Later exports are dropped.
func (e *FileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

// SpanRecord is the JSON line written per span. The attributes this program
// sets are lifted into typed sections; anything else lands in Extra.
type SpanRecord struct {
	TraceID    string           `json:"trace_id"`
	SpanID     string           `json:"span_id"`
	Name       string           `json:"name"`
	Start      time.Time        `json:"start"`
	DurationMs float64          `json:"duration_ms"`
	Error      string           `json:"error,omitempty"`
	Doc        *DocRecord       `json:"doc,omitempty"`
	Recompute  *RecomputeRecord `json:"recompute,omitempty"`
	Restore    *RestoreRecord   `json:"restore,omitempty"`
	File       *FileRecord      `json:"file,omitempty"`
	Extra      map[string]any   `json:"extra,omitempty"`
}

// DocRecord identifies the document snapshot a span worked on.
type DocRecord struct {
	ID      string `json:"id"`
	Version int64  `json:"version,omitempty"`
	Length  int64  `json:"length,omitempty"`
}

// RecomputeRecord describes one decoration rebuild.
type RecomputeRecord struct {
	Reason       string `json:"reason"`
	Published    int64  `json:"published"`
	VisibleBytes int64  `json:"visible_bytes"`
}

// RestoreRecord describes one cursor restore commit.
type RestoreRecord struct {
	Skipped bool `json:"skipped"`
}

// FileRecord describes a save or reload.
type FileRecord struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
}

// NewSpanRecord converts a finished span.
func NewSpanRecord(span sdktrace.ReadOnlySpan) SpanRecord {
	sc := span.SpanContext()
	rec := SpanRecord{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		Name:       span.Name(),
		Start:      span.StartTime(),
		DurationMs: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000.0,
	}
	if st := span.Status(); st.Code == codes.Error {
		rec.Error = st.Description
		if rec.Error == "" {
			rec.Error = "error"
		}
	}

	for _, kv := range span.Attributes() {
		v := kv.Value
		switch string(kv.Key) {
		case AttrDocID:
			rec.doc().ID = v.AsString()
		case AttrDocVersion:
			rec.doc().Version = v.AsInt64()
		case AttrDocLength:
			rec.doc().Length = v.AsInt64()
		case AttrReason:
			rec.recompute().Reason = v.AsString()
		case AttrDecorations:
			rec.recompute().Published = v.AsInt64()
		case AttrVisibleBytes:
			rec.recompute().VisibleBytes = v.AsInt64()
		case AttrSkipped:
			rec.restore().Skipped = v.AsBool()
		case AttrPath:
			rec.file().Path = v.AsString()
		case AttrBytes:
			rec.file().Bytes = v.AsInt64()
		default:
			rec.extra(kv)
		}
	}
	return rec
}

func (r *SpanRecord) doc() *DocRecord {
	if r.Doc == nil {
		r.Doc = &DocRecord{}
	}
	return r.Doc
}

func (r *SpanRecord) recompute() *RecomputeRecord {
	if r.Recompute == nil {
		r.Recompute = &RecomputeRecord{}
	}
	return r.Recompute
}

func (r *SpanRecord) restore() *RestoreRecord {
	if r.Restore == nil {
		r.Restore = &RestoreRecord{}
	}
	return r.Restore
}

func (r *SpanRecord) file() *FileRecord {
	if r.File == nil {
		r.File = &FileRecord{}
	}
	return r.File
}

func (r *SpanRecord) extra(kv attribute.KeyValue) {
	if r.Extra == nil {
		r.Extra = make(map[string]any)
	}
	r.Extra[string(kv.Key)] = kv.Value.AsInterface()
}
