package tracing

// Span names.
const (
	SpanRecompute = "decorations.recompute"
	SpanRestore   = "cursor.restore"
	SpanFileSave  = "file.save"
	SpanReload    = "file.reload"
)

// Span attribute keys.
const (
	AttrDocID        = "doc.id"
	AttrDocVersion   = "doc.version"
	AttrDocLength    = "doc.length"
	AttrReason       = "recompute.reason"
	AttrDecorations  = "decorations.published"
	AttrVisibleBytes = "decorations.visible_bytes"
	AttrSkipped      = "cursor.skipped"
	AttrPath         = "file.path"
	AttrBytes        = "file.bytes"
)
