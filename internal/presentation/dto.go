package presentation

import (
	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/document"
)

// DecorationDTO is one published decoration with the text it covers.
type DecorationDTO struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Line   int    `json:"line"`
	Kind   string `json:"kind"`
	Widget string `json:"widget,omitempty"`
	Color  string `json:"color,omitempty"`
	Class  string `json:"class,omitempty"`
	Text   string `json:"text"`
}

// DecorationReportDTO describes a decoration run over one document.
type DecorationReportDTO struct {
	Path        string          `json:"path"`
	Length      int             `json:"length"`
	Lines       int             `json:"lines"`
	Mode        string          `json:"mode"`
	Head        int             `json:"head"`
	Decorations []DecorationDTO `json:"decorations"`
}

// FromCandidate converts a candidate of doc to a DTO. Line decorations
// report the text of their whole line.
func FromCandidate(doc *document.Document, c decoration.Candidate) DecorationDTO {
	line := doc.LineAt(c.From)
	text := doc.Slice(c.From, c.To)
	if c.Kind == decoration.LineClass {
		text = line.Text
	}
	return DecorationDTO{
		From:   c.From,
		To:     c.To,
		Line:   line.Number,
		Kind:   c.Kind.String(),
		Widget: string(c.Payload.Widget),
		Color:  c.Payload.Color,
		Class:  c.Payload.Class,
		Text:   text,
	}
}

// FromDecorationSet converts every decoration of set.
func FromDecorationSet(path string, doc *document.Document, head int, mode decoration.MarkerMode, set *decoration.Set) DecorationReportDTO {
	items := set.Items()
	dtos := make([]DecorationDTO, len(items))
	for i, c := range items {
		dtos[i] = FromCandidate(doc, c)
	}
	return DecorationReportDTO{
		Path:        path,
		Length:      doc.Len(),
		Lines:       doc.LineCount(),
		Mode:        string(mode),
		Head:        head,
		Decorations: dtos,
	}
}
