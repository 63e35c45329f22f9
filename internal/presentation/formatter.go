package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/smartmd/internal/settings"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatDecorationsJSON writes the report as indented JSON.
func (f *Formatter) FormatDecorationsJSON(report DecorationReportDTO) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// FormatDecorations writes one line per decoration:
//
//	3:12-14 replace widget=hidden "**"
func (f *Formatter) FormatDecorations(report DecorationReportDTO) error {
	for _, d := range report.Decorations {
		line := fmt.Sprintf("%d:%d-%d %s", d.Line, d.From, d.To, d.Kind)
		if d.Widget != "" {
			line += " widget=" + d.Widget
		}
		if d.Color != "" {
			line += " color=" + d.Color
		}
		if d.Class != "" {
			line += " class=" + d.Class
		}
		line += " " + strconv.Quote(d.Text)
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatSettings writes s as YAML.
func (f *Formatter) FormatSettings(s settings.Settings) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	return encoder.Close()
}
