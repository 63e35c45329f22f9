// Package markdown renders Markdown for read-only panes such as the help
// overlay.
package markdown

import "github.com/charmbracelet/glamour"

// noMarginStyle removes the document margins glamour adds by default.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer for one width and color mode.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	dark     bool
}

// New creates a renderer that wraps at width using the dark or light style.
func New(width int, dark bool) (*Renderer, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, dark: dark}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int { return r.width }

// Dark reports whether the renderer uses the dark style.
func (r *Renderer) Dark() bool { return r.dark }

// Fits reports whether the renderer can be reused for width and mode.
func (r *Renderer) Fits(width int, dark bool) bool {
	return r != nil && r.width == width && r.dark == dark
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
