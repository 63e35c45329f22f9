// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// EditorKeys are the motion and editing bindings of the text surface.
type EditorKeys struct {
	// Motion
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	LineStart key.Binding
	LineEnd   key.Binding
	DocStart  key.Binding
	DocEnd    key.Binding
	PageUp    key.Binding
	PageDown  key.Binding

	// Selection
	SelectLeft      key.Binding
	SelectRight     key.Binding
	SelectUp        key.Binding
	SelectDown      key.Binding
	SelectLineStart key.Binding
	SelectLineEnd   key.Binding
	SelectAll       key.Binding

	// Viewport only
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// Editing
	Newline        key.Binding
	Tab            key.Binding
	DeleteBackward key.Binding
	DeleteForward  key.Binding
	DeleteWordBack key.Binding
	Undo           key.Binding
	Redo           key.Binding
}

// AppKeys are the application level bindings.
type AppKeys struct {
	NewTab        key.Binding
	CloseTab      key.Binding
	NextTab       key.Binding
	PrevTab       key.Binding
	Save          key.Binding
	CycleViewMode key.Binding
	ToggleTheme   key.Binding
	ToggleStatus  key.Binding
	ToggleBullets key.Binding
	ToggleWrap    key.Binding
	Help          key.Binding
	Logs          key.Binding
	Escape        key.Binding
	Quit          key.Binding
}

// Editor holds the text surface bindings.
var Editor = EditorKeys{
	Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "left")),
	Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "right")),
	Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
	Down:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
	LineStart: key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "line start")),
	LineEnd:   key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "line end")),
	DocStart:  key.NewBinding(key.WithKeys("ctrl+home"), key.WithHelp("ctrl+home", "document start")),
	DocEnd:    key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "document end")),
	PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),

	SelectLeft:      key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←", "select left")),
	SelectRight:     key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("shift+→", "select right")),
	SelectUp:        key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("shift+↑", "select up")),
	SelectDown:      key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("shift+↓", "select down")),
	SelectLineStart: key.NewBinding(key.WithKeys("shift+home"), key.WithHelp("shift+home", "select to line start")),
	SelectLineEnd:   key.NewBinding(key.WithKeys("shift+end"), key.WithHelp("shift+end", "select to line end")),
	SelectAll:       key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "select all")),

	ScrollUp:   key.NewBinding(key.WithKeys("ctrl+up"), key.WithHelp("ctrl+↑", "scroll up")),
	ScrollDown: key.NewBinding(key.WithKeys("ctrl+down"), key.WithHelp("ctrl+↓", "scroll down")),

	Newline:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new line")),
	Tab:            key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "indent")),
	DeleteBackward: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete left")),
	DeleteForward:  key.NewBinding(key.WithKeys("delete", "ctrl+d"), key.WithHelp("del", "delete right")),
	DeleteWordBack: key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace"), key.WithHelp("ctrl+w", "delete word")),
	Undo:           key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
	Redo:           key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "redo")),
}

// App holds the application bindings.
var App = AppKeys{
	NewTab:        key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new tab")),
	CloseTab:      key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "close tab")),
	NextTab:       key.NewBinding(key.WithKeys("ctrl+right", "ctrl+pgdown"), key.WithHelp("ctrl+→", "next tab")),
	PrevTab:       key.NewBinding(key.WithKeys("ctrl+left", "ctrl+pgup"), key.WithHelp("ctrl+←", "previous tab")),
	Save:          key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	CycleViewMode: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "cycle marker mode")),
	ToggleTheme:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "toggle theme")),
	ToggleStatus:  key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "toggle status colors")),
	ToggleBullets: key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "toggle bullets")),
	ToggleWrap:    key.NewBinding(key.WithKeys("alt+z"), key.WithHelp("alt+z", "toggle word wrap")),
	Help:          key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "toggle help")),
	Logs:          key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "toggle logs")),
	Escape:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close overlay")),
	Quit:          key.NewBinding(key.WithKeys("ctrl+q", "ctrl+c"), key.WithHelp("ctrl+q", "quit")),
}

// ShortHelp returns keybindings for the status bar.
func (k AppKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Save, k.CycleViewMode, k.Quit}
}

// FullHelp returns keybindings for the help overlay.
func (k AppKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NewTab, k.CloseTab, k.NextTab, k.PrevTab},                                            // Tabs
		{k.Save, k.CycleViewMode, k.ToggleTheme, k.ToggleStatus, k.ToggleBullets, k.ToggleWrap}, // Document
		{k.Help, k.Escape, k.Quit},                                                              // General
	}
}

// FullHelp returns the editor bindings grouped for the help overlay.
func (k EditorKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.LineStart, k.LineEnd, k.DocStart, k.DocEnd, k.PageUp, k.PageDown},
		{k.SelectLeft, k.SelectRight, k.SelectUp, k.SelectDown, k.SelectLineStart, k.SelectLineEnd, k.SelectAll},
		{k.ScrollUp, k.ScrollDown},
		{k.Newline, k.Tab, k.DeleteBackward, k.DeleteForward, k.DeleteWordBack, k.Undo, k.Redo},
	}
}
