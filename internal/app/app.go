// Package app contains the root application model.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/smartmd/internal/classify"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/editor"
	"github.com/zjrosen/smartmd/internal/keys"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/pubsub"
	"github.com/zjrosen/smartmd/internal/recompute"
	"github.com/zjrosen/smartmd/internal/reconcile"
	"github.com/zjrosen/smartmd/internal/settings"
	"github.com/zjrosen/smartmd/internal/tabs"
	"github.com/zjrosen/smartmd/internal/theme"
	"github.com/zjrosen/smartmd/internal/tracing"
	"github.com/zjrosen/smartmd/internal/ui/help"
	"github.com/zjrosen/smartmd/internal/ui/logoverlay"
	"github.com/zjrosen/smartmd/internal/ui/statusbar"
	"github.com/zjrosen/smartmd/internal/ui/tabbar"
	"github.com/zjrosen/smartmd/internal/ui/toaster"
	"github.com/zjrosen/smartmd/internal/watcher"
)

// Options are the services the application is built from. Settings, States
// and Theme are required.
type Options struct {
	Settings *settings.Store
	States   *tabs.StateStore
	Theme    *theme.Context
	Trees    recompute.TreeSource
	Tracer   trace.Tracer

	// Watcher reloads open files changed on disk. Nil disables reloading.
	Watcher *watcher.Watcher

	// Files are opened as tabs, the last one active.
	Files []string

	// Debug enables the log overlay.
	Debug bool
}

// restoreMsg commits a pending view restore once the new document has been
// laid out.
type restoreMsg struct {
	handle *reconcile.Handle
}

// autoSaveMsg fires an auto-save round. Rounds from an earlier schedule are
// ignored.
type autoSaveMsg struct {
	seq int
}

// treeForgetter is implemented by tree sources that cache per document.
type treeForgetter interface {
	Forget(ctx context.Context, doc *document.Document)
}

// Model is the root application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	settings *settings.Store
	states   *tabs.StateStore
	theme    *theme.Context
	trees    recompute.TreeSource
	tracer   trace.Tracer
	tabs     *tabs.Store

	// The controller is registered before the reconciler so decorations are
	// current when the position is saved.
	editor     *editor.Model
	controller *recompute.Controller
	reconciler *reconcile.Reconciler

	tabbar  tabbar.Model
	help    help.Model
	toaster toaster.Model
	logs    logoverlay.Model

	width    int
	height   int
	showHelp bool
	debug    bool

	// id of a modified tab whose close was requested once
	confirmClose string

	settingsVersion  uint64
	settingsListener *pubsub.ContinuousListener[settings.Change]

	watcher         *watcher.Watcher
	watcherListener *pubsub.ContinuousListener[watcher.Event]
	logListener     *log.LogListener

	autoSaveSeq int
	startup     []tea.Cmd
}

// New creates the application model and opens opts.Files.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("smartmd")
	}

	m := Model{
		ctx:      ctx,
		cancel:   cancel,
		settings: opts.Settings,
		states:   opts.States,
		theme:    opts.Theme,
		trees:    opts.Trees,
		tracer:   tracer,
		tabs:     tabs.NewStore(),
		tabbar:   tabbar.New(opts.Theme),
		help:     help.New(opts.Theme),
		toaster:  toaster.New(opts.Theme),
		logs:     logoverlay.New(opts.Theme),
		debug:    opts.Debug,
		watcher:  opts.Watcher,
	}

	current := opts.Settings.Get()
	m.settingsVersion = opts.Settings.Version()

	m.editor = editor.New(opts.Theme)
	m.controller = recompute.New(m.editor, m.trees, current.DecorationConfig(), recompute.WithTracer(tracer))
	m.reconciler = reconcile.New(opts.States)
	m.reconciler.SetRestoreEnabled(current.RestoreCursorPosition)
	m.editor.AddPlugin(m.controller)
	m.editor.AddPlugin(m.reconciler)
	m.editor.SetDecorations(m.controller)
	m.editor.SetOptions(editorOptions(current))

	m.settingsListener = opts.Settings.Listener(ctx)
	if m.watcher != nil {
		m.watcherListener = pubsub.NewContinuousListener(ctx, m.watcher.Broker())
	}
	if m.debug {
		m.logListener = log.NewListener(ctx)
	}

	for _, path := range opts.Files {
		if err := m.openFile(path); err != nil {
			log.ErrorErr(log.CatTabs, "open file", err, "path", path)
			m.startup = append(m.startup, m.toast("Cannot open "+path+": "+err.Error(), toaster.StyleError))
		}
	}
	if m.tabs.Len() == 0 {
		m.tabs.Create("")
	}
	m.startup = append(m.startup, m.activate())
	return m
}

func editorOptions(s settings.Settings) editor.Options {
	return editor.Options{
		ShowLineNumbers:     s.ShowLineNumbers,
		HighlightActiveLine: s.EnableHighlightActiveLine,
		WordWrap:            s.EnableWordWrap,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := append([]tea.Cmd{}, m.startup...)
	cmds = append(cmds, m.settingsListener.Listen(), m.scheduleAutoSave())
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Close stops the listeners. The services passed in Options stay open.
func (m Model) Close() {
	m.cancel()
	m.tabs.Close()
}

// Editor returns the text surface.
func (m Model) Editor() *editor.Model { return m.editor }

// Tabs returns the tab store.
func (m Model) Tabs() *tabs.Store { return m.tabs }

// Controller returns the decoration controller.
func (m Model) Controller() *recompute.Controller { return m.controller }

// Reconciler returns the cursor and scroll reconciler.
func (m Model) Reconciler() *reconcile.Reconciler { return m.reconciler }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetSize(msg.Width, max(msg.Height-2, 1))
		m.tabbar = m.tabbar.SetWidth(msg.Width)
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.logs.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case editor.ChangeMsg:
		m.syncActive()
		return m, nil

	case restoreMsg:
		m.commitRestore(msg.handle)
		return m, nil

	case autoSaveMsg:
		if msg.seq != m.autoSaveSeq {
			return m, nil
		}
		return m, tea.Batch(m.saveAll(), m.scheduleAutoSave())

	case pubsub.Event[settings.Change]:
		cmd := m.applySettings(msg.Payload)
		return m, tea.Batch(cmd, m.settingsListener.Listen())

	case pubsub.Event[watcher.Event]:
		cmd := m.handleFileEvent(msg.Payload)
		if m.watcherListener != nil {
			cmd = tea.Batch(cmd, m.watcherListener.Listen())
		}
		return m, cmd

	case log.LogEvent:
		m.logs.Append(msg.Payload)
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case logoverlay.CloseMsg:
		m.logs.Hide()
		return m, nil

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := keys.App

	// The log overlay takes every key while open.
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}
	if m.debug && key.Matches(msg, k.Logs) {
		m.logs.Toggle()
		return m, nil
	}

	if m.showHelp {
		switch {
		case key.Matches(msg, k.Quit):
			return m, tea.Quit
		case key.Matches(msg, k.Help), key.Matches(msg, k.Escape):
			m.showHelp = false
			m.editor.Focus()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = true
		m.editor.Blur()
		return m, nil
	case key.Matches(msg, k.Escape):
		if m.toaster.Visible() {
			m.toaster = m.toaster.Hide()
		}
		return m, nil
	case key.Matches(msg, k.NewTab):
		m.tabs.Create("")
		return m, m.activate()
	case key.Matches(msg, k.CloseTab):
		return m, m.closeActive()
	case key.Matches(msg, k.NextTab):
		m.tabs.Cycle(1)
		return m, m.activate()
	case key.Matches(msg, k.PrevTab):
		m.tabs.Cycle(-1)
		return m, m.activate()
	case key.Matches(msg, k.Save):
		tab, ok := m.tabs.Active()
		if !ok {
			return m, nil
		}
		return m, m.save(tab.ID, false)
	case key.Matches(msg, k.CycleViewMode):
		return m, m.mutateSettings(func() (settings.Change, error) {
			return m.settings.CycleViewMode(m.ctx)
		})
	case key.Matches(msg, k.ToggleTheme):
		return m, m.mutateSettings(func() (settings.Change, error) {
			return m.settings.ToggleTheme(m.ctx)
		})
	case key.Matches(msg, k.ToggleStatus):
		return m, m.mutateSettings(func() (settings.Change, error) {
			return m.settings.Update(m.ctx, func(s *settings.Settings) error {
				s.EnableStatusColors = !s.EnableStatusColors
				return nil
			})
		})
	case key.Matches(msg, k.ToggleBullets):
		return m, m.mutateSettings(func() (settings.Change, error) {
			return m.settings.Update(m.ctx, func(s *settings.Settings) error {
				s.EnableBulletPoints = !s.EnableBulletPoints
				return nil
			})
		})
	case key.Matches(msg, k.ToggleWrap):
		return m, m.mutateSettings(func() (settings.Change, error) {
			return m.settings.Update(m.ctx, func(s *settings.Settings) error {
				s.EnableWordWrap = !s.EnableWordWrap
				return nil
			})
		})
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.syncActive()
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.logs.Visible() {
		return m, nil
	}
	if msg.Y == 0 {
		if id, ok := tabbar.TabAt(msg, m.tabList()); ok {
			m.tabs.Activate(id)
			return m, m.activate()
		}
		return m, nil
	}
	if msg.Y >= m.height-1 {
		return m, nil
	}
	msg.Y--
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	active, _ := m.tabs.Active()
	view := lipgloss.JoinVertical(lipgloss.Left,
		m.tabbar.View(m.tabList(), active.ID),
		m.editor.View(),
		statusbar.Render(m.theme, m.statusInfo(active), m.width),
	)
	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.logs.Visible() {
		view = m.logs.Overlay(view)
	}
	view = m.toaster.Overlay(view, m.width, m.height)
	return zone.Scan(view)
}

func (m Model) statusInfo(tab tabs.Tab) statusbar.Info {
	s := m.settings.Get()
	doc := m.editor.Document()
	sel := m.editor.Selection()
	line := doc.LineAt(sel.Head)

	info := statusbar.Info{
		Path:     tab.Path,
		Modified: tab.Modified,
		Line:     line.Number,
		Column:   ansi.StringWidth(doc.Slice(line.From, sel.Head)) + 1,
		Selected: sel.To() - sel.From(),
		Markers:  string(s.MarkdownViewMode),
		Help:     keys.App.ShortHelp(),
	}
	if info.Path == "" {
		info.Path = tab.Title
	}
	if s.EnableStatusColors {
		info.Status = classify.LineStatus(line.Text)
	}
	return info
}

func (m Model) tabList() []*tabs.Tab {
	list := m.tabs.Tabs()
	out := make([]*tabs.Tab, len(list))
	for i := range list {
		out[i] = &list[i]
	}
	return out
}

// activate shows the active tab in the editor. The saved position is
// restored by the returned command, after the document has been laid out.
func (m *Model) activate() tea.Cmd {
	tab, ok := m.tabs.Active()
	if !ok {
		return nil
	}
	if m.editor.Document() == tab.Doc {
		return nil
	}
	m.confirmClose = ""
	h := m.reconciler.Activate(m.ctx, tab.ID)
	m.editor.SetDocument(tab.Doc)
	log.Debug(log.CatTabs, "activated", "tab", tab.ID, "title", tab.Title)
	if h == nil {
		return nil
	}
	return func() tea.Msg { return restoreMsg{handle: h} }
}

func (m *Model) commitRestore(h *reconcile.Handle) {
	_, span := m.tracer.Start(m.ctx, tracing.SpanRestore)
	defer span.End()
	ok := h.Commit(m.editor)
	span.SetAttributes(
		attribute.String(tracing.AttrDocID, h.ID()),
		attribute.Bool(tracing.AttrSkipped, !ok),
	)
}

// syncActive stores the editor's snapshot in its tab.
func (m *Model) syncActive() {
	doc := m.editor.Document()
	if doc == nil {
		return
	}
	if m.tabs.UpdateContent(doc.ID(), doc) {
		m.confirmClose = ""
	}
}

func (m *Model) openFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(abs) //nolint:gosec // G304: path comes from the command line
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	// A missing file opens empty and is created on first save.
	m.tabs.Open(abs, string(data))
	if m.watcher != nil {
		if err := m.watcher.Add(abs); err != nil {
			log.Warn(log.CatWatcher, "cannot watch file", "path", abs, "error", err)
		}
	}
	return nil
}

func (m *Model) closeActive() tea.Cmd {
	tab, ok := m.tabs.Active()
	if !ok {
		return nil
	}
	if tab.Modified && m.confirmClose != tab.ID {
		m.confirmClose = tab.ID
		return m.toast(fmt.Sprintf("Unsaved changes in %s. Press %s again to discard",
			tab.Title, keys.App.CloseTab.Help().Key), toaster.StyleWarn)
	}
	m.confirmClose = ""
	m.tabs.CloseTab(tab.ID)

	if tab.Path == "" {
		m.states.Forget(m.ctx, tab.ID)
	} else if m.watcher != nil {
		m.watcher.Remove(tab.Path)
	}
	if f, ok := m.trees.(treeForgetter); ok {
		f.Forget(m.ctx, tab.Doc)
	}
	if m.tabs.Len() == 0 {
		m.tabs.Create("")
	}
	return m.activate()
}

func (m *Model) save(id string, quiet bool) tea.Cmd {
	tab, ok := m.tabs.Get(id)
	if !ok {
		return nil
	}
	if tab.Path == "" {
		if quiet {
			return nil
		}
		return m.toast("Untitled tabs cannot be saved; open a file path instead", toaster.StyleWarn)
	}

	_, span := m.tracer.Start(m.ctx, tracing.SpanFileSave, trace.WithAttributes(
		attribute.String(tracing.AttrPath, tab.Path),
		attribute.Int(tracing.AttrBytes, tab.Doc.Len()),
	))
	defer span.End()

	if err := writeFile(tab.Path, tab.Doc.Text()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		log.ErrorErr(log.CatTabs, "save file", err, "path", tab.Path)
		return m.toast("Save failed: "+err.Error(), toaster.StyleError)
	}
	m.tabs.MarkClean(id)
	log.Info(log.CatTabs, "saved", "path", tab.Path, "bytes", tab.Doc.Len())
	if quiet {
		return nil
	}
	return m.toast("Saved "+tab.Title, toaster.StyleSuccess)
}

func (m *Model) saveAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, tab := range m.tabs.Tabs() {
		if tab.Modified && tab.Path != "" {
			cmds = append(cmds, m.save(tab.ID, true))
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) scheduleAutoSave() tea.Cmd {
	s := m.settings.Get()
	if !s.AutoSave {
		return nil
	}
	seq := m.autoSaveSeq
	interval := time.Duration(max(s.AutoSaveInterval, settings.MinAutoSaveInterval)) * time.Millisecond
	return tea.Tick(interval, func(time.Time) tea.Msg { return autoSaveMsg{seq: seq} })
}

// mutateSettings runs a settings mutation and applies its result right away;
// the broadcast of the same change is then ignored by version.
func (m *Model) mutateSettings(fn func() (settings.Change, error)) tea.Cmd {
	change, err := fn()
	if err != nil {
		log.ErrorErr(log.CatSettings, "update settings", err)
		return tea.Batch(m.applySettings(change), m.toast("Settings not saved: "+err.Error(), toaster.StyleError))
	}
	return m.applySettings(change)
}

// applySettings pushes a settings change to the components it affects.
func (m *Model) applySettings(c settings.Change) tea.Cmd {
	if c.Version <= m.settingsVersion || len(c.Fields) == 0 {
		return nil
	}
	m.settingsVersion = c.Version
	s := c.Settings

	if c.Has(settings.DecorationFields...) {
		m.controller.Reconfigure(s.DecorationConfig())
	}
	if c.Has(settings.FieldTheme) {
		m.theme.SetMode(s.Theme)
	}
	if c.Has(settings.FieldLineNumbers, settings.FieldActiveLine, settings.FieldWordWrap) {
		m.editor.SetOptions(editorOptions(s))
	}
	if c.Has(settings.FieldRestoreCursor) {
		m.reconciler.SetRestoreEnabled(s.RestoreCursorPosition)
	}
	if c.Has(settings.FieldAutoSave, settings.FieldAutoSaveInterval) {
		m.autoSaveSeq++
		return m.scheduleAutoSave()
	}
	return nil
}

// handleFileEvent reloads a clean tab whose file changed on disk. The
// selection is carried over the textual difference.
func (m *Model) handleFileEvent(e watcher.Event) tea.Cmd {
	switch e.Type {
	case watcher.WatcherError:
		log.Warn(log.CatWatcher, "watcher error received", "error", e.Error)
		return nil
	case watcher.FileRemoved:
		tab, ok := m.tabs.FindByPath(e.Path)
		if !ok {
			return nil
		}
		return m.toast(tab.Title+" was removed from disk", toaster.StyleWarn)
	}

	tab, ok := m.tabs.FindByPath(e.Path)
	if !ok {
		return nil
	}
	data, err := os.ReadFile(e.Path) //nolint:gosec // G304: watched path of an open tab
	if err != nil {
		log.ErrorErr(log.CatWatcher, "read changed file", err, "path", e.Path)
		return nil
	}
	content := string(data)
	if content == tab.Doc.Text() {
		return nil
	}
	if tab.Modified {
		return m.toast(tab.Title+" changed on disk; your unsaved edits were kept", toaster.StyleWarn)
	}

	_, span := m.tracer.Start(m.ctx, tracing.SpanReload, trace.WithAttributes(
		attribute.String(tracing.AttrPath, e.Path),
		attribute.Int(tracing.AttrBytes, len(content)),
	))
	defer span.End()

	oldText := tab.Doc.Text()
	if !m.tabs.Reload(tab.ID, content) {
		return nil
	}
	if f, ok := m.trees.(treeForgetter); ok {
		f.Forget(m.ctx, tab.Doc)
	}
	if cur := m.editor.Document(); cur != nil && cur.ID() == tab.ID {
		reloaded, _ := m.tabs.Get(tab.ID)
		m.editor.Reload(reloaded.Doc, RemapSelection(oldText, content, m.editor.Selection()))
	}
	log.Info(log.CatWatcher, "reloaded", "path", e.Path)
	return m.toast("Reloaded "+tab.Title, toaster.StyleInfo)
}

func (m *Model) toast(message string, style toaster.Style) tea.Cmd {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(message, style)
	return cmd
}

func writeFile(path, text string) error {
	return os.WriteFile(path, []byte(text), 0o644) //nolint:gosec // G306: user documents are world readable
}
