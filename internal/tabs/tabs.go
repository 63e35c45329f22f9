// Package tabs manages the open documents and which one is active.
package tabs

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/pubsub"
)

// UntitledTitle is the title of a new empty tab.
const UntitledTitle = "Untitled"

// Tab is one open document.
type Tab struct {
	ID        string
	Title     string
	Path      string // empty for untitled tabs
	Doc       *document.Document
	Modified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Change is the payload of every tabs event.
type Change struct {
	Tab      Tab
	ActiveID string
}

// FileID derives a stable tab and document identity from a file path, so a
// file reopened later finds its saved view state.
func FileID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// Store holds tabs in display order.
type Store struct {
	mu       sync.RWMutex
	tabs     []Tab
	activeID string
	broker   *pubsub.Broker[Change]
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{broker: pubsub.NewBroker[Change](), now: time.Now}
}

// Subscribe delivers every tab change.
func (s *Store) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return s.broker.Subscribe(ctx)
}

// Listener is Subscribe for Bubble Tea models.
func (s *Store) Listener(ctx context.Context) *pubsub.ContinuousListener[Change] {
	return pubsub.NewContinuousListener(ctx, s.broker)
}

// Close ends all subscriptions.
func (s *Store) Close() { s.broker.Close() }

// Create appends an untitled tab and activates it.
func (s *Store) Create(title string) Tab {
	if title == "" {
		title = UntitledTitle
	}
	now := s.now()
	id := uuid.NewString()
	tab := Tab{ID: id, Title: title, Doc: document.NewWithID(id, ""), CreatedAt: now, UpdatedAt: now}

	s.mu.Lock()
	s.tabs = append(s.tabs, tab)
	s.activeID = id
	s.mu.Unlock()

	s.publish(pubsub.CreatedEvent, tab)
	return tab
}

// Open adds a file-backed tab and activates it. A file that is already open
// is only activated.
func (s *Store) Open(path, content string) Tab {
	id := FileID(path)
	if tab, ok := s.Get(id); ok {
		s.Activate(id)
		return tab
	}
	now := s.now()
	tab := Tab{
		ID:        id,
		Title:     filepath.Base(path),
		Path:      path,
		Doc:       document.NewWithID(id, content),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.tabs = append(s.tabs, tab)
	s.activeID = id
	s.mu.Unlock()

	log.Debug(log.CatTabs, "opened", "path", path, "id", id)
	s.publish(pubsub.CreatedEvent, tab)
	return tab
}

// CloseTab removes a tab. When it was active the tab now at its position, or
// the new last tab, becomes active.
func (s *Store) CloseTab(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	closed := s.tabs[idx]
	s.tabs = slices.Delete(s.tabs, idx, idx+1)
	if s.activeID == id {
		s.activeID = ""
		if len(s.tabs) > 0 {
			s.activeID = s.tabs[min(idx, len(s.tabs)-1)].ID
		}
	}
	s.mu.Unlock()

	s.publish(pubsub.DeletedEvent, closed)
	return true
}

// CloseAll removes every tab.
func (s *Store) CloseAll() {
	s.mu.Lock()
	closed := s.tabs
	s.tabs = nil
	s.activeID = ""
	s.mu.Unlock()

	for _, tab := range closed {
		s.publish(pubsub.DeletedEvent, tab)
	}
}

// Activate makes id the active tab. Unknown ids leave the active tab as is.
func (s *Store) Activate(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 || s.activeID == id {
		s.mu.Unlock()
		return idx >= 0
	}
	s.activeID = id
	tab := s.tabs[idx]
	s.mu.Unlock()

	s.publish(pubsub.ActivatedEvent, tab)
	return true
}

// UpdateContent stores a new snapshot and marks the tab modified. Snapshots
// of another document are rejected.
func (s *Store) UpdateContent(id string, doc *document.Document) bool {
	return s.modify(id, pubsub.UpdatedEvent, func(t *Tab) bool {
		if doc == nil || doc.ID() != id || doc == t.Doc {
			return false
		}
		t.Doc = doc
		t.Modified = true
		return true
	})
}

// Reload replaces the content after an external change. The tab is clean
// afterwards.
func (s *Store) Reload(id, content string) bool {
	return s.modify(id, pubsub.ReloadedEvent, func(t *Tab) bool {
		if t.Doc.Text() == content {
			return false
		}
		t.Doc = t.Doc.WithText(content)
		t.Modified = false
		return true
	})
}

// UpdateTitle renames a tab and marks it modified.
func (s *Store) UpdateTitle(id, title string) bool {
	return s.modify(id, pubsub.UpdatedEvent, func(t *Tab) bool {
		if t.Title == title {
			return false
		}
		t.Title = title
		t.Modified = true
		return true
	})
}

// UpdatePath records where the tab is saved. The identity does not change.
func (s *Store) UpdatePath(id, path string) bool {
	return s.modify(id, pubsub.UpdatedEvent, func(t *Tab) bool {
		if t.Path == path {
			return false
		}
		t.Path = path
		return true
	})
}

// MarkClean clears the modified flag, typically after a save.
func (s *Store) MarkClean(id string) bool {
	return s.modify(id, pubsub.UpdatedEvent, func(t *Tab) bool {
		if !t.Modified {
			return false
		}
		t.Modified = false
		return true
	})
}

// Reorder moves the tab at from to index to. Out-of-range indexes are ignored.
func (s *Store) Reorder(from, to int) bool {
	s.mu.Lock()
	if from < 0 || from >= len(s.tabs) || to < 0 || to >= len(s.tabs) || from == to {
		s.mu.Unlock()
		return false
	}
	tab := s.tabs[from]
	s.tabs = slices.Delete(s.tabs, from, from+1)
	s.tabs = slices.Insert(s.tabs, to, tab)
	s.mu.Unlock()

	s.publish(pubsub.UpdatedEvent, tab)
	return true
}

// Tabs returns the tabs in display order.
func (s *Store) Tabs() []Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tabs)
}

// Len returns the number of open tabs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tabs)
}

// Active returns the active tab.
func (s *Store) Active() (Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(s.activeID)
	if idx < 0 {
		return Tab{}, false
	}
	return s.tabs[idx], true
}

// ActiveIndex returns the position of the active tab, or -1.
func (s *Store) ActiveIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(s.activeID)
}

// Get looks a tab up by id.
func (s *Store) Get(id string) (Tab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Tab{}, false
	}
	return s.tabs[idx], true
}

// FindByPath looks a file-backed tab up by path.
func (s *Store) FindByPath(path string) (Tab, bool) {
	return s.Get(FileID(path))
}

// Cycle activates the tab delta positions away from the active one, wrapping.
func (s *Store) Cycle(delta int) bool {
	s.mu.RLock()
	n := len(s.tabs)
	idx := s.indexOf(s.activeID)
	var id string
	if n > 0 {
		id = s.tabs[((idx+delta)%n+n)%n].ID
	}
	s.mu.RUnlock()
	if n == 0 {
		return false
	}
	return s.Activate(id)
}

func (s *Store) modify(id string, event pubsub.EventType, fn func(*Tab) bool) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	tab := s.tabs[idx]
	if !fn(&tab) {
		s.mu.Unlock()
		return false
	}
	tab.UpdatedAt = s.now()
	s.tabs[idx] = tab
	s.mu.Unlock()

	s.publish(event, tab)
	return true
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.tabs, func(t Tab) bool { return t.ID == id })
}

func (s *Store) publish(event pubsub.EventType, tab Tab) {
	s.mu.RLock()
	active := s.activeID
	s.mu.RUnlock()
	s.broker.Publish(event, Change{Tab: tab, ActiveID: active})
}
