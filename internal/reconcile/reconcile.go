// Package reconcile remembers where the cursor and scroll were in each
// document and puts them back when the document is shown again.
//
// Restoring is a two-phase commit. Activate attaches the new document and
// returns a Handle; the surface calls Handle.Commit once its layout for that
// document is complete. Saving runs on every selection or viewport change
// but skips changes the surface made on its own, since a remount briefly
// reports the cursor and scroll at the origin.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/surface"
)

// State is the restore state of the active document.
type State int

const (
	Detached State = iota
	PendingRestore
	Restored
)

func (s State) String() string {
	switch s {
	case Detached:
		return "detached"
	case PendingRestore:
		return "pending-restore"
	case Restored:
		return "restored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ViewState is the persisted position of one document. Nil fields are
// unknown; a save only overwrites the fields it sets.
type ViewState struct {
	ID        string
	Selection *surface.Selection
	Scroll    *int // offset of the topmost visible line
}

// Store persists ViewState per document.
type Store interface {
	Load(ctx context.Context, id string) (ViewState, bool, error)
	Save(ctx context.Context, state ViewState) error
}

// Reconciler tracks the active document. It is driven from the UI loop.
type Reconciler struct {
	store   Store
	enabled bool

	state      State
	activeID   string
	generation uint64
	pending    ViewState
}

var _ surface.Plugin = (*Reconciler)(nil)

// New creates a reconciler. Restoring starts enabled.
func New(store Store) *Reconciler {
	return &Reconciler{store: store, enabled: true}
}

// SetRestoreEnabled toggles restoring on document switches. Saving is not
// affected.
func (r *Reconciler) SetRestoreEnabled(enabled bool) {
	r.enabled = enabled
}

// State returns the restore state.
func (r *Reconciler) State() State { return r.state }

// ActiveID returns the identity of the active document.
func (r *Reconciler) ActiveID() string { return r.activeID }

// Handle is the pending restore of one activation.
type Handle struct {
	r          *Reconciler
	generation uint64
	id         string
}

// ID returns the document the handle restores.
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Activate makes id the active document. It returns the Handle to commit
// after layout, or nil when nothing is to be restored: the identity did not
// change or restoring is disabled.
func (r *Reconciler) Activate(ctx context.Context, id string) *Handle {
	if id == r.activeID && r.state != Detached {
		return nil
	}
	r.activeID = id
	r.generation++
	r.pending = ViewState{ID: id}

	if !r.enabled || id == "" {
		r.state = Detached
		return nil
	}

	saved, found, err := r.store.Load(ctx, id)
	if err != nil {
		log.ErrorErr(log.CatCursor, "load view state", err, "doc", id)
	} else if found {
		r.pending = saved
	}
	r.state = PendingRestore
	log.Debug(log.CatCursor, "restore pending", "doc", id, "generation", r.generation)
	return &Handle{r: r, generation: r.generation, id: id}
}

// Detach forgets the active document, e.g. when the last tab closes.
func (r *Reconciler) Detach() {
	r.activeID = ""
	r.generation++
	r.state = Detached
	r.pending = ViewState{}
}

// Commit restores scroll and then selection on host. It reports whether a
// restore happened; handles from an earlier activation are ignored.
func (h *Handle) Commit(host surface.Host) bool {
	if h == nil {
		return false
	}
	r := h.r
	if h.generation != r.generation || r.state != PendingRestore {
		log.Debug(log.CatCursor, "stale restore ignored", "doc", h.id)
		return false
	}
	doc := host.Document()
	if doc.ID() != h.id {
		log.Warn(log.CatCursor, "restore target mismatch", "want", h.id, "got", doc.ID())
		return false
	}
	r.state = Restored
	docLen := doc.Len()

	if s := r.pending.Scroll; s != nil {
		anchor := min(max(*s, 0), docLen)
		host.SetScrollTop(host.LineBlockAt(anchor).Top)
	}

	if sel := r.pending.Selection; sel != nil {
		if docLen == 0 && !sel.IsZero() {
			log.Debug(log.CatCursor, "selection restore skipped on empty document", "doc", h.id)
		} else {
			host.SetSelection(sel.Clamp(docLen), false)
		}
	}
	log.Debug(log.CatCursor, "restored", "doc", h.id)
	return true
}

// Update implements surface.Plugin and persists the position after
// selection and viewport changes.
//
// A change the user did not cause is not authoritative: if it edited the
// document nothing is saved, and a selection at {0,0} or a scroll at the top
// is dropped (the top is kept when the document is empty). Each field is
// judged separately. Nothing is saved while a restore is pending.
func (r *Reconciler) Update(u surface.Update) {
	if r.activeID == "" || (!u.SelectionChanged && !u.ViewportChanged) {
		return
	}
	if r.state == PendingRestore {
		return
	}
	if doc := u.View.Document(); doc == nil || doc.ID() != r.activeID {
		return
	}

	user := u.IsUserEvent()
	if u.DocChanged && !user {
		log.Debug(log.CatCursor, "save skipped: programmatic document change", "doc", r.activeID)
		return
	}

	patch := ViewState{ID: r.activeID}
	if sel := u.View.Selection(); user || !sel.IsZero() {
		patch.Selection = &sel
	}
	if top := u.View.ScrollTop(); user || top != 0 || u.DocLen() == 0 {
		anchor := surface.ScrollAnchor(u.View)
		patch.Scroll = &anchor
	}
	if patch.Selection == nil && patch.Scroll == nil {
		log.Debug(log.CatCursor, "save skipped: reset to origin", "doc", r.activeID)
		return
	}

	if err := r.store.Save(context.Background(), patch); err != nil {
		log.ErrorErr(log.CatCursor, "save view state", err, "doc", r.activeID)
	}
}

// MemoryStore is a Store kept in memory.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]ViewState
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]ViewState)}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) (ViewState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[id]
	return s, ok, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, state ViewState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.ID] = Merge(m.states[state.ID], state)
	return nil
}

// Merge applies the set fields of patch over base.
func Merge(base, patch ViewState) ViewState {
	base.ID = patch.ID
	if patch.Selection != nil {
		sel := *patch.Selection
		base.Selection = &sel
	}
	if patch.Scroll != nil {
		scroll := *patch.Scroll
		base.Scroll = &scroll
	}
	return base
}
