package tabs

import (
	"context"
	"time"

	"github.com/zjrosen/smartmd/internal/cachemanager"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/reconcile"
)

// stateTTL bounds how long a loaded view state stays cached.
const stateTTL = 10 * time.Minute

// Deleter is implemented by backends that can drop a document's state.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// StateStore is the reconciler's store for tab documents. Reads are served
// from a cache in front of the persistent backend; writes go through.
type StateStore struct {
	backend reconcile.Store
	cache   *cachemanager.InMemoryCacheManager[string, reconcile.ViewState]
}

var _ reconcile.Store = (*StateStore)(nil)

// NewStateStore wraps backend.
func NewStateStore(backend reconcile.Store) *StateStore {
	return &StateStore{
		backend: backend,
		cache: cachemanager.NewInMemoryCacheManager[string, reconcile.ViewState]("view-state",
			stateTTL, cachemanager.DefaultCleanupInterval),
	}
}

// Load implements reconcile.Store.
func (s *StateStore) Load(ctx context.Context, id string) (reconcile.ViewState, bool, error) {
	if st, ok := s.cache.Get(ctx, id); ok {
		return st, true, nil
	}
	st, ok, err := s.backend.Load(ctx, id)
	if err != nil || !ok {
		return st, ok, err
	}
	s.cache.Set(ctx, id, st, stateTTL)
	return st, true, nil
}

// Save implements reconcile.Store. A cached entry is patched once the
// backend accepted the write.
func (s *StateStore) Save(ctx context.Context, st reconcile.ViewState) error {
	if err := s.backend.Save(ctx, st); err != nil {
		return err
	}
	if cached, ok := s.cache.Get(ctx, st.ID); ok {
		s.cache.Set(ctx, st.ID, reconcile.Merge(cached, st), stateTTL)
	}
	return nil
}

// Forget drops the state of a tab that can never be reopened, such as a
// closed untitled tab.
func (s *StateStore) Forget(ctx context.Context, id string) {
	_ = s.cache.Delete(ctx, id)
	d, ok := s.backend.(Deleter)
	if !ok {
		return
	}
	if err := d.Delete(ctx, id); err != nil {
		log.ErrorErr(log.CatTabs, "forget view state", err, "id", id)
	}
}
