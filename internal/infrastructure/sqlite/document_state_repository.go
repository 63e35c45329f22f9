package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/smartmd/internal/reconcile"
)

// DocumentStateRepository implements reconcile.Store using SQLite. Saves
// merge: a nil field in the saved state keeps the stored column.
type DocumentStateRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newDocumentStateRepository(db *sql.DB) *DocumentStateRepository {
	return &DocumentStateRepository{db: db, now: time.Now}
}

var _ reconcile.Store = (*DocumentStateRepository)(nil)

// Load returns the view state saved for id.
func (r *DocumentStateRepository) Load(ctx context.Context, id string) (reconcile.ViewState, bool, error) {
	var m DocumentStateModel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, anchor, head, scroll, updated_at FROM document_state WHERE id = ?`, id,
	).Scan(&m.ID, &m.Anchor, &m.Head, &m.Scroll, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return reconcile.ViewState{}, false, nil
	}
	if err != nil {
		return reconcile.ViewState{}, false, fmt.Errorf("failed to load document state: %w", err)
	}
	return m.toDomain(), true, nil
}

// Save upserts the set fields of state.
func (r *DocumentStateRepository) Save(ctx context.Context, state reconcile.ViewState) error {
	if state.ID == "" {
		return errors.New("document state without id")
	}
	m := toDocumentStateModel(state, r.now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO document_state (id, anchor, head, scroll, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			anchor = COALESCE(excluded.anchor, anchor),
			head = COALESCE(excluded.head, head),
			scroll = COALESCE(excluded.scroll, scroll),
			updated_at = excluded.updated_at`,
		m.ID, m.Anchor, m.Head, m.Scroll, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save document state: %w", err)
	}
	return nil
}

// Delete removes the state of id. Deleting a missing id is not an error.
func (r *DocumentStateRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_state WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete document state: %w", err)
	}
	return nil
}

// PruneBefore deletes states not saved since t and returns how many were removed.
func (r *DocumentStateRepository) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM document_state WHERE updated_at < ?`, t.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune document state: %w", err)
	}
	return res.RowsAffected()
}
