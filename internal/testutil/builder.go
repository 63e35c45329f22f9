package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// settingsData holds the settings row to be inserted.
type settingsData struct {
	version int
	value   string
}

// Builder accumulates test rows and inserts them on Build. The schema must
// already exist.
type Builder struct {
	t        *testing.T
	db       *sql.DB
	states   []stateData
	settings *settingsData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sql.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithDocumentState adds a saved view state.
func (b *Builder) WithDocumentState(id string, opts ...StateOption) *Builder {
	s := defaultState(id)
	for _, opt := range opts {
		opt(&s)
	}
	b.states = append(b.states, s)
	return b
}

// WithSettings stores a raw settings blob at the given schema version.
func (b *Builder) WithSettings(version int, value string) *Builder {
	b.settings = &settingsData{version: version, value: value}
	return b
}

// Build inserts all accumulated rows.
func (b *Builder) Build() {
	b.t.Helper()
	for _, s := range b.states {
		b.insertState(s)
	}
	if b.settings != nil {
		b.insertSettings(*b.settings)
	}
}

func (b *Builder) insertState(s stateData) {
	b.t.Helper()
	_, err := b.db.Exec(
		`INSERT INTO document_state (id, anchor, head, scroll, updated_at) VALUES (?, ?, ?, ?, ?)`,
		s.id, s.anchor, s.head, s.scroll, s.updatedAt.Unix(),
	)
	require.NoError(b.t, err)
}

func (b *Builder) insertSettings(s settingsData) {
	b.t.Helper()
	_, err := b.db.Exec(
		`INSERT INTO settings (key, version, value, updated_at) VALUES ('app', ?, ?, ?)`,
		s.version, s.value, time.Now().Unix(),
	)
	require.NoError(b.t, err)
}
