package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/smartmd/internal/infrastructure/sqlite"
	"github.com/zjrosen/smartmd/internal/testutil"
)

func migrated(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(testutil.NewTestDB(t))
	require.NoError(t, err)
	return db
}

func TestBuilder_WithDocumentState(t *testing.T) {
	db := migrated(t)
	conn := db.Connection()

	testutil.NewBuilder(t, conn).
		WithDocumentState("a", testutil.Selection(2, 5), testutil.Scroll(40)).
		WithDocumentState("b").
		Build()

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM document_state`).Scan(&count))
	require.Equal(t, 2, count)

	var anchor, head, scroll *int64
	require.NoError(t, conn.QueryRow(`SELECT anchor, head, scroll FROM document_state WHERE id = 'a'`).
		Scan(&anchor, &head, &scroll))
	require.Equal(t, int64(2), *anchor)
	require.Equal(t, int64(5), *head)
	require.Equal(t, int64(40), *scroll)

	require.NoError(t, conn.QueryRow(`SELECT anchor, head, scroll FROM document_state WHERE id = 'b'`).
		Scan(&anchor, &head, &scroll))
	require.Nil(t, anchor)
	require.Nil(t, head)
	require.Nil(t, scroll)
}

func TestBuilder_WithSettings(t *testing.T) {
	db := migrated(t)
	testutil.NewBuilder(t, db.Connection()).WithSettings(2, `{"theme":"dark"}`).Build()

	rec, found, err := db.SettingsRepository().LoadSettings(t.Context())
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, rec.Version)
	require.JSONEq(t, `{"theme":"dark"}`, string(rec.Value))
}

func TestPreset_StandardStates(t *testing.T) {
	db := migrated(t)
	testutil.NewBuilder(t, db.Connection()).WithStandardStates().Build()

	repo := db.DocumentStateRepository()
	s, ok, err := repo.Load(t.Context(), "doc-full")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, s.Selection.Anchor)
	require.Equal(t, 10, s.Selection.Head)
	require.Equal(t, 120, *s.Scroll)

	s, ok, err = repo.Load(t.Context(), "doc-scroll")
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, s.Selection)
	require.Equal(t, 300, *s.Scroll)
}
