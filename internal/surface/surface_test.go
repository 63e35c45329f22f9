package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionClamp(t *testing.T) {
	assert.Equal(t, Selection{Anchor: 10, Head: 10}, Selection{Anchor: 50, Head: 60}.Clamp(10))
	assert.Equal(t, Selection{Anchor: 0, Head: 3}, Selection{Anchor: -2, Head: 3}.Clamp(10))
	assert.Equal(t, Selection{}, Selection{Anchor: 4, Head: 9}.Clamp(0))
}

func TestSelectionBounds(t *testing.T) {
	s := Selection{Anchor: 9, Head: 2}
	assert.Equal(t, 2, s.From())
	assert.Equal(t, 9, s.To())
	assert.False(t, s.Empty())
	assert.True(t, Cursor(0).IsZero())
	assert.False(t, Cursor(1).IsZero())
}

func TestUpdateIsUserEvent(t *testing.T) {
	assert.False(t, Update{}.IsUserEvent())
	assert.False(t, Update{Transactions: []Transaction{{Event: EventNone, DocChanged: true}}}.IsUserEvent())
	for _, e := range []UserEvent{EventSelect, EventInput, EventDelete, EventUndo, EventRedo} {
		u := Update{Transactions: []Transaction{{}, {Event: e}}}
		assert.True(t, u.IsUserEvent(), e)
	}
	assert.False(t, UserEvent("paste.remote").IsUser())
}
