package editor

import "github.com/zjrosen/smartmd/internal/surface"

// maxHistory bounds the undo stack.
const maxHistory = 500

type snapshot struct {
	text string
	sel  surface.Selection
}

// history keeps undo and redo snapshots. Consecutive typing or deleting at
// the position the previous edit left the cursor is grouped into one step.
type history struct {
	undo []snapshot
	redo []snapshot

	lastKind surface.UserEvent
	lastEnd  int
}

// record stores before as an undo step for an edit of kind that starts at
// at, unless it continues the previous group.
func (h *history) record(before snapshot, kind surface.UserEvent, at int) {
	h.redo = nil
	if len(h.undo) > 0 && kind == h.lastKind && at == h.lastEnd &&
		(kind == surface.EventInput || kind == surface.EventDelete) {
		return
	}
	h.undo = append(h.undo, before)
	if len(h.undo) > maxHistory {
		h.undo = h.undo[len(h.undo)-maxHistory:]
	}
	h.lastKind = kind
}

// settle records where the last edit left the cursor.
func (h *history) settle(end int) { h.lastEnd = end }

// breakGroup ends the current typing group.
func (h *history) breakGroup() { h.lastKind = surface.EventNone }

func (h *history) popUndo(current snapshot) (snapshot, bool) {
	if len(h.undo) == 0 {
		return snapshot{}, false
	}
	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	h.breakGroup()
	return s, true
}

func (h *history) popRedo(current snapshot) (snapshot, bool) {
	if len(h.redo) == 0 {
		return snapshot{}, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	h.breakGroup()
	return s, true
}

func (h *history) reset() { *h = history{} }
