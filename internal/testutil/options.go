package testutil

import "time"

// stateData holds one document_state row to be inserted.
type stateData struct {
	id        string
	anchor    *int64
	head      *int64
	scroll    *int64
	updatedAt time.Time
}

func defaultState(id string) stateData {
	return stateData{id: id, updatedAt: time.Now()}
}

// StateOption configures a document state during builder setup.
type StateOption func(*stateData)

// Selection sets the saved anchor and head.
func Selection(anchor, head int) StateOption {
	return func(s *stateData) {
		a, h := int64(anchor), int64(head)
		s.anchor, s.head = &a, &h
	}
}

// Cursor sets a collapsed selection at pos.
func Cursor(pos int) StateOption {
	return Selection(pos, pos)
}

// Scroll sets the saved scroll anchor offset.
func Scroll(offset int) StateOption {
	return func(s *stateData) {
		v := int64(offset)
		s.scroll = &v
	}
}

// SavedAt sets updated_at.
func SavedAt(t time.Time) StateOption {
	return func(s *stateData) { s.updatedAt = t }
}
