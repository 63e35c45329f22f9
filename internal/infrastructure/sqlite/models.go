package sqlite

import (
	"time"

	"github.com/zjrosen/smartmd/internal/reconcile"
	"github.com/zjrosen/smartmd/internal/settings"
	"github.com/zjrosen/smartmd/internal/surface"
)

// SettingsModel represents one row of the settings table.
type SettingsModel struct {
	Key       string
	Version   int
	Value     string // JSON
	UpdatedAt int64  // Unix timestamp
}

func toSettingsModel(key string, rec settings.Record, now time.Time) *SettingsModel {
	return &SettingsModel{
		Key:       key,
		Version:   rec.Version,
		Value:     string(rec.Value),
		UpdatedAt: now.Unix(),
	}
}

func (m *SettingsModel) toDomain() settings.Record {
	return settings.Record{Version: m.Version, Value: []byte(m.Value)}
}

// DocumentStateModel represents one row of the document_state table.
// A NULL column means the value was never saved.
type DocumentStateModel struct {
	ID        string
	Anchor    *int64 // nullable
	Head      *int64 // nullable
	Scroll    *int64 // nullable
	UpdatedAt int64  // Unix timestamp
}

func toDocumentStateModel(s reconcile.ViewState, now time.Time) *DocumentStateModel {
	m := &DocumentStateModel{ID: s.ID, UpdatedAt: now.Unix()}
	if s.Selection != nil {
		anchor := int64(s.Selection.Anchor)
		head := int64(s.Selection.Head)
		m.Anchor = &anchor
		m.Head = &head
	}
	if s.Scroll != nil {
		scroll := int64(*s.Scroll)
		m.Scroll = &scroll
	}
	return m
}

func (m *DocumentStateModel) toDomain() reconcile.ViewState {
	s := reconcile.ViewState{ID: m.ID}
	if m.Anchor != nil && m.Head != nil {
		s.Selection = &surface.Selection{Anchor: int(*m.Anchor), Head: int(*m.Head)}
	}
	if m.Scroll != nil {
		scroll := int(*m.Scroll)
		s.Scroll = &scroll
	}
	return s
}
