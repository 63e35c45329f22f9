package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/smartmd/internal/settings"
)

// settingsKey is the row holding the application settings.
const settingsKey = "app"

// SettingsRepository implements settings.Repository using SQLite.
type SettingsRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db, now: time.Now}
}

var _ settings.Repository = (*SettingsRepository)(nil)

// LoadSettings returns the stored record, or found=false on a fresh database.
func (r *SettingsRepository) LoadSettings(ctx context.Context) (settings.Record, bool, error) {
	var m SettingsModel
	err := r.db.QueryRowContext(ctx,
		`SELECT key, version, value, updated_at FROM settings WHERE key = ?`, settingsKey,
	).Scan(&m.Key, &m.Version, &m.Value, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Record{}, false, nil
	}
	if err != nil {
		return settings.Record{}, false, fmt.Errorf("failed to load settings: %w", err)
	}
	return m.toDomain(), true, nil
}

// SaveSettings replaces the stored record.
func (r *SettingsRepository) SaveSettings(ctx context.Context, rec settings.Record) error {
	m := toSettingsModel(settingsKey, rec, r.now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, version, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version, value = excluded.value, updated_at = excluded.updated_at`,
		m.Key, m.Version, m.Value, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
