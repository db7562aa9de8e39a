package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// ThresholdsKey is the settings key holding the persisted classifier thresholds.
const ThresholdsKey = "thresholds"

// SettingsRepository stores application settings as key-value pairs.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key. Deleting a missing key returns ErrNotFound.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveThresholds validates th and persists it as JSON.
func (r *SettingsRepository) SaveThresholds(th gesture.Thresholds) error {
	if err := th.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(th)
	if err != nil {
		return fmt.Errorf("failed to encode thresholds: %w", err)
	}
	return r.Set(ThresholdsKey, string(data))
}

// LoadThresholds returns the persisted thresholds, or ErrNotFound when none
// were saved. Fields missing from the stored JSON keep their defaults.
func (r *SettingsRepository) LoadThresholds() (gesture.Thresholds, error) {
	value, err := r.Get(ThresholdsKey)
	if err != nil {
		return gesture.Thresholds{}, err
	}

	th := gesture.DefaultThresholds()
	if err := json.Unmarshal([]byte(value), &th); err != nil {
		return gesture.Thresholds{}, fmt.Errorf("failed to decode thresholds: %w", err)
	}
	if err := th.Validate(); err != nil {
		return gesture.Thresholds{}, err
	}
	return th, nil
}
