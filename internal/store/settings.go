package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/relique/internal/models"
)

// ListSettings returns every global setting ordered by key.
func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.query(ctx, `SELECT setting_key, setting_value, description, updated_at FROM settings ORDER BY setting_key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	settings := []models.Setting{}
	for rows.Next() {
		var st models.Setting
		var desc sql.NullString
		if err := rows.Scan(&st.Key, &st.Value, &desc, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		st.Description = desc.String
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// GetSetting returns the value of key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.queryRow(ctx, `SELECT setting_value FROM settings WHERE setting_key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting setting: %w", err)
	}
	return value, nil
}

// PutSetting creates or replaces key. An empty description keeps the
// existing one.
func (s *Store) PutSetting(ctx context.Context, key, value, description string) error {
	return s.WithTx(ctx, func(tx *Store) error {
		now := tx.now()
		res, err := tx.exec(ctx,
			`UPDATE settings SET setting_value = ?, updated_at = ? WHERE setting_key = ?`, value, now, key)
		if err != nil {
			return fmt.Errorf("updating setting: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			if description != "" {
				_, err = tx.exec(ctx, `UPDATE settings SET description = ? WHERE setting_key = ?`, description, key)
			}
			return err
		}
		_, err = tx.exec(ctx,
			`INSERT INTO settings (setting_key, setting_value, description, updated_at) VALUES (?, ?, ?, ?)`,
			key, value, description, now)
		if err != nil && !isUniqueViolation(err) {
			return fmt.Errorf("inserting setting: %w", err)
		}
		return nil
	})
}

// MaintenanceMode reports whether maintenance mode is switched on. A missing
// setting means off.
func (s *Store) MaintenanceMode(ctx context.Context) (bool, error) {
	v, err := s.GetSetting(ctx, models.SettingMaintenanceMode)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}
