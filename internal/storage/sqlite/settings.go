package sqlite

import (
	"context"
	"database/sql"

	"github.com/mmynk/kinship/internal/apperr"
	"github.com/mmynk/kinship/internal/events"
	"github.com/mmynk/kinship/internal/models"
)

// GetSetting retrieves a setting by key.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	setting := &models.Setting{}
	err := s.db.QueryRowContext(ctx,
		"SELECT key, value, file_name FROM settings WHERE key = ?", key,
	).Scan(&setting.Key, &setting.Value, &setting.FileName)

	if err == sql.ErrNoRows {
		return nil, nil // Not set
	}
	if err != nil {
		return nil, apperr.Storage("failed to get setting", err)
	}
	return setting, nil
}

// PutSetting inserts or replaces a setting.
func (s *SQLiteStore) PutSetting(ctx context.Context, setting *models.Setting) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, file_name) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, file_name = excluded.file_name`,
		setting.Key, setting.Value, setting.FileName,
	)
	if err != nil {
		return apperr.Storage("failed to put setting", err)
	}

	s.publish(events.Settings)
	return nil
}

// DeleteSetting removes a setting. Deleting a missing key is not an error.
func (s *SQLiteStore) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return apperr.Storage("failed to delete setting", err)
	}

	s.publish(events.Settings)
	return nil
}
