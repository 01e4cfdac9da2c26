package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/settings"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

const settingColumns = `company_id, key, value, updated_by, updated_at`

func scanSetting(row pgx.Row) (settings.Setting, error) {
	var s settings.Setting
	if err := row.Scan(&s.CompanyID, &s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Setting{}, settings.ErrSettingNotFound
		}
		return settings.Setting{}, err
	}
	return s, nil
}

// List implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) List(ctx context.Context, companyID string) ([]settings.Setting, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT "+settingColumns+" FROM system_settings WHERE company_id = $1 ORDER BY key", companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	var result []settings.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Get implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Get(ctx context.Context, companyID, key string) (settings.Setting, error) {
	q := GetQuerier(ctx, r.db)
	return scanSetting(q.QueryRow(ctx,
		"SELECT "+settingColumns+" FROM system_settings WHERE company_id = $1 AND key = $2", companyID, key))
}

// Upsert implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Upsert(ctx context.Context, setting settings.Setting) (settings.Setting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO system_settings (company_id, key, value, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING ` + settingColumns
	stored, err := scanSetting(q.QueryRow(ctx, query, setting.CompanyID, setting.Key, setting.Value, setting.UpdatedBy))
	if err != nil {
		return settings.Setting{}, fmt.Errorf("failed to save setting %s: %w", setting.Key, err)
	}
	return stored, nil
}

// Delete implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Delete(ctx context.Context, companyID, key string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM system_settings WHERE company_id = $1 AND key = $2`, companyID, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return settings.ErrSettingNotFound
	}
	return nil
}

// Values implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Values(ctx context.Context, companyID string) (map[string]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT key, value FROM system_settings WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}
	return values, rows.Err()
}
