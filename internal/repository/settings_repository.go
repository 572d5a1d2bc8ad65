package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SettingsRepository хранит настройки доступа в app_settings (key/value)
// и подтверждённую версию кодовой фразы в profiles
type SettingsRepository struct {
	db base.DB
}

func NewSettingsRepository(db base.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetAccessSettings читает хеш кодовой фразы и её версию.
// Пустой хеш означает, что кодовая фраза не задана.
func (r *SettingsRepository) GetAccessSettings(ctx context.Context) (*model.AccessSettings, error) {
	query := `SELECT key, value FROM app_settings WHERE key IN ($1, $2)`

	rows, err := r.db.Query(ctx, query, model.SettingPassphraseHash, model.SettingPassphraseVersion)
	if err != nil {
		return nil, fmt.Errorf("get access settings: %w", err)
	}
	defer rows.Close()

	settings := &model.AccessSettings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan access setting: %w", err)
		}

		switch key {
		case model.SettingPassphraseHash:
			settings.PassphraseHash = value
		case model.SettingPassphraseVersion:
			version, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("parse passphrase version %q: %w", value, err)
			}
			settings.Version = version
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access settings: %w", err)
	}

	return settings, nil
}

// RotatePassphrase сохраняет новый хеш и увеличивает версию на единицу.
// Все пользователи с версией ниже новой должны пройти проверку заново.
func (r *SettingsRepository) RotatePassphrase(ctx context.Context, hash string) (*model.AccessSettings, error) {
	settings := &model.AccessSettings{PassphraseHash: hash}

	err := base.InTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO app_settings (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		`, model.SettingPassphraseHash, hash)
		if err != nil {
			return fmt.Errorf("save passphrase hash: %w", err)
		}

		var version string
		err = tx.QueryRow(ctx, `
			INSERT INTO app_settings (key, value, updated_at)
			VALUES ($1, '1', now())
			ON CONFLICT (key) DO UPDATE SET value = (app_settings.value::int + 1)::text, updated_at = now()
			RETURNING value
		`, model.SettingPassphraseVersion).Scan(&version)
		if err != nil {
			return fmt.Errorf("bump passphrase version: %w", err)
		}

		settings.Version, err = strconv.Atoi(version)
		if err != nil {
			return fmt.Errorf("parse passphrase version %q: %w", version, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// GetUserAccess получает версию кодовой фразы, подтверждённую пользователем
func (r *SettingsRepository) GetUserAccess(ctx context.Context, userID uuid.UUID) (*model.UserAccess, error) {
	query := `SELECT id, passphrase_version FROM profiles WHERE id = $1`

	var access model.UserAccess
	err := r.db.QueryRow(ctx, query, userID).Scan(&access.UserID, &access.PassphraseVersion)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user access: %w", err)
	}

	return &access, nil
}

// SetUserPassphraseVersion отмечает, что пользователь подтвердил указанную версию
func (r *SettingsRepository) SetUserPassphraseVersion(ctx context.Context, userID uuid.UUID, version int) error {
	query := `
		UPDATE profiles
		SET passphrase_version = $2, updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, userID, version)
	if err != nil {
		return fmt.Errorf("set user passphrase version: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}
