package model

import "github.com/google/uuid"

// Ключи таблицы app_settings
const (
	SettingPassphraseHash    = "registration_passphrase_hash"
	SettingPassphraseVersion = "passphrase_version"
)

// AccessSettings версионированная запись настроек доступа.
// Пользователь с версией ниже Version должен заново ввести кодовую фразу.
type AccessSettings struct {
	PassphraseHash string `json:"-"`
	Version        int    `json:"version"`
}

// UserAccess версия кодовой фразы, которую пользователь последней подтвердил
type UserAccess struct {
	UserID            uuid.UUID `json:"user_id"`
	PassphraseVersion int       `json:"passphrase_version"`
}
