package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPassphraseLength минимальная длина кодовой фразы
const MinPassphraseLength = 6

// GateStatus нужно ли пользователю (заново) ввести кодовую фразу
type GateStatus struct {
	RequiresVerification bool `json:"requires_verification"`
	Version              int  `json:"version"`
	UserVersion          int  `json:"user_version"`
}

// GateService кодовая фраза для доступа к платформе. После смены фразы
// версия растёт, и все пользователи с меньшей версией проходят проверку снова.
type GateService struct {
	settings SettingsStore
	logger   *zap.Logger
}

func NewGateService(settings SettingsStore, logger *zap.Logger) *GateService {
	return &GateService{
		settings: settings,
		logger:   logger,
	}
}

// RequiresVerification решает по явной версии настроек, а не по кэшу
func RequiresVerification(userVersion int, settings *model.AccessSettings) bool {
	if settings == nil || settings.PassphraseHash == "" {
		return false
	}
	return userVersion < settings.Version
}

func (s *GateService) Status(ctx context.Context, userID uuid.UUID) (*GateStatus, error) {
	settings, access, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &GateStatus{
		RequiresVerification: RequiresVerification(access.PassphraseVersion, settings),
		Version:              settings.Version,
		UserVersion:          access.PassphraseVersion,
	}, nil
}

// Verify сверяет фразу с хешем и запоминает у пользователя текущую версию
func (s *GateService) Verify(ctx context.Context, userID uuid.UUID, passphrase string) (*GateStatus, error) {
	settings, access, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if settings.PassphraseHash == "" {
		return &GateStatus{Version: settings.Version, UserVersion: access.PassphraseVersion}, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(settings.PassphraseHash), []byte(strings.TrimSpace(passphrase)))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Info("Passphrase mismatch", zap.String("user_id", userID.String()))
			return nil, invalid("passphrase", "incorrect passphrase")
		}
		return nil, fmt.Errorf("compare passphrase: %w", err)
	}

	if err := s.settings.SetUserPassphraseVersion(ctx, userID, settings.Version); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, notFound("user", userID)
		}
		return nil, fmt.Errorf("save passphrase version: %w", err)
	}

	s.logger.Info("Passphrase verified",
		zap.String("user_id", userID.String()),
		zap.Int("version", settings.Version))

	return &GateStatus{Version: settings.Version, UserVersion: settings.Version}, nil
}

// Rotate задаёт новую кодовую фразу и увеличивает версию
func (s *GateService) Rotate(ctx context.Context, passphrase string) (*model.AccessSettings, error) {
	passphrase = strings.TrimSpace(passphrase)
	if len(passphrase) < MinPassphraseLength {
		return nil, invalid("passphrase", fmt.Sprintf("must be at least %d characters", MinPassphraseLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash passphrase: %w", err)
	}

	settings, err := s.settings.RotatePassphrase(ctx, string(hash))
	if err != nil {
		return nil, fmt.Errorf("rotate passphrase: %w", err)
	}

	s.logger.Info("Passphrase rotated", zap.Int("version", settings.Version))

	return settings, nil
}

func (s *GateService) load(ctx context.Context, userID uuid.UUID) (*model.AccessSettings, *model.UserAccess, error) {
	settings, err := s.settings.GetAccessSettings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get access settings: %w", err)
	}

	access, err := s.settings.GetUserAccess(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user access: %w", err)
	}
	if access == nil {
		return nil, nil, notFound("user", userID)
	}

	return settings, access, nil
}
