package memory

import (
	"context"
	"strconv"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/google/uuid"
)

type TeacherStore struct {
	s *Store
}

func (r *TeacherStore) GetRate(_ context.Context, teacherID uuid.UUID) (*model.TeacherRate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tp, ok := r.s.teacherProfiles[teacherID]
	if !ok || tp.HourlyRate == nil {
		return nil, nil
	}
	return &model.TeacherRate{
		TeacherID:  teacherID,
		HourlyRate: *tp.HourlyRate,
		UpdatedAt:  tp.UpdatedAt,
	}, nil
}

func (r *TeacherStore) SetRate(_ context.Context, rate *model.TeacherRate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tp, err := r.s.teacherProfileLocked(rate.TeacherID)
	if err != nil {
		return err
	}

	hourly := rate.HourlyRate
	tp.HourlyRate = &hourly
	tp.UpdatedAt = r.s.now()
	rate.UpdatedAt = tp.UpdatedAt
	return nil
}

func (r *TeacherStore) GetProfile(_ context.Context, teacherID uuid.UUID) (*model.TeacherProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[teacherID]
	if !ok || p.role != "teacher" {
		return nil, nil
	}

	profile := &model.TeacherProfile{UserID: teacherID, FullName: p.fullName, UpdatedAt: p.updatedAt}
	if tp, ok := r.s.teacherProfiles[teacherID]; ok {
		profile.HourlyRate = copyInt64(tp.HourlyRate)
		profile.TelegramChatID = copyInt64(tp.TelegramChatID)
		profile.UpdatedAt = tp.UpdatedAt
	}
	return profile, nil
}

func (r *TeacherStore) SetTelegramChatID(_ context.Context, teacherID uuid.UUID, chatID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tp, err := r.s.teacherProfileLocked(teacherID)
	if err != nil {
		return err
	}

	tp.TelegramChatID = &chatID
	tp.UpdatedAt = r.s.now()
	return nil
}

func (r *TeacherStore) GetByTelegramChatID(_ context.Context, chatID int64) (*model.TeacherProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, tp := range r.s.teacherProfiles {
		if tp.TelegramChatID == nil || *tp.TelegramChatID != chatID {
			continue
		}
		profile := &model.TeacherProfile{
			UserID:         id,
			HourlyRate:     copyInt64(tp.HourlyRate),
			TelegramChatID: copyInt64(tp.TelegramChatID),
			UpdatedAt:      tp.UpdatedAt,
		}
		if p, ok := r.s.profiles[id]; ok {
			profile.FullName = p.fullName
		}
		return profile, nil
	}
	return nil, nil
}

// teacherProfileLocked возвращает запись teacher_profiles, создавая её при необходимости
func (s *Store) teacherProfileLocked(teacherID uuid.UUID) (*model.TeacherProfile, error) {
	if _, ok := s.profiles[teacherID]; !ok {
		return nil, repository.ErrProfileNotFound
	}

	tp, ok := s.teacherProfiles[teacherID]
	if !ok {
		tp = &model.TeacherProfile{UserID: teacherID}
		s.teacherProfiles[teacherID] = tp
	}
	return tp, nil
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type MatchStore struct {
	s *Store
}

func (r *MatchStore) GetByID(_ context.Context, id uuid.UUID) (*model.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.matches[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

type SettingsStore struct {
	s *Store
}

func (r *SettingsStore) GetAccessSettings(_ context.Context) (*model.AccessSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.accessSettingsLocked(), nil
}

func (r *SettingsStore) RotatePassphrase(_ context.Context, hash string) (*model.AccessSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current := r.s.accessSettingsLocked()
	r.s.settings[model.SettingPassphraseHash] = hash
	r.s.settings[model.SettingPassphraseVersion] = strconv.Itoa(current.Version + 1)

	return r.s.accessSettingsLocked(), nil
}

func (r *SettingsStore) GetUserAccess(_ context.Context, userID uuid.UUID) (*model.UserAccess, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &model.UserAccess{UserID: userID, PassphraseVersion: p.passphraseVersion}, nil
}

func (r *SettingsStore) SetUserPassphraseVersion(_ context.Context, userID uuid.UUID, version int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.passphraseVersion = version
	p.updatedAt = r.s.now()
	return nil
}

func (s *Store) accessSettingsLocked() *model.AccessSettings {
	settings := &model.AccessSettings{PassphraseHash: s.settings[model.SettingPassphraseHash]}
	if v, err := strconv.Atoi(s.settings[model.SettingPassphraseVersion]); err == nil {
		settings.Version = v
	}
	return settings
}
