package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TeacherService struct {
	teachers TeacherStore
	bus      events.Bus
	logger   *zap.Logger
}

func NewTeacherService(teachers TeacherStore, bus events.Bus, logger *zap.Logger) *TeacherService {
	return &TeacherService{
		teachers: teachers,
		bus:      bus,
		logger:   logger,
	}
}

// SetHourlyRate меняет ставку учителя. Уже созданные брони сохраняют свою цену.
func (s *TeacherService) SetHourlyRate(ctx context.Context, teacherID uuid.UUID, cents int64) (*model.TeacherRate, error) {
	if cents <= 0 {
		return nil, invalid("hourly_rate", "must be greater than zero")
	}

	rate := &model.TeacherRate{TeacherID: teacherID, HourlyRate: cents}
	if err := s.teachers.SetRate(ctx, rate); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, notFound("teacher", teacherID)
		}
		return nil, fmt.Errorf("set hourly rate: %w", err)
	}

	s.logger.Info("Hourly rate updated",
		zap.String("teacher_id", teacherID.String()),
		zap.Int64("hourly_rate", cents))

	publish(ctx, s.bus, s.logger, events.Event{
		Type:      events.RateUpdated,
		TeacherID: teacherID,
	})

	return rate, nil
}

// GetHourlyRate текущая ставка учителя
func (s *TeacherService) GetHourlyRate(ctx context.Context, teacherID uuid.UUID) (*model.TeacherRate, error) {
	rate, err := s.teachers.GetRate(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get hourly rate: %w", err)
	}
	if rate == nil {
		return nil, notFound("hourly rate for teacher", teacherID)
	}
	return rate, nil
}

// GetProfile профиль учителя
func (s *TeacherService) GetProfile(ctx context.Context, teacherID uuid.UUID) (*model.TeacherProfile, error) {
	profile, err := s.teachers.GetProfile(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher profile: %w", err)
	}
	if profile == nil {
		return nil, notFound("teacher", teacherID)
	}
	return profile, nil
}

// SetTelegramChat привязывает чат Telegram, куда приходят уведомления о бронях
func (s *TeacherService) SetTelegramChat(ctx context.Context, teacherID uuid.UUID, chatID int64) error {
	if chatID == 0 {
		return invalid("chat_id", "required")
	}

	if err := s.teachers.SetTelegramChatID(ctx, teacherID, chatID); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return notFound("teacher", teacherID)
		}
		return fmt.Errorf("set telegram chat: %w", err)
	}

	s.logger.Info("Telegram chat linked",
		zap.String("teacher_id", teacherID.String()),
		zap.Int64("chat_id", chatID))

	return nil
}

// GetByTelegramChat находит учителя по чату. nil, если чат не привязан.
func (s *TeacherService) GetByTelegramChat(ctx context.Context, chatID int64) (*model.TeacherProfile, error) {
	return s.teachers.GetByTelegramChatID(ctx, chatID)
}
