package render

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/formatting"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotLister слоты учителя за неделю
type SlotLister interface {
	ListWeek(ctx context.Context, teacherID uuid.UUID, weekStart time.Time) ([]*model.AvailabilitySlot, error)
}

// ProfileSource имя учителя для заголовка картинки
type ProfileSource interface {
	GetProfile(ctx context.Context, teacherID uuid.UUID) (*model.TeacherProfile, error)
}

// Service отдаёт картинку недели учителя, по возможности из кэша
type Service struct {
	slots    SlotLister
	profiles ProfileSource
	renderer *WeekRenderer
	cache    Cache
	logger   *zap.Logger
}

func NewService(slots SlotLister, profiles ProfileSource, renderer *WeekRenderer, cache Cache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		slots:    slots,
		profiles: profiles,
		renderer: renderer,
		cache:    cache,
		logger:   logger,
	}
}

// WeekImage PNG недели, в которую попадает date
func (s *Service) WeekImage(ctx context.Context, teacherID uuid.UUID, date time.Time) ([]byte, error) {
	weekStart := formatting.WeekStart(date)

	if png, ok, err := s.cache.Get(ctx, teacherID, weekStart); err != nil {
		s.logger.Warn("Week image cache read failed", zap.Error(err))
	} else if ok {
		return png, nil
	}

	profile, err := s.profiles.GetProfile(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	slots, err := s.slots.ListWeek(ctx, teacherID, weekStart)
	if err != nil {
		return nil, err
	}

	png, err := s.renderer.Render(profile.FullName, weekStart, slots)
	if err != nil {
		return nil, fmt.Errorf("render week: %w", err)
	}

	if err := s.cache.Set(ctx, teacherID, weekStart, png); err != nil {
		s.logger.Warn("Week image cache write failed", zap.Error(err))
	}

	s.logger.Debug("Week image rendered",
		zap.String("teacher_id", teacherID.String()),
		zap.String("week_start", model.FormatDate(weekStart)),
		zap.Int("slots", len(slots)))

	return png, nil
}

// HandleEvent сбрасывает кэш учителя при изменении его расписания
func (s *Service) HandleEvent(ctx context.Context, ev events.Event) {
	switch ev.Type {
	case events.SlotsCreated, events.SlotDeleted, events.BookingsCreated:
	default:
		return
	}

	if err := s.cache.Invalidate(ctx, ev.TeacherID); err != nil {
		s.logger.Error("Failed to invalidate week image cache",
			zap.String("teacher_id", ev.TeacherID.String()),
			zap.Error(err))
	}
}
