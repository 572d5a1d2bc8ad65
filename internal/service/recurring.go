package service

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

// DefaultWeeksAhead на сколько недель вперёд нарезаются слоты по шаблонам
const DefaultWeeksAhead = 4

// CreateRecurring создаёт еженедельный шаблон и сразу нарезает по нему слоты
// на weeksAhead недель вперёд. Возвращает шаблон и число созданных слотов.
func (s *AvailabilityService) CreateRecurring(ctx context.Context, teacherID uuid.UUID, weekday int, start, end model.Clock, weeksAhead int) (*model.RecurringAvailability, int, error) {
	if teacherID == uuid.Nil {
		return nil, 0, invalid("teacher_id", "required")
	}
	if weekday < 0 || weekday > 6 {
		return nil, 0, invalid("weekday", "must be between 0 (Sunday) and 6 (Saturday)")
	}
	if _, err := SplitHourly(start, end); err != nil {
		return nil, 0, err
	}

	rec := &model.RecurringAvailability{
		TeacherID: teacherID,
		Weekday:   weekday,
		StartTime: start,
		EndTime:   end,
		IsActive:  true,
	}

	if err := s.recurring.Create(ctx, rec); err != nil {
		return nil, 0, fmt.Errorf("create recurring availability: %w", err)
	}

	s.logger.Info("Recurring availability created",
		zap.Int64("recurring_id", rec.ID),
		zap.String("teacher_id", teacherID.String()),
		zap.String("weekday", formatting.WeekdayName(weekday)),
		zap.String("start_time", start.String()),
		zap.String("end_time", end.String()))

	// Шаблон уже сохранён, поэтому ошибка нарезки только логируется
	count, err := s.generateForTemplate(ctx, rec, weeksAhead)
	if err != nil {
		s.logger.Error("Failed to generate initial slots",
			zap.Int64("recurring_id", rec.ID),
			zap.Error(err))
	}

	return rec, count, nil
}

// ListRecurring шаблоны учителя
func (s *AvailabilityService) ListRecurring(ctx context.Context, teacherID uuid.UUID) ([]*model.RecurringAvailability, error) {
	recs, err := s.recurring.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list recurring availability: %w", err)
	}
	return recs, nil
}

// DeleteRecurring удаляет шаблон. Уже нарезанные слоты остаются.
func (s *AvailabilityService) DeleteRecurring(ctx context.Context, teacherID uuid.UUID, id int64) error {
	deleted, err := s.recurring.Delete(ctx, teacherID, id)
	if err != nil {
		return fmt.Errorf("delete recurring availability: %w", err)
	}
	if !deleted {
		return notFound("recurring availability", id)
	}
	return nil
}

// GenerateRecurringSlots нарезает слоты по всем активным шаблонам.
// Ошибка по одному шаблону не останавливает остальные.
func (s *AvailabilityService) GenerateRecurringSlots(ctx context.Context, weeksAhead int) (int, error) {
	recs, err := s.recurring.GetAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("get active recurring availability: %w", err)
	}

	total := 0
	for _, rec := range recs {
		count, err := s.generateForTemplate(ctx, rec, weeksAhead)
		if err != nil {
			s.logger.Error("Failed to generate slots for recurring availability",
				zap.Int64("recurring_id", rec.ID),
				zap.String("teacher_id", rec.TeacherID.String()),
				zap.Error(err))
			continue
		}
		total += count
	}

	s.logger.Info("Recurring slots generated",
		zap.Int("templates", len(recs)),
		zap.Int("created", total))

	return total, nil
}

// generateForTemplate создаёт слоты по шаблону на weeksAhead недель вперёд.
// Прошедшие и пересекающиеся с существующими слоты пропускаются.
func (s *AvailabilityService) generateForTemplate(ctx context.Context, rec *model.RecurringAvailability, weeksAhead int) (int, error) {
	if weeksAhead <= 0 {
		weeksAhead = DefaultWeeksAhead
	}

	intervals, err := SplitHourly(rec.StartTime, rec.EndTime)
	if err != nil {
		return 0, err
	}

	now := s.now().In(s.location)
	today := model.DateOf(now)
	weekday := time.Weekday(rec.Weekday)

	var candidates []*model.AvailabilitySlot
	for i := 0; i < weeksAhead*7; i++ {
		date := today.AddDate(0, 0, i)
		if date.Weekday() != weekday {
			continue
		}

		for _, iv := range intervals {
			slot := &model.AvailabilitySlot{
				TeacherID: rec.TeacherID,
				SlotDate:  date,
				StartTime: iv.Start,
				EndTime:   iv.End,
				Status:    model.SlotStatusAvailable,
			}

			// Пропускаем прошедшие слоты
			if slot.StartsAt(s.location).Before(now) {
				continue
			}
			candidates = append(candidates, slot)
		}
	}

	created, err := s.slots.CreateSlotsIfFree(ctx, candidates)
	if err != nil {
		return 0, fmt.Errorf("create recurring slots: %w", err)
	}

	if len(created) > 0 {
		publish(ctx, s.bus, s.logger, events.Event{
			Type:      events.SlotsCreated,
			TeacherID: rec.TeacherID,
			SlotIDs:   slotIDs(created),
		})
	}

	return len(created), nil
}
