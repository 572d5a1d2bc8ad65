package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService struct {
	slots     SlotStore
	recurring RecurringStore
	teachers  TeacherStore
	bus       events.Bus
	location  *time.Location
	logger    *zap.Logger

	now func() time.Time
}

func NewAvailabilityService(
	slots SlotStore,
	recurring RecurringStore,
	teachers TeacherStore,
	bus events.Bus,
	location *time.Location,
	logger *zap.Logger,
) *AvailabilityService {
	if location == nil {
		location = time.UTC
	}
	return &AvailabilityService{
		slots:     slots,
		recurring: recurring,
		teachers:  teachers,
		bus:       bus,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// Today текущая календарная дата в часовом поясе сервиса
func (s *AvailabilityService) Today() time.Time {
	return model.DateOf(s.now().In(s.location))
}

// GenerateSlots нарезает диапазон на часовые слоты и сохраняет их как available.
// Сохраняются все слоты или ни одного.
func (s *AvailabilityService) GenerateSlots(ctx context.Context, teacherID uuid.UUID, date time.Time, start, end model.Clock) ([]*model.AvailabilitySlot, error) {
	if teacherID == uuid.Nil {
		return nil, invalid("teacher_id", "required")
	}
	if date.IsZero() {
		return nil, invalid("slot_date", "required")
	}

	intervals, err := SplitHourly(start, end)
	if err != nil {
		return nil, err
	}

	slotDate := model.DateOf(date)
	slots := make([]*model.AvailabilitySlot, 0, len(intervals))
	for _, iv := range intervals {
		slots = append(slots, &model.AvailabilitySlot{
			TeacherID: teacherID,
			SlotDate:  slotDate,
			StartTime: iv.Start,
			EndTime:   iv.End,
			Status:    model.SlotStatusAvailable,
		})
	}

	if err := s.slots.CreateSlots(ctx, slots); err != nil {
		if errors.Is(err, repository.ErrSlotOverlap) {
			return nil, &ConflictError{Reason: "time range overlaps existing availability"}
		}
		s.logger.Error("Failed to create slots",
			zap.String("teacher_id", teacherID.String()),
			zap.String("slot_date", model.FormatDate(slotDate)),
			zap.Error(err))
		return nil, fmt.Errorf("create slots: %w", err)
	}

	s.logger.Info("Slots generated",
		zap.String("teacher_id", teacherID.String()),
		zap.String("slot_date", model.FormatDate(slotDate)),
		zap.String("start_time", start.String()),
		zap.String("end_time", end.String()),
		zap.Int("count", len(slots)))

	publish(ctx, s.bus, s.logger, events.Event{
		Type:      events.SlotsCreated,
		TeacherID: teacherID,
		SlotIDs:   slotIDs(slots),
	})

	return slots, nil
}

// ListAvailableSlots свободные слоты учителя начиная с fromDate, по (slot_date, start_time).
// Для несуществующего учителя возвращает NotFoundError, а не пустой список.
func (s *AvailabilityService) ListAvailableSlots(ctx context.Context, teacherID uuid.UUID, fromDate time.Time) ([]*model.AvailabilitySlot, error) {
	profile, err := s.teachers.GetProfile(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher profile: %w", err)
	}
	if profile == nil {
		return nil, notFound("teacher", teacherID)
	}

	status := model.SlotStatusAvailable
	from := model.DateOf(fromDate)

	slots, err := s.slots.List(ctx, model.SlotQuery{
		TeacherID: teacherID,
		FromDate:  &from,
		Status:    &status,
	})
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}

	return slots, nil
}

// ListTeacherSlots все слоты учителя в любом статусе
func (s *AvailabilityService) ListTeacherSlots(ctx context.Context, teacherID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	slots, err := s.slots.List(ctx, model.SlotQuery{TeacherID: teacherID})
	if err != nil {
		return nil, fmt.Errorf("list teacher slots: %w", err)
	}

	return slots, nil
}

// ListWeek слоты учителя в неделе, начинающейся с weekStart
func (s *AvailabilityService) ListWeek(ctx context.Context, teacherID uuid.UUID, weekStart time.Time) ([]*model.AvailabilitySlot, error) {
	from := model.DateOf(weekStart)
	to := from.AddDate(0, 0, 6)

	slots, err := s.slots.List(ctx, model.SlotQuery{
		TeacherID: teacherID,
		FromDate:  &from,
		ToDate:    &to,
	})
	if err != nil {
		return nil, fmt.Errorf("list week slots: %w", err)
	}

	return slots, nil
}

// DeleteSlot удаляет свободный слот учителя. Забронированный слот удалить нельзя.
func (s *AvailabilityService) DeleteSlot(ctx context.Context, teacherID uuid.UUID, slotID int64) error {
	deleted, err := s.slots.DeleteAvailable(ctx, teacherID, slotID)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if !deleted {
		// Разбираемся, почему условное удаление не сработало
		slot, err := s.slots.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if slot == nil || slot.TeacherID != teacherID {
			return notFound("slot", slotID)
		}
		return &InvalidStateError{Entity: "slot", ID: fmt.Sprint(slotID), State: string(slot.Status)}
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.String("teacher_id", teacherID.String()))

	publish(ctx, s.bus, s.logger, events.Event{
		Type:      events.SlotDeleted,
		TeacherID: teacherID,
		SlotIDs:   []int64{slotID},
	})

	return nil
}

// GroupByDate группирует упорядоченные слоты по дате, сохраняя порядок дат
func GroupByDate(slots []*model.AvailabilitySlot) []model.DaySlots {
	groups := []model.DaySlots{}
	for _, slot := range slots {
		n := len(groups)
		if n > 0 && groups[n-1].Date.Equal(slot.SlotDate) {
			groups[n-1].Slots = append(groups[n-1].Slots, slot)
			continue
		}
		groups = append(groups, model.DaySlots{
			Date:  slot.SlotDate,
			Slots: []*model.AvailabilitySlot{slot},
		})
	}
	return groups
}

func slotIDs(slots []*model.AvailabilitySlot) []int64 {
	ids := make([]int64, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
	}
	return ids
}

// publish отправляет событие. Ошибка шины не отменяет уже выполненную запись.
func publish(ctx context.Context, bus events.Bus, logger *zap.Logger, ev events.Event) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event_type", string(ev.Type)),
			zap.String("teacher_id", ev.TeacherID.String()),
			zap.Error(err))
	}
}
