package memory

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/google/uuid"
)

type SlotStore struct {
	s *Store
}

type exceptionKey struct {
	teacherID uuid.UUID
	date      string
	start     model.Clock
}

func keyOf(slot *model.AvailabilitySlot) exceptionKey {
	return exceptionKey{teacherID: slot.TeacherID, date: model.FormatDate(slot.SlotDate), start: slot.StartTime}
}

func (r *SlotStore) CreateSlots(_ context.Context, slots []*model.AvailabilitySlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Сначала проверяем все, затем пишем: всё или ничего
	for i, slot := range slots {
		if r.s.overlapsLocked(slot) {
			return fmt.Errorf("%w: %s %s", repository.ErrSlotOverlap, model.FormatDate(slot.SlotDate), slot.StartTime)
		}
		for _, other := range slots[:i] {
			if slot.Overlaps(other) {
				return fmt.Errorf("%w: %s %s", repository.ErrSlotOverlap, model.FormatDate(slot.SlotDate), slot.StartTime)
			}
		}
	}

	for _, slot := range slots {
		r.s.insertSlotLocked(slot)
	}
	return nil
}

func (r *SlotStore) CreateSlotsIfFree(_ context.Context, slots []*model.AvailabilitySlot) ([]*model.AvailabilitySlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var created []*model.AvailabilitySlot
	for _, slot := range slots {
		if r.s.excludedLocked(slot) || r.s.overlapsLocked(slot) {
			continue
		}
		r.s.insertSlotLocked(slot)
		created = append(created, slot)
	}
	return created, nil
}

func (r *SlotStore) GetByID(_ context.Context, id int64) (*model.AvailabilitySlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok {
		return nil, nil
	}
	return copySlot(slot), nil
}

func (r *SlotStore) List(_ context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*model.AvailabilitySlot
	for _, slot := range r.s.slots {
		if slot.TeacherID != q.TeacherID {
			continue
		}
		if q.Status != nil && slot.Status != *q.Status {
			continue
		}
		if q.FromDate != nil && slot.SlotDate.Before(*q.FromDate) {
			continue
		}
		if q.ToDate != nil && slot.SlotDate.After(*q.ToDate) {
			continue
		}
		result = append(result, copySlot(slot))
	}

	sortSlots(result)
	return result, nil
}

func (r *SlotStore) DeleteAvailable(_ context.Context, teacherID uuid.UUID, slotID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[slotID]
	if !ok || slot.TeacherID != teacherID || !slot.IsAvailable() {
		return false, nil
	}

	delete(r.s.slots, slotID)
	r.s.exceptions[keyOf(slot)] = slot
	return true, nil
}

// excludedLocked проверяет, удалял ли учитель час, пересекающийся со слотом
func (s *Store) excludedLocked(slot *model.AvailabilitySlot) bool {
	for _, deleted := range s.exceptions {
		if deleted.Overlaps(slot) {
			return true
		}
	}
	return false
}

func (s *Store) overlapsLocked(slot *model.AvailabilitySlot) bool {
	for _, existing := range s.slots {
		if existing.Overlaps(slot) {
			return true
		}
	}
	return false
}

// insertSlotLocked присваивает ID и сохраняет копию слота
func (s *Store) insertSlotLocked(slot *model.AvailabilitySlot) {
	s.nextSlotID++
	slot.ID = s.nextSlotID
	slot.CreatedAt = s.now()
	if slot.Status == "" {
		slot.Status = model.SlotStatusAvailable
	}
	s.slots[slot.ID] = copySlot(slot)
}
