package model

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available" // Свободен для записи
	SlotStatusBooked    SlotStatus = "booked"    // Зарезервирован студентом
)

// SlotDuration длительность одного слота в минутах
const SlotDuration = 60

// AvailabilitySlot один час доступности учителя в конкретную дату
type AvailabilitySlot struct {
	ID        int64      `json:"id"`
	TeacherID uuid.UUID  `json:"teacher_id"`
	SlotDate  time.Time  `json:"slot_date"`
	StartTime Clock      `json:"start_time"`
	EndTime   Clock      `json:"end_time"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsAvailable проверяет что слот можно забронировать или удалить
func (s *AvailabilitySlot) IsAvailable() bool {
	return s.Status == SlotStatusAvailable
}

// Overlaps проверяет пересечение со слотом того же учителя в ту же дату
func (s *AvailabilitySlot) Overlaps(other *AvailabilitySlot) bool {
	if s.TeacherID != other.TeacherID || !s.SlotDate.Equal(other.SlotDate) {
		return false
	}
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}

// Before задаёт порядок (slot_date, start_time) по возрастанию
func (s *AvailabilitySlot) Before(other *AvailabilitySlot) bool {
	if !s.SlotDate.Equal(other.SlotDate) {
		return s.SlotDate.Before(other.SlotDate)
	}
	if s.StartTime != other.StartTime {
		return s.StartTime < other.StartTime
	}
	return s.ID < other.ID
}

// StartsAt возвращает момент начала слота в указанной зоне
func (s *AvailabilitySlot) StartsAt(loc *time.Location) time.Time {
	return time.Date(s.SlotDate.Year(), s.SlotDate.Month(), s.SlotDate.Day(),
		s.StartTime.Hour(), s.StartTime.Minute(), 0, 0, loc)
}

// SlotQuery фильтр выборки слотов
type SlotQuery struct {
	TeacherID uuid.UUID
	FromDate  *time.Time  // slot_date >= FromDate
	ToDate    *time.Time  // slot_date <= ToDate
	Status    *SlotStatus // nil = любой статус
}

// DaySlots слоты одной даты, упорядоченные по времени начала
type DaySlots struct {
	Date  time.Time           `json:"date"`
	Slots []*AvailabilitySlot `json:"slots"`
}
