// Package events описывает поток изменений: сервисы публикуют событие после
// записи, подписчики сбрасывают кэши и шлют уведомления.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	SlotsCreated    Type = "slots.created"
	SlotDeleted     Type = "slot.deleted"
	BookingsCreated Type = "bookings.created"
	RateUpdated     Type = "rate.updated"
)

// Event изменение в расписании учителя
type Event struct {
	Type          Type      `json:"event_type"`
	TeacherID     uuid.UUID `json:"teacher_id"`
	StudentID     uuid.UUID `json:"student_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	SlotIDs       []int64   `json:"slot_ids,omitempty"`
	BookingIDs    []int64   `json:"booking_ids,omitempty"`
	Total         int64     `json:"total,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Handler обрабатывает одно событие. Ошибки обработчик логирует сам.
type Handler func(ctx context.Context, ev Event)

// Bus публикация и подписка на события
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe блокируется и вызывает handler для каждого события,
	// пока не будет отменён ctx
	Subscribe(ctx context.Context, handler Handler) error
}
