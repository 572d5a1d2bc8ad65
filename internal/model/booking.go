package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPendingPayment BookingStatus = "pending_payment" // Ожидает оплаты
	BookingStatusConfirmed      BookingStatus = "confirmed"       // Оплачено
	BookingStatusCancelled      BookingStatus = "cancelled"       // Отменено
)

type Booking struct {
	ID             int64         `json:"id"`
	ReservationID  uuid.UUID     `json:"reservation_id"` // Общий для всех броней одного запроса
	MatchID        uuid.UUID     `json:"match_id"`
	SlotID         int64         `json:"slot_id"`
	StudentID      uuid.UUID     `json:"student_id"`
	TeacherID      uuid.UUID     `json:"teacher_id"`
	PriceAtBooking int64         `json:"price_at_booking"` // в центах, фиксируется при создании
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Заполняется при резервировании (не отдельная колонка)
	Slot *AvailabilitySlot `json:"slot,omitempty"`
}

// Reservation входные данные атомарного резервирования набора слотов
type Reservation struct {
	ID             uuid.UUID
	MatchID        uuid.UUID
	TeacherID      uuid.UUID
	StudentID      uuid.UUID
	SlotIDs        []int64
	PriceAtBooking int64
}

// BookingDetail результат join bookings + availability_slots + profiles
// для страницы оплаты
type BookingDetail struct {
	ID             int64         `json:"id"`
	ReservationID  uuid.UUID     `json:"reservation_id"`
	StudentID      uuid.UUID     `json:"student_id"`
	TeacherID      uuid.UUID     `json:"teacher_id"`
	TeacherName    string        `json:"teacher_name"`
	PriceAtBooking int64         `json:"price_at_booking"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	SlotDate       time.Time     `json:"slot_date"`
	StartTime      Clock         `json:"start_time"`
	EndTime        Clock         `json:"end_time"`
}
