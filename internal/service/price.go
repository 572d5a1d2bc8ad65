package service

import (
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/google/uuid"
)

// SnapshotPrice цена одного урока на момент бронирования: действующая почасовая ставка.
// Слот всегда длится час, поэтому пропорционального пересчёта нет.
func SnapshotPrice(teacherID uuid.UUID, rate *model.TeacherRate) (int64, error) {
	if rate == nil || rate.HourlyRate <= 0 {
		return 0, &InvalidStateError{Entity: "teacher", ID: teacherID.String(), State: "without an hourly rate"}
	}
	return rate.HourlyRate, nil
}

// TotalPrice сумма price_at_booking по броням
func TotalPrice(bookings []*model.Booking) int64 {
	var total int64
	for _, b := range bookings {
		total += b.PriceAtBooking
	}
	return total
}
