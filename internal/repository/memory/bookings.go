package memory

import (
	"context"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
)

type BookingStore struct {
	s *Store
}

// Reserve проверяет и переводит слоты в booked под одним мьютексом,
// поэтому из конкурентных запросов на один слот выигрывает ровно один
func (r *BookingStore) Reserve(_ context.Context, res *model.Reservation) ([]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var missing []int64
	slots := make([]*model.AvailabilitySlot, 0, len(res.SlotIDs))
	for _, id := range res.SlotIDs {
		slot, ok := r.s.slots[id]
		if !ok || slot.TeacherID != res.TeacherID || !slot.IsAvailable() {
			missing = append(missing, id)
			continue
		}
		slots = append(slots, slot)
	}
	if len(missing) > 0 {
		return nil, &repository.UnavailableError{SlotIDs: missing}
	}

	sortSlots(slots)

	now := r.s.now()
	bookings := make([]*model.Booking, 0, len(slots))
	for _, slot := range slots {
		slot.Status = model.SlotStatusBooked

		r.s.nextBookingID++
		booking := &model.Booking{
			ID:             r.s.nextBookingID,
			ReservationID:  res.ID,
			MatchID:        res.MatchID,
			SlotID:         slot.ID,
			StudentID:      res.StudentID,
			TeacherID:      res.TeacherID,
			PriceAtBooking: res.PriceAtBooking,
			Status:         model.BookingStatusPendingPayment,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		stored := *booking
		r.s.bookings[booking.ID] = &stored

		booking.Slot = copySlot(slot)
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *BookingStore) GetDetails(_ context.Context, ids []int64) ([]*model.BookingDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type row struct {
		detail *model.BookingDetail
		slot   *model.AvailabilitySlot
	}

	var rows []row
	for _, id := range ids {
		b, ok := r.s.bookings[id]
		if !ok {
			continue
		}
		slot, ok := r.s.slots[b.SlotID]
		if !ok {
			continue
		}

		var teacherName string
		if p, ok := r.s.profiles[b.TeacherID]; ok {
			teacherName = p.fullName
		}

		rows = append(rows, row{
			detail: &model.BookingDetail{
				ID:             b.ID,
				ReservationID:  b.ReservationID,
				StudentID:      b.StudentID,
				TeacherID:      b.TeacherID,
				TeacherName:    teacherName,
				PriceAtBooking: b.PriceAtBooking,
				Status:         b.Status,
				CreatedAt:      b.CreatedAt,
				SlotDate:       slot.SlotDate,
				StartTime:      slot.StartTime,
				EndTime:        slot.EndTime,
			},
			slot: slot,
		})
	}

	slots := make([]*model.AvailabilitySlot, len(rows))
	byID := make(map[int64]*model.BookingDetail, len(rows))
	for i, rw := range rows {
		slots[i] = rw.slot
		byID[rw.slot.ID] = rw.detail
	}
	sortSlots(slots)

	details := make([]*model.BookingDetail, len(slots))
	for i, slot := range slots {
		details[i] = byID[slot.ID]
	}
	return details, nil
}

// BookingsForSlot брони по слоту (для проверок в тестах)
func (s *Store) BookingsForSlot(slotID int64) []*model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*model.Booking
	for _, b := range s.bookings {
		if b.SlotID == slotID {
			c := *b
			result = append(result, &c)
		}
	}
	return result
}
