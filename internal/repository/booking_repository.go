package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	db base.DB
}

func NewBookingRepository(db base.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Reserve атомарно переводит все слоты резервации в booked и создаёт по брони на каждый.
// Смена статуса делается условным UPDATE (compare-and-swap по status = 'available'),
// поэтому из двух конкурентных запросов на один слот проходит только один.
// Если хотя бы один слот недоступен, транзакция откатывается и возвращается *UnavailableError.
func (r *BookingRepository) Reserve(ctx context.Context, res *model.Reservation) ([]*model.Booking, error) {
	var bookings []*model.Booking

	err := base.InTx(ctx, r.db, func(tx pgx.Tx) error {
		slots, err := markSlotsBooked(ctx, tx, res)
		if err != nil {
			return err
		}

		if missing := missingSlotIDs(res.SlotIDs, slots); len(missing) > 0 {
			return &UnavailableError{SlotIDs: missing}
		}

		sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

		bookings = make([]*model.Booking, 0, len(slots))
		for _, slot := range slots {
			booking := &model.Booking{
				ReservationID:  res.ID,
				MatchID:        res.MatchID,
				SlotID:         slot.ID,
				StudentID:      res.StudentID,
				TeacherID:      res.TeacherID,
				PriceAtBooking: res.PriceAtBooking,
				Status:         model.BookingStatusPendingPayment,
				Slot:           slot,
			}

			if err := insertBooking(ctx, tx, booking); err != nil {
				return err
			}
			bookings = append(bookings, booking)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func markSlotsBooked(ctx context.Context, tx pgx.Tx, res *model.Reservation) ([]*model.AvailabilitySlot, error) {
	query := `
		UPDATE availability_slots
		SET status = 'booked'
		WHERE id = ANY($1) AND teacher_id = $2 AND status = 'available'
		RETURNING ` + slotColumns

	rows, err := tx.Query(ctx, query, res.SlotIDs, res.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("mark slots booked: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booked slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booked slots: %w", err)
	}

	return slots, nil
}

func missingSlotIDs(requested []int64, got []*model.AvailabilitySlot) []int64 {
	found := make(map[int64]struct{}, len(got))
	for _, slot := range got {
		found[slot.ID] = struct{}{}
	}

	var missing []int64
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func insertBooking(ctx context.Context, tx pgx.Tx, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (reservation_id, match_id, slot_id, student_id, teacher_id, price_at_booking, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		booking.ReservationID,
		booking.MatchID,
		booking.SlotID,
		booking.StudentID,
		booking.TeacherID,
		booking.PriceAtBooking,
		string(booking.Status),
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return &UnavailableError{SlotIDs: []int64{booking.SlotID}}
		}
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetDetails получает брони вместе со слотом и именем учителя,
// упорядоченные по (slot_date, start_time)
func (r *BookingRepository) GetDetails(ctx context.Context, ids []int64) ([]*model.BookingDetail, error) {
	if len(ids) == 0 {
		return []*model.BookingDetail{}, nil
	}

	query := `
		SELECT b.id, b.reservation_id, b.student_id, b.teacher_id, COALESCE(p.full_name, ''),
		       b.price_at_booking, b.status, b.created_at,
		       s.slot_date, to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI')
		FROM bookings b
		JOIN availability_slots s ON s.id = b.slot_id
		LEFT JOIN profiles p ON p.id = b.teacher_id
		WHERE b.id = ANY($1)
		ORDER BY s.slot_date, s.start_time, b.id
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get booking details: %w", err)
	}
	defer rows.Close()

	var details []*model.BookingDetail
	for rows.Next() {
		var (
			d          model.BookingDetail
			status     string
			start, end string
		)
		err := rows.Scan(
			&d.ID,
			&d.ReservationID,
			&d.StudentID,
			&d.TeacherID,
			&d.TeacherName,
			&d.PriceAtBooking,
			&status,
			&d.CreatedAt,
			&d.SlotDate,
			&start,
			&end,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking detail: %w", err)
		}

		d.Status = model.BookingStatus(status)
		d.SlotDate = model.DateOf(d.SlotDate)
		if d.StartTime, err = model.ParseClock(start); err != nil {
			return nil, fmt.Errorf("scan booking detail: %w", err)
		}
		if d.EndTime, err = model.ParseClock(end); err != nil {
			return nil, fmt.Errorf("scan booking detail: %w", err)
		}

		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking details: %w", err)
	}

	return details, nil
}
