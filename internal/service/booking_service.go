package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/payment"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingRequest выбор студента: набор слотов учителя в рамках матча
type BookingRequest struct {
	MatchID   uuid.UUID
	TeacherID uuid.UUID
	StudentID uuid.UUID
	SlotIDs   []int64
}

// Reservation результат бронирования, который передаётся на оплату
type Reservation struct {
	ID        uuid.UUID        `json:"reservation_id"`
	Bookings  []*model.Booking `json:"bookings"`
	Reference string           `json:"reference"`
	Total     int64            `json:"total"`
}

// BookingSummary брони для страницы оплаты
type BookingSummary struct {
	Bookings  []*model.BookingDetail `json:"bookings"`
	Reference string                 `json:"reference"`
	Total     int64                  `json:"total"`
}

type BookingService struct {
	bookings BookingStore
	teachers TeacherStore
	matches  MatchStore
	bus      events.Bus
	payments payment.Handoff
	logger   *zap.Logger
}

func NewBookingService(
	bookings BookingStore,
	teachers TeacherStore,
	matches MatchStore,
	bus events.Bus,
	payments payment.Handoff,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		teachers: teachers,
		matches:  matches,
		bus:      bus,
		payments: payments,
		logger:   logger,
	}
}

// CreateBookings бронирует выбранные слоты атомарно: либо создаются брони
// на все слоты, либо ни одной. Цена каждой брони фиксируется по текущей ставке.
func (s *BookingService) CreateBookings(ctx context.Context, req BookingRequest) (*Reservation, error) {
	slotIDs := uniqueIDs(req.SlotIDs)
	if len(slotIDs) == 0 {
		return nil, invalid("slot_ids", "select at least one slot")
	}
	for _, id := range slotIDs {
		if id <= 0 {
			return nil, invalid("slot_ids", fmt.Sprintf("invalid slot id %d", id))
		}
	}

	if err := s.checkMatch(ctx, req); err != nil {
		return nil, err
	}

	rate, err := s.teachers.GetRate(ctx, req.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher rate: %w", err)
	}
	price, err := SnapshotPrice(req.TeacherID, rate)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		ID:             uuid.New(),
		MatchID:        req.MatchID,
		TeacherID:      req.TeacherID,
		StudentID:      req.StudentID,
		SlotIDs:        slotIDs,
		PriceAtBooking: price,
	}

	bookings, err := s.bookings.Reserve(ctx, res)
	if err != nil {
		var unavailable *repository.UnavailableError
		if errors.As(err, &unavailable) {
			s.logger.Info("Reservation rejected, slots not available",
				zap.String("student_id", req.StudentID.String()),
				zap.Int64s("slot_ids", unavailable.SlotIDs))
			return nil, &ConflictError{
				SlotIDs: unavailable.SlotIDs,
				Reason:  "selection no longer valid, please re-select",
			}
		}
		s.logger.Error("Failed to reserve slots",
			zap.String("reservation_id", res.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("reserve slots: %w", err)
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].Slot.Before(bookings[j].Slot)
	})

	reservation := &Reservation{
		ID:        res.ID,
		Bookings:  bookings,
		Reference: Reference(bookingIDs(bookings)),
		Total:     TotalPrice(bookings),
	}

	s.logger.Info("Slots booked",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("student_id", req.StudentID.String()),
		zap.String("teacher_id", req.TeacherID.String()),
		zap.String("reference", reservation.Reference),
		zap.Int64("price_at_booking", price),
		zap.Int64("total", reservation.Total))

	publish(ctx, s.bus, s.logger, events.Event{
		Type:          events.BookingsCreated,
		TeacherID:     req.TeacherID,
		StudentID:     req.StudentID,
		ReservationID: reservation.ID,
		SlotIDs:       slotIDs,
		BookingIDs:    bookingIDs(bookings),
		Total:         reservation.Total,
	})

	s.handOff(ctx, req, reservation)

	return reservation, nil
}

// checkMatch бронировать можно только в активном матче этой пары учитель/студент
func (s *BookingService) checkMatch(ctx context.Context, req BookingRequest) error {
	match, err := s.matches.GetByID(ctx, req.MatchID)
	if err != nil {
		return fmt.Errorf("get match: %w", err)
	}
	if match == nil {
		return notFound("match", req.MatchID)
	}
	if match.StudentID != req.StudentID || match.TeacherID != req.TeacherID {
		return invalid("match_id", "match does not belong to this teacher and student")
	}
	if !match.IsActive() {
		return &InvalidStateError{Entity: "match", ID: match.ID.String(), State: string(match.Status)}
	}
	return nil
}

// handOff передаёт брони на оплату. Брони уже созданы и остаются pending_payment,
// поэтому ошибка только логируется.
func (s *BookingService) handOff(ctx context.Context, req BookingRequest, r *Reservation) {
	if s.payments == nil {
		return
	}

	err := s.payments.RequestPayment(ctx, payment.Request{
		ReservationID: r.ID,
		Reference:     r.Reference,
		BookingIDs:    bookingIDs(r.Bookings),
		StudentID:     req.StudentID,
		TeacherID:     req.TeacherID,
		TotalCents:    r.Total,
		RequestedAt:   time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to hand off reservation to payment",
			zap.String("reservation_id", r.ID.String()),
			zap.String("reference", r.Reference),
			zap.Error(err))
	}
}

// GetBookingSummary брони студента с данными слота и учителя, по (slot_date, start_time)
func (s *BookingService) GetBookingSummary(ctx context.Context, studentID uuid.UUID, ids []int64) (*BookingSummary, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, invalid("ids", "at least one booking id required")
	}

	details, err := s.bookings.GetDetails(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get booking details: %w", err)
	}

	owned := make(map[int64]struct{}, len(details))
	var total int64
	for _, d := range details {
		if d.StudentID != studentID {
			continue
		}
		owned[d.ID] = struct{}{}
		total += d.PriceAtBooking
	}

	// Чужие брони не раскрываем: для студента их нет
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return nil, notFound("booking", id)
		}
	}

	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if !a.SlotDate.Equal(b.SlotDate) {
			return a.SlotDate.Before(b.SlotDate)
		}
		return a.StartTime < b.StartTime
	})

	summaryIDs := make([]int64, len(details))
	for i, d := range details {
		summaryIDs[i] = d.ID
	}

	return &BookingSummary{
		Bookings:  details,
		Reference: Reference(summaryIDs),
		Total:     total,
	}, nil
}

// Reference ссылка для шага оплаты: id броней через запятую
func Reference(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// ParseReference разбирает ссылку вида "12,13,14"
func ParseReference(ref string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(ref, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, invalid("ids", fmt.Sprintf("invalid booking id %q", part))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func bookingIDs(bookings []*model.Booking) []int64 {
	ids := make([]int64, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}
	return ids
}

// uniqueIDs убирает повторы, сохраняя порядок
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
