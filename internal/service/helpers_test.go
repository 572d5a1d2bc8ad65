package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/payment"
	"github.com/Freeeeeet/lesson_booking/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Понедельник
var testDate = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, ev events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, _ events.Handler) error {
	<-ctx.Done()
	return nil
}

func (b *recordingBus) ofType(t events.Type) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var result []events.Event
	for _, ev := range b.events {
		if ev.Type == t {
			result = append(result, ev)
		}
	}
	return result
}

type recordingHandoff struct {
	mu       sync.Mutex
	requests []payment.Request
	err      error
}

func (h *recordingHandoff) RequestPayment(_ context.Context, req payment.Request) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, req)
	return h.err
}

type testEnv struct {
	store     *memory.Store
	bus       *recordingBus
	payments  *recordingHandoff
	avail     *AvailabilityService
	bookings  *BookingService
	teachers  *TeacherService
	teacherID uuid.UUID
	studentID uuid.UUID
	match     *model.Match
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	store := memory.New()
	bus := &recordingBus{}
	payments := &recordingHandoff{}

	env := &testEnv{
		store:     store,
		bus:       bus,
		payments:  payments,
		teacherID: uuid.New(),
		studentID: uuid.New(),
	}

	store.AddProfile(env.teacherID, "Yuki Tanaka", "teacher")
	store.AddProfile(env.studentID, "Alex Martin", "student")
	env.match = store.AddMatch(&model.Match{TeacherID: env.teacherID, StudentID: env.studentID})

	env.avail = NewAvailabilityService(store.Slots(), store.Recurring(), store.Teachers(), bus, time.UTC, logger)
	env.bookings = NewBookingService(store.Bookings(), store.Teachers(), store.Matches(), bus, payments, logger)
	env.teachers = NewTeacherService(store.Teachers(), bus, logger)

	return env
}

func (e *testEnv) setRate(t *testing.T, cents int64) {
	t.Helper()
	_, err := e.teachers.SetHourlyRate(context.Background(), e.teacherID, cents)
	require.NoError(t, err)
}

func (e *testEnv) generate(t *testing.T, date time.Time, start, end string) []*model.AvailabilitySlot {
	t.Helper()
	slots, err := e.avail.GenerateSlots(context.Background(), e.teacherID, date, mustClock(t, start), mustClock(t, end))
	require.NoError(t, err)
	return slots
}

func (e *testEnv) request(ids ...int64) BookingRequest {
	return BookingRequest{
		MatchID:   e.match.ID,
		TeacherID: e.teacherID,
		StudentID: e.studentID,
		SlotIDs:   ids,
	}
}

func mustClock(t *testing.T, s string) model.Clock {
	t.Helper()
	c, err := model.ParseClock(s)
	require.NoError(t, err)
	return c
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "expected %v, got %T: %v", kind, err, err)
}
