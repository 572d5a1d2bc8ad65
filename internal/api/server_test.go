package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/api/middleware"
	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/payment"
	"github.com/Freeeeeet/lesson_booking/internal/render"
	"github.com/Freeeeeet/lesson_booking/internal/repository/memory"
	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "api-test-secret"

type apiEnv struct {
	t         *testing.T
	store     *memory.Store
	handler   http.Handler
	teacherID uuid.UUID
	studentID uuid.UUID
	adminID   uuid.UUID
	match     *model.Match
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	logger := zap.NewNop()
	store := memory.New()
	bus := events.NewMemoryBus(logger)

	env := &apiEnv{
		t:         t,
		store:     store,
		teacherID: uuid.New(),
		studentID: uuid.New(),
		adminID:   uuid.New(),
	}
	store.AddProfile(env.teacherID, "Yuki Tanaka", middleware.RoleTeacher)
	store.AddProfile(env.studentID, "Alex Martin", middleware.RoleStudent)
	store.AddProfile(env.adminID, "Admin", middleware.RoleAdmin)
	env.match = store.AddMatch(&model.Match{TeacherID: env.teacherID, StudentID: env.studentID})

	avail := service.NewAvailabilityService(store.Slots(), store.Recurring(), store.Teachers(), bus, time.UTC, logger)
	teachers := service.NewTeacherService(store.Teachers(), bus, logger)

	svc := Services{
		Availability: avail,
		Bookings:     service.NewBookingService(store.Bookings(), store.Teachers(), store.Matches(), bus, payment.NewLogHandoff("CAD", logger), logger),
		Teachers:     teachers,
		Gate:         service.NewGateService(store.Settings(), logger),
		Weeks:        render.NewService(avail, teachers, render.NewWeekRenderer(time.UTC), render.NopCache{}, logger),
	}

	server := NewServer(Options{Addr: ":0", IdentitySecret: testSecret, WeeksAhead: 2}, svc, logger)
	env.handler = server.Handler()
	return env
}

func (e *apiEnv) token(userID uuid.UUID, role string) string {
	e.t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString([]byte(testSecret))
	require.NoError(e.t, err)
	return raw
}

func (e *apiEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *apiEnv) teacher(method, path string, body any) *httptest.ResponseRecorder {
	return e.do(method, path, e.token(e.teacherID, middleware.RoleTeacher), body)
}

func (e *apiEnv) student(method, path string, body any) *httptest.ResponseRecorder {
	return e.do(method, path, e.token(e.studentID, middleware.RoleStudent), body)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type slotsResponse struct {
	Slots []*model.AvailabilitySlot `json:"slots"`
}

type daysResponse struct {
	Days []model.DaySlots `json:"days"`
}

type errorBody struct {
	Error   string  `json:"error"`
	SlotIDs []int64 `json:"slot_ids"`
}

func (e *apiEnv) generate(date, start, end string) []*model.AvailabilitySlot {
	e.t.Helper()
	rec := e.teacher(http.MethodPost, "/v1/teacher/slots", map[string]string{
		"slot_date":  date,
		"start_time": start,
		"end_time":   end,
	})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[slotsResponse](e.t, rec).Slots
}

func (e *apiEnv) setRate(cents int64) {
	e.t.Helper()
	rec := e.teacher(http.MethodPut, "/v1/teacher/rate", map[string]int64{"hourly_rate": cents})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
}

func (e *apiEnv) book(ids ...int64) *httptest.ResponseRecorder {
	return e.student(http.MethodPost, fmt.Sprintf("/v1/matches/%s/bookings", e.match.ID), map[string]any{
		"teacher_id": e.teacherID,
		"slot_ids":   ids,
	})
}

func TestHealthz(t *testing.T) {
	env := newAPIEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_RequiredAndRoles(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.do(http.MethodGet, "/v1/teacher/slots", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.student(http.MethodGet, "/v1/teacher/slots", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.teacher(http.MethodPost, fmt.Sprintf("/v1/matches/%s/bookings", env.match.ID), map[string]any{})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.student(http.MethodPost, "/v1/admin/passphrase", map[string]string{"passphrase": "sakura-2030"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGenerateSlots(t *testing.T) {
	env := newAPIEnv(t)

	slots := env.generate("2030-03-04", "09:00", "11:30")
	require.Len(t, slots, 2)
	require.Equal(t, model.NewClock(9, 0), slots[0].StartTime)
	require.Equal(t, model.NewClock(11, 0), slots[1].EndTime)

	// меньше часа
	rec := env.teacher(http.MethodPost, "/v1/teacher/slots", map[string]string{
		"slot_date": "2030-03-05", "start_time": "09:00", "end_time": "09:45",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[errorBody](t, rec).Error, "minimum one hour")

	// пересечение с уже созданными
	rec = env.teacher(http.MethodPost, "/v1/teacher/slots", map[string]string{
		"slot_date": "2030-03-04", "start_time": "10:00", "end_time": "12:00",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// некорректный ввод
	rec = env.teacher(http.MethodPost, "/v1/teacher/slots", map[string]string{
		"slot_date": "04/03/2030", "start_time": "09:00", "end_time": "10:00",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.teacher(http.MethodPost, "/v1/teacher/slots", map[string]string{"slot_date": "2030-03-04"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[errorBody](t, rec).Error, "start_time: required")
}

func TestListSlots_GroupedByDate(t *testing.T) {
	env := newAPIEnv(t)
	env.generate("2030-03-05", "18:00", "19:00")
	env.generate("2030-03-04", "09:00", "11:00")

	rec := env.student(http.MethodGet, fmt.Sprintf("/v1/teachers/%s/slots?from=2030-03-01", env.teacherID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	days := decode[daysResponse](t, rec).Days
	require.Len(t, days, 2)
	require.Equal(t, "2030-03-04", model.FormatDate(days[0].Date))
	require.Len(t, days[0].Slots, 2)
	require.Equal(t, "2030-03-05", model.FormatDate(days[1].Date))

	// повторный запрос даёт тот же результат
	again := env.student(http.MethodGet, fmt.Sprintf("/v1/teachers/%s/slots?from=2030-03-01", env.teacherID), nil)
	require.Equal(t, rec.Body.String(), again.Body.String())

	rec = env.student(http.MethodGet, "/v1/teachers/not-a-uuid/slots", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.student(http.MethodGet, fmt.Sprintf("/v1/teachers/%s/slots", uuid.New()), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.teacher(http.MethodGet, "/v1/teacher/slots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[daysResponse](t, rec).Days, 2)
}

func TestCreateBookings_Flow(t *testing.T) {
	env := newAPIEnv(t)
	slots := env.generate("2030-03-04", "09:00", "12:00")
	env.setRate(2500)

	rec := env.book(slots[2].ID, slots[0].ID, slots[1].ID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	reservation := decode[service.Reservation](t, rec)
	require.Len(t, reservation.Bookings, 3)
	require.Equal(t, int64(7500), reservation.Total)
	require.Equal(t, slots[0].ID, reservation.Bookings[0].SlotID)

	// те же слоты второй раз
	rec = env.book(slots[0].ID)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decode[errorBody](t, rec)
	require.Equal(t, []int64{slots[0].ID}, body.SlotIDs)
	require.Contains(t, body.Error, "re-select")

	// сводка для оплаты
	rec = env.student(http.MethodGet, "/v1/bookings?ids="+reservation.Reference, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[service.BookingSummary](t, rec)
	require.Equal(t, int64(7500), summary.Total)
	require.Equal(t, "Yuki Tanaka", summary.Bookings[0].TeacherName)

	// чужой студент не видит брони
	other := uuid.New()
	env.store.AddProfile(other, "Someone Else", middleware.RoleStudent)
	rec = env.do(http.MethodGet, "/v1/bookings?ids="+reservation.Reference, env.token(other, middleware.RoleStudent), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.student(http.MethodGet, "/v1/bookings?ids=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookings_Errors(t *testing.T) {
	env := newAPIEnv(t)
	slots := env.generate("2030-03-04", "09:00", "10:00")

	// ставка не задана
	rec := env.book(slots[0].ID)
	require.Equal(t, http.StatusConflict, rec.Code)

	env.setRate(3000)

	rec = env.book()
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.student(http.MethodPost, fmt.Sprintf("/v1/matches/%s/bookings", uuid.New()), map[string]any{
		"teacher_id": env.teacherID,
		"slot_ids":   []int64{slots[0].ID},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	env.store.SetMatchStatus(env.match.ID, model.MatchStatusArchived)
	rec = env.book(slots[0].ID)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteSlot(t *testing.T) {
	env := newAPIEnv(t)
	slots := env.generate("2030-03-04", "09:00", "11:00")
	env.setRate(2500)

	require.Equal(t, http.StatusCreated, env.book(slots[1].ID).Code)

	rec := env.teacher(http.MethodDelete, fmt.Sprintf("/v1/teacher/slots/%d", slots[1].ID), nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.teacher(http.MethodDelete, fmt.Sprintf("/v1/teacher/slots/%d", slots[0].ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.teacher(http.MethodDelete, fmt.Sprintf("/v1/teacher/slots/%d", slots[0].ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.teacher(http.MethodDelete, "/v1/teacher/slots/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeacherSettings(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.teacher(http.MethodPut, "/v1/teacher/rate", map[string]int64{"hourly_rate": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.teacher(http.MethodPut, "/v1/teacher/telegram", map[string]int64{"chat_id": 123456})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.teacher(http.MethodPut, "/v1/teacher/telegram", map[string]int64{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecurring(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.teacher(http.MethodPost, "/v1/teacher/recurring", map[string]any{
		"weekday": 1, "start_time": "09:00", "end_time": "11:00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Recurring    model.RecurringAvailability `json:"recurring"`
		SlotsCreated int                         `json:"slots_created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, 1, created.Recurring.Weekday)
	require.Positive(t, created.SlotsCreated)

	rec = env.teacher(http.MethodPost, "/v1/teacher/recurring", map[string]any{
		"weekday": 9, "start_time": "09:00", "end_time": "11:00",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.teacher(http.MethodGet, "/v1/teacher/recurring", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"weekday":1`)

	rec = env.teacher(http.MethodDelete, fmt.Sprintf("/v1/teacher/recurring/%d", created.Recurring.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.teacher(http.MethodDelete, fmt.Sprintf("/v1/teacher/recurring/%d", created.Recurring.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWeekImage(t *testing.T) {
	env := newAPIEnv(t)
	env.generate("2030-03-04", "09:00", "11:00")

	rec := env.student(http.MethodGet, fmt.Sprintf("/v1/teachers/%s/week.png?date=2030-03-06", env.teacherID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	_, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)

	rec = env.student(http.MethodGet, fmt.Sprintf("/v1/teachers/%s/week.png", uuid.New()), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGate(t *testing.T) {
	env := newAPIEnv(t)

	rec := env.student(http.MethodGet, "/v1/gate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[service.GateStatus](t, rec).RequiresVerification)

	admin := env.token(env.adminID, middleware.RoleAdmin)
	rec = env.do(http.MethodPost, "/v1/admin/passphrase", admin, map[string]string{"passphrase": "abc"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/v1/admin/passphrase", admin, map[string]string{"passphrase": "sakura-2030"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, decode[model.AccessSettings](t, rec).Version)
	require.False(t, strings.Contains(rec.Body.String(), "$2a$"))

	rec = env.student(http.MethodGet, "/v1/gate", nil)
	require.True(t, decode[service.GateStatus](t, rec).RequiresVerification)

	rec = env.student(http.MethodPost, "/v1/gate/verify", map[string]string{"passphrase": "wrong-phrase"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.student(http.MethodPost, "/v1/gate/verify", map[string]string{"passphrase": "sakura-2030"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.student(http.MethodGet, "/v1/gate", nil)
	require.False(t, decode[service.GateStatus](t, rec).RequiresVerification)
}
