package render

import (
	"bytes"
	"context"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var monday = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func testSlots(teacherID uuid.UUID) []*model.AvailabilitySlot {
	return []*model.AvailabilitySlot{
		{ID: 1, TeacherID: teacherID, SlotDate: monday, StartTime: model.NewClock(9, 0), EndTime: model.NewClock(10, 0), Status: model.SlotStatusAvailable},
		{ID: 2, TeacherID: teacherID, SlotDate: monday, StartTime: model.NewClock(10, 0), EndTime: model.NewClock(11, 0), Status: model.SlotStatusBooked},
		{ID: 3, TeacherID: teacherID, SlotDate: monday.AddDate(0, 0, 4), StartTime: model.NewClock(18, 0), EndTime: model.NewClock(19, 0), Status: model.SlotStatusAvailable},
		// вне недели, не рисуется
		{ID: 4, TeacherID: teacherID, SlotDate: monday.AddDate(0, 0, 7), StartTime: model.NewClock(6, 0), EndTime: model.NewClock(7, 0), Status: model.SlotStatusAvailable},
	}
}

func newTestRenderer() *WeekRenderer {
	r := NewWeekRenderer(time.UTC)
	r.now = func() time.Time { return monday.Add(9*time.Hour + 30*time.Minute) }
	return r
}

func TestWeekRenderer_Render(t *testing.T) {
	data, err := newTestRenderer().Render("Yuki Tanaka", monday.AddDate(0, 0, 3), testSlots(uuid.New()))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, imageWidth, img.Bounds().Dx())
	require.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestWeekRenderer_RenderEmptyWeek(t *testing.T) {
	data, err := newTestRenderer().Render("Yuki Tanaka", monday.AddDate(0, 0, 14), nil)
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
}

func TestCalculateHourRange(t *testing.T) {
	hours := calculateHourRange(testSlots(uuid.New())[:3])
	require.Equal(t, 8, hours.start)
	require.Equal(t, 20, hours.end)
	require.Equal(t, 12, hours.total)

	empty := calculateHourRange(nil)
	require.Equal(t, defaultFirstHour, empty.start)
	require.Equal(t, defaultLastHour, empty.end)

	early := calculateHourRange([]*model.AvailabilitySlot{
		{StartTime: model.NewClock(0, 0), EndTime: model.NewClock(1, 0)},
	})
	require.Equal(t, 0, early.start)
	require.Equal(t, 2, early.end)

	late := calculateHourRange([]*model.AvailabilitySlot{
		{StartTime: model.NewClock(23, 0), EndTime: model.NewClock(24, 0)},
	})
	require.Equal(t, 24, late.end)
}

func TestGrid_PlacesSlotsByHour(t *testing.T) {
	g := newGrid(hourRange{start: 8, end: 20, total: 12})

	require.InDelta(t, g.top, g.y(model.NewClock(8, 0)), 0.001)
	require.InDelta(t, g.bottom(), g.y(model.NewClock(20, 0)), 0.001)
	require.InDelta(t, g.rowHeight/2, g.y(model.NewClock(9, 30))-g.y(model.NewClock(9, 0)), 0.001)
	require.InDelta(t, imageWidth-marginX, g.right(), 0.001)
}

func TestGroupByWeekday(t *testing.T) {
	byDay := groupByWeekday(monday, testSlots(uuid.New()))
	require.Len(t, byDay[0], 2)
	require.Len(t, byDay[4], 1)
	require.Len(t, byDay, 2)
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)
	teacherID := uuid.New()

	_, ok, err := cache.Get(ctx, teacherID, monday)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, teacherID, monday, []byte("png")))

	data, ok, err := cache.Get(ctx, teacherID, monday)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("png"), data)
	require.Equal(t, time.Minute, mr.TTL(imageKey(teacherID, 0, monday)))

	require.NoError(t, cache.Invalidate(ctx, teacherID))

	_, ok, err = cache.Get(ctx, teacherID, monday)
	require.NoError(t, err)
	require.False(t, ok)

	// другой учитель не затронут
	other := uuid.New()
	require.NoError(t, cache.Set(ctx, other, monday, []byte("other")))
	require.NoError(t, cache.Invalidate(ctx, teacherID))
	_, ok, err = cache.Get(ctx, other, monday)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisCache_Expires(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)
	teacherID := uuid.New()

	require.NoError(t, cache.Set(ctx, teacherID, monday, []byte("png")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, teacherID, monday)
	require.NoError(t, err)
	require.False(t, ok)
}

type stubSlots struct {
	calls atomic.Int32
	slots []*model.AvailabilitySlot
}

func (s *stubSlots) ListWeek(_ context.Context, _ uuid.UUID, _ time.Time) ([]*model.AvailabilitySlot, error) {
	s.calls.Add(1)
	return s.slots, nil
}

type stubProfiles struct{}

func (stubProfiles) GetProfile(_ context.Context, teacherID uuid.UUID) (*model.TeacherProfile, error) {
	return &model.TeacherProfile{UserID: teacherID, FullName: "Yuki Tanaka"}, nil
}

func TestService_CachesUntilScheduleChanges(t *testing.T) {
	ctx := context.Background()
	cache, _ := newRedisCache(t)
	teacherID := uuid.New()
	slots := &stubSlots{slots: testSlots(teacherID)}
	svc := NewService(slots, stubProfiles{}, newTestRenderer(), cache, zap.NewNop())

	first, err := svc.WeekImage(ctx, teacherID, monday.AddDate(0, 0, 2))
	require.NoError(t, err)
	second, err := svc.WeekImage(ctx, teacherID, monday)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int32(1), slots.calls.Load())

	// смена ставки не влияет на картинку
	svc.HandleEvent(ctx, events.Event{Type: events.RateUpdated, TeacherID: teacherID})
	_, err = svc.WeekImage(ctx, teacherID, monday)
	require.NoError(t, err)
	require.Equal(t, int32(1), slots.calls.Load())

	svc.HandleEvent(ctx, events.Event{Type: events.BookingsCreated, TeacherID: teacherID})
	_, err = svc.WeekImage(ctx, teacherID, monday)
	require.NoError(t, err)
	require.Equal(t, int32(2), slots.calls.Load())
}

func TestService_NopCacheAlwaysRenders(t *testing.T) {
	ctx := context.Background()
	teacherID := uuid.New()
	slots := &stubSlots{}
	svc := NewService(slots, stubProfiles{}, newTestRenderer(), nil, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := svc.WeekImage(ctx, teacherID, monday)
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), slots.calls.Load())
}
