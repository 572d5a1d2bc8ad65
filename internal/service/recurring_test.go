package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateRecurring_GeneratesWeeks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.avail.now = func() time.Time { return testDate.Add(8 * time.Hour) }

	rec, count, err := env.avail.CreateRecurring(ctx, env.teacherID, int(time.Monday), mustClock(t, "09:00"), mustClock(t, "11:00"), 2)
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	require.Equal(t, 4, count)

	slots, err := env.avail.ListTeacherSlots(ctx, env.teacherID)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	require.True(t, slots[0].SlotDate.Equal(testDate))
	require.True(t, slots[2].SlotDate.Equal(testDate.AddDate(0, 0, 7)))
	for _, s := range slots {
		require.Equal(t, time.Monday, s.SlotDate.Weekday())
	}
}

func TestGenerateRecurringSlots_SkipsPastAndExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.avail.now = func() time.Time { return testDate.Add(8*time.Hour + 30*time.Minute) }

	// Сегодня 07:00 и 08:00 уже прошли, остаётся только следующая неделя
	_, count, err := env.avail.CreateRecurring(ctx, env.teacherID, int(time.Monday), mustClock(t, "07:00"), mustClock(t, "09:00"), 2)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// Повторный прогон ничего не дублирует
	created, err := env.avail.GenerateRecurringSlots(ctx, 2)
	require.NoError(t, err)
	require.Zero(t, created)

	// Горизонт расширился на неделю
	created, err = env.avail.GenerateRecurringSlots(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 2, created)
}

func TestGenerateRecurringSlots_KeepsManualSlots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.avail.now = func() time.Time { return testDate }

	env.generate(t, testDate, "09:30", "10:30")

	_, count, err := env.avail.CreateRecurring(ctx, env.teacherID, int(time.Monday), mustClock(t, "09:00"), mustClock(t, "12:00"), 1)
	require.NoError(t, err)
	// 09:00 и 10:00 пересекаются с ручным слотом 09:30
	require.Equal(t, 1, count)

	slots, err := env.avail.ListTeacherSlots(ctx, env.teacherID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	require.Equal(t, "09:30", slots[0].StartTime.String())
	require.Equal(t, "11:00", slots[1].StartTime.String())
}

func TestGenerateRecurringSlots_DoesNotRestoreDeletedSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.avail.now = func() time.Time { return testDate }

	_, count, err := env.avail.CreateRecurring(ctx, env.teacherID, int(time.Monday), mustClock(t, "09:00"), mustClock(t, "11:00"), 1)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	slots, err := env.avail.ListAvailableSlots(ctx, env.teacherID, testDate)
	require.NoError(t, err)
	require.NoError(t, env.avail.DeleteSlot(ctx, env.teacherID, slots[0].ID))

	created, err := env.avail.GenerateRecurringSlots(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, created)

	slots, err = env.avail.ListAvailableSlots(ctx, env.teacherID, testDate)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "10:00", slots[0].StartTime.String())

	// Вручную час можно вернуть, и повторно удалить тоже
	restored := env.generate(t, testDate, "09:00", "10:00")
	require.Len(t, restored, 1)
	require.NoError(t, env.avail.DeleteSlot(ctx, env.teacherID, restored[0].ID))

	created, err = env.avail.GenerateRecurringSlots(ctx, 1)
	require.NoError(t, err)
	require.Zero(t, created)
}

func TestCreateRecurring_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.avail.CreateRecurring(ctx, env.teacherID, 7, mustClock(t, "09:00"), mustClock(t, "10:00"), 1)
	requireKind(t, err, ErrValidation)

	_, _, err = env.avail.CreateRecurring(ctx, env.teacherID, 1, mustClock(t, "09:00"), mustClock(t, "09:30"), 1)
	requireKind(t, err, ErrValidation)
}

func TestDeleteRecurring(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.avail.now = func() time.Time { return testDate }

	rec, _, err := env.avail.CreateRecurring(ctx, env.teacherID, 3, mustClock(t, "18:00"), mustClock(t, "19:00"), 1)
	require.NoError(t, err)

	err = env.avail.DeleteRecurring(ctx, uuid.New(), rec.ID)
	requireKind(t, err, ErrNotFound)

	require.NoError(t, env.avail.DeleteRecurring(ctx, env.teacherID, rec.ID))

	recs, err := env.avail.ListRecurring(ctx, env.teacherID)
	require.NoError(t, err)
	require.Empty(t, recs)

	// Нарезанные слоты остаются
	slots, err := env.avail.ListTeacherSlots(ctx, env.teacherID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, model.SlotStatusAvailable, slots[0].Status)
}

func TestTeacherService_Rate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.teachers.GetHourlyRate(ctx, env.teacherID)
	requireKind(t, err, ErrNotFound)

	_, err = env.teachers.SetHourlyRate(ctx, env.teacherID, 0)
	requireKind(t, err, ErrValidation)

	_, err = env.teachers.SetHourlyRate(ctx, uuid.New(), 3000)
	requireKind(t, err, ErrNotFound)

	env.setRate(t, 4500)
	rate, err := env.teachers.GetHourlyRate(ctx, env.teacherID)
	require.NoError(t, err)
	require.Equal(t, int64(4500), rate.HourlyRate)

	require.NoError(t, env.teachers.SetTelegramChat(ctx, env.teacherID, 777))
	profile, err := env.teachers.GetByTelegramChat(ctx, 777)
	require.NoError(t, err)
	require.Equal(t, env.teacherID, profile.UserID)
	require.Equal(t, "Yuki Tanaka", profile.FullName)
}
