// weekpreview рисует пример недели учителя в week.png, чтобы проверить вид картинки без базы и бота
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/formatting"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/render"
	"github.com/Freeeeeet/lesson_booking/internal/repository/memory"
	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()
	logger := zap.NewNop()

	store := memory.New()
	teacherID := uuid.New()
	studentID := uuid.New()
	store.AddProfile(teacherID, "Yuki Tanaka", "teacher")
	store.AddProfile(studentID, "Alex Martin", "student")
	match := store.AddMatch(&model.Match{TeacherID: teacherID, StudentID: studentID})

	availability := service.NewAvailabilityService(store.Slots(), store.Recurring(), store.Teachers(), nil, time.UTC, logger)
	teachers := service.NewTeacherService(store.Teachers(), nil, logger)
	bookings := service.NewBookingService(store.Bookings(), store.Teachers(), store.Matches(), nil, nil, logger)

	// Начинаем с понедельника текущей недели
	weekStart := formatting.WeekStart(time.Now())

	ranges := []struct {
		day        int
		start, end model.Clock
	}{
		{0, model.NewClock(9, 0), model.NewClock(12, 0)},  // Понедельник
		{1, model.NewClock(10, 0), model.NewClock(11, 0)}, // Вторник
		{1, model.NewClock(16, 0), model.NewClock(18, 0)},
		{2, model.NewClock(9, 0), model.NewClock(10, 0)}, // Среда
		{2, model.NewClock(15, 0), model.NewClock(16, 0)},
		{4, model.NewClock(11, 0), model.NewClock(14, 0)}, // Пятница
	}

	var created []*model.AvailabilitySlot
	for _, r := range ranges {
		slots, err := availability.GenerateSlots(ctx, teacherID, weekStart.AddDate(0, 0, r.day), r.start, r.end)
		if err != nil {
			fmt.Printf("Slot generation failed: %v\n", err)
			os.Exit(1)
		}
		created = append(created, slots...)
	}

	if _, err := teachers.SetHourlyRate(ctx, teacherID, 2500); err != nil {
		fmt.Printf("Setting rate failed: %v\n", err)
		os.Exit(1)
	}

	// Часть слотов бронируем, чтобы на картинке были оба статуса
	booked := []*model.AvailabilitySlot{created[1], created[2], created[6]}
	reservation, err := bookings.CreateBookings(ctx, service.BookingRequest{
		MatchID:   match.ID,
		TeacherID: teacherID,
		StudentID: studentID,
		SlotIDs:   []int64{booked[0].ID, booked[1].ID, booked[2].ID},
	})
	if err != nil {
		fmt.Printf("Booking failed: %v\n", err)
		os.Exit(1)
	}

	weeks := render.NewService(availability, teachers, render.NewWeekRenderer(time.UTC), render.NopCache{}, logger)
	imageData, err := weeks.WeekImage(ctx, teacherID, weekStart)
	if err != nil {
		fmt.Printf("Rendering failed: %v\n", err)
		os.Exit(1)
	}

	filename := "week.png"
	if err := os.WriteFile(filename, imageData, 0644); err != nil {
		fmt.Printf("Saving file failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Image saved to %s\n", filename)
	fmt.Printf("📅 Week: %s - %s\n", formatting.FormatDate(weekStart), formatting.FormatDate(weekStart.AddDate(0, 0, 6)))
	fmt.Printf("📊 Slots: %d, booked: %d (%s)\n", len(created), len(reservation.Bookings), formatting.FormatPrice(reservation.Total, "CAD"))
	for _, slot := range booked {
		fmt.Printf("   %s\n", formatting.FormatSlot(slot))
	}
}
