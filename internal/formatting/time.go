package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/model"
)

// FormatDate форматирует только дату: "Mon, Mar 4"
func FormatDate(t time.Time) string {
	return t.Format("Mon, Jan 2")
}

// FormatDateLong форматирует дату с годом: "Monday, March 4, 2030"
func FormatDateLong(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// FormatTimeRange форматирует диапазон времени: "09:00-10:00"
func FormatTimeRange(start, end model.Clock) string {
	return fmt.Sprintf("%s-%s", start, end)
}

// FormatSlot дата и время слота одной строкой
func FormatSlot(slot *model.AvailabilitySlot) string {
	return fmt.Sprintf("%s %s", FormatDate(slot.SlotDate), FormatTimeRange(slot.StartTime, slot.EndTime))
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, mins)
}

// WeekdayName название дня недели по-английски (0 = Sunday)
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return "Unknown"
	}
	return time.Weekday(weekday).String()
}

// WeekdayShortJa краткое название дня недели по-японски
func WeekdayShortJa(weekday int) string {
	names := []string{"日", "月", "火", "水", "木", "金", "土"}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "?"
}

// WeekStart понедельник недели, в которую попадает дата
func WeekStart(t time.Time) time.Time {
	d := model.DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Pluralize выбирает форму слова по количеству: Pluralize(1, "lesson", "lessons")
func Pluralize(count int, one, many string) string {
	if count == 1 {
		return one
	}
	return many
}
