package model

import (
	"fmt"
	"time"
)

// DateLayout формат календарной даты слота
const DateLayout = "2006-01-02"

// ParseDate разбирает дату в формате YYYY-MM-DD (UTC, полночь)
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// DateOf отбрасывает время и часовой пояс, оставляя календарную дату
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate форматирует календарную дату
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
