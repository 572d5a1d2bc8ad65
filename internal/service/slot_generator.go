package service

import (
	"github.com/Freeeeeet/lesson_booking/internal/model"
)

// Interval отрезок времени внутри одного дня [Start, End)
type Interval struct {
	Start model.Clock
	End   model.Clock
}

// SplitHourly нарезает диапазон [start, end) на последовательные часовые отрезки,
// начиная со start. Хвост короче часа отбрасывается.
func SplitHourly(start, end model.Clock) ([]Interval, error) {
	if !start.Valid() {
		return nil, invalid("start_time", "must be within the day")
	}
	if !end.Valid() {
		return nil, invalid("end_time", "must be within the day")
	}
	if end <= start {
		return nil, invalid("end_time", "must be after start_time")
	}
	if end-start < model.SlotDuration {
		return nil, invalid("", "minimum one hour required")
	}

	intervals := make([]Interval, 0, int(end-start)/model.SlotDuration)
	for cur := start; cur+model.SlotDuration <= end; cur += model.SlotDuration {
		intervals = append(intervals, Interval{Start: cur, End: cur + model.SlotDuration})
	}

	return intervals, nil
}
