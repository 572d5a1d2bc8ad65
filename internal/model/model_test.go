package model

import (
	"encoding/json"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Clock
		wantErr bool
	}{
		{"morning", "09:00", NewClock(9, 0), false},
		{"with seconds", "09:30:00", NewClock(9, 30), false},
		{"midnight", "00:00", 0, false},
		{"end of day", "24:00", MinutesPerDay, false},
		{"spaces", " 18:15 ", NewClock(18, 15), false},
		{"past end of day", "24:30", 0, true},
		{"bad hour", "25:00", 0, true},
		{"bad minute", "10:60", 0, true},
		{"no minutes", "10", 0, true},
		{"letters", "ab:cd", 0, true},
		{"bad seconds", "10:00:xx", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_StringAndJSON(t *testing.T) {
	c := NewClock(7, 5)
	assert.Equal(t, "07:05", c.String())
	assert.Equal(t, 7, c.Hour())
	assert.Equal(t, 5, c.Minute())
	assert.True(t, c.Valid())
	assert.True(t, Clock(MinutesPerDay).Valid())
	assert.False(t, Clock(MinutesPerDay+1).Valid())
	assert.False(t, Clock(-1).Valid())

	var body struct {
		Start Clock `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"13:45"}`), &body))
	assert.Equal(t, NewClock(13, 45), body.Start)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"13:45"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"start":"noon"}`), &body))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2030-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2030-03-04", FormatDate(d))

	_, err = ParseDate("04.03.2030")
	assert.Error(t, err)
	_, err = ParseDate("2030-02-30")
	assert.Error(t, err)
}

func TestDateOf(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	// поздний вечер в Торонто остаётся той же календарной датой
	evening := time.Date(2030, 3, 4, 23, 30, 0, 0, toronto)
	assert.Equal(t, time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), DateOf(evening))
}

func TestAvailabilitySlot_Overlaps(t *testing.T) {
	teacher := uuid.New()
	day := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	slot := func(start, end int) *AvailabilitySlot {
		return &AvailabilitySlot{TeacherID: teacher, SlotDate: day, StartTime: NewClock(start, 0), EndTime: NewClock(end, 0)}
	}

	assert.True(t, slot(9, 10).Overlaps(slot(9, 10)))
	assert.True(t, slot(9, 11).Overlaps(slot(10, 12)))
	assert.False(t, slot(9, 10).Overlaps(slot(10, 11)), "adjacent slots do not overlap")

	otherDay := slot(9, 10)
	otherDay.SlotDate = day.AddDate(0, 0, 1)
	assert.False(t, slot(9, 10).Overlaps(otherDay))

	otherTeacher := slot(9, 10)
	otherTeacher.TeacherID = uuid.New()
	assert.False(t, slot(9, 10).Overlaps(otherTeacher))
}

func TestAvailabilitySlot_Before(t *testing.T) {
	day := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

	a := &AvailabilitySlot{ID: 5, SlotDate: day, StartTime: NewClock(9, 0)}
	b := &AvailabilitySlot{ID: 2, SlotDate: day, StartTime: NewClock(10, 0)}
	c := &AvailabilitySlot{ID: 1, SlotDate: day.AddDate(0, 0, 1), StartTime: NewClock(8, 0)}
	d := &AvailabilitySlot{ID: 6, SlotDate: day, StartTime: NewClock(9, 0)}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, c.Before(a))
	assert.True(t, a.Before(d), "same start ordered by id")
}

func TestAvailabilitySlot_StartsAt(t *testing.T) {
	toronto, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	s := &AvailabilitySlot{SlotDate: time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), StartTime: NewClock(14, 0)}
	assert.Equal(t, time.Date(2030, 3, 4, 14, 0, 0, 0, toronto), s.StartsAt(toronto))
}
