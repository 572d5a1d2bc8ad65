package model

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay количество минут в сутках
const MinutesPerDay = 24 * 60

// Clock время суток в минутах от полуночи.
// Вся арифметика по слотам ведётся в минутах, в строку HH:MM
// время переводится только при записи в БД и при отдаче клиенту.
type Clock int

// NewClock создаёт Clock из часов и минут
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock разбирает строку вида "09:00" или "09:00:00"
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	// 24:00 допустимо только как конец дня
	if hour == 24 && minute != 0 {
		return 0, fmt.Errorf("invalid time %q: past end of day", s)
	}

	// Секунды (формат Postgres TIME) допускаем, но отбрасываем
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}

	return NewClock(hour, minute), nil
}

// Hour возвращает час
func (c Clock) Hour() int {
	return int(c) / 60
}

// Minute возвращает минуту часа
func (c Clock) Minute() int {
	return int(c) % 60
}

// Valid проверяет что время лежит внутри суток. 24:00 допустимо как конец диапазона.
func (c Clock) Valid() bool {
	return c >= 0 && c <= MinutesPerDay
}

// String форматирует время как HH:MM с ведущими нулями
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText реализует encoding.TextMarshaler
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
