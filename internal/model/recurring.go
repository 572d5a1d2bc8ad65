package model

import (
	"time"

	"github.com/google/uuid"
)

// RecurringAvailability еженедельный шаблон доступности учителя.
// Планировщик нарезает его на часовые слоты на несколько недель вперёд.
type RecurringAvailability struct {
	ID        int64     `json:"id"`
	TeacherID uuid.UUID `json:"teacher_id"`
	Weekday   int       `json:"weekday"` // 0 = Sunday, 6 = Saturday
	StartTime Clock     `json:"start_time"`
	EndTime   Clock     `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
