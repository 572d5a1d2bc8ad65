package model

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusActive   MatchStatus = "active"
	MatchStatusArchived MatchStatus = "archived"
)

// Match accepted teacher-student pairing, gates messaging and booking
type Match struct {
	ID        uuid.UUID   `json:"id"`
	TeacherID uuid.UUID   `json:"teacher_id"`
	StudentID uuid.UUID   `json:"student_id"`
	Status    MatchStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// IsActive checks if booking is allowed for this match
func (m *Match) IsActive() bool {
	return m.Status == MatchStatusActive
}
