package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository/base"
	"github.com/google/uuid"
)

// MatchRepository читает реестр матчей. Матчи создаёт другая подсистема,
// здесь они нужны только для проверки права на бронирование.
type MatchRepository struct {
	db base.DB
}

func NewMatchRepository(db base.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// GetByID получает матч по ID
func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	query := `
		SELECT id, teacher_id, student_id, status, created_at, updated_at
		FROM matches
		WHERE id = $1
	`

	var (
		match  model.Match
		status string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&match.ID,
		&match.TeacherID,
		&match.StudentID,
		&status,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get match by id: %w", err)
	}
	match.Status = model.MatchStatus(status)

	return &match, nil
}
