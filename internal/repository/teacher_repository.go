package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository/base"
	"github.com/google/uuid"
)

type TeacherRepository struct {
	db base.DB
}

func NewTeacherRepository(db base.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// GetRate получает текущую ставку учителя. nil, если ставка не задана.
func (r *TeacherRepository) GetRate(ctx context.Context, teacherID uuid.UUID) (*model.TeacherRate, error) {
	query := `
		SELECT user_id, hourly_rate, updated_at
		FROM teacher_profiles
		WHERE user_id = $1 AND hourly_rate IS NOT NULL
	`

	var rate model.TeacherRate
	err := r.db.QueryRow(ctx, query, teacherID).Scan(
		&rate.TeacherID,
		&rate.HourlyRate,
		&rate.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher rate: %w", err)
	}

	return &rate, nil
}

// SetRate сохраняет ставку учителя (upsert)
func (r *TeacherRepository) SetRate(ctx context.Context, rate *model.TeacherRate) error {
	query := `
		INSERT INTO teacher_profiles (user_id, hourly_rate, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET hourly_rate = EXCLUDED.hourly_rate, updated_at = now()
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, rate.TeacherID, rate.HourlyRate).Scan(&rate.UpdatedAt)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("set teacher rate: %w", err)
	}

	return nil
}

// GetProfile получает профиль учителя вместе с именем
func (r *TeacherRepository) GetProfile(ctx context.Context, teacherID uuid.UUID) (*model.TeacherProfile, error) {
	query := `
		SELECT p.id, COALESCE(p.full_name, ''), tp.hourly_rate, tp.telegram_chat_id, COALESCE(tp.updated_at, p.updated_at)
		FROM profiles p
		LEFT JOIN teacher_profiles tp ON tp.user_id = p.id
		WHERE p.id = $1 AND p.role = 'teacher'
	`

	var profile model.TeacherProfile
	err := r.db.QueryRow(ctx, query, teacherID).Scan(
		&profile.UserID,
		&profile.FullName,
		&profile.HourlyRate,
		&profile.TelegramChatID,
		&profile.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher profile: %w", err)
	}

	return &profile, nil
}

// SetTelegramChatID привязывает чат Telegram для уведомлений учителя
func (r *TeacherRepository) SetTelegramChatID(ctx context.Context, teacherID uuid.UUID, chatID int64) error {
	query := `
		INSERT INTO teacher_profiles (user_id, telegram_chat_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET telegram_chat_id = EXCLUDED.telegram_chat_id, updated_at = now()
	`

	_, err := r.db.Exec(ctx, query, teacherID, chatID)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("set telegram chat id: %w", err)
	}

	return nil
}

// GetByTelegramChatID находит учителя по привязанному чату
func (r *TeacherRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*model.TeacherProfile, error) {
	query := `
		SELECT p.id, COALESCE(p.full_name, ''), tp.hourly_rate, tp.telegram_chat_id, tp.updated_at
		FROM teacher_profiles tp
		JOIN profiles p ON p.id = tp.user_id
		WHERE tp.telegram_chat_id = $1
		LIMIT 1
	`

	var profile model.TeacherProfile
	err := r.db.QueryRow(ctx, query, chatID).Scan(
		&profile.UserID,
		&profile.FullName,
		&profile.HourlyRate,
		&profile.TelegramChatID,
		&profile.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher by telegram chat: %w", err)
	}

	return &profile, nil
}
