package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const recurringColumns = `id, teacher_id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_active, created_at`

// RecurringRepository управляет еженедельными шаблонами доступности
type RecurringRepository struct {
	db     base.DB
	logger *zap.Logger
}

// NewRecurringRepository создаёт новый репозиторий
func NewRecurringRepository(db base.DB, logger *zap.Logger) *RecurringRepository {
	return &RecurringRepository{
		db:     db,
		logger: logger,
	}
}

// Create создаёт новый шаблон
func (r *RecurringRepository) Create(ctx context.Context, rec *model.RecurringAvailability) error {
	query := `
		INSERT INTO recurring_availability (teacher_id, weekday, start_time, end_time, is_active)
		VALUES ($1, $2, $3::time, $4::time, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		rec.TeacherID,
		rec.Weekday,
		rec.StartTime.String(),
		rec.EndTime.String(),
		rec.IsActive,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if base.IsForeignKeyViolation(err) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("create recurring availability: %w", err)
	}

	return nil
}

// GetByTeacherID получает все шаблоны учителя
func (r *RecurringRepository) GetByTeacherID(ctx context.Context, teacherID uuid.UUID) ([]*model.RecurringAvailability, error) {
	query := `SELECT ` + recurringColumns + `
		FROM recurring_availability
		WHERE teacher_id = $1
		ORDER BY weekday, start_time, id
	`

	rows, err := r.db.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get recurring availability by teacher: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// GetAllActive получает активные шаблоны всех учителей (для планировщика)
func (r *RecurringRepository) GetAllActive(ctx context.Context) ([]*model.RecurringAvailability, error) {
	query := `SELECT ` + recurringColumns + `
		FROM recurring_availability
		WHERE is_active = true
		ORDER BY teacher_id, weekday, start_time
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active recurring availability: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Delete удаляет шаблон учителя. Уже созданные слоты не трогаются.
func (r *RecurringRepository) Delete(ctx context.Context, teacherID uuid.UUID, id int64) (bool, error) {
	query := `DELETE FROM recurring_availability WHERE id = $1 AND teacher_id = $2`

	result, err := r.db.Exec(ctx, query, id, teacherID)
	if err != nil {
		return false, fmt.Errorf("delete recurring availability: %w", err)
	}

	deleted := result.RowsAffected() > 0
	if deleted {
		r.logger.Info("Recurring availability deleted",
			zap.Int64("recurring_id", id),
			zap.String("teacher_id", teacherID.String()))
	}

	return deleted, nil
}

func (r *RecurringRepository) collect(rows pgx.Rows) ([]*model.RecurringAvailability, error) {
	var result []*model.RecurringAvailability
	for rows.Next() {
		var (
			rec        model.RecurringAvailability
			weekday    int16
			start, end string
		)
		err := rows.Scan(
			&rec.ID,
			&rec.TeacherID,
			&weekday,
			&start,
			&end,
			&rec.IsActive,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recurring availability: %w", err)
		}

		rec.Weekday = int(weekday)
		if rec.StartTime, err = model.ParseClock(start); err != nil {
			return nil, fmt.Errorf("scan recurring availability: %w", err)
		}
		if rec.EndTime, err = model.ParseClock(end); err != nil {
			return nil, fmt.Errorf("scan recurring availability: %w", err)
		}

		result = append(result, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring availability: %w", err)
	}

	return result, nil
}
