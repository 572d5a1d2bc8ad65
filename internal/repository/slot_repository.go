package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, teacher_id, slot_date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), status, created_at`

type SlotRepository struct {
	db base.DB
}

func NewSlotRepository(db base.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// CreateSlots создаёт все слоты или ни одного.
// Если хотя бы один пересекается с существующим, возвращает ErrSlotOverlap.
func (r *SlotRepository) CreateSlots(ctx context.Context, slots []*model.AvailabilitySlot) error {
	if len(slots) == 0 {
		return nil
	}

	return base.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockTeacherSlots(ctx, tx, slots[0].TeacherID); err != nil {
			return err
		}

		for _, slot := range slots {
			overlaps, err := slotOverlaps(ctx, tx, slot)
			if err != nil {
				return err
			}
			if overlaps {
				return fmt.Errorf("%w: %s %s", ErrSlotOverlap, model.FormatDate(slot.SlotDate), slot.StartTime)
			}

			if err := insertSlot(ctx, tx, slot); err != nil {
				return err
			}
		}

		return nil
	})
}

// CreateSlotsIfFree создаёт только те слоты, которые не пересекаются с существующими
// и с часами, удалёнными учителем. Возвращает созданные слоты.
func (r *SlotRepository) CreateSlotsIfFree(ctx context.Context, slots []*model.AvailabilitySlot) ([]*model.AvailabilitySlot, error) {
	if len(slots) == 0 {
		return nil, nil
	}

	var created []*model.AvailabilitySlot
	err := base.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := lockTeacherSlots(ctx, tx, slots[0].TeacherID); err != nil {
			return err
		}

		for _, slot := range slots {
			excluded, err := slotExcluded(ctx, tx, slot)
			if err != nil {
				return err
			}
			if excluded {
				continue
			}

			overlaps, err := slotOverlaps(ctx, tx, slot)
			if err != nil {
				return err
			}
			if overlaps {
				continue
			}

			if err := insertSlot(ctx, tx, slot); err != nil {
				return err
			}
			created = append(created, slot)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// lockTeacherSlots сериализует создание слотов одного учителя до конца транзакции
func lockTeacherSlots(ctx context.Context, tx pgx.Tx, teacherID uuid.UUID) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, teacherID.String())
	if err != nil {
		return fmt.Errorf("lock teacher slots: %w", err)
	}
	return nil
}

func slotOverlaps(ctx context.Context, tx pgx.Tx, slot *model.AvailabilitySlot) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM availability_slots
			WHERE teacher_id = $1 AND slot_date = $2
			  AND start_time < $4::time AND end_time > $3::time
		)
	`

	var exists bool
	err := tx.QueryRow(ctx, query,
		slot.TeacherID,
		slot.SlotDate,
		slot.StartTime.String(),
		slot.EndTime.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot overlap: %w", err)
	}

	return exists, nil
}

// slotExcluded проверяет, удалял ли учитель час, пересекающийся со слотом
func slotExcluded(ctx context.Context, tx pgx.Tx, slot *model.AvailabilitySlot) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM recurring_exceptions
			WHERE teacher_id = $1 AND slot_date = $2
			  AND start_time < $4::time AND end_time > $3::time
		)
	`

	var exists bool
	err := tx.QueryRow(ctx, query,
		slot.TeacherID,
		slot.SlotDate,
		slot.StartTime.String(),
		slot.EndTime.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot exception: %w", err)
	}

	return exists, nil
}

func insertSlot(ctx context.Context, tx pgx.Tx, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (teacher_id, slot_date, start_time, end_time, status)
		VALUES ($1, $2, $3::time, $4::time, $5)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		slot.TeacherID,
		slot.SlotDate,
		slot.StartTime.String(),
		slot.EndTime.String(),
		string(slot.Status),
	).Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s %s", ErrSlotOverlap, model.FormatDate(slot.SlotDate), slot.StartTime)
		}
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`

	slot, err := scanSlot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// List получает слоты учителя по фильтру, упорядоченные по (slot_date, start_time)
func (r *SlotRepository) List(ctx context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error) {
	conditions := []string{"teacher_id = $1"}
	args := []any{q.TeacherID}

	if q.Status != nil {
		args = append(args, string(*q.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.FromDate != nil {
		args = append(args, *q.FromDate)
		conditions = append(conditions, fmt.Sprintf("slot_date >= $%d", len(args)))
	}
	if q.ToDate != nil {
		args = append(args, *q.ToDate)
		conditions = append(conditions, fmt.Sprintf("slot_date <= $%d", len(args)))
	}

	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE ` +
		strings.Join(conditions, " AND ") +
		` ORDER BY slot_date, start_time, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// DeleteAvailable удаляет слот, только если он свободен и принадлежит учителю.
// Удалённый час запоминается в recurring_exceptions, чтобы нарезка по шаблонам
// не вернула его. false означает, что подходящей строки не нашлось.
func (r *SlotRepository) DeleteAvailable(ctx context.Context, teacherID uuid.UUID, slotID int64) (bool, error) {
	// Повторное удаление того же часа обновляет исключение, поэтому строка
	// засчитывается и при конфликте
	query := `
		WITH deleted AS (
			DELETE FROM availability_slots
			WHERE id = $1 AND teacher_id = $2 AND status = 'available'
			RETURNING teacher_id, slot_date, start_time, end_time
		)
		INSERT INTO recurring_exceptions (teacher_id, slot_date, start_time, end_time)
		SELECT teacher_id, slot_date, start_time, end_time FROM deleted
		ON CONFLICT (teacher_id, slot_date, start_time)
		DO UPDATE SET end_time = EXCLUDED.end_time, created_at = now()
	`

	result, err := r.db.Exec(ctx, query, slotID, teacherID)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanSlot(row pgx.Row) (*model.AvailabilitySlot, error) {
	var (
		slot       model.AvailabilitySlot
		start, end string
		status     string
	)

	err := row.Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.SlotDate,
		&start,
		&end,
		&status,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if slot.StartTime, err = model.ParseClock(start); err != nil {
		return nil, err
	}
	if slot.EndTime, err = model.ParseClock(end); err != nil {
		return nil, err
	}
	slot.Status = model.SlotStatus(status)
	slot.SlotDate = model.DateOf(slot.SlotDate)

	return &slot, nil
}
