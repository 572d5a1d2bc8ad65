package memory

import (
	"context"
	"sort"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/google/uuid"
)

type RecurringStore struct {
	s *Store
}

func (r *RecurringStore) Create(_ context.Context, rec *model.RecurringAvailability) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.profiles[rec.TeacherID]; !ok {
		return repository.ErrProfileNotFound
	}

	r.s.nextRecurringID++
	rec.ID = r.s.nextRecurringID
	rec.CreatedAt = r.s.now()

	stored := *rec
	r.s.recurring[rec.ID] = &stored
	return nil
}

func (r *RecurringStore) GetByTeacherID(_ context.Context, teacherID uuid.UUID) ([]*model.RecurringAvailability, error) {
	return r.filter(func(rec *model.RecurringAvailability) bool { return rec.TeacherID == teacherID }), nil
}

func (r *RecurringStore) GetAllActive(_ context.Context) ([]*model.RecurringAvailability, error) {
	return r.filter(func(rec *model.RecurringAvailability) bool { return rec.IsActive }), nil
}

func (r *RecurringStore) Delete(_ context.Context, teacherID uuid.UUID, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.recurring[id]
	if !ok || rec.TeacherID != teacherID {
		return false, nil
	}
	delete(r.s.recurring, id)
	return true, nil
}

func (r *RecurringStore) filter(keep func(*model.RecurringAvailability) bool) []*model.RecurringAvailability {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*model.RecurringAvailability
	for _, rec := range r.s.recurring {
		if keep(rec) {
			c := *rec
			result = append(result, &c)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Weekday != b.Weekday {
			return a.Weekday < b.Weekday
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return result
}
