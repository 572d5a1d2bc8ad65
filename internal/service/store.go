package service

import (
	"context"

	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/google/uuid"
)

// Интерфейсы хранилищ, которые нужны сервисам.
// Реализации: internal/repository (Postgres) и internal/repository/memory.

type SlotStore interface {
	CreateSlots(ctx context.Context, slots []*model.AvailabilitySlot) error
	CreateSlotsIfFree(ctx context.Context, slots []*model.AvailabilitySlot) ([]*model.AvailabilitySlot, error)
	GetByID(ctx context.Context, id int64) (*model.AvailabilitySlot, error)
	List(ctx context.Context, q model.SlotQuery) ([]*model.AvailabilitySlot, error)
	DeleteAvailable(ctx context.Context, teacherID uuid.UUID, slotID int64) (bool, error)
}

type BookingStore interface {
	Reserve(ctx context.Context, res *model.Reservation) ([]*model.Booking, error)
	GetDetails(ctx context.Context, ids []int64) ([]*model.BookingDetail, error)
}

type TeacherStore interface {
	GetRate(ctx context.Context, teacherID uuid.UUID) (*model.TeacherRate, error)
	SetRate(ctx context.Context, rate *model.TeacherRate) error
	GetProfile(ctx context.Context, teacherID uuid.UUID) (*model.TeacherProfile, error)
	SetTelegramChatID(ctx context.Context, teacherID uuid.UUID, chatID int64) error
	GetByTelegramChatID(ctx context.Context, chatID int64) (*model.TeacherProfile, error)
}

type MatchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Match, error)
}

type RecurringStore interface {
	Create(ctx context.Context, rec *model.RecurringAvailability) error
	GetByTeacherID(ctx context.Context, teacherID uuid.UUID) ([]*model.RecurringAvailability, error)
	GetAllActive(ctx context.Context) ([]*model.RecurringAvailability, error)
	Delete(ctx context.Context, teacherID uuid.UUID, id int64) (bool, error)
}

type SettingsStore interface {
	GetAccessSettings(ctx context.Context) (*model.AccessSettings, error)
	RotatePassphrase(ctx context.Context, hash string) (*model.AccessSettings, error)
	GetUserAccess(ctx context.Context, userID uuid.UUID) (*model.UserAccess, error)
	SetUserPassphraseVersion(ctx context.Context, userID uuid.UUID, version int) error
}
