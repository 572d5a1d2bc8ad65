package service

import (
	"errors"
	"fmt"
)

// Виды ошибок, на которые опирается транспортный слой (errors.Is)
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
)

// ValidationError некорректный или отсутствующий ввод
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError выбранные слоты больше недоступны: их забронировали,
// удалили или они принадлежат другому учителю
type ConflictError struct {
	SlotIDs []int64
	Reason  string
}

func (e *ConflictError) Error() string {
	if len(e.SlotIDs) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.SlotIDs)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// InvalidStateError операция над объектом в неподходящем состоянии
type InvalidStateError struct {
	Entity string
	ID     string
	State  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s is %s", e.Entity, e.ID, e.State)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NotFoundError указанный объект не существует
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func notFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: fmt.Sprint(id)}
}
