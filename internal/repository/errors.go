package repository

import (
	"errors"
	"fmt"
)

// ErrSlotOverlap возвращается, когда новый слот пересекается с уже существующим
var ErrSlotOverlap = errors.New("slot overlaps existing slot")

// ErrSlotNotAvailable базовая ошибка для UnavailableError
var ErrSlotNotAvailable = errors.New("slot not available")

// UnavailableError перечисляет слоты, которые не удалось зарезервировать:
// не найдены, принадлежат другому учителю или уже забронированы
type UnavailableError struct {
	SlotIDs []int64
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("slots not available: %v", e.SlotIDs)
}

func (e *UnavailableError) Unwrap() error {
	return ErrSlotNotAvailable
}

// ErrProfileNotFound возвращается, когда запись ссылается на отсутствующий профиль
var ErrProfileNotFound = errors.New("profile not found")
