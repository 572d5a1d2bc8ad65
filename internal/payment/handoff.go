// Package payment передаёт созданные брони на шаг оплаты.
// Сама оплата здесь не проводится.
package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request всё, что нужно шагу оплаты, чтобы найти брони и выставить счёт
type Request struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Reference     string    `json:"reference"` // id броней через запятую
	BookingIDs    []int64   `json:"booking_ids"`
	StudentID     uuid.UUID `json:"student_id"`
	TeacherID     uuid.UUID `json:"teacher_id"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	RequestedAt   time.Time `json:"requested_at"`
}

// Handoff получатель запросов на оплату
type Handoff interface {
	RequestPayment(ctx context.Context, req Request) error
}

// LogHandoff только пишет запрос в лог. Используется, когда брокер не настроен.
type LogHandoff struct {
	currency string
	logger   *zap.Logger
}

func NewLogHandoff(currency string, logger *zap.Logger) *LogHandoff {
	return &LogHandoff{currency: currency, logger: logger}
}

func (h *LogHandoff) RequestPayment(_ context.Context, req Request) error {
	if req.Currency == "" {
		req.Currency = h.currency
	}

	h.logger.Info("Payment requested",
		zap.String("reservation_id", req.ReservationID.String()),
		zap.String("reference", req.Reference),
		zap.Int64("total_cents", req.TotalCents),
		zap.String("currency", req.Currency))

	return nil
}
