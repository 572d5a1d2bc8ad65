package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultQueue очередь запросов на оплату
const DefaultQueue = "payments.requested"

// AMQPHandoff публикует запросы на оплату в durable-очередь RabbitMQ
// persistent-сообщениями в формате JSON
type AMQPHandoff struct {
	conn     *amqp.Connection
	queue    string
	currency string
	logger   *zap.Logger

	mu sync.Mutex
	ch *amqp.Channel
}

// NewAMQPHandoff подключается к брокеру и объявляет очередь
func NewAMQPHandoff(url, queue, currency string, logger *zap.Logger) (*AMQPHandoff, error) {
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	h := &AMQPHandoff{
		conn:     conn,
		queue:    queue,
		currency: currency,
		logger:   logger,
	}

	if _, err := h.channel(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return h, nil
}

// channel возвращает открытый канал, переоткрывая его после ошибки брокера
func (h *AMQPHandoff) channel() (*amqp.Channel, error) {
	if h.ch != nil && !h.ch.IsClosed() {
		return h.ch, nil
	}

	ch, err := h.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		h.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", h.queue, err)
	}

	h.ch = ch
	return ch, nil
}

func (h *AMQPHandoff) RequestPayment(ctx context.Context, req Request) error {
	if req.Currency == "" {
		req.Currency = h.currency
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal payment request: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ch, err := h.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		h.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    req.ReservationID.String(),
			Timestamp:    req.RequestedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish payment request: %w", err)
	}

	h.logger.Info("Payment request published",
		zap.String("queue", h.queue),
		zap.String("reservation_id", req.ReservationID.String()),
		zap.Int64("total_cents", req.TotalCents))

	return nil
}

// Close закрывает канал и соединение с брокером
func (h *AMQPHandoff) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ch != nil {
		_ = h.ch.Close()
	}
	return h.conn.Close()
}
