package model

import (
	"time"

	"github.com/google/uuid"
)

// TeacherRate текущая почасовая ставка учителя в центах
type TeacherRate struct {
	TeacherID  uuid.UUID `json:"teacher_id"`
	HourlyRate int64     `json:"hourly_rate"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TeacherProfile данные учителя, нужные для уведомлений и отображения
type TeacherProfile struct {
	UserID         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name"`
	HourlyRate     *int64    `json:"hourly_rate"`      // nil = ставка не задана
	TelegramChatID *int64    `json:"telegram_chat_id"` // nil = уведомления не подключены
	UpdatedAt      time.Time `json:"updated_at"`
}
