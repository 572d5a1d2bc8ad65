// Package notify уведомляет учителей в Telegram о новых бронях
package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/formatting"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender часть API бота, которой пользуется уведомитель. *bot.Bot подходит.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
}

type Teachers interface {
	GetProfile(ctx context.Context, teacherID uuid.UUID) (*model.TeacherProfile, error)
	GetByTelegramChat(ctx context.Context, chatID int64) (*model.TeacherProfile, error)
}

type Bookings interface {
	GetBookingSummary(ctx context.Context, studentID uuid.UUID, ids []int64) (*service.BookingSummary, error)
}

type WeekImages interface {
	WeekImage(ctx context.Context, teacherID uuid.UUID, date time.Time) ([]byte, error)
}

type Notifier struct {
	sender   Sender
	teachers Teachers
	bookings Bookings
	images   WeekImages
	currency string
	location *time.Location
	logger   *zap.Logger
}

func NewNotifier(
	sender Sender,
	teachers Teachers,
	bookings Bookings,
	images WeekImages,
	currency string,
	location *time.Location,
	logger *zap.Logger,
) *Notifier {
	if location == nil {
		location = time.UTC
	}
	return &Notifier{
		sender:   sender,
		teachers: teachers,
		bookings: bookings,
		images:   images,
		currency: currency,
		location: location,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует команды бота
func (n *Notifier) RegisterHandlers(ctx context.Context, b *bot.Bot) error {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, n.handleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/week", bot.MatchTypeExact, n.handleWeek)

	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Show the chat id to link notifications"},
		{Command: "week", Description: "🗓 This week's schedule"},
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands}); err != nil {
		n.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	n.logger.Info("✅ Bot commands menu set")
	return nil
}

func (n *Notifier) handleStart(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	n.ReplyStart(ctx, update.Message.Chat.ID)
}

func (n *Notifier) handleWeek(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	n.ReplyWeek(ctx, update.Message.Chat.ID)
}

// ReplyStart сообщает id чата, который учитель указывает в настройках
func (n *Notifier) ReplyStart(ctx context.Context, chatID int64) {
	text := fmt.Sprintf(
		"👋 Hi! This bot sends you new lesson bookings.\n\n"+
			"Your chat id: <code>%d</code>\n\n"+
			"Add it in your teacher settings to receive notifications.",
		chatID,
	)

	if profile, err := n.teachers.GetByTelegramChat(ctx, chatID); err == nil && profile != nil {
		rate := "not set"
		if profile.HourlyRate != nil {
			rate = formatting.FormatPriceShort(*profile.HourlyRate) + "/h"
		}
		text = fmt.Sprintf("✅ Notifications are linked to %s.\nHourly rate: %s\n\nUse /week to see this week's schedule.", profile.FullName, rate)
	}

	n.sendMessage(ctx, chatID, text)
}

// ReplyWeek отправляет картинку текущей недели учителя, привязанного к чату
func (n *Notifier) ReplyWeek(ctx context.Context, chatID int64) {
	profile, err := n.teachers.GetByTelegramChat(ctx, chatID)
	if err != nil {
		n.logger.Error("Failed to get teacher by chat", zap.Int64("chat_id", chatID), zap.Error(err))
		n.sendMessage(ctx, chatID, "❌ Something went wrong. Please try again later.")
		return
	}
	if profile == nil {
		n.sendMessage(ctx, chatID, "ℹ️ This chat is not linked to a teacher yet. Send /start to get the chat id.")
		return
	}

	now := time.Now().In(n.location)
	n.sendWeek(ctx, chatID, profile.UserID, now)
}

// HandleEvent подписчик шины: на bookings.created пишет учителю
func (n *Notifier) HandleEvent(ctx context.Context, ev events.Event) {
	if ev.Type != events.BookingsCreated {
		return
	}

	if err := n.NotifyBookings(ctx, ev); err != nil {
		n.logger.Error("Failed to notify teacher",
			zap.String("teacher_id", ev.TeacherID.String()),
			zap.String("reservation_id", ev.ReservationID.String()),
			zap.Error(err))
	}
}

// NotifyBookings отправляет учителю список забронированных занятий,
// итог и картинку недели первого занятия
func (n *Notifier) NotifyBookings(ctx context.Context, ev events.Event) error {
	profile, err := n.teachers.GetProfile(ctx, ev.TeacherID)
	if err != nil {
		return fmt.Errorf("get teacher profile: %w", err)
	}
	if profile.TelegramChatID == nil {
		n.logger.Debug("Teacher has no linked chat, skipping notification",
			zap.String("teacher_id", ev.TeacherID.String()))
		return nil
	}
	chatID := *profile.TelegramChatID

	summary, err := n.bookings.GetBookingSummary(ctx, ev.StudentID, ev.BookingIDs)
	if err != nil {
		return fmt.Errorf("get booking summary: %w", err)
	}

	if _, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      FormatBookingMessage(summary, n.currency),
		ParseMode: models.ParseModeHTML,
	}); err != nil {
		return fmt.Errorf("send booking message: %w", err)
	}

	if len(summary.Bookings) > 0 {
		n.sendWeek(ctx, chatID, ev.TeacherID, summary.Bookings[0].SlotDate)
	}

	n.logger.Info("Teacher notified about bookings",
		zap.String("teacher_id", ev.TeacherID.String()),
		zap.Int64("chat_id", chatID),
		zap.Int("bookings", len(summary.Bookings)))

	return nil
}

// FormatBookingMessage текст уведомления о новых бронях
func FormatBookingMessage(summary *service.BookingSummary, currency string) string {
	var sb strings.Builder

	count := len(summary.Bookings)
	sb.WriteString(fmt.Sprintf("📚 <b>New booking: %d %s</b>\n\n", count, formatting.Pluralize(count, "lesson", "lessons")))

	for _, d := range summary.Bookings {
		sb.WriteString(fmt.Sprintf("• %s (%s) %s\n",
			formatting.FormatDate(d.SlotDate),
			formatting.WeekdayShortJa(int(d.SlotDate.Weekday())),
			formatting.FormatTimeRange(d.StartTime, d.EndTime)))
	}

	sb.WriteString(fmt.Sprintf("\n⏱ Duration: %s\n", formatting.FormatDuration(count*model.SlotDuration)))
	sb.WriteString(fmt.Sprintf("💰 Total: %s\n", formatting.FormatPrice(summary.Total, currency)))
	sb.WriteString(fmt.Sprintf("🧾 Reference: %s\n", summary.Reference))
	sb.WriteString("⏳ Awaiting payment")

	return sb.String()
}

func (n *Notifier) sendWeek(ctx context.Context, chatID int64, teacherID uuid.UUID, date time.Time) {
	imageData, err := n.images.WeekImage(ctx, teacherID, date)
	if err != nil {
		n.logger.Error("Failed to render week image",
			zap.String("teacher_id", teacherID.String()),
			zap.Error(err))
		return
	}

	if _, err := n.sender.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(imageData)},
		Caption: "🗓 Week of " + formatting.FormatDateLong(formatting.WeekStart(date)),
	}); err != nil {
		n.logger.Error("Failed to send week image", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (n *Notifier) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}); err != nil {
		n.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
