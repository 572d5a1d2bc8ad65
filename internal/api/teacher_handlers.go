package api

import (
	"net/http"

	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/labstack/echo/v4"
)

type generateSlotsRequest struct {
	SlotDate  string `json:"slot_date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// generateSlots POST /v1/teacher/slots
func (h *handlers) generateSlots(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req generateSlotsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	date, err := parseDate("slot_date", req.SlotDate)
	if err != nil {
		return err
	}
	start, err := parseClock("start_time", req.StartTime)
	if err != nil {
		return err
	}
	end, err := parseClock("end_time", req.EndTime)
	if err != nil {
		return err
	}

	slots, err := h.svc.Availability.GenerateSlots(c.Request().Context(), teacherID, date, start, end)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"slots": slots})
}

// listTeacherSlots GET /v1/teacher/slots
func (h *handlers) listTeacherSlots(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}

	slots, err := h.svc.Availability.ListTeacherSlots(c.Request().Context(), teacherID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"days": service.GroupByDate(slots)})
}

// deleteSlot DELETE /v1/teacher/slots/:id
func (h *handlers) deleteSlot(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}
	slotID, err := paramInt64(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Availability.DeleteSlot(c.Request().Context(), teacherID, slotID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

type setRateRequest struct {
	HourlyRate int64 `json:"hourly_rate" validate:"required,gt=0"`
}

// setRate PUT /v1/teacher/rate
func (h *handlers) setRate(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req setRateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rate, err := h.svc.Teachers.SetHourlyRate(c.Request().Context(), teacherID, req.HourlyRate)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rate)
}

type setTelegramRequest struct {
	ChatID int64 `json:"chat_id" validate:"required"`
}

// setTelegram PUT /v1/teacher/telegram
func (h *handlers) setTelegram(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req setTelegramRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.svc.Teachers.SetTelegramChat(c.Request().Context(), teacherID, req.ChatID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

type createRecurringRequest struct {
	Weekday   *int   `json:"weekday" validate:"required,gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// createRecurring POST /v1/teacher/recurring
func (h *handlers) createRecurring(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createRecurringRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	start, err := parseClock("start_time", req.StartTime)
	if err != nil {
		return err
	}
	end, err := parseClock("end_time", req.EndTime)
	if err != nil {
		return err
	}

	rec, created, err := h.svc.Availability.CreateRecurring(c.Request().Context(), teacherID, *req.Weekday, start, end, h.weeksAhead)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"recurring":     rec,
		"slots_created": created,
	})
}

// listRecurring GET /v1/teacher/recurring
func (h *handlers) listRecurring(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}

	recs, err := h.svc.Availability.ListRecurring(c.Request().Context(), teacherID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"recurring": recs})
}

// deleteRecurring DELETE /v1/teacher/recurring/:id
func (h *handlers) deleteRecurring(c echo.Context) error {
	teacherID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramInt64(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Availability.DeleteRecurring(c.Request().Context(), teacherID, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
