package api

import (
	"net/http"

	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// listAvailableSlots GET /v1/teachers/:id/slots?from=YYYY-MM-DD
func (h *handlers) listAvailableSlots(c echo.Context) error {
	teacherID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	from, err := queryDate(c, "from", h.svc.Availability.Today())
	if err != nil {
		return err
	}

	slots, err := h.svc.Availability.ListAvailableSlots(c.Request().Context(), teacherID, from)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"days": service.GroupByDate(slots)})
}

// weekImage GET /v1/teachers/:id/week.png?date=YYYY-MM-DD
func (h *handlers) weekImage(c echo.Context) error {
	teacherID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}
	date, err := queryDate(c, "date", h.svc.Availability.Today())
	if err != nil {
		return err
	}

	png, err := h.svc.Weeks.WeekImage(c.Request().Context(), teacherID, date)
	if err != nil {
		return err
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

type createBookingsRequest struct {
	TeacherID uuid.UUID `json:"teacher_id" validate:"required"`
	SlotIDs   []int64   `json:"slot_ids" validate:"required,min=1"`
}

// createBookings POST /v1/matches/:id/bookings
func (h *handlers) createBookings(c echo.Context) error {
	studentID, err := currentUser(c)
	if err != nil {
		return err
	}
	matchID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req createBookingsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	reservation, err := h.svc.Bookings.CreateBookings(c.Request().Context(), service.BookingRequest{
		MatchID:   matchID,
		TeacherID: req.TeacherID,
		StudentID: studentID,
		SlotIDs:   req.SlotIDs,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, reservation)
}

// bookingSummary GET /v1/bookings?ids=1,2,3
func (h *handlers) bookingSummary(c echo.Context) error {
	studentID, err := currentUser(c)
	if err != nil {
		return err
	}

	ids, err := service.ParseReference(c.QueryParam("ids"))
	if err != nil {
		return err
	}

	summary, err := h.svc.Bookings.GetBookingSummary(c.Request().Context(), studentID, ids)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}
