package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/api/middleware"
	"github.com/Freeeeeet/lesson_booking/internal/model"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type handlers struct {
	svc        Services
	weeksAhead int
	logger     *zap.Logger
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// bind разбирает тело и проверяет теги validate
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest("invalid request body")
	}
	return c.Validate(req)
}

// currentUser id из токена. Identity стоит на всей группе /v1, так что
// отсутствие id означает ошибку маршрутизации.
func currentUser(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func paramInt64(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid " + name)
	}
	return id, nil
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, badRequest("invalid " + name)
	}
	return id, nil
}

func parseClock(field, value string) (model.Clock, error) {
	clock, err := model.ParseClock(value)
	if err != nil {
		return 0, badRequest(field + ": " + err.Error())
	}
	return clock, nil
}

// queryDate дата из query или def, если параметр не задан
func queryDate(c echo.Context, name string, def time.Time) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return parseDate(name, raw)
}

func parseDate(field, value string) (time.Time, error) {
	date, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, badRequest(field + ": " + err.Error())
	}
	return date, nil
}
