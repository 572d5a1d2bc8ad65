package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// errorResponse тело ответа с ошибкой
type errorResponse struct {
	Error   string  `json:"error"`
	SlotIDs []int64 `json:"slot_ids,omitempty"`
}

// statusFor сопоставляет вид ошибки сервиса со статусом HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// httpErrorHandler единый формат ошибок для всех ответов echo
func httpErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusFor(err)
		body := errorResponse{Error: err.Error()}

		var he *echo.HTTPError
		var conflict *service.ConflictError
		switch {
		case errors.As(err, &he):
			status = he.Code
			body.Error = fmt.Sprint(he.Message)
		case errors.As(err, &conflict):
			body.Error = conflict.Reason
			body.SlotIDs = conflict.SlotIDs
		case status == http.StatusInternalServerError:
			logger.Error("Unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err))
			body.Error = "internal error"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		if err := c.JSON(status, body); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
