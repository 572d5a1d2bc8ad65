// Package api HTTP-интерфейс бронирования уроков на echo
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/lesson_booking/internal/api/middleware"
	"github.com/Freeeeeet/lesson_booking/internal/render"
	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Services сервисы, которые обслуживает HTTP-слой
type Services struct {
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Teachers     *service.TeacherService
	Gate         *service.GateService
	Weeks        *render.Service
}

type Options struct {
	Addr           string
	IdentitySecret string
	WeeksAhead     int
}

type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

func NewServer(opts Options, svc Services, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = httpErrorHandler(logger)

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	h := &handlers{
		svc:        svc,
		weeksAhead: opts.WeeksAhead,
		logger:     logger,
	}
	registerRoutes(e, h, opts.IdentitySecret)

	return &Server{
		echo:   e,
		addr:   opts.Addr,
		logger: logger,
	}
}

// Handler для тестов и встраивания
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run слушает addr до отмены ctx, затем корректно останавливает сервер
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	return s.echo.Shutdown(shutdownCtx)
}

func registerRoutes(e *echo.Echo, h *handlers, secret string) {
	e.GET("/healthz", h.health)

	v1 := e.Group("/v1", middleware.Identity(secret))

	teacher := v1.Group("/teacher", middleware.RequireRole(middleware.RoleTeacher))
	teacher.POST("/slots", h.generateSlots)
	teacher.GET("/slots", h.listTeacherSlots)
	teacher.DELETE("/slots/:id", h.deleteSlot)
	teacher.PUT("/rate", h.setRate)
	teacher.PUT("/telegram", h.setTelegram)
	teacher.POST("/recurring", h.createRecurring)
	teacher.GET("/recurring", h.listRecurring)
	teacher.DELETE("/recurring/:id", h.deleteRecurring)

	browse := middleware.RequireRole(middleware.RoleStudent, middleware.RoleTeacher)
	v1.GET("/teachers/:id/slots", h.listAvailableSlots, browse)
	v1.GET("/teachers/:id/week.png", h.weekImage, browse)

	student := middleware.RequireRole(middleware.RoleStudent)
	v1.POST("/matches/:id/bookings", h.createBookings, student)
	v1.GET("/bookings", h.bookingSummary, student)

	v1.GET("/gate", h.gateStatus)
	v1.POST("/gate/verify", h.gateVerify)
	v1.POST("/admin/passphrase", h.rotatePassphrase, middleware.RequireRole(middleware.RoleAdmin))
}
