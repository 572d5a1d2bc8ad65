package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// gateStatus GET /v1/gate
func (h *handlers) gateStatus(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	status, err := h.svc.Gate.Status(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}

type passphraseRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

// gateVerify POST /v1/gate/verify
func (h *handlers) gateVerify(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req passphraseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	status, err := h.svc.Gate.Verify(c.Request().Context(), userID, req.Passphrase)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, status)
}

// rotatePassphrase POST /v1/admin/passphrase
func (h *handlers) rotatePassphrase(c echo.Context) error {
	var req passphraseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	settings, err := h.svc.Gate.Rotate(c.Request().Context(), req.Passphrase)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, settings)
}
