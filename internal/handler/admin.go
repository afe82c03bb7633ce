package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Reconcile handles POST /v1/admin/reconcile and lists the rooms whose
// availability flag was corrected.
func (h *Handler) Reconcile(c echo.Context) error {
	fixed, err := h.svc.ReconcileAvailability(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"corrected": nonNil(fixed)})
}
