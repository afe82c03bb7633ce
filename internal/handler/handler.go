package handler // package handler contains the HTTP handlers of the hotel API

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

// Handler exposes the booking service over HTTP.  Each method binds and
// validates its request, calls one service operation and renders the
// result as JSON.
type Handler struct {
	svc *service.Service
	log logrus.FieldLogger
}

// NewHandler constructs a Handler and panics if the service is nil.
func NewHandler(svc *service.Service, log logrus.FieldLogger) *Handler {
	if svc == nil {
		panic("nil service passed to NewHandler")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{svc: svc, log: log}
}

// statusOf maps a domain error kind onto an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrDuplicateKey),
		errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrInvalidState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail renders err as {"error": msg}.  Unexpected errors are logged and
// reported without their details.
func (h *Handler) fail(c echo.Context, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Path()).Error("request failed")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// bind decodes the body into req and runs the struct validator.  Both
// failures are validation errors.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid request body", model.ErrValidation)
	}
	return c.Validate(req)
}
