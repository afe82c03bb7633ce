package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/service"
)

type createPaymentReq struct {
	ReservationID string  `json:"reservation_id" validate:"required"`
	Amount        float64 `json:"amount"`
	PaymentType   string  `json:"payment_type"`
	CardNumber    string  `json:"card_number"`
}

// CreatePayment handles POST /v1/payments.  The stored status is partial
// or completed depending on what has been paid so far.  The response
// shows the masked card number only.
func (h *Handler) CreatePayment(c echo.Context) error {
	var req createPaymentReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	p, err := h.svc.ProcessPayment(c.Request().Context(), service.PaymentInput{
		ReservationID: req.ReservationID,
		Amount:        req.Amount,
		Type:          req.PaymentType,
		CardNumber:    req.CardNumber,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// ListPayments handles GET /v1/payments.
func (h *Handler) ListPayments(c echo.Context) error {
	list, err := h.svc.ListPayments(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

// GetPayment handles GET /v1/payments/:id.
func (h *Handler) GetPayment(c echo.Context) error {
	p, err := h.svc.GetPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePayment handles DELETE /v1/payments/:id.
func (h *Handler) DeletePayment(c echo.Context) error {
	if err := h.svc.DeletePayment(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
