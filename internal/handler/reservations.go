package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type createReservationReq struct {
	GuestID      string `json:"guest_id" validate:"required"`
	RoomID       string `json:"room_id" validate:"required"`
	CheckInDate  string `json:"check_in_date" validate:"required"`
	CheckOutDate string `json:"check_out_date" validate:"required"`
}

type updateReservationReq struct {
	CheckInDate  *string `json:"check_in_date"`
	CheckOutDate *string `json:"check_out_date"`
}

// CreateReservation handles POST /v1/reservations.  The room is marked
// unavailable in the same transaction; a room taken meanwhile is a 409.
func (h *Handler) CreateReservation(c echo.Context) error {
	var req createReservationReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	res, err := h.svc.CreateReservation(c.Request().Context(), req.GuestID, req.RoomID, req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ListReservations handles GET /v1/reservations.  Each entry carries the
// guest name and room number, or "Unknown" when either was removed.
func (h *Handler) ListReservations(c echo.Context) error {
	list, err := h.svc.ListReservations(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

// GetReservation handles GET /v1/reservations/:id.
func (h *Handler) GetReservation(c echo.Context) error {
	res, err := h.svc.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// UpdateReservation handles PATCH /v1/reservations/:id (dates only).
func (h *Handler) UpdateReservation(c echo.Context) error {
	var req updateReservationReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	res, err := h.svc.UpdateReservation(c.Request().Context(), c.Param("id"), req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ConfirmReservation handles POST /v1/reservations/:id/confirm.
func (h *Handler) ConfirmReservation(c echo.Context) error {
	res, err := h.svc.ConfirmReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// CancelReservation handles POST /v1/reservations/:id/cancel and frees the room.
func (h *Handler) CancelReservation(c echo.Context) error {
	res, err := h.svc.CancelReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// DeleteReservation handles DELETE /v1/reservations/:id.  Its payments go
// with it.
func (h *Handler) DeleteReservation(c echo.Context) error {
	if err := h.svc.DeleteReservation(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReservationPayments handles GET /v1/reservations/:id/payments.
func (h *Handler) ReservationPayments(c echo.Context) error {
	list, err := h.svc.ListReservationPayments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

// ReservationBalance handles GET /v1/reservations/:id/balance.
func (h *Handler) ReservationBalance(c echo.Context) error {
	b, err := h.svc.Balance(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
