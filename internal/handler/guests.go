package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

type createGuestReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone"`
}

type updateGuestReq struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// CreateGuest handles POST /v1/guests.
func (h *Handler) CreateGuest(c echo.Context) error {
	var req createGuestReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	g, err := h.svc.AddGuest(c.Request().Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, g)
}

// ListGuests handles GET /v1/guests.
func (h *Handler) ListGuests(c echo.Context) error {
	guests, err := h.svc.ListGuests(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(guests))
}

// GetGuest handles GET /v1/guests/:id.
func (h *Handler) GetGuest(c echo.Context) error {
	g, err := h.svc.GetGuest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// UpdateGuest handles PATCH /v1/guests/:id.
func (h *Handler) UpdateGuest(c echo.Context) error {
	var req updateGuestReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	g, err := h.svc.UpdateGuest(c.Request().Context(), c.Param("id"), model.GuestPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// DeleteGuest handles DELETE /v1/guests/:id.
func (h *Handler) DeleteGuest(c echo.Context) error {
	if err := h.svc.DeleteGuest(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
