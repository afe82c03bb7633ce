package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

type createRoomReq struct {
	Number        string  `json:"number" validate:"required"`
	Type          string  `json:"room_type" validate:"required"`
	PricePerNight float64 `json:"price_per_night"`
	Capacity      int     `json:"capacity"`
}

type updateRoomReq struct {
	Number        *string  `json:"number"`
	Type          *string  `json:"room_type"`
	PricePerNight *float64 `json:"price_per_night"`
	Capacity      *int     `json:"capacity"`
}

// CreateRoom handles POST /v1/rooms.  A missing capacity defaults to two.
func (h *Handler) CreateRoom(c echo.Context) error {
	var req createRoomReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	room, err := h.svc.AddRoom(c.Request().Context(), service.RoomInput{
		Number:        req.Number,
		Type:          req.Type,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/rooms.  ?available=true narrows the list to
// rooms that can be booked.
func (h *Handler) ListRooms(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		rooms []*model.Room
		err   error
	)
	if q := c.QueryParam("available"); q != "" {
		onlyAvailable, perr := strconv.ParseBool(q)
		if perr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "available must be true or false"})
		}
		if onlyAvailable {
			rooms, err = h.svc.ListAvailableRooms(ctx)
		} else {
			rooms, err = h.svc.ListRooms(ctx)
		}
	} else {
		rooms, err = h.svc.ListRooms(ctx)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(rooms))
}

// GetRoom handles GET /v1/rooms/:id.
func (h *Handler) GetRoom(c echo.Context) error {
	room, err := h.svc.GetRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// UpdateRoom handles PATCH /v1/rooms/:id.  Omitted fields are kept.
func (h *Handler) UpdateRoom(c echo.Context) error {
	var req updateRoomReq
	if err := bind(c, &req); err != nil {
		return h.fail(c, err)
	}
	room, err := h.svc.UpdateRoom(c.Request().Context(), c.Param("id"), model.RoomPatch{
		Number:        req.Number,
		Type:          req.Type,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /v1/rooms/:id.
func (h *Handler) DeleteRoom(c echo.Context) error {
	if err := h.svc.DeleteRoom(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// nonNil renders an empty list as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
