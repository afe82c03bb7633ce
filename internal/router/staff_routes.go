package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// registerStaff registers the endpoints that change hotel data.  They
// require a STAFF token when auth is enabled, and every successful call
// drops the read cache.
func registerStaff(e *echo.Echo, h *handler.Handler, o Options, limiter echo.MiddlewareFunc) {
	var mws []echo.MiddlewareFunc
	if o.AuthEnabled {
		mws = append(mws, middleware.JWTAuth(o.JWTSecret), middleware.RequireRole(middleware.RoleStaff))
	}
	mws = append(mws, limiter, middleware.InvalidateCache(o.Cache, o.Redis, o.Log))
	g := e.Group("/v1", mws...)

	// ---- Rooms ----
	g.POST("/rooms", h.CreateRoom)
	g.PATCH("/rooms/:id", h.UpdateRoom)
	g.DELETE("/rooms/:id", h.DeleteRoom)

	// ---- Guests ----
	g.POST("/guests", h.CreateGuest)
	g.PATCH("/guests/:id", h.UpdateGuest)
	g.DELETE("/guests/:id", h.DeleteGuest)

	// ---- Reservations ----
	g.POST("/reservations", h.CreateReservation)
	g.PATCH("/reservations/:id", h.UpdateReservation)
	g.POST("/reservations/:id/confirm", h.ConfirmReservation)
	g.POST("/reservations/:id/cancel", h.CancelReservation)
	g.DELETE("/reservations/:id", h.DeleteReservation)

	// ---- Payments ----
	g.POST("/payments", h.CreatePayment)
	g.DELETE("/payments/:id", h.DeletePayment)

	// ---- Maintenance ----
	g.POST("/admin/reconcile", h.Reconcile)
}
