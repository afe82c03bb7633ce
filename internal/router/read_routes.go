package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// registerReads registers the GET endpoints.  With auth enabled any valid
// token may read; responses are cached in Redis when it is configured,
// except the balance, which is computed on every request.
func registerReads(e *echo.Echo, h *handler.Handler, o Options, limiter echo.MiddlewareFunc) {
	var mws []echo.MiddlewareFunc
	if o.AuthEnabled {
		mws = append(mws, middleware.JWTAuth(o.JWTSecret))
	}
	mws = append(mws, limiter)

	live := e.Group("/v1", mws...)
	live.GET("/reservations/:id/balance", h.ReservationBalance)

	g := e.Group("/v1", append(mws, middleware.NewRedisCache(o.Cache, o.Redis))...)

	// ---- Rooms ----
	g.GET("/rooms", h.ListRooms) // ?available=true for bookable rooms only
	g.GET("/rooms/:id", h.GetRoom)

	// ---- Guests ----
	g.GET("/guests", h.ListGuests)
	g.GET("/guests/:id", h.GetGuest)

	// ---- Reservations ----
	g.GET("/reservations", h.ListReservations)
	g.GET("/reservations/:id", h.GetReservation)
	g.GET("/reservations/:id/payments", h.ReservationPayments)

	// ---- Payments ----
	g.GET("/payments", h.ListPayments)
	g.GET("/payments/:id", h.GetPayment)
}
