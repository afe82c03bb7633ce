package router // package router defines how HTTP routes are registered for the API

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// Options carries what the route groups need besides the handlers.
// Redis may be nil, in which case caching and rate limiting are off.
type Options struct {
	AuthEnabled bool
	JWTSecret   string
	Cache       config.CacheConfig
	RateLimit   config.RateLimitConfig
	Redis       *redis.Client
	Log         logrus.FieldLogger
	// Ping checks the storage backend for /healthz; nil skips the check.
	Ping func(context.Context) error
}

// RegisterRoutes registers every route of the API on e.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, a *handler.AuthHandler, o Options) {
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	limiter := middleware.NewTokenBucket(o.RateLimit, o.Redis, o.Log)

	// Health checks stay outside /v1 and are never limited.
	e.GET("/healthz", handler.Health(o.Ping))
	e.POST("/v1/auth/login", a.Login, limiter)

	registerReads(e, h, o, limiter)
	registerStaff(e, h, o, limiter)
}
