package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/logger"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

func main() {
	cfg := config.Load() // Load environment config

	log, logCloser, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logrus.WithError(err).Fatal("logger setup failed")
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("storage setup failed")
	}
	defer store.close()

	deps := store.deps
	deps.Logger = log
	brokerCfg := config.LoadBrokerConfig()
	if brokerCfg.Enabled {
		pub := queue.NewPublisher(brokerCfg.URL, log)
		defer pub.Close()
		deps.Events = pub
		if brokerCfg.AuditEnabled {
			go func() {
				sink := queue.NewAuditLog(brokerCfg.AuditLogPath)
				if err := queue.StartAuditConsumer(ctx, brokerCfg.URL, sink, log); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("audit consumer stopped")
				}
			}()
		}
	}
	svc := service.New(deps)

	staff := handler.StaffAccount{Email: cfg.StaffEmail, PasswordHash: cfg.StaffPasswordHash}
	if cfg.AuthEnabled && staff.PasswordHash == "" {
		if staff.PasswordHash, err = utils.HashPassword(cfg.StaffPassword, cfg.BcryptCost); err != nil {
			log.WithError(err).Fatal("hash staff password")
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestID(), middleware.AccessLog(log), echomw.Recover())

	router.RegisterRoutes(e,
		handler.NewHandler(svc, log),
		handler.NewAuthHandler(staff, cfg.JWTSecret, cfg.AccessTTLMin, log),
		router.Options{
			AuthEnabled: cfg.AuthEnabled,
			JWTSecret:   cfg.JWTSecret,
			Cache:       config.LoadCacheConfig(),
			RateLimit:   config.LoadRateLimitConfig(),
			Redis:       rdb,
			Log:         log,
			Ping:        store.ping,
		},
	)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{
		"addr":    addr,
		"env":     cfg.Env,
		"storage": cfg.StorageDriver,
		"auth":    cfg.AuthEnabled,
		"broker":  brokerCfg.Enabled,
	}).Info("listening")

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("stopped")
}
