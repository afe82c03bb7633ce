package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/storage/memory"
)

// storage is the backend chosen by STORAGE_DRIVER: the repositories the
// service runs on plus the hooks main needs for health and shutdown.
type storage struct {
	deps  service.Deps
	ping  func(context.Context) error
	close func() error
}

func openStorage(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		s := repository.NewStore(db)
		return &storage{
			deps: service.Deps{
				Tx:           s,
				Rooms:        repository.NewRoomRepo(s),
				Guests:       repository.NewGuestRepo(s),
				Reservations: repository.NewReservationRepo(s),
				Payments:     repository.NewPaymentRepo(s),
			},
			ping:  db.PingContext,
			close: db.Close,
		}, nil

	default:
		db, err := memory.New(memory.Config{Path: cfg.DataFile, L: log})
		if err != nil {
			return nil, fmt.Errorf("open data file: %w", err)
		}
		return &storage{
			deps: service.Deps{
				Tx:           db,
				Rooms:        memory.NewRoomRepo(db),
				Guests:       memory.NewGuestRepo(db),
				Reservations: memory.NewReservationRepo(db),
				Payments:     memory.NewPaymentRepo(db),
			},
			close: func() error { return nil },
		}, nil
	}
}
