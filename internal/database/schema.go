package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the four hotel tables.  Reservations do not reference
// rooms or guests through foreign keys: a reservation whose room or guest
// was removed is kept and displayed with placeholders.  Money columns are
// DOUBLE so a stored amount equals the validated float64, any positive
// amount included.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		id              CHAR(36)      NOT NULL PRIMARY KEY,
		number          VARCHAR(32)   NOT NULL,
		room_type       VARCHAR(64)   NOT NULL,
		price_per_night DOUBLE        NOT NULL,
		capacity        INT           NOT NULL DEFAULT 2,
		is_available    TINYINT(1)    NOT NULL DEFAULT 1,
		created_at      DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_rooms_number (number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS guests (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		email      VARCHAR(255) NOT NULL COLLATE utf8mb4_general_ci,
		phone      VARCHAR(64)  NOT NULL DEFAULT '',
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_guests_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id             CHAR(36) NOT NULL PRIMARY KEY,
		guest_id       CHAR(36) NOT NULL,
		room_id        CHAR(36) NOT NULL,
		check_in_date  DATE     NOT NULL,
		check_out_date DATE     NOT NULL,
		status         ENUM('pending','confirmed','cancelled') NOT NULL DEFAULT 'pending',
		created_at     DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at     DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_reservations_room (room_id),
		KEY idx_reservations_guest (guest_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             CHAR(36)      NOT NULL PRIMARY KEY,
		reservation_id CHAR(36)      NOT NULL,
		amount         DOUBLE        NOT NULL,
		status         ENUM('pending','partial','completed','failed') NOT NULL DEFAULT 'pending',
		payment_type   VARCHAR(16)   NOT NULL,
		card_number    VARCHAR(32)   NULL,
		created_at     DATETIME(6)   NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		KEY idx_payments_reservation (reservation_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing table.  Existing tables are left as they are.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
