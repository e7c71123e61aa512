package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three tables the service needs.  Reservations keep
// plain foreign keys to spaces and clubs without ON DELETE CASCADE; the
// space repository refuses to delete a space that is still referenced.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS spaces (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		capacity INT UNSIGNED NOT NULL DEFAULT 0,
		features JSON NULL,
		image VARCHAR(1024) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS clubs (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NULL,
		email VARCHAR(255) NOT NULL,
		logo VARCHAR(1024) NULL,
		status ENUM('active','inactive') NOT NULL DEFAULT 'active',
		last_login DATETIME NULL,
		members INT UNSIGNED NOT NULL DEFAULT 0,
		password_hash VARCHAR(255) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_clubs_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		space_id BIGINT UNSIGNED NOT NULL,
		club_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NULL,
		start_time DATETIME NULL,
		end_time DATETIME NULL,
		is_full_day TINYINT(1) NOT NULL DEFAULT 0,
		status ENUM('pending','approved','rejected') NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_reservations_status (status),
		KEY idx_reservations_club (club_id),
		KEY idx_reservations_space (space_id),
		CONSTRAINT fk_reservations_space FOREIGN KEY (space_id) REFERENCES spaces (id),
		CONSTRAINT fk_reservations_club FOREIGN KEY (club_id) REFERENCES clubs (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema.  Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
