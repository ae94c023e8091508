package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables lists every table the service owns, in creation order.
var Tables = []string{"zones", "users", "parking_times", "bounty_rewards", "listing_history"}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS zones (
		zone_id   BIGINT       NOT NULL PRIMARY KEY,
		zone_name VARCHAR(128) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		pid           VARCHAR(64)  NOT NULL PRIMARY KEY,
		password_hash VARCHAR(255) NOT NULL,
		license_plate VARCHAR(32)  NOT NULL DEFAULT '',
		created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS parking_times (
		zone_id      BIGINT        NOT NULL,
		spot_id      BIGINT        NOT NULL,
		time_code    BIGINT        NOT NULL,
		user_pid     VARCHAR(64)   NOT NULL,
		price        DECIMAL(18,4) NOT NULL DEFAULT 0,
		availability BOOLEAN       NOT NULL DEFAULT FALSE,
		seller_key   VARCHAR(128)  NULL,
		PRIMARY KEY (zone_id, spot_id, time_code)
	)`,
	`CREATE TABLE IF NOT EXISTS bounty_rewards (
		id             VARCHAR(36)   NOT NULL PRIMARY KEY,
		dedup_key      VARCHAR(64)   NOT NULL UNIQUE,
		reporter_pid   VARCHAR(64)   NOT NULL,
		zone_id        BIGINT        NOT NULL,
		spot_id        BIGINT        NOT NULL,
		window_start   BIGINT        NOT NULL,
		reported_plate VARCHAR(32)   NOT NULL,
		amount         DECIMAL(18,4) NOT NULL,
		status         VARCHAR(16)   NOT NULL,
		tx_id          VARCHAR(128)  NULL,
		failure        VARCHAR(255)  NULL,
		created_at     TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS listing_history (
		id         VARCHAR(36)   NOT NULL PRIMARY KEY,
		seller_pid VARCHAR(64)   NOT NULL,
		zone_id    BIGINT        NOT NULL,
		spot_id    BIGINT        NOT NULL,
		start_time BIGINT        NOT NULL,
		end_time   BIGINT        NOT NULL,
		price      DECIMAL(18,4) NOT NULL,
		seller_key VARCHAR(128)  NOT NULL,
		created_at TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates missing tables. Existing tables are never altered.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", Tables[i], err)
		}
	}
	return nil
}
