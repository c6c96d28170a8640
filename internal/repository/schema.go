package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by lookups when no row matches. Services translate
// it into the taxonomy error of the operation.
var ErrNotFound = fmt.Errorf("record not found")

// InitializeDBSchema creates the tables on startup. customer_bookings carries
// no foreign key to bookings on purpose: the summary rows are maintained by
// the application at every transition, with the ledger as source of truth.
func InitializeDBSchema(db *sqlx.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS bookings (
	booking_id VARCHAR(16) PRIMARY KEY,
	customer_id VARCHAR(64) NOT NULL,
	station_id VARCHAR(64) NOT NULL,
	station_name VARCHAR(255) NOT NULL,
	address VARCHAR(255) NOT NULL,
	fuel_type VARCHAR(64) NOT NULL,
	price NUMERIC(10, 2) NOT NULL,
	booking_date TIMESTAMP WITH TIME ZONE NOT NULL,
	expiry_date TIMESTAMP WITH TIME ZONE NOT NULL,
	redeem_date TIMESTAMP WITH TIME ZONE,
	claim_code VARCHAR(16),
	status VARCHAR(16) NOT NULL CHECK (status IN ('Open', 'Used', 'Expired', 'Cancelled'))
);`,
		`CREATE INDEX IF NOT EXISTS bookings_claim_code_idx ON bookings (claim_code);`,
		`
CREATE TABLE IF NOT EXISTS customers (
	customer_id VARCHAR(64) PRIMARY KEY,
	email VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	role VARCHAR(32) NOT NULL,
	plate_numbers TEXT[] NOT NULL DEFAULT '{}'
);`,
		`
CREATE TABLE IF NOT EXISTS customer_bookings (
	position BIGSERIAL PRIMARY KEY,
	customer_id VARCHAR(64) NOT NULL,
	booking_id VARCHAR(16) NOT NULL,
	station_name VARCHAR(255) NOT NULL,
	fuel_type VARCHAR(64) NOT NULL,
	price NUMERIC(10, 2) NOT NULL,
	status VARCHAR(16) NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS customer_bookings_customer_idx ON customer_bookings (customer_id);`,
		`
CREATE TABLE IF NOT EXISTS stations (
	station_id VARCHAR(64) PRIMARY KEY,
	station_code VARCHAR(64) NOT NULL,
	dealer_email VARCHAR(255) NOT NULL DEFAULT '',
	name VARCHAR(255) NOT NULL,
	address VARCHAR(255) NOT NULL DEFAULT '',
	longitude VARCHAR(32) NOT NULL DEFAULT '',
	latitude VARCHAR(32) NOT NULL DEFAULT '',
	contact_number VARCHAR(64) NOT NULL DEFAULT '',
	status VARCHAR(16) NOT NULL CHECK (status IN ('active', 'inactive', 'suspended'))
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS stations_station_code_idx ON stations (station_code);`,
		`
CREATE TABLE IF NOT EXISTS station_prices (
	station_id VARCHAR(64) NOT NULL,
	fuel_type VARCHAR(64) NOT NULL,
	price NUMERIC(10, 2) NOT NULL,
	PRIMARY KEY (station_id, fuel_type)
);`,
		`
CREATE TABLE IF NOT EXISTS station_price_schedules (
	station_id VARCHAR(64) NOT NULL,
	fuel_type VARCHAR(64) NOT NULL,
	price NUMERIC(10, 2) NOT NULL,
	effectivity_date TIMESTAMP WITH TIME ZONE NOT NULL,
	event_id VARCHAR(64) NOT NULL,
	PRIMARY KEY (station_id, event_id)
);`,
		`
CREATE TABLE IF NOT EXISTS dealers (
	dealer_id VARCHAR(32) PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	station_ids TEXT[] NOT NULL DEFAULT '{}'
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS dealers_email_idx ON dealers (email);`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(context.Background(), stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
