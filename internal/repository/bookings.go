package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fuellock/internal/entities"
)

type BookingsRepo struct {
	db *sqlx.DB
}

func NewBookingsRepo(db *sqlx.DB) *BookingsRepo {
	return &BookingsRepo{db: db}
}

func (r *BookingsRepo) Create(ctx context.Context, booking *entities.Booking) error {
	query := `
		INSERT INTO bookings (
			booking_id, customer_id, station_id, station_name, address,
			fuel_type, price, booking_date, expiry_date, redeem_date,
			claim_code, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	_, err := r.db.ExecContext(ctx, query,
		booking.BookingID,
		booking.CustomerID,
		booking.StationID,
		booking.StationName,
		booking.Address,
		booking.FuelType,
		booking.Price,
		booking.BookingDate,
		booking.ExpiryDate,
		booking.RedeemDate,
		booking.ClaimCode,
		booking.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *BookingsRepo) GetByID(ctx context.Context, bookingID string) (*entities.Booking, error) {
	return r.get(ctx, "booking_id", bookingID)
}

func (r *BookingsRepo) GetByClaimCode(ctx context.Context, claimCode string) (*entities.Booking, error) {
	return r.get(ctx, "claim_code", claimCode)
}

func (r *BookingsRepo) get(ctx context.Context, column, value string) (*entities.Booking, error) {
	query := fmt.Sprintf(`
		SELECT
			booking_id, customer_id, station_id, station_name, address,
			fuel_type, price, booking_date, expiry_date, redeem_date,
			claim_code, status
		FROM bookings
		WHERE %s = $1`, column)

	var booking entities.Booking
	err := r.db.GetContext(ctx, &booking, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by %s: %w", column, err)
	}
	// the column is kept after redemption so a stale code still resolves to
	// its booking, but the code is only presented while the lock is claimable
	if booking.Status != entities.BookingStatusOpen {
		booking.ClaimCode = nil
	}
	return &booking, nil
}

// Update writes the mutable transition fields. The stored claim code is left
// untouched so later lookups by a stale code can report the terminal state.
// The write is unconditional: there is no optimistic concurrency on bookings,
// concurrent transitions race last-writer-wins.
func (r *BookingsRepo) Update(ctx context.Context, booking *entities.Booking) error {
	query := `
		UPDATE bookings
		SET status = $2,
			redeem_date = $3
		WHERE booking_id = $1`

	_, err := r.db.ExecContext(ctx, query,
		booking.BookingID,
		booking.Status,
		booking.RedeemDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.BookingID, err)
	}
	return nil
}

// Delete removes a resolved booking. The status guard lives in the service;
// the ledger deletes whatever id it is handed.
func (r *BookingsRepo) Delete(ctx context.Context, bookingID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE booking_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", bookingID, err)
	}
	return nil
}
