package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fuellock/internal/entities"
)

type CustomersRepo struct {
	db *sqlx.DB
}

func NewCustomersRepo(db *sqlx.DB) *CustomersRepo {
	return &CustomersRepo{db: db}
}

func (r *CustomersRepo) Create(ctx context.Context, customer *entities.Customer) error {
	query := `
		INSERT INTO customers (customer_id, email, name, role, plate_numbers)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		customer.CustomerID,
		customer.Email,
		customer.Name,
		customer.Role,
		pq.Array(customer.PlateNumbers),
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomersRepo) GetByID(ctx context.Context, customerID string) (*entities.Customer, error) {
	query := `
		SELECT customer_id, email, name, role, plate_numbers
		FROM customers
		WHERE customer_id = $1`

	var customer entities.Customer
	var plates pq.StringArray
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(
		&customer.CustomerID,
		&customer.Email,
		&customer.Name,
		&customer.Role,
		&plates,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer %s: %w", customerID, err)
	}
	customer.PlateNumbers = plates

	bookings, err := r.bookingSummaries(ctx, customerID)
	if err != nil {
		return nil, err
	}
	customer.Bookings = bookings

	return &customer, nil
}

func (r *CustomersRepo) bookingSummaries(ctx context.Context, customerID string) ([]entities.BookingSummary, error) {
	query := `
		SELECT booking_id, station_name, fuel_type, price, status
		FROM customer_bookings
		WHERE customer_id = $1
		ORDER BY position`

	var summaries []entities.BookingSummary
	if err := r.db.SelectContext(ctx, &summaries, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to list customer bookings for %s: %w", customerID, err)
	}
	return summaries, nil
}

// Update writes the profile fields the customer may edit.
func (r *CustomersRepo) Update(ctx context.Context, customer *entities.Customer) error {
	query := `
		UPDATE customers
		SET name = $2,
			plate_numbers = $3
		WHERE customer_id = $1`

	res, err := r.db.ExecContext(ctx, query,
		customer.CustomerID,
		customer.Name,
		pq.Array(customer.PlateNumbers),
	)
	if err != nil {
		return fmt.Errorf("failed to update customer %s: %w", customer.CustomerID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendBookingSummary adds one summary row at the end of the customer's
// booking index.
func (r *CustomersRepo) AppendBookingSummary(ctx context.Context, customerID string, summary entities.BookingSummary) error {
	query := `
		INSERT INTO customer_bookings (customer_id, booking_id, station_name, fuel_type, price, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		customerID,
		summary.BookingID,
		summary.StationName,
		summary.FuelType,
		summary.Price,
		summary.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to append booking summary for %s: %w", customerID, err)
	}
	return nil
}

// ReplaceBookingSummary removes the summary row and reinserts it with the
// given state. The reinsert lands at the end of the sequence; ordering of the
// index is not preserved across transitions.
func (r *CustomersRepo) ReplaceBookingSummary(ctx context.Context, customerID string, summary entities.BookingSummary) error {
	if err := r.RemoveBookingSummary(ctx, customerID, summary.BookingID); err != nil {
		return err
	}
	return r.AppendBookingSummary(ctx, customerID, summary)
}

func (r *CustomersRepo) RemoveBookingSummary(ctx context.Context, customerID, bookingID string) error {
	query := `
		DELETE FROM customer_bookings
		WHERE customer_id = $1 AND booking_id = $2`

	_, err := r.db.ExecContext(ctx, query, customerID, bookingID)
	if err != nil {
		return fmt.Errorf("failed to remove booking summary %s for %s: %w", bookingID, customerID, err)
	}
	return nil
}
