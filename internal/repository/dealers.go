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

type DealersRepo struct {
	db *sqlx.DB
}

func NewDealersRepo(db *sqlx.DB) *DealersRepo {
	return &DealersRepo{db: db}
}

func (r *DealersRepo) Create(ctx context.Context, dealer *entities.Dealer) error {
	query := `
		INSERT INTO dealers (dealer_id, name, email, station_ids)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		dealer.DealerID,
		dealer.Name,
		dealer.Email,
		pq.Array(dealer.StationIDs),
	)
	if err != nil {
		return fmt.Errorf("failed to create dealer: %w", err)
	}
	return nil
}

func (r *DealersRepo) GetByEmail(ctx context.Context, email string) (*entities.Dealer, error) {
	query := `
		SELECT dealer_id, name, email, station_ids
		FROM dealers
		WHERE email = $1`

	var dealer entities.Dealer
	var stationIDs pq.StringArray
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&dealer.DealerID,
		&dealer.Name,
		&dealer.Email,
		&stationIDs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer by email: %w", err)
	}
	dealer.StationIDs = stationIDs
	return &dealer, nil
}

// AddStationID attaches a station to the dealer's holdings.
func (r *DealersRepo) AddStationID(ctx context.Context, email, stationID string) error {
	query := `
		UPDATE dealers
		SET station_ids = array_append(array_remove(station_ids, $2), $2)
		WHERE email = $1`

	_, err := r.db.ExecContext(ctx, query, email, stationID)
	if err != nil {
		return fmt.Errorf("failed to add station %s to dealer: %w", stationID, err)
	}
	return nil
}

// RemoveStationID detaches a station from the dealer's holdings.
func (r *DealersRepo) RemoveStationID(ctx context.Context, email, stationID string) error {
	query := `
		UPDATE dealers
		SET station_ids = array_remove(station_ids, $2)
		WHERE email = $1`

	res, err := r.db.ExecContext(ctx, query, email, stationID)
	if err != nil {
		return fmt.Errorf("failed to remove station %s from dealer: %w", stationID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
