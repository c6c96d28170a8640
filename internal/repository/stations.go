package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fuellock/internal/entities"
)

type StationsRepo struct {
	db *sqlx.DB
}

func NewStationsRepo(db *sqlx.DB) *StationsRepo {
	return &StationsRepo{db: db}
}

// stationRow flattens the coordinates for scanning.
type stationRow struct {
	StationID     string                 `db:"station_id"`
	StationCode   string                 `db:"station_code"`
	DealerEmail   string                 `db:"dealer_email"`
	Name          string                 `db:"name"`
	Address       string                 `db:"address"`
	Longitude     string                 `db:"longitude"`
	Latitude      string                 `db:"latitude"`
	ContactNumber string                 `db:"contact_number"`
	Status        entities.StationStatus `db:"status"`
}

func (row stationRow) toEntity() entities.Station {
	return entities.Station{
		StationID:     row.StationID,
		StationCode:   row.StationCode,
		DealerEmail:   row.DealerEmail,
		Name:          row.Name,
		Address:       row.Address,
		Coordinates:   entities.Coordinates{Longitude: row.Longitude, Latitude: row.Latitude},
		ContactNumber: row.ContactNumber,
		Status:        row.Status,
	}
}

const stationColumns = `
	station_id, station_code, dealer_email, name, address,
	longitude, latitude, contact_number, status`

// GetByID loads the full station aggregate: base record, current prices and
// pending price schedules.
func (r *StationsRepo) GetByID(ctx context.Context, stationID string) (*entities.Station, error) {
	return r.get(ctx, "station_id", stationID)
}

func (r *StationsRepo) GetByCode(ctx context.Context, stationCode string) (*entities.Station, error) {
	return r.get(ctx, "station_code", stationCode)
}

func (r *StationsRepo) get(ctx context.Context, column, value string) (*entities.Station, error) {
	query := fmt.Sprintf(`SELECT %s FROM stations WHERE %s = $1`, stationColumns, column)

	var row stationRow
	err := r.db.GetContext(ctx, &row, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get station by %s: %w", column, err)
	}

	station := row.toEntity()
	if err := r.loadPrices(ctx, &station); err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *StationsRepo) loadPrices(ctx context.Context, station *entities.Station) error {
	pricesQuery := `
		SELECT fuel_type, price
		FROM station_prices
		WHERE station_id = $1
		ORDER BY fuel_type`
	if err := r.db.SelectContext(ctx, &station.CurrentPrices, pricesQuery, station.StationID); err != nil {
		return fmt.Errorf("failed to load current prices for %s: %w", station.StationID, err)
	}

	schedulesQuery := `
		SELECT fuel_type, price, effectivity_date, event_id
		FROM station_price_schedules
		WHERE station_id = $1
		ORDER BY effectivity_date`
	if err := r.db.SelectContext(ctx, &station.PriceSchedules, schedulesQuery, station.StationID); err != nil {
		return fmt.Errorf("failed to load price schedules for %s: %w", station.StationID, err)
	}
	return nil
}

// ListFilter narrows List. Zero value lists stations that have at least one
// current price, which is what the public listing shows.
type ListFilter struct {
	Keyword  string
	FuelType string
	// IncludeUnpriced lifts the has-a-current-price requirement.
	IncludeUnpriced bool
}

func (r *StationsRepo) List(ctx context.Context, filter ListFilter) ([]entities.Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations`
	var args []any

	switch {
	case filter.Keyword != "":
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+filter.Keyword+"%")
	case filter.FuelType != "":
		query += ` WHERE EXISTS (
			SELECT 1 FROM station_prices p
			WHERE p.station_id = stations.station_id AND p.fuel_type = $1
		)`
		args = append(args, filter.FuelType)
	case !filter.IncludeUnpriced:
		query += ` WHERE EXISTS (
			SELECT 1 FROM station_prices p
			WHERE p.station_id = stations.station_id
		)`
	}
	query += ` ORDER BY name`

	var rows []stationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}

	stations := make([]entities.Station, 0, len(rows))
	for _, row := range rows {
		station := row.toEntity()
		if err := r.loadPrices(ctx, &station); err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, nil
}

// Upsert inserts the station or refreshes its base fields when the id is
// already present, so repeated creation is idempotent.
func (r *StationsRepo) Upsert(ctx context.Context, station *entities.Station) error {
	query := `
		INSERT INTO stations (
			station_id, station_code, dealer_email, name, address,
			longitude, latitude, contact_number, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (station_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			contact_number = EXCLUDED.contact_number,
			longitude = EXCLUDED.longitude,
			latitude = EXCLUDED.latitude`

	_, err := r.db.ExecContext(ctx, query,
		station.StationID,
		station.StationCode,
		station.DealerEmail,
		station.Name,
		station.Address,
		station.Coordinates.Longitude,
		station.Coordinates.Latitude,
		station.ContactNumber,
		station.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert station %s: %w", station.StationID, err)
	}
	return nil
}

func (r *StationsRepo) Update(ctx context.Context, station *entities.Station) error {
	query := `
		UPDATE stations
		SET name = $2,
			address = $3,
			contact_number = $4,
			longitude = $5,
			latitude = $6,
			status = $7
		WHERE station_id = $1`

	res, err := r.db.ExecContext(ctx, query,
		station.StationID,
		station.Name,
		station.Address,
		station.ContactNumber,
		station.Coordinates.Longitude,
		station.Coordinates.Latitude,
		station.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update station %s: %w", station.StationID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByCode removes the station and its price rows, returning the deleted
// station id so the caller can detach it from the owning dealer.
func (r *StationsRepo) DeleteByCode(ctx context.Context, stationCode string) (string, error) {
	var stationID string
	err := r.db.QueryRowContext(ctx,
		`DELETE FROM stations WHERE station_code = $1 RETURNING station_id`,
		stationCode,
	).Scan(&stationID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete station %s: %w", stationCode, err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM station_prices WHERE station_id = $1`, stationID); err != nil {
		return "", fmt.Errorf("failed to delete prices of station %s: %w", stationID, err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM station_price_schedules WHERE station_id = $1`, stationID); err != nil {
		return "", fmt.Errorf("failed to delete schedules of station %s: %w", stationID, err)
	}
	return stationID, nil
}

// UpsertCurrentPrice replaces the active price for the fuel type, or inserts
// it. A station never holds two current prices for one fuel type.
func (r *StationsRepo) UpsertCurrentPrice(ctx context.Context, stationID string, price entities.FuelPrice) error {
	query := `
		INSERT INTO station_prices (station_id, fuel_type, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (station_id, fuel_type) DO UPDATE SET price = EXCLUDED.price`

	_, err := r.db.ExecContext(ctx, query, stationID, price.FuelType, price.Price)
	if err != nil {
		return fmt.Errorf("failed to upsert price for %s/%s: %w", stationID, price.FuelType, err)
	}
	return nil
}

func (r *StationsRepo) AddPriceSchedule(ctx context.Context, stationID string, schedule entities.PriceSchedule) error {
	query := `
		INSERT INTO station_price_schedules (station_id, fuel_type, price, effectivity_date, event_id)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		stationID,
		schedule.FuelType,
		schedule.Price,
		schedule.EffectivityDate,
		schedule.EventID,
	)
	if err != nil {
		return fmt.Errorf("failed to add price schedule for %s: %w", stationID, err)
	}
	return nil
}

// UpdatePriceSchedule rewrites the pending entry carrying the event id.
func (r *StationsRepo) UpdatePriceSchedule(ctx context.Context, stationID string, schedule entities.PriceSchedule) error {
	query := `
		UPDATE station_price_schedules
		SET fuel_type = $3,
			price = $4,
			effectivity_date = $5
		WHERE station_id = $1 AND event_id = $2`

	res, err := r.db.ExecContext(ctx, query,
		stationID,
		schedule.EventID,
		schedule.FuelType,
		schedule.Price,
		schedule.EffectivityDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update price schedule %s: %w", schedule.EventID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RemovePriceSchedule deletes the pending entry by event id and reports
// whether a row was removed, so timer-fired appliers can treat a missing
// entry as already applied.
func (r *StationsRepo) RemovePriceSchedule(ctx context.Context, stationID, eventID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM station_price_schedules WHERE station_id = $1 AND event_id = $2`,
		stationID, eventID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove price schedule %s: %w", eventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to remove price schedule %s: %w", eventID, err)
	}
	return n > 0, nil
}
