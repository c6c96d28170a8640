package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"fuellock/internal/apperr"
	"fuellock/internal/auth"
	"fuellock/internal/entities"
	"fuellock/internal/repository"
	"fuellock/pkg/shortid"
)

// StationsService manages the station directory.
type StationsService struct {
	stations  StationsRepository
	customers CustomersRepository
	dealers   DealersRepository
	logger    zerolog.Logger
}

func NewStationsService(
	stations StationsRepository,
	customers CustomersRepository,
	dealers DealersRepository,
	logger zerolog.Logger,
) *StationsService {
	return &StationsService{
		stations:  stations,
		customers: customers,
		dealers:   dealers,
		logger:    logger,
	}
}

// Get resolves one station for the caller. Employees always see their own
// station from the token; customers and dealers look up by id. A customer
// already holding a lock for the station is turned away before booking a
// second one.
func (s *StationsService) Get(ctx context.Context, claims auth.Claims, stationID string) (*entities.Station, error) {
	if claims.Role == auth.RoleEmployee {
		stationID = claims.StationID
	}
	if stationID == "" {
		return nil, apperr.MissingQueryParams("station_id")
	}

	station, err := s.stations.GetByID(ctx, stationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.StationDoesNotExist()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get station %s: %w", stationID, err)
	}

	if claims.Role == auth.RoleCustomer {
		customer, err := s.customers.GetByID(ctx, claims.UserCode)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load customer %s: %w", claims.UserCode, err)
		}
		if customer != nil {
			if summary, ok := customer.BookingForStation(station.Name); ok && summary.Status == entities.BookingStatusOpen {
				return nil, apperr.UserAlreadyHaveALock()
			}
		}
	}

	return station, nil
}

// List returns the public station directory.
func (s *StationsService) List(ctx context.Context, filter repository.ListFilter) ([]entities.Station, error) {
	stations, err := s.stations.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return stations, nil
}

// Create registers a station under the calling dealer. Creation is an upsert
// keyed by station id, so replaying the same request converges instead of
// duplicating.
func (s *StationsService) Create(ctx context.Context, claims auth.Claims, station *entities.Station) (*entities.Station, error) {
	if station.StationID == "" {
		station.StationID = shortid.New()
	}
	if station.StationCode == "" {
		station.StationCode = shortid.New()
	}
	station.DealerEmail = claims.Email
	station.Status = entities.StationStatusActive

	if err := s.stations.Upsert(ctx, station); err != nil {
		return nil, err
	}
	if err := s.dealers.AddStationID(ctx, claims.Email, station.StationID); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("station_id", station.StationID).
		Str("dealer_email", claims.Email).
		Msg("station created")
	return station, nil
}

// Update merges the provided fields over the stored station. Empty fields
// are left untouched, so callers can send partial updates.
func (s *StationsService) Update(ctx context.Context, station *entities.Station) (*entities.Station, error) {
	current, err := s.stations.GetByID(ctx, station.StationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.StationDoesNotExist()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load station %s: %w", station.StationID, err)
	}

	if station.StationCode != "" {
		current.StationCode = station.StationCode
	}
	if station.Name != "" {
		current.Name = station.Name
	}
	if station.Address != "" {
		current.Address = station.Address
	}
	if station.Coordinates != (entities.Coordinates{}) {
		current.Coordinates = station.Coordinates
	}
	if station.ContactNumber != "" {
		current.ContactNumber = station.ContactNumber
	}
	if station.Status != "" {
		current.Status = station.Status
	}

	if err := s.stations.Update(ctx, current); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.StationDoesNotExist()
		}
		return nil, err
	}
	return current, nil
}

// Delete removes a station by its code and detaches it from the dealer's
// holdings.
func (s *StationsService) Delete(ctx context.Context, claims auth.Claims, stationCode string) error {
	stationID, err := s.stations.DeleteByCode(ctx, stationCode)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.StationDoesNotExist()
	}
	if err != nil {
		return err
	}

	if err := s.dealers.RemoveStationID(ctx, claims.Email, stationID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	s.logger.Info().
		Str("station_id", stationID).
		Str("station_code", stationCode).
		Msg("station deleted")
	return nil
}
