package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fuellock/internal/apperr"
	"fuellock/internal/entities"
	"fuellock/internal/repository"
	"fuellock/pkg/shortid"
)

// PricesService manages a station's current price board and its pending
// scheduled changes. Every schedule owns one timer job whose name doubles as
// the schedule's rule name in the API.
type PricesService struct {
	stations StationsRepository
	timers   TimerService
	logger   zerolog.Logger
}

func NewPricesService(stations StationsRepository, timers TimerService, logger zerolog.Logger) *PricesService {
	return &PricesService{
		stations: stations,
		timers:   timers,
		logger:   logger,
	}
}

// GetPrices returns the station's active price board.
func (s *PricesService) GetPrices(ctx context.Context, stationID string) ([]entities.FuelPrice, error) {
	station, err := s.loadStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if len(station.CurrentPrices) == 0 {
		return nil, apperr.StationHasNoCurrentPrices()
	}
	return station.CurrentPrices, nil
}

// ScheduleRequest carries a pending price change.
type ScheduleRequest struct {
	StationID       string
	FuelType        string
	Price           float64
	EffectivityDate time.Time
}

// ScheduleCreate registers a future price change. At most one pending change
// per fuel type is allowed; the row is written before the timer so the intent
// survives a scheduling failure.
func (s *PricesService) ScheduleCreate(ctx context.Context, req ScheduleRequest) (*entities.PriceSchedule, error) {
	station, err := s.loadStation(ctx, req.StationID)
	if err != nil {
		return nil, err
	}
	if station.HasScheduledFuelType(req.FuelType) {
		return nil, apperr.FuelTypeAlreadyExists()
	}

	targetID := shortid.New()
	schedule := entities.PriceSchedule{
		FuelType:        strings.ToLower(req.FuelType),
		Price:           req.Price,
		EffectivityDate: req.EffectivityDate.UTC(),
		EventID:         entities.PriceUpdaterJobName(targetID),
	}

	if err := s.stations.AddPriceSchedule(ctx, station.StationID, schedule); err != nil {
		return nil, err
	}
	if err := s.scheduleTimer(ctx, station.StationID, schedule); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("station_id", station.StationID).
		Str("rule_name", schedule.EventID).
		Str("fuel_type", schedule.FuelType).
		Float64("price", schedule.Price).
		Time("effectivity_date", schedule.EffectivityDate).
		Msg("price change scheduled")
	return &schedule, nil
}

// ScheduleUpdate rewrites a pending change located by its rule name. The
// timer job keeps its name, so re-scheduling replaces the old payload and run
// time in place.
func (s *PricesService) ScheduleUpdate(ctx context.Context, ruleName string, req ScheduleRequest) (*entities.PriceSchedule, error) {
	station, err := s.loadStation(ctx, req.StationID)
	if err != nil {
		return nil, err
	}
	if _, ok := station.ScheduleByEventID(ruleName); !ok {
		return nil, apperr.RuleNameDoesNotExist()
	}

	schedule := entities.PriceSchedule{
		FuelType:        strings.ToLower(req.FuelType),
		Price:           req.Price,
		EffectivityDate: req.EffectivityDate.UTC(),
		EventID:         ruleName,
	}

	if err := s.stations.UpdatePriceSchedule(ctx, station.StationID, schedule); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.RuleNameDoesNotExist()
		}
		return nil, err
	}
	if err := s.scheduleTimer(ctx, station.StationID, schedule); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("station_id", station.StationID).
		Str("rule_name", ruleName).
		Msg("price schedule updated")
	return &schedule, nil
}

// ScheduleDelete drops a pending change and its timer.
func (s *PricesService) ScheduleDelete(ctx context.Context, stationID, ruleName string) error {
	station, err := s.loadStation(ctx, stationID)
	if err != nil {
		return err
	}

	removed, err := s.stations.RemovePriceSchedule(ctx, station.StationID, ruleName)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.RuleNameDoesNotExist()
	}
	if err := s.timers.Cancel(ctx, ruleName); err != nil {
		s.logger.Err(err).Str("job", ruleName).Msg("failed to cancel timer job")
	}

	s.logger.Info().
		Str("station_id", station.StationID).
		Str("rule_name", ruleName).
		Msg("price schedule deleted")
	return nil
}

// ApplyScheduledPrice is driven by the price-updater timer. The pending entry
// is matched by its stable target id, never by fuel type, so a schedule
// edited after a duplicate fuel type appeared still resolves to the right
// row. The whole handler is re-runnable: a missing entry means a previous
// delivery already consumed it, and the price upsert is applied either way.
func (s *PricesService) ApplyScheduledPrice(ctx context.Context, event entities.PriceChangeDue) error {
	jobName := entities.PriceUpdaterJobName(event.TargetID)

	station, err := s.stations.GetByID(ctx, event.StationID)
	if errors.Is(err, repository.ErrNotFound) {
		// station removed while the timer was pending
		if err := s.timers.Cancel(ctx, jobName); err != nil {
			s.logger.Err(err).Str("job", jobName).Msg("failed to cancel timer job")
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load station %s: %w", event.StationID, err)
	}

	if _, err := s.stations.RemovePriceSchedule(ctx, station.StationID, jobName); err != nil {
		return err
	}
	if err := s.stations.UpsertCurrentPrice(ctx, station.StationID, entities.FuelPrice{
		FuelType: strings.ToLower(event.FuelType),
		Price:    event.Price,
	}); err != nil {
		return err
	}
	if err := s.timers.Cancel(ctx, jobName); err != nil {
		s.logger.Err(err).Str("job", jobName).Msg("failed to cancel timer job")
	}

	s.logger.Info().
		Str("station_id", station.StationID).
		Str("fuel_type", strings.ToLower(event.FuelType)).
		Float64("price", event.Price).
		Msg("scheduled price applied")
	return nil
}

func (s *PricesService) scheduleTimer(ctx context.Context, stationID string, schedule entities.PriceSchedule) error {
	return s.timers.Schedule(ctx, schedule.EventID, schedule.EffectivityDate, entities.PriceChangeDue{
		StationID:       stationID,
		FuelType:        schedule.FuelType,
		Price:           schedule.Price,
		EffectivityDate: schedule.EffectivityDate,
		TargetID:        schedule.TargetID(),
		Type:            entities.TimerTypeCreatePrice,
	})
}

func (s *PricesService) loadStation(ctx context.Context, stationID string) (*entities.Station, error) {
	station, err := s.stations.GetByID(ctx, stationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.StationDoesNotExist()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load station %s: %w", stationID, err)
	}
	return station, nil
}
