package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fuellock/internal/apperr"
	"fuellock/internal/auth"
	"fuellock/internal/entities"
	"fuellock/internal/repository"
	"fuellock/pkg/shortid"
)

type BookingsRepository interface {
	Create(ctx context.Context, booking *entities.Booking) error
	GetByID(ctx context.Context, bookingID string) (*entities.Booking, error)
	GetByClaimCode(ctx context.Context, claimCode string) (*entities.Booking, error)
	Update(ctx context.Context, booking *entities.Booking) error
	Delete(ctx context.Context, bookingID string) error
}

type CustomersRepository interface {
	Create(ctx context.Context, customer *entities.Customer) error
	GetByID(ctx context.Context, customerID string) (*entities.Customer, error)
	Update(ctx context.Context, customer *entities.Customer) error
	AppendBookingSummary(ctx context.Context, customerID string, summary entities.BookingSummary) error
	ReplaceBookingSummary(ctx context.Context, customerID string, summary entities.BookingSummary) error
	RemoveBookingSummary(ctx context.Context, customerID, bookingID string) error
}

type StationsRepository interface {
	GetByID(ctx context.Context, stationID string) (*entities.Station, error)
	GetByCode(ctx context.Context, stationCode string) (*entities.Station, error)
	List(ctx context.Context, filter repository.ListFilter) ([]entities.Station, error)
	Upsert(ctx context.Context, station *entities.Station) error
	Update(ctx context.Context, station *entities.Station) error
	DeleteByCode(ctx context.Context, stationCode string) (string, error)
	UpsertCurrentPrice(ctx context.Context, stationID string, price entities.FuelPrice) error
	AddPriceSchedule(ctx context.Context, stationID string, schedule entities.PriceSchedule) error
	UpdatePriceSchedule(ctx context.Context, stationID string, schedule entities.PriceSchedule) error
	RemovePriceSchedule(ctx context.Context, stationID, eventID string) (bool, error)
}

type DealersRepository interface {
	Create(ctx context.Context, dealer *entities.Dealer) error
	GetByEmail(ctx context.Context, email string) (*entities.Dealer, error)
	AddStationID(ctx context.Context, email, stationID string) error
	RemoveStationID(ctx context.Context, email, stationID string) error
}

// TimerService is the one-shot scheduler the lock lifecycle leans on. Cancel
// of a missing job must not be an error.
type TimerService interface {
	Schedule(ctx context.Context, name string, runAt time.Time, event any) error
	Cancel(ctx context.Context, name string) error
}

// LocksService owns the booking state machine: Open is the single
// non-terminal state, claim_code is present iff Open, and every transition
// mirrors the customer's denormalized summary row.
type LocksService struct {
	bookings  BookingsRepository
	customers CustomersRepository
	stations  StationsRepository
	dealers   DealersRepository
	timers    TimerService
	lockTTL   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewLocksService(
	bookings BookingsRepository,
	customers CustomersRepository,
	stations StationsRepository,
	dealers DealersRepository,
	timers TimerService,
	lockTTL time.Duration,
	logger zerolog.Logger,
) *LocksService {
	return &LocksService{
		bookings:  bookings,
		customers: customers,
		stations:  stations,
		dealers:   dealers,
		timers:    timers,
		lockTTL:   lockTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// GetLock fetches one booking by id.
func (s *LocksService) GetLock(ctx context.Context, bookingID string) (*entities.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.LockDoesNotExist()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lock %s: %w", bookingID, err)
	}
	return booking, nil
}

// CreateLockRequest carries the customer's lock intent.
type CreateLockRequest struct {
	CustomerID string
	StationID  string
	FuelType   string
}

// CreateLock locks the station's current price of the fuel type for the
// customer. The booking row is written first, the summary second and the
// expiry timer last, so a partial failure always leaves the authoritative
// row in place.
func (s *LocksService) CreateLock(ctx context.Context, req CreateLockRequest) (*entities.Booking, error) {
	station, err := s.stations.GetByID(ctx, req.StationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.StationDoesNotExist()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load station %s: %w", req.StationID, err)
	}

	price, ok := station.CurrentPrice(req.FuelType)
	if !ok {
		return nil, apperr.StationHasNoCurrentPrices()
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.UserNotFound()
		}
		return nil, fmt.Errorf("failed to load customer %s: %w", req.CustomerID, err)
	}

	now := s.now().UTC()
	claimCode := shortid.New()
	booking := &entities.Booking{
		BookingID:   shortid.New(),
		CustomerID:  req.CustomerID,
		StationID:   station.StationID,
		StationName: station.Name,
		Address:     station.Address,
		FuelType:    strings.ToLower(req.FuelType),
		Price:       price.Price,
		BookingDate: now,
		ExpiryDate:  now.Add(s.lockTTL),
		ClaimCode:   &claimCode,
		Status:      entities.BookingStatusOpen,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	if err := s.customers.AppendBookingSummary(ctx, booking.CustomerID, booking.Summary()); err != nil {
		return nil, err
	}
	if err := s.timers.Schedule(ctx, booking.ExpiryJobName(), booking.ExpiryDate, entities.LockExpiryDue{
		BookingID:  booking.BookingID,
		CustomerID: booking.CustomerID,
		Type:       entities.TimerTypeExpireLock,
	}); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("booking_id", booking.BookingID).
		Str("station_id", booking.StationID).
		Str("fuel_type", booking.FuelType).
		Float64("price", booking.Price).
		Msg("lock created")
	return booking, nil
}

// AcceptLock redeems an Open lock at the pump. Only a dealer of the station
// or an employee stationed at it may accept, and only an Open lock can be
// claimed.
func (s *LocksService) AcceptLock(ctx context.Context, claims auth.Claims, claimCode string) (*entities.Booking, error) {
	booking, err := s.bookings.GetByClaimCode(ctx, claimCode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.LockDoesNotExist()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lock by claim code: %w", err)
	}

	if err := s.authorizeAccept(ctx, claims, booking.StationID); err != nil {
		return nil, err
	}
	if booking.Status != entities.BookingStatusOpen {
		return nil, apperr.LockCannotBeClaimed()
	}

	redeemedAt := s.now().UTC()
	booking.Status = entities.BookingStatusUsed
	booking.ClaimCode = nil
	booking.RedeemDate = &redeemedAt

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	if err := s.customers.ReplaceBookingSummary(ctx, booking.CustomerID, booking.Summary()); err != nil {
		return nil, err
	}
	s.cancelTimer(ctx, booking.ExpiryJobName())

	s.logger.Info().
		Str("booking_id", booking.BookingID).
		Str("station_id", booking.StationID).
		Msg("lock accepted")
	return booking, nil
}

func (s *LocksService) authorizeAccept(ctx context.Context, claims auth.Claims, stationID string) error {
	switch claims.Role {
	case auth.RoleEmployee:
		if claims.StationID != stationID {
			return apperr.UnauthorizedAction()
		}
	case auth.RoleDealer:
		dealer, err := s.dealers.GetByEmail(ctx, claims.Email)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.UnauthorizedAction()
		}
		if err != nil {
			return fmt.Errorf("failed to load dealer %s: %w", claims.Email, err)
		}
		for _, id := range dealer.StationIDs {
			if id == stationID {
				return nil
			}
		}
		return apperr.UnauthorizedAction()
	default:
		return apperr.UnauthorizedAction()
	}
	return nil
}

// CancelLock releases an Open lock on the customer's request. A lock already
// in a terminal state is left as is and returned, so a retried cancel is
// harmless.
func (s *LocksService) CancelLock(ctx context.Context, customerID, bookingID string) (*entities.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.LockDoesNotExist()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lock %s: %w", bookingID, err)
	}
	if booking.CustomerID != customerID {
		return nil, apperr.UnauthorizedAction()
	}
	if booking.Status.Terminal() {
		return booking, nil
	}

	booking.Status = entities.BookingStatusCancelled
	booking.ClaimCode = nil

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	if err := s.customers.ReplaceBookingSummary(ctx, booking.CustomerID, booking.Summary()); err != nil {
		return nil, err
	}
	s.cancelTimer(ctx, booking.ExpiryJobName())

	s.logger.Info().Str("booking_id", booking.BookingID).Msg("lock cancelled")
	return booking, nil
}

// DeleteLock removes a resolved booking and its summary row. Open locks must
// be cancelled or redeemed first.
func (s *LocksService) DeleteLock(ctx context.Context, customerID, bookingID string) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.LockDoesNotExist()
	}
	if err != nil {
		return fmt.Errorf("failed to get lock %s: %w", bookingID, err)
	}
	if booking.CustomerID != customerID {
		return apperr.UnauthorizedAction()
	}
	if booking.Status == entities.BookingStatusOpen {
		return apperr.LockIsStillOpen()
	}

	if err := s.bookings.Delete(ctx, bookingID); err != nil {
		return err
	}
	if err := s.customers.RemoveBookingSummary(ctx, booking.CustomerID, bookingID); err != nil {
		return err
	}
	s.cancelTimer(ctx, booking.ExpiryJobName())

	s.logger.Info().Str("booking_id", bookingID).Msg("lock deleted")
	return nil
}

// ExpireLock is driven by the expiry timer. Delivery is at-least-once and may
// race a user transition, so anything but an Open lock is a no-op. The timer
// is cancelled on every path to clear a re-delivered job.
func (s *LocksService) ExpireLock(ctx context.Context, event entities.LockExpiryDue) error {
	jobName := entities.Booking{BookingID: event.BookingID}.ExpiryJobName()

	booking, err := s.bookings.GetByID(ctx, event.BookingID)
	if errors.Is(err, repository.ErrNotFound) {
		s.cancelTimer(ctx, jobName)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get lock %s: %w", event.BookingID, err)
	}
	if booking.Status.Terminal() {
		s.cancelTimer(ctx, jobName)
		return nil
	}

	booking.Status = entities.BookingStatusExpired
	booking.ClaimCode = nil

	if err := s.bookings.Update(ctx, booking); err != nil {
		return err
	}
	if err := s.customers.ReplaceBookingSummary(ctx, booking.CustomerID, booking.Summary()); err != nil {
		return err
	}
	s.cancelTimer(ctx, jobName)

	s.logger.Info().Str("booking_id", booking.BookingID).Msg("lock expired")
	return nil
}

func (s *LocksService) cancelTimer(ctx context.Context, name string) {
	if err := s.timers.Cancel(ctx, name); err != nil {
		// the worker drops orphaned jobs on its own, so this is best effort
		s.logger.Err(err).Str("job", name).Msg("failed to cancel timer job")
	}
}
