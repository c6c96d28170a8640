package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuellock/internal/apperr"
	"fuellock/internal/auth"
	"fuellock/internal/entities"
)

type locksFixture struct {
	bookings  *fakeBookings
	customers *fakeCustomers
	stations  *fakeStations
	dealers   *fakeDealers
	timers    *fakeTimers
	service   *LocksService
	now       time.Time
}

const lockTTL = 7 * 24 * time.Hour

func newLocksFixture(t *testing.T) *locksFixture {
	t.Helper()

	f := &locksFixture{
		bookings:  newFakeBookings(),
		customers: newFakeCustomers(),
		stations:  newFakeStations(),
		dealers:   newFakeDealers(),
		timers:    newFakeTimers(),
		now:       time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewLocksService(
		f.bookings, f.customers, f.stations, f.dealers,
		f.timers, lockTTL, zerolog.Nop(),
	)
	f.service.now = func() time.Time { return f.now }

	f.stations.items["st-1"] = &entities.Station{
		StationID:   "st-1",
		StationCode: "edsa01",
		Name:        "FuelHub EDSA",
		Address:     "123 EDSA, Mandaluyong",
		Status:      entities.StationStatusActive,
		CurrentPrices: []entities.FuelPrice{
			{FuelType: "diesel", Price: 50},
			{FuelType: "unleaded91", Price: 52},
		},
	}
	f.customers.items["cust-1"] = &entities.Customer{
		CustomerID: "cust-1",
		Email:      "cust@example.com",
		Name:       "Pat",
		Role:       auth.RoleCustomer,
	}
	return f
}

func (f *locksFixture) createLock(t *testing.T, fuelType string) *entities.Booking {
	t.Helper()
	booking, err := f.service.CreateLock(context.Background(), CreateLockRequest{
		CustomerID: "cust-1",
		StationID:  "st-1",
		FuelType:   fuelType,
	})
	require.NoError(t, err)
	return booking
}

func assertClaimCodeIffOpen(t *testing.T, booking *entities.Booking) {
	t.Helper()
	if booking.Status == entities.BookingStatusOpen {
		require.NotNil(t, booking.ClaimCode)
	} else {
		require.Nil(t, booking.ClaimCode)
	}
}

func TestCreateLock(t *testing.T) {
	f := newLocksFixture(t)

	booking := f.createLock(t, "Diesel")

	assert.Len(t, booking.BookingID, 8)
	assert.Equal(t, "cust-1", booking.CustomerID)
	assert.Equal(t, "st-1", booking.StationID)
	assert.Equal(t, "FuelHub EDSA", booking.StationName)
	assert.Equal(t, "diesel", booking.FuelType, "fuel type is stored lower-cased")
	assert.Equal(t, 50.0, booking.Price)
	assert.Equal(t, entities.BookingStatusOpen, booking.Status)
	assert.Equal(t, f.now, booking.BookingDate)
	assert.Equal(t, f.now.Add(lockTTL), booking.ExpiryDate)
	require.NotNil(t, booking.ClaimCode)
	assert.Len(t, *booking.ClaimCode, 8)
	assert.Nil(t, booking.RedeemDate)
	assertClaimCodeIffOpen(t, booking)

	// round trip through the ledger
	got, err := f.service.GetLock(context.Background(), booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, booking, got)

	// summary mirrored on the customer
	customer, err := f.customers.GetByID(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Len(t, customer.Bookings, 1)
	assert.Equal(t, booking.Summary(), customer.Bookings[0])

	// expiry timer registered under the booking's job name
	job, ok := f.timers.jobs["expiry-booking-"+booking.BookingID]
	require.True(t, ok)
	assert.Equal(t, booking.ExpiryDate, job.runAt)
	assert.Equal(t, entities.LockExpiryDue{
		BookingID:  booking.BookingID,
		CustomerID: "cust-1",
		Type:       "EXPIRE_LOCK",
	}, job.event)
}

func TestCreateLockErrors(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateLock(ctx, CreateLockRequest{
		CustomerID: "cust-1", StationID: "missing", FuelType: "diesel",
	})
	assert.ErrorIs(t, err, apperr.StationDoesNotExist())

	_, err = f.service.CreateLock(ctx, CreateLockRequest{
		CustomerID: "cust-1", StationID: "st-1", FuelType: "premium98",
	})
	assert.ErrorIs(t, err, apperr.StationHasNoCurrentPrices())

	_, err = f.service.CreateLock(ctx, CreateLockRequest{
		CustomerID: "nobody", StationID: "st-1", FuelType: "diesel",
	})
	assert.ErrorIs(t, err, apperr.UserNotFound())
}

func TestGetLockNotFound(t *testing.T) {
	f := newLocksFixture(t)

	_, err := f.service.GetLock(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, apperr.LockDoesNotExist())
}

func TestAcceptLock(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")
	claimCode := *booking.ClaimCode

	employee := auth.Claims{Role: auth.RoleEmployee, StationID: "st-1"}
	accepted, err := f.service.AcceptLock(ctx, employee, claimCode)
	require.NoError(t, err)

	assert.Equal(t, entities.BookingStatusUsed, accepted.Status)
	assert.Nil(t, accepted.ClaimCode)
	require.NotNil(t, accepted.RedeemDate)
	assert.Equal(t, f.now, *accepted.RedeemDate)
	assertClaimCodeIffOpen(t, accepted)

	customer, err := f.customers.GetByID(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, customer.Bookings, 1)
	assert.Equal(t, entities.BookingStatusUsed, customer.Bookings[0].Status)

	assert.Contains(t, f.timers.cancelled, booking.ExpiryJobName())

	// the stale code still resolves the booking, but a Used lock is not
	// claimable again
	_, err = f.service.AcceptLock(ctx, employee, claimCode)
	assert.ErrorIs(t, err, apperr.LockCannotBeClaimed())
}

func TestAcceptLockStationScoping(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")
	claimCode := *booking.ClaimCode

	_, err := f.service.AcceptLock(ctx, auth.Claims{Role: auth.RoleEmployee, StationID: "st-2"}, claimCode)
	assert.ErrorIs(t, err, apperr.UnauthorizedAction())

	f.dealers.items["other@example.com"] = &entities.Dealer{
		DealerID: "d1", Email: "other@example.com", StationIDs: []string{"st-2"},
	}
	_, err = f.service.AcceptLock(ctx, auth.Claims{Role: auth.RoleDealer, Email: "other@example.com"}, claimCode)
	assert.ErrorIs(t, err, apperr.UnauthorizedAction())

	_, err = f.service.AcceptLock(ctx, auth.Claims{Role: auth.RoleCustomer, UserCode: "cust-1"}, claimCode)
	assert.ErrorIs(t, err, apperr.UnauthorizedAction())

	f.dealers.items["owner@example.com"] = &entities.Dealer{
		DealerID: "d2", Email: "owner@example.com", StationIDs: []string{"st-1"},
	}
	accepted, err := f.service.AcceptLock(ctx, auth.Claims{Role: auth.RoleDealer, Email: "owner@example.com"}, claimCode)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusUsed, accepted.Status)
}

func TestAcceptLockTerminal(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")

	// force a terminal state while the claim code is still set
	stored := f.bookings.items[booking.BookingID]
	stored.Status = entities.BookingStatusCancelled

	_, err := f.service.AcceptLock(ctx, auth.Claims{Role: auth.RoleEmployee, StationID: "st-1"}, *booking.ClaimCode)
	assert.ErrorIs(t, err, apperr.LockCannotBeClaimed())
}

func TestCancelLock(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")

	cancelled, err := f.service.CancelLock(ctx, "cust-1", booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.ClaimCode)
	assertClaimCodeIffOpen(t, cancelled)
	assert.Contains(t, f.timers.cancelled, booking.ExpiryJobName())

	customer, err := f.customers.GetByID(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusCancelled, customer.Bookings[0].Status)

	// cancelling again is a no-op on the terminal state
	again, err := f.service.CancelLock(ctx, "cust-1", booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusCancelled, again.Status)
}

func TestCancelLockGuards(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")

	_, err := f.service.CancelLock(ctx, "someone-else", booking.BookingID)
	assert.ErrorIs(t, err, apperr.UnauthorizedAction())

	_, err = f.service.CancelLock(ctx, "cust-1", "missing")
	assert.ErrorIs(t, err, apperr.LockDoesNotExist())
}

func TestDeleteLock(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")

	err := f.service.DeleteLock(ctx, "cust-1", booking.BookingID)
	assert.ErrorIs(t, err, apperr.LockIsStillOpen())

	_, err = f.service.CancelLock(ctx, "cust-1", booking.BookingID)
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteLock(ctx, "cust-1", booking.BookingID))

	_, err = f.service.GetLock(ctx, booking.BookingID)
	assert.ErrorIs(t, err, apperr.LockDoesNotExist())

	customer, err := f.customers.GetByID(ctx, "cust-1")
	require.NoError(t, err)
	assert.Empty(t, customer.Bookings)

	err = f.service.DeleteLock(ctx, "cust-1", booking.BookingID)
	assert.ErrorIs(t, err, apperr.LockDoesNotExist())
}

func TestExpireLock(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")

	event := entities.LockExpiryDue{
		BookingID:  booking.BookingID,
		CustomerID: "cust-1",
		Type:       entities.TimerTypeExpireLock,
	}
	require.NoError(t, f.service.ExpireLock(ctx, event))

	expired, err := f.service.GetLock(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusExpired, expired.Status)
	assert.Nil(t, expired.ClaimCode)
	assertClaimCodeIffOpen(t, expired)

	customer, err := f.customers.GetByID(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusExpired, customer.Bookings[0].Status)

	// re-delivery of the same timer event is harmless
	require.NoError(t, f.service.ExpireLock(ctx, event))
	again, err := f.service.GetLock(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusExpired, again.Status)
}

func TestExpireLockAfterUserTransition(t *testing.T) {
	f := newLocksFixture(t)
	ctx := context.Background()
	booking := f.createLock(t, "diesel")

	_, err := f.service.AcceptLock(ctx, auth.Claims{Role: auth.RoleEmployee, StationID: "st-1"}, *booking.ClaimCode)
	require.NoError(t, err)

	// late timer delivery must not clobber the Used state
	require.NoError(t, f.service.ExpireLock(ctx, entities.LockExpiryDue{
		BookingID:  booking.BookingID,
		CustomerID: "cust-1",
		Type:       entities.TimerTypeExpireLock,
	}))
	got, err := f.service.GetLock(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, entities.BookingStatusUsed, got.Status)
}

func TestExpireLockMissingBooking(t *testing.T) {
	f := newLocksFixture(t)

	require.NoError(t, f.service.ExpireLock(context.Background(), entities.LockExpiryDue{
		BookingID:  "gone",
		CustomerID: "cust-1",
		Type:       entities.TimerTypeExpireLock,
	}))
	assert.Contains(t, f.timers.cancelled, "expiry-booking-gone")
}
