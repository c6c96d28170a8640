package services

import (
	"context"
	"strings"
	"time"

	"fuellock/internal/entities"
	"fuellock/internal/repository"
)

// fakeBookings mirrors the ledger's claim code retention: the code stays
// resolvable after a transition but is only presented on Open bookings.
type fakeBookings struct {
	items map[string]*entities.Booking
	codes map[string]string
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		items: map[string]*entities.Booking{},
		codes: map[string]string{},
	}
}

func (f *fakeBookings) clone(booking *entities.Booking) *entities.Booking {
	out := *booking
	if out.Status == entities.BookingStatusOpen {
		if code, ok := f.codes[booking.BookingID]; ok {
			out.ClaimCode = &code
		}
	} else {
		out.ClaimCode = nil
	}
	return &out
}

func (f *fakeBookings) Create(_ context.Context, booking *entities.Booking) error {
	clone := *booking
	f.items[booking.BookingID] = &clone
	if booking.ClaimCode != nil {
		f.codes[booking.BookingID] = *booking.ClaimCode
	}
	return nil
}

func (f *fakeBookings) GetByID(_ context.Context, bookingID string) (*entities.Booking, error) {
	booking, ok := f.items[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.clone(booking), nil
}

func (f *fakeBookings) GetByClaimCode(_ context.Context, claimCode string) (*entities.Booking, error) {
	for id, code := range f.codes {
		if code == claimCode {
			if booking, ok := f.items[id]; ok {
				return f.clone(booking), nil
			}
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookings) Update(_ context.Context, booking *entities.Booking) error {
	clone := *booking
	f.items[booking.BookingID] = &clone
	return nil
}

func (f *fakeBookings) Delete(_ context.Context, bookingID string) error {
	delete(f.items, bookingID)
	delete(f.codes, bookingID)
	return nil
}

type fakeCustomers struct {
	items     map[string]*entities.Customer
	summaries map[string][]entities.BookingSummary
}

func newFakeCustomers() *fakeCustomers {
	return &fakeCustomers{
		items:     map[string]*entities.Customer{},
		summaries: map[string][]entities.BookingSummary{},
	}
}

func (f *fakeCustomers) Create(_ context.Context, customer *entities.Customer) error {
	clone := *customer
	f.items[customer.CustomerID] = &clone
	return nil
}

func (f *fakeCustomers) GetByID(_ context.Context, customerID string) (*entities.Customer, error) {
	customer, ok := f.items[customerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *customer
	clone.Bookings = append([]entities.BookingSummary(nil), f.summaries[customerID]...)
	return &clone, nil
}

func (f *fakeCustomers) Update(_ context.Context, customer *entities.Customer) error {
	if _, ok := f.items[customer.CustomerID]; !ok {
		return repository.ErrNotFound
	}
	clone := *customer
	f.items[customer.CustomerID] = &clone
	return nil
}

func (f *fakeCustomers) AppendBookingSummary(_ context.Context, customerID string, summary entities.BookingSummary) error {
	f.summaries[customerID] = append(f.summaries[customerID], summary)
	return nil
}

func (f *fakeCustomers) ReplaceBookingSummary(ctx context.Context, customerID string, summary entities.BookingSummary) error {
	if err := f.RemoveBookingSummary(ctx, customerID, summary.BookingID); err != nil {
		return err
	}
	return f.AppendBookingSummary(ctx, customerID, summary)
}

func (f *fakeCustomers) RemoveBookingSummary(_ context.Context, customerID, bookingID string) error {
	kept := f.summaries[customerID][:0]
	for _, s := range f.summaries[customerID] {
		if s.BookingID != bookingID {
			kept = append(kept, s)
		}
	}
	f.summaries[customerID] = kept
	return nil
}

type fakeStations struct {
	items map[string]*entities.Station
}

func newFakeStations() *fakeStations {
	return &fakeStations{items: map[string]*entities.Station{}}
}

func (f *fakeStations) GetByID(_ context.Context, stationID string) (*entities.Station, error) {
	station, ok := f.items[stationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *station
	clone.CurrentPrices = append([]entities.FuelPrice(nil), station.CurrentPrices...)
	clone.PriceSchedules = append([]entities.PriceSchedule(nil), station.PriceSchedules...)
	return &clone, nil
}

func (f *fakeStations) GetByCode(_ context.Context, stationCode string) (*entities.Station, error) {
	for _, station := range f.items {
		if station.StationCode == stationCode {
			clone := *station
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStations) List(_ context.Context, filter repository.ListFilter) ([]entities.Station, error) {
	var out []entities.Station
	for _, station := range f.items {
		if !filter.IncludeUnpriced && len(station.CurrentPrices) == 0 {
			continue
		}
		out = append(out, *station)
	}
	return out, nil
}

func (f *fakeStations) Upsert(_ context.Context, station *entities.Station) error {
	clone := *station
	f.items[station.StationID] = &clone
	return nil
}

func (f *fakeStations) Update(_ context.Context, station *entities.Station) error {
	current, ok := f.items[station.StationID]
	if !ok {
		return repository.ErrNotFound
	}
	clone := *station
	clone.CurrentPrices = current.CurrentPrices
	clone.PriceSchedules = current.PriceSchedules
	f.items[station.StationID] = &clone
	return nil
}

func (f *fakeStations) DeleteByCode(_ context.Context, stationCode string) (string, error) {
	for id, station := range f.items {
		if station.StationCode == stationCode {
			delete(f.items, id)
			return id, nil
		}
	}
	return "", repository.ErrNotFound
}

func (f *fakeStations) UpsertCurrentPrice(_ context.Context, stationID string, price entities.FuelPrice) error {
	station, ok := f.items[stationID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, p := range station.CurrentPrices {
		if strings.EqualFold(p.FuelType, price.FuelType) {
			station.CurrentPrices[i] = price
			return nil
		}
	}
	station.CurrentPrices = append(station.CurrentPrices, price)
	return nil
}

func (f *fakeStations) AddPriceSchedule(_ context.Context, stationID string, schedule entities.PriceSchedule) error {
	station, ok := f.items[stationID]
	if !ok {
		return repository.ErrNotFound
	}
	station.PriceSchedules = append(station.PriceSchedules, schedule)
	return nil
}

func (f *fakeStations) UpdatePriceSchedule(_ context.Context, stationID string, schedule entities.PriceSchedule) error {
	station, ok := f.items[stationID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, s := range station.PriceSchedules {
		if s.EventID == schedule.EventID {
			station.PriceSchedules[i] = schedule
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStations) RemovePriceSchedule(_ context.Context, stationID, eventID string) (bool, error) {
	station, ok := f.items[stationID]
	if !ok {
		return false, repository.ErrNotFound
	}
	for i, s := range station.PriceSchedules {
		if s.EventID == eventID {
			station.PriceSchedules = append(station.PriceSchedules[:i], station.PriceSchedules[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeDealers struct {
	items map[string]*entities.Dealer
}

func newFakeDealers() *fakeDealers {
	return &fakeDealers{items: map[string]*entities.Dealer{}}
}

func (f *fakeDealers) Create(_ context.Context, dealer *entities.Dealer) error {
	clone := *dealer
	f.items[dealer.Email] = &clone
	return nil
}

func (f *fakeDealers) GetByEmail(_ context.Context, email string) (*entities.Dealer, error) {
	dealer, ok := f.items[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *dealer
	return &clone, nil
}

func (f *fakeDealers) AddStationID(_ context.Context, email, stationID string) error {
	dealer, ok := f.items[email]
	if !ok {
		return repository.ErrNotFound
	}
	for _, id := range dealer.StationIDs {
		if id == stationID {
			return nil
		}
	}
	dealer.StationIDs = append(dealer.StationIDs, stationID)
	return nil
}

func (f *fakeDealers) RemoveStationID(_ context.Context, email, stationID string) error {
	dealer, ok := f.items[email]
	if !ok {
		return repository.ErrNotFound
	}
	kept := dealer.StationIDs[:0]
	for _, id := range dealer.StationIDs {
		if id != stationID {
			kept = append(kept, id)
		}
	}
	dealer.StationIDs = kept
	return nil
}

type scheduledJob struct {
	runAt time.Time
	event any
}

type fakeTimers struct {
	jobs      map[string]scheduledJob
	cancelled []string
}

func newFakeTimers() *fakeTimers {
	return &fakeTimers{jobs: map[string]scheduledJob{}}
}

func (f *fakeTimers) Schedule(_ context.Context, name string, runAt time.Time, event any) error {
	f.jobs[name] = scheduledJob{runAt: runAt, event: event}
	return nil
}

func (f *fakeTimers) Cancel(_ context.Context, name string) error {
	delete(f.jobs, name)
	f.cancelled = append(f.cancelled, name)
	return nil
}

type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) SendWelcome(_ context.Context, email, _ string) error {
	f.sent = append(f.sent, email)
	return nil
}
