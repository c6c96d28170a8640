package entities

import (
	"strings"
	"time"
)

type StationStatus string

const (
	StationStatusActive    StationStatus = "active"
	StationStatusInactive  StationStatus = "inactive"
	StationStatusSuspended StationStatus = "suspended"
)

type Coordinates struct {
	Longitude string `json:"longitude" db:"longitude"`
	Latitude  string `json:"latitude" db:"latitude"`
}

// FuelPrice is one active price of a station. A station holds at most one
// entry per fuel type.
type FuelPrice struct {
	FuelType string  `json:"fuel_type" db:"fuel_type"`
	Price    float64 `json:"price" db:"price"`
}

// PriceSchedule is a pending future price change. EventID is the timer job
// name ("price-updater-<id>") and doubles as the schedule's identifier in the
// update/delete API.
type PriceSchedule struct {
	FuelType        string    `json:"fuel_type" db:"fuel_type"`
	Price           float64   `json:"price" db:"price"`
	EffectivityDate time.Time `json:"effectivity_date" db:"effectivity_date"`
	EventID         string    `json:"event_id" db:"event_id"`
}

const priceUpdaterPrefix = "price-updater-"

// PriceUpdaterJobName builds the timer job name for a schedule id. Like the
// booking expiry name, the format is a fleet-wide contract.
func PriceUpdaterJobName(targetID string) string {
	return priceUpdaterPrefix + targetID
}

// TargetID recovers the schedule id from the job name.
func (s PriceSchedule) TargetID() string {
	if len(s.EventID) <= len(priceUpdaterPrefix) {
		return s.EventID
	}
	return s.EventID[len(priceUpdaterPrefix):]
}

type Station struct {
	StationID      string          `json:"station_id" db:"station_id"`
	StationCode    string          `json:"station_code" db:"station_code"`
	DealerEmail    string          `json:"dealer_email" db:"dealer_email"`
	Name           string          `json:"name" db:"name"`
	Address        string          `json:"address" db:"address"`
	Coordinates    Coordinates     `json:"coordinates"`
	ContactNumber  string          `json:"contact_number" db:"contact_number"`
	Status         StationStatus   `json:"status" db:"status"`
	CurrentPrices  []FuelPrice     `json:"current_prices"`
	PriceSchedules []PriceSchedule `json:"price_schedules"`
}

// CurrentPrice returns the active price for a fuel type, matched
// case-insensitively.
func (s Station) CurrentPrice(fuelType string) (FuelPrice, bool) {
	for _, p := range s.CurrentPrices {
		if strings.EqualFold(p.FuelType, fuelType) {
			return p, true
		}
	}
	return FuelPrice{}, false
}

// ScheduleByEventID returns the pending schedule carrying the event id.
func (s Station) ScheduleByEventID(eventID string) (PriceSchedule, bool) {
	for _, sch := range s.PriceSchedules {
		if sch.EventID == eventID {
			return sch, true
		}
	}
	return PriceSchedule{}, false
}

// HasScheduledFuelType reports whether a pending schedule already exists for
// the fuel type.
func (s Station) HasScheduledFuelType(fuelType string) bool {
	for _, sch := range s.PriceSchedules {
		if strings.EqualFold(sch.FuelType, fuelType) {
			return true
		}
	}
	return false
}
