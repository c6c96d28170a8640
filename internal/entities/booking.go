package entities

import "time"

type BookingStatus string

const (
	BookingStatusOpen      BookingStatus = "Open"
	BookingStatusUsed      BookingStatus = "Used"
	BookingStatusExpired   BookingStatus = "Expired"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// Terminal reports whether no further transition is valid from the status.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusUsed || s == BookingStatusExpired || s == BookingStatusCancelled
}

// Booking is the ledger record of a price lock. ClaimCode is set if and
// only if the booking is still Open.
type Booking struct {
	BookingID   string        `json:"booking_id" db:"booking_id"`
	CustomerID  string        `json:"customer_id" db:"customer_id"`
	StationID   string        `json:"station_id" db:"station_id"`
	StationName string        `json:"station_name" db:"station_name"`
	Address     string        `json:"address" db:"address"`
	FuelType    string        `json:"fuel_type" db:"fuel_type"`
	Price       float64       `json:"price" db:"price"`
	BookingDate time.Time     `json:"booking_date" db:"booking_date"`
	ExpiryDate  time.Time     `json:"expiry_date" db:"expiry_date"`
	RedeemDate  *time.Time    `json:"redeem_date,omitempty" db:"redeem_date"`
	ClaimCode   *string       `json:"claim_code,omitempty" db:"claim_code"`
	Status      BookingStatus `json:"status" db:"status"`
}

// ExpiryJobName is the timer job created for an Open booking. The format is a
// wire contract shared with the rest of the fleet, do not change it.
func (b Booking) ExpiryJobName() string {
	return "expiry-booking-" + b.BookingID
}

// BookingSummary is the denormalized projection of a Booking embedded in the
// owning customer's profile. It is maintained by hand at every transition
// point, with the Booking row as the source of truth.
type BookingSummary struct {
	BookingID   string        `json:"booking_id" db:"booking_id"`
	StationName string        `json:"station_name" db:"station_name"`
	FuelType    string        `json:"fuel_type" db:"fuel_type"`
	Price       float64       `json:"price" db:"price"`
	Status      BookingStatus `json:"status" db:"status"`
}

// Summary projects the ledger row into its customer-profile form.
func (b Booking) Summary() BookingSummary {
	return BookingSummary{
		BookingID:   b.BookingID,
		StationName: b.StationName,
		FuelType:    b.FuelType,
		Price:       b.Price,
		Status:      b.Status,
	}
}
