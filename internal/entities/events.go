package entities

import "time"

// Timer payload type tags, part of the scheduled-job wire format.
const (
	TimerTypeExpireLock  = "EXPIRE_LOCK"
	TimerTypeCreatePrice = "CREATE_PRICE"
)

// LockExpiryDue is delivered when an "expiry-booking-<id>" timer fires.
// Delivery is at-least-once with no ordering guarantee relative to user
// operations on the same booking, so the consumer must be idempotent.
type LockExpiryDue struct {
	BookingID  string `json:"booking_id"`
	CustomerID string `json:"customer_id"`
	Type       string `json:"type"`
}

// PriceChangeDue is delivered when a "price-updater-<id>" timer fires.
// TargetID is the stable schedule identifier; the pending entry is matched by
// it, never by fuel type.
type PriceChangeDue struct {
	StationID       string    `json:"station_id"`
	FuelType        string    `json:"fuel_type"`
	Price           float64   `json:"price"`
	EffectivityDate time.Time `json:"effectivity_date"`
	TargetID        string    `json:"target_id"`
	Type            string    `json:"type"`
}
