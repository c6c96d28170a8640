package entities

// Customer is the app user profile. CustomerID is the stable user code
// carried in the bearer token, not the identity provider's internal id.
// Bookings is the manually maintained denormalized index of the customer's
// locks, one summary per ledger row.
type Customer struct {
	CustomerID   string           `json:"customer_id" db:"customer_id"`
	Email        string           `json:"email" db:"email"`
	Name         string           `json:"name" db:"name"`
	Role         string           `json:"role" db:"role"`
	PlateNumbers []string         `json:"plate_numbers"`
	Bookings     []BookingSummary `json:"bookings"`
}

// BookingForStation returns the first summary whose station name matches.
// The original flow keys this check on the station name rather than the id.
func (c Customer) BookingForStation(stationName string) (BookingSummary, bool) {
	for _, b := range c.Bookings {
		if b.StationName == stationName {
			return b, true
		}
	}
	return BookingSummary{}, false
}
