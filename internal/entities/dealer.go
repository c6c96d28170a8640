package entities

// Dealer owns zero or more stations.
type Dealer struct {
	DealerID   string   `json:"dealer_id" db:"dealer_id"`
	Name       string   `json:"name" db:"name"`
	Email      string   `json:"email" db:"email"`
	StationIDs []string `json:"station_ids"`
}
