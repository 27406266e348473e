package models

// Hotel rows come from a static in-memory catalog, not the database.
type Hotel struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	Description   string  `json:"description"`
	Rating        float64 `json:"rating"`
	PricePerNight float64 `json:"pricePerNight"`
	ImageURL      string  `json:"imageUrl"`
}
