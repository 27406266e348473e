package catalog

import (
	"strings"

	"github.com/wanderlog/backend/internal/models"
)

// Catalog is a read-only hotel dataset injected into the handlers. It is
// never mutated after construction, so concurrent reads need no locking.
type Catalog struct {
	hotels []models.Hotel
}

func New(hotels []models.Hotel) *Catalog {
	return &Catalog{hotels: hotels}
}

func (c *Catalog) All() []models.Hotel {
	return c.hotels
}

// ByLocation returns hotels whose location matches exactly, ignoring case.
func (c *Catalog) ByLocation(location string) []models.Hotel {
	var matched []models.Hotel
	for _, hotel := range c.hotels {
		if strings.EqualFold(hotel.Location, location) {
			matched = append(matched, hotel)
		}
	}
	return matched
}

// Default returns the built-in dataset served in production.
func Default() *Catalog {
	return New([]models.Hotel{
		{ID: 1, Name: "Grand Bosphorus Hotel", Location: "Istanbul", Description: "Waterfront rooms overlooking the strait, walking distance from the old town.", Rating: 4.6, PricePerNight: 140, ImageURL: "/images/hotels/grand-bosphorus.jpg"},
		{ID: 2, Name: "Cappadocia Cave Suites", Location: "Goreme", Description: "Rooms carved into the rock with balloon views at sunrise.", Rating: 4.8, PricePerNight: 180, ImageURL: "/images/hotels/cappadocia-cave.jpg"},
		{ID: 3, Name: "Aegean Breeze Resort", Location: "Bodrum", Description: "Beachfront resort with a private pier and two pools.", Rating: 4.3, PricePerNight: 120, ImageURL: "/images/hotels/aegean-breeze.jpg"},
		{ID: 4, Name: "Old Harbour Inn", Location: "Antalya", Description: "Small inn inside the historic marina walls.", Rating: 4.1, PricePerNight: 75, ImageURL: "/images/hotels/old-harbour.jpg"},
		{ID: 5, Name: "Pamukkale Thermal Lodge", Location: "Pamukkale", Description: "Thermal spring pools and terrace views over the travertines.", Rating: 4.4, PricePerNight: 95, ImageURL: "/images/hotels/pamukkale-thermal.jpg"},
		{ID: 6, Name: "Lycian Way Boutique", Location: "Fethiye", Description: "Trailhead base for hikers, breakfast from the family garden.", Rating: 4.7, PricePerNight: 85, ImageURL: "/images/hotels/lycian-way.jpg"},
		{ID: 7, Name: "Harbour Lights Istanbul", Location: "Istanbul", Description: "Rooftop bar above Karakoy with ferry views.", Rating: 4.2, PricePerNight: 110, ImageURL: "/images/hotels/harbour-lights.jpg"},
	})
}
