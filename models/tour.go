package models

// Tour is a bookable package shown on the tours listing and detail pages.
type Tour struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Location    string         `json:"location"`
	Country     string         `json:"country"`
	Image       string         `json:"image"`
	Duration    string         `json:"duration"`
	GroupSize   string         `json:"groupSize"`
	Rating      float64        `json:"rating"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	Highlights  []string       `json:"highlights"`
	Itinerary   []ItineraryDay `json:"itinerary"`
	Included    []string       `json:"included"`
	NotIncluded []string       `json:"notIncluded"`
	Gallery     []string       `json:"gallery"`
}

type ExploreTour struct {
	ID       string  `json:"id,omitempty"`
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	Duration string  `json:"duration"`
	Price    float64 `json:"price"`
	Location string  `json:"location"`
	Category string  `json:"category"`
}
