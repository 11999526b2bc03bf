package models

type Destination struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	TourCount   int      `json:"tourCount"`
	Highlights  []string `json:"highlights"`
}

// City is referenced by name from tours; deleting one does not touch them.
type City struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Attractions []string `json:"attractions"`
}

type ExploreDestination struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	Tags        []string `json:"tags"`
}
