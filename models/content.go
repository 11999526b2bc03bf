package models

type Testimonial struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Image    string  `json:"image"`
	Rating   float64 `json:"rating"`
	Text     string  `json:"text"`
	Tour     string  `json:"tour"`
}

type TeamMember struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Image   string   `json:"image"`
	Bio     string   `json:"bio"`
	Socials []string `json:"socials"`
}

type TravelEssential struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

type FAQ struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}
