package models

type BlogPost struct {
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Content  string   `json:"content"` // HTML markup
	Image    string   `json:"image"`
	Category string   `json:"category"`
	Author   string   `json:"author"`
	ReadTime string   `json:"readTime"`
	Date     string   `json:"date"`
	Featured bool     `json:"featured"`
	Tags     []string `json:"tags"`
}
