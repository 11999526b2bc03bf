package models

import "time"

type InquiryStatus string

const (
	InquiryNew       InquiryStatus = "new"
	InquiryContacted InquiryStatus = "contacted"
	InquiryResolved  InquiryStatus = "resolved"
)

// Inquiry is a quote request from the public contact form. It is created
// once and only read afterwards.
type Inquiry struct {
	ID          string        `json:"id,omitempty"`
	FullName    string        `json:"fullName"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	Destination string        `json:"destination"`
	TravelDates string        `json:"travelDates"`
	TravelTime  string        `json:"travelTime,omitempty"`
	Category    string        `json:"category,omitempty"`
	Company     string        `json:"company,omitempty"`
	Message     string        `json:"message"`
	Status      InquiryStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}
