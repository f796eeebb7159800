package models

import "time"

// Lead is a sales enquiry captured from the search front-end.
type Lead struct {
	Name       string
	Email      string
	Company    string
	Phone      string
	Role       string
	Timeline   string
	Quantity   string
	Notes      string
	ReceivedAt time.Time
}
