package entities

import (
	"time"
)

// Facility represents a healthcare facility offering priced procedures
type Facility struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Address      Address   `json:"address" db:"-"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	Website      string    `json:"website" db:"website"`
	FacilityType string    `json:"facility_type" db:"facility_type"`
	NetworkTags  []string  `json:"network_tags,omitempty" db:"-"`
	Rating       float64   `json:"rating" db:"rating"`
	ReviewCount  int       `json:"review_count" db:"review_count"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Address represents a physical address
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	ZipCode string `json:"zip_code" db:"zip_code"`
	Country string `json:"country" db:"country"`
}

// InNetwork reports whether the facility carries the given network tag.
func (f *Facility) InNetwork(tag string) bool {
	for _, t := range f.NetworkTags {
		if t == tag {
			return true
		}
	}
	return false
}
