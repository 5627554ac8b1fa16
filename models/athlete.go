package models

import "time"

type AthleteStatus string

const (
	AthleteStatusValid   AthleteStatus = "VALID"
	AthleteStatusInvalid AthleteStatus = "INVALID"
)

// Athlete is a registered competitor. Only VALID athletes are eligible for
// bracket seeding.
type Athlete struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Dojo      *string       `json:"dojo,omitempty"`
	Belt      *string       `json:"belt,omitempty"`
	Weight    *string       `json:"weight,omitempty"`
	Status    AthleteStatus `json:"status"`
	PhotoURL  *string       `json:"photo_url,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
