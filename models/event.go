package models

import "time"

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "UPCOMING"
	EventStatusOngoing   EventStatus = "ONGOING"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// Event groups athletes and a bracket of matches. The event owns its matches;
// regenerating the bracket replaces all of them atomically.
type Event struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	EventCode string      `json:"event_code"`
	StartDate time.Time   `json:"start_date"`
	EndDate   time.Time   `json:"end_date"`
	Location  *string     `json:"location,omitempty"`
	Status    EventStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	Athletes []Athlete `json:"athletes,omitempty"`
	Matches  []*Match  `json:"matches,omitempty"`
}
