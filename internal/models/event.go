package models

import (
	"strings"
	"time"
)

// Event is a schedulable occasion with a fixed capacity, open for
// registration. Events are created when the catalog is initialized and are
// never deleted; only RegisteredAttendees changes afterwards.
type Event struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Date                time.Time `json:"date"`
	Location            string    `json:"location"`
	Description         string    `json:"description"`
	Capacity            int       `json:"capacity"`
	RegisteredAttendees int       `json:"registered_attendees"`
	Category            string    `json:"category"`
	ImageURL            string    `json:"image_url"`
}

// IsFull reports whether the event has no remaining capacity.
func (e Event) IsFull() bool {
	return e.RegisteredAttendees >= e.Capacity
}

// Validate checks the structural invariants of an event.
func (e Event) Validate() error {
	if e.ID <= 0 {
		return ErrInvalidInput
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrInvalidInput
	}
	if e.Capacity <= 0 {
		return ErrInvalidInput
	}
	if e.RegisteredAttendees < 0 || e.RegisteredAttendees > e.Capacity {
		return ErrInvalidInput
	}
	return nil
}
