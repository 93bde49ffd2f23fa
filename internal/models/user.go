package models

import (
	"strings"
	"time"
)

// User is a person registered with the directory. Email is unique across all
// users (active or not), compared case-insensitively. RegisteredEventIDs
// keeps insertion order and never holds duplicates.
type User struct {
	ID                 int64     `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Organization       string    `json:"organization,omitempty"`
	RegisteredAt       time.Time `json:"registered_at"`
	IsActive           bool      `json:"is_active"`
	RegisteredEventIDs []int64   `json:"registered_event_ids"`
}

// FullName returns the display name used by the UI layer.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasEvent reports whether eventID is already in the user's registered set.
func (u User) HasEvent(eventID int64) bool {
	for _, id := range u.RegisteredEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// NormalizeEmail folds an email address for case-insensitive comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
