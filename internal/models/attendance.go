package models

import (
	"time"
)

// AttendanceRecord binds one user to one event. The (UserID, EventID) pair is
// a natural key: the ledger holds at most one record per pair. Records are
// hard-deleted on cancellation, whatever their check-in state.
type AttendanceRecord struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	EventID      int64      `json:"event_id"`
	RegisteredAt time.Time  `json:"registered_at"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	IsCheckedIn  bool       `json:"is_checked_in"`
	Notes        string     `json:"notes,omitempty"`
}

// Statistics is the global aggregate computed on demand from the full ledger.
// AttendanceRate is a percentage rounded to one decimal place.
type Statistics struct {
	TotalRegistrations int     `json:"total_registrations"`
	TotalCheckedIn     int     `json:"total_checked_in"`
	AttendanceRate     float64 `json:"attendance_rate"`
	DistinctUsers      int     `json:"distinct_users"`
	DistinctEvents     int     `json:"distinct_events"`
}
