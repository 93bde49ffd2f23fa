// Package ledger tracks who is registered for what. It owns the
// attendance records, the per-event counters derived from them, and the
// append-only change log, and it publishes a change notification for
// every successful mutation.
//
// The ledger looks users and events up through the UserStore and
// EventStore interfaces instead of reaching into the other packages
// directly. It never calls back into itself through them, so taking the
// directory or catalog lock while holding the ledger lock is safe.
package ledger

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/gatherly/gatherly-api/internal/clock"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/notifier"
)

// UserStore is the slice of the user directory the ledger needs.
type UserStore interface {
	Get(id int64) (models.User, bool)
	AddEventID(userID, eventID int64)
}

// EventStore is the slice of the event catalog the ledger needs.
type EventStore interface {
	Get(id int64) (models.Event, bool)
}

type pairKey struct {
	userID  int64
	eventID int64
}

// Ledger is the attendance record store. All methods are safe for
// concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	records map[int64]models.AttendanceRecord
	byPair  map[pairKey]int64
	order   []int64
	nextID  int64
	history []ChangeEntry
	nextSeq int64

	users  UserStore
	events EventStore
	clock  clock.Clock
	hub    *notifier.Hub
}

// New returns an empty ledger wired to the given stores, clock and hub.
func New(users UserStore, events EventStore, clk clock.Clock, hub *notifier.Hub) *Ledger {
	return &Ledger{
		records: make(map[int64]models.AttendanceRecord),
		byPair:  make(map[pairKey]int64),
		users:   users,
		events:  events,
		clock:   clk,
		hub:     hub,
	}
}

// Register creates an attendance record for the pair, stamped with the
// current time.
func (l *Ledger) Register(userID, eventID int64) (models.AttendanceRecord, error) {
	return l.RegisterAt(userID, eventID, l.clock.Now())
}

// RegisterAt creates an attendance record with an explicit registration
// time. A user can hold at most one record per event; a second attempt
// fails with ErrAlreadyRegistered and leaves the first record untouched.
// Unknown user or event ids fail with ErrInvalidReference.
//
// Registering also marks the event on the user's profile. It does not
// touch the event's registered-attendees counter; that counter belongs
// to the catalog and is advanced by the caller.
func (l *Ledger) RegisterAt(userID, eventID int64, at time.Time) (models.AttendanceRecord, error) {
	if userID <= 0 || eventID <= 0 {
		return models.AttendanceRecord{}, fmt.Errorf("register user %d for event %d: %w", userID, eventID, models.ErrInvalidInput)
	}

	l.mu.Lock()
	key := pairKey{userID: userID, eventID: eventID}
	if _, exists := l.byPair[key]; exists {
		l.mu.Unlock()
		return models.AttendanceRecord{}, fmt.Errorf("user %d, event %d: %w", userID, eventID, models.ErrAlreadyRegistered)
	}
	if _, ok := l.users.Get(userID); !ok {
		l.mu.Unlock()
		return models.AttendanceRecord{}, fmt.Errorf("user %d: %w", userID, models.ErrInvalidReference)
	}
	if _, ok := l.events.Get(eventID); !ok {
		l.mu.Unlock()
		return models.AttendanceRecord{}, fmt.Errorf("event %d: %w", eventID, models.ErrInvalidReference)
	}

	l.nextID++
	rec := models.AttendanceRecord{
		ID:           l.nextID,
		UserID:       userID,
		EventID:      eventID,
		RegisteredAt: at,
	}
	l.records[rec.ID] = rec
	l.byPair[key] = rec.ID
	l.order = append(l.order, rec.ID)
	l.users.AddEventID(userID, eventID)
	entry := l.logLocked(notifier.ChangeRegistered, rec.ID, userID, eventID, at)
	l.mu.Unlock()

	l.hub.Publish(entry.change())
	return rec, nil
}

// CheckIn marks the record as checked in and returns the updated record.
// It reports false when the record does not exist or is already checked
// in; a record can only be checked in once. The returned record is the
// state the transition produced, so callers need no follow-up lookup.
func (l *Ledger) CheckIn(attendanceID int64) (models.AttendanceRecord, bool) {
	l.mu.Lock()
	rec, entry, ok := l.checkInLocked(attendanceID)
	l.mu.Unlock()
	if ok {
		l.hub.Publish(entry.change())
	}
	return rec, ok
}

// CheckInByUserAndEvent checks in the record identified by the pair and
// returns the updated record. It reports false when no such record
// exists or it is already checked in.
func (l *Ledger) CheckInByUserAndEvent(userID, eventID int64) (models.AttendanceRecord, bool) {
	l.mu.Lock()
	id, exists := l.byPair[pairKey{userID: userID, eventID: eventID}]
	if !exists {
		l.mu.Unlock()
		return models.AttendanceRecord{}, false
	}
	rec, entry, ok := l.checkInLocked(id)
	l.mu.Unlock()
	if ok {
		l.hub.Publish(entry.change())
	}
	return rec, ok
}

func (l *Ledger) checkInLocked(attendanceID int64) (models.AttendanceRecord, ChangeEntry, bool) {
	rec, exists := l.records[attendanceID]
	if !exists || rec.IsCheckedIn {
		return models.AttendanceRecord{}, ChangeEntry{}, false
	}
	now := l.clock.Now()
	rec.IsCheckedIn = true
	rec.CheckedInAt = &now
	l.records[attendanceID] = rec
	entry := l.logLocked(notifier.ChangeCheckedIn, rec.ID, rec.UserID, rec.EventID, now)
	return cloneRecord(rec), entry, true
}

// UpdateNotes replaces the free-form notes on the record and returns the
// updated record. It reports false when the record does not exist.
func (l *Ledger) UpdateNotes(attendanceID int64, notes string) (models.AttendanceRecord, bool) {
	l.mu.Lock()
	rec, exists := l.records[attendanceID]
	if !exists {
		l.mu.Unlock()
		return models.AttendanceRecord{}, false
	}
	rec.Notes = notes
	l.records[attendanceID] = rec
	entry := l.logLocked(notifier.ChangeNotesUpdated, rec.ID, rec.UserID, rec.EventID, l.clock.Now())
	out := cloneRecord(rec)
	l.mu.Unlock()

	l.hub.Publish(entry.change())
	return out, true
}

// Cancel removes the record entirely. It reports false when the record
// does not exist. Cancelling frees the pair for a later re-registration
// but does not touch the event's registered-attendees counter, so a
// cancelled spot is not handed back to the catalog.
func (l *Ledger) Cancel(attendanceID int64) bool {
	l.mu.Lock()
	rec, exists := l.records[attendanceID]
	if !exists {
		l.mu.Unlock()
		return false
	}
	delete(l.records, attendanceID)
	delete(l.byPair, pairKey{userID: rec.UserID, eventID: rec.EventID})
	for i, id := range l.order {
		if id == attendanceID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	entry := l.logLocked(notifier.ChangeCancelled, rec.ID, rec.UserID, rec.EventID, l.clock.Now())
	l.mu.Unlock()

	l.hub.Publish(entry.change())
	return true
}

// GetByID returns the record with the given id.
func (l *Ledger) GetByID(attendanceID int64) (models.AttendanceRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.records[attendanceID]
	if !ok {
		return models.AttendanceRecord{}, false
	}
	return cloneRecord(rec), true
}

// Get returns the record for the pair, if any.
func (l *Ledger) Get(userID, eventID int64) (models.AttendanceRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byPair[pairKey{userID: userID, eventID: eventID}]
	if !ok {
		return models.AttendanceRecord{}, false
	}
	return cloneRecord(l.records[id]), true
}

// ByEvent returns all records for the event, most recently registered
// first.
func (l *Ledger) ByEvent(eventID int64) []models.AttendanceRecord {
	return l.filter(func(r models.AttendanceRecord) bool { return r.EventID == eventID })
}

// ByUser returns all records for the user, most recently registered
// first.
func (l *Ledger) ByUser(userID int64) []models.AttendanceRecord {
	return l.filter(func(r models.AttendanceRecord) bool { return r.UserID == userID })
}

// All returns every record in the ledger, most recently registered first.
func (l *Ledger) All() []models.AttendanceRecord {
	return l.filter(func(models.AttendanceRecord) bool { return true })
}

func (l *Ledger) filter(keep func(models.AttendanceRecord) bool) []models.AttendanceRecord {
	l.mu.RLock()
	out := make([]models.AttendanceRecord, 0)
	for _, id := range l.order {
		if rec := l.records[id]; keep(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.After(out[j].RegisteredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// RegisteredCount returns the number of registrations the ledger holds
// for the event. This is derived from the records and can drift from the
// catalog's registered-attendees counter.
func (l *Ledger) RegisteredCount(eventID int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.countLocked(eventID, false)
}

// CheckedInCount returns the number of checked-in registrations for the
// event.
func (l *Ledger) CheckedInCount(eventID int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.countLocked(eventID, true)
}

// AttendanceRate returns the percentage of the event's registrations
// that checked in, rounded to one decimal place. An event with no
// registrations has a rate of 0.
func (l *Ledger) AttendanceRate(eventID int64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	registered := l.countLocked(eventID, false)
	if registered == 0 {
		return 0
	}
	return round1(float64(l.countLocked(eventID, true)) / float64(registered) * 100)
}

// Stats summarizes the whole ledger.
func (l *Ledger) Stats() models.Statistics {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := models.Statistics{TotalRegistrations: len(l.records)}
	users := make(map[int64]struct{})
	events := make(map[int64]struct{})
	for _, rec := range l.records {
		users[rec.UserID] = struct{}{}
		events[rec.EventID] = struct{}{}
		if rec.IsCheckedIn {
			stats.TotalCheckedIn++
		}
	}
	stats.DistinctUsers = len(users)
	stats.DistinctEvents = len(events)
	if stats.TotalRegistrations > 0 {
		stats.AttendanceRate = round1(float64(stats.TotalCheckedIn) / float64(stats.TotalRegistrations) * 100)
	}
	return stats
}

func (l *Ledger) countLocked(eventID int64, checkedIn bool) int {
	n := 0
	for _, rec := range l.records {
		if rec.EventID != eventID {
			continue
		}
		if checkedIn && !rec.IsCheckedIn {
			continue
		}
		n++
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func cloneRecord(rec models.AttendanceRecord) models.AttendanceRecord {
	if rec.CheckedInAt != nil {
		t := *rec.CheckedInAt
		rec.CheckedInAt = &t
	}
	return rec
}
