package ledger

import (
	"time"

	"github.com/gatherly/gatherly-api/internal/notifier"
)

// ChangeEntry is one line of the ledger's append-only change log. Every
// successful mutation writes exactly one entry; failed operations write
// none. Entries survive cancellation of the record they describe, so the
// log is the audit trail of everything that ever happened.
type ChangeEntry struct {
	Seq          int64               `json:"seq"`
	Kind         notifier.ChangeKind `json:"kind"`
	AttendanceID int64               `json:"attendance_id"`
	UserID       int64               `json:"user_id"`
	EventID      int64               `json:"event_id"`
	At           time.Time           `json:"at"`
}

func (e ChangeEntry) change() notifier.Change {
	return notifier.Change{
		Seq:          e.Seq,
		Kind:         e.Kind,
		AttendanceID: e.AttendanceID,
		UserID:       e.UserID,
		EventID:      e.EventID,
		At:           e.At,
	}
}

// History returns the full change log, newest first.
func (l *Ledger) History() []ChangeEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ChangeEntry, len(l.history))
	for i, e := range l.history {
		out[len(l.history)-1-i] = e
	}
	return out
}

// HistoryByUser returns the change log entries for one user, newest first.
func (l *Ledger) HistoryByUser(userID int64) []ChangeEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]ChangeEntry, 0)
	for i := len(l.history) - 1; i >= 0; i-- {
		if l.history[i].UserID == userID {
			out = append(out, l.history[i])
		}
	}
	return out
}

// logLocked appends a change entry and hands it back for publication.
// Callers must hold the write lock.
func (l *Ledger) logLocked(kind notifier.ChangeKind, attendanceID, userID, eventID int64, at time.Time) ChangeEntry {
	l.nextSeq++
	entry := ChangeEntry{
		Seq:          l.nextSeq,
		Kind:         kind,
		AttendanceID: attendanceID,
		UserID:       userID,
		EventID:      eventID,
		At:           at,
	}
	l.history = append(l.history, entry)
	return entry
}
