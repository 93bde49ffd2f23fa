package notifier

import (
	"log"
	"sync"
	"time"
)

// ChangeKind identifies what a change notification describes.
type ChangeKind string

const (
	ChangeRegistered   ChangeKind = "registered"
	ChangeCheckedIn    ChangeKind = "checked_in"
	ChangeNotesUpdated ChangeKind = "notes_updated"
	ChangeCancelled    ChangeKind = "cancelled"
	ChangeLogin        ChangeKind = "login"
	ChangeLogout       ChangeKind = "logout"
)

// Change describes one committed mutation. Ledger changes carry a
// sequence number and the attendance/user/event ids; session changes
// carry the session id and the user id when one is logged in.
type Change struct {
	Seq          int64      `json:"seq,omitempty"`
	Kind         ChangeKind `json:"kind"`
	AttendanceID int64      `json:"attendance_id,omitempty"`
	UserID       int64      `json:"user_id,omitempty"`
	EventID      int64      `json:"event_id,omitempty"`
	SessionID    string     `json:"session_id,omitempty"`
	At           time.Time  `json:"at"`
}

// Handler receives committed changes. Handlers run on the hub's dispatch
// goroutine, in subscription order, after the mutating call has returned.
// Handlers must not block for long: one slow handler delays delivery to the
// handlers behind it, though never the mutating callers.
type Handler func(Change)

type subscriber struct {
	token   int64
	handler Handler
}

// Hub fans committed changes out to subscribers. Publish never blocks and
// never waits for handlers: changes are queued and delivered by a single
// dispatch goroutine, which preserves subscription order per change. A
// panicking handler is isolated so it cannot fail the mutating operation or
// starve later subscribers.
type Hub struct {
	mu        sync.Mutex
	subs      []subscriber
	nextToken int64
	queue     chan Change
	done      chan struct{}
	closed    bool
}

const queueSize = 256

// NewHub creates a hub and starts its dispatcher.
func NewHub() *Hub {
	h := &Hub{
		queue: make(chan Change, queueSize),
		done:  make(chan struct{}),
	}
	go h.dispatch()
	return h
}

// Subscribe registers a handler and returns a token for Unsubscribe.
func (h *Hub) Subscribe(fn Handler) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextToken++
	h.subs = append(h.subs, subscriber{token: h.nextToken, handler: fn})
	return h.nextToken
}

// Unsubscribe removes a previously registered handler. Unknown tokens are
// ignored. A change already dispatched may still reach the handler once
// after Unsubscribe returns.
func (h *Hub) Unsubscribe(token int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subs {
		if s.token == token {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

// Publish queues a change for delivery and returns immediately. If the queue
// is full or the hub is closed the change is dropped: notifications are
// advisory and must never block or fail a mutating operation.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	// The send happens under the lock so Close cannot close the queue
	// between the check and the send; the default case keeps the critical
	// section bounded.
	select {
	case h.queue <- c:
	default:
		log.Printf("notifier: queue full, dropping change seq=%d kind=%s", c.Seq, c.Kind)
	}
}

// Close stops the dispatcher after draining queued changes and waits for it
// to finish.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.queue)
	h.mu.Unlock()
	<-h.done
}

func (h *Hub) dispatch() {
	defer close(h.done)
	for c := range h.queue {
		h.mu.Lock()
		subs := make([]subscriber, len(h.subs))
		copy(subs, h.subs)
		h.mu.Unlock()
		for _, s := range subs {
			h.deliver(s, c)
		}
	}
}

func (h *Hub) deliver(s subscriber, c Change) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("notifier: subscriber panic: %v", r)
		}
	}()
	s.handler(c)
}
