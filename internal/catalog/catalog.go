// Package catalog holds the event inventory. Events are fixed at
// construction time; the only mutation the catalog accepts afterwards is the
// attendance counter increment, which is atomic with its capacity check.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gatherly/gatherly-api/internal/models"
)

// Catalog is a thread-safe in-memory event store.
type Catalog struct {
	mu     sync.RWMutex
	events map[int64]models.Event
	order  []int64
}

// New builds a catalog from seed events. Every event is validated and ids
// must be unique; the catalog owns copies, so later changes to the seed
// slice are not observed.
func New(events []models.Event) (*Catalog, error) {
	c := &Catalog{
		events: make(map[int64]models.Event, len(events)),
		order:  make([]int64, 0, len(events)),
	}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("event %q: %w", e.Name, err)
		}
		if _, exists := c.events[e.ID]; exists {
			return nil, fmt.Errorf("event %q: duplicate id %d: %w", e.Name, e.ID, models.ErrInvalidInput)
		}
		c.events[e.ID] = e
		c.order = append(c.order, e.ID)
	}
	return c, nil
}

// List returns all events ordered by date ascending; events on the same date
// keep their seed order.
func (c *Catalog) List() []models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sortedLocked()
}

// Get returns the event with the given id. Absence is a normal outcome, not
// an error.
func (c *Catalog) Get(id int64) (models.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	return e, ok
}

// ListByCategory returns events whose category matches case-insensitively,
// ordered by date ascending.
func (c *Catalog) ListByCategory(category string) []models.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Event, 0)
	for _, e := range c.sortedLocked() {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out
}

// Categories returns the distinct category names sorted alphabetically.
// Distinctness is case-insensitive; the first spelling seen wins.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, id := range c.order {
		category := c.events[id].Category
		if category == "" {
			continue
		}
		key := strings.ToLower(category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// IncrementAttendance bumps the registered-attendee counter for an event.
// It returns false, leaving state untouched, when the event does not exist
// or is already at capacity. The check and the increment are one critical
// section: concurrent callers can never push the counter past capacity.
func (c *Catalog) IncrementAttendance(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.events[id]
	if !ok || e.RegisteredAttendees >= e.Capacity {
		return false
	}
	e.RegisteredAttendees++
	c.events[id] = e
	return true
}

func (c *Catalog) sortedLocked() []models.Event {
	out := make([]models.Event, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.events[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
