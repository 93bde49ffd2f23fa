// Package directory holds registered users and enforces email uniqueness at
// registration time.
package directory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gatherly/gatherly-api/internal/clock"
	"github.com/gatherly/gatherly-api/internal/models"
)

// Directory is a thread-safe in-memory user store. Ids are allocated
// sequentially starting after the highest seeded id.
type Directory struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	order  []int64
	nextID int64
	clock  clock.Clock
}

// New builds a directory from seed users, in any order. Seeded users keep
// their ids, activity flags and registration times; emails must be unique
// across the whole seed, case-insensitively.
func New(clk clock.Clock, seed []models.User) (*Directory, error) {
	d := &Directory{
		users:  make(map[int64]models.User, len(seed)),
		order:  make([]int64, 0, len(seed)),
		nextID: 1,
		clock:  clk,
	}
	for _, u := range seed {
		if u.ID <= 0 {
			return nil, fmt.Errorf("user %q: non-positive id %d: %w", u.Email, u.ID, models.ErrInvalidInput)
		}
		if err := validateFields(u.FirstName, u.LastName, u.Email, u.Phone); err != nil {
			return nil, fmt.Errorf("user %q: %w", u.Email, err)
		}
		if _, exists := d.users[u.ID]; exists {
			return nil, fmt.Errorf("user %q: duplicate id %d: %w", u.Email, u.ID, models.ErrInvalidInput)
		}
		if _, ok := d.findByEmailLocked(u.Email); ok {
			return nil, fmt.Errorf("user %q: %w", u.Email, models.ErrDuplicateEmail)
		}
		d.users[u.ID] = cloneUser(u)
		d.order = append(d.order, u.ID)
		if u.ID >= d.nextID {
			d.nextID = u.ID + 1
		}
	}
	// Registrations append ids above the seeded maximum, so sorting once
	// here keeps the index ascending for good.
	sort.Slice(d.order, func(i, j int) bool { return d.order[i] < d.order[j] })
	return d, nil
}

// Register creates a new active user. The email must not be in use by any
// existing user, active or not, compared case-insensitively.
func (d *Directory) Register(firstName, lastName, email, phone, organization string) (models.User, error) {
	if err := validateFields(firstName, lastName, email, phone); err != nil {
		return models.User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.findByEmailLocked(email); ok {
		return models.User{}, models.ErrDuplicateEmail
	}

	u := models.User{
		ID:           d.nextID,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        strings.TrimSpace(email),
		Phone:        strings.TrimSpace(phone),
		Organization: strings.TrimSpace(organization),
		RegisteredAt: d.clock.Now(),
		IsActive:     true,
	}
	d.nextID++
	d.users[u.ID] = u
	d.order = append(d.order, u.ID)
	return cloneUser(u), nil
}

// Get returns the user with the given id, active or not.
func (d *Directory) Get(id int64) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return models.User{}, false
	}
	return cloneUser(u), true
}

// GetByEmail returns the user with the lowest id whose email matches
// case-insensitively.
func (d *Directory) GetByEmail(email string) (models.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.findByEmailLocked(email)
	if !ok {
		return models.User{}, false
	}
	return cloneUser(u), true
}

// ListActive returns active users in id order. Inactive users stay
// reachable through Get and GetByEmail.
func (d *Directory) ListActive() []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.User, 0, len(d.order))
	for _, id := range d.order {
		if u := d.users[id]; u.IsActive {
			out = append(out, cloneUser(u))
		}
	}
	return out
}

// Update replaces the mutable fields (name, email, phone, organization) of
// the user matched by id. Email uniqueness is enforced at registration only,
// not here, so an update can introduce a duplicate address.
func (d *Directory) Update(user models.User) error {
	if err := validateFields(user.FirstName, user.LastName, user.Email, user.Phone); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	existing, ok := d.users[user.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.FirstName = strings.TrimSpace(user.FirstName)
	existing.LastName = strings.TrimSpace(user.LastName)
	existing.Email = strings.TrimSpace(user.Email)
	existing.Phone = strings.TrimSpace(user.Phone)
	existing.Organization = strings.TrimSpace(user.Organization)
	d.users[user.ID] = existing
	return nil
}

// AddEventID appends eventID to the user's registered-event set. It is a
// silent no-op when the id is already present or the user does not exist.
func (d *Directory) AddEventID(userID, eventID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[userID]
	if !ok || u.HasEvent(eventID) {
		return
	}
	u.RegisteredEventIDs = append(append([]int64(nil), u.RegisteredEventIDs...), eventID)
	d.users[userID] = u
}

func (d *Directory) findByEmailLocked(email string) (models.User, bool) {
	needle := models.NormalizeEmail(email)
	for _, id := range d.order {
		if models.NormalizeEmail(d.users[id].Email) == needle {
			return d.users[id], true
		}
	}
	return models.User{}, false
}

func validateFields(firstName, lastName, email, phone string) error {
	for _, field := range []string{firstName, lastName, email, phone} {
		if strings.TrimSpace(field) == "" {
			return models.ErrInvalidInput
		}
	}
	return nil
}

func cloneUser(u models.User) models.User {
	u.RegisteredEventIDs = append([]int64(nil), u.RegisteredEventIDs...)
	return u
}
