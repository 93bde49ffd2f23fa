// Package session tracks who is logged in. Each caller gets an explicit
// Context owned by a Manager; there is no process-wide current user, so
// two browsers logged in as different people never see each other's
// state. Contexts are resolved from a signed cookie minted at login.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/gatherly/gatherly-api/internal/clock"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/notifier"
)

// UserSource is the slice of the user directory sessions need.
type UserSource interface {
	Get(id int64) (models.User, bool)
	GetByEmail(email string) (models.User, bool)
}

// Manager owns the live session contexts, keyed by opaque session id.
type Manager struct {
	mu       sync.Mutex
	contexts map[string]*Context

	users  UserSource
	hub    *notifier.Hub
	clock  clock.Clock
	secret []byte
	ttl    time.Duration
}

// NewManager returns a manager that signs session cookies with secret
// and expires them after ttl.
func NewManager(users UserSource, hub *notifier.Hub, clk clock.Clock, secret string, ttl time.Duration) *Manager {
	return &Manager{
		contexts: make(map[string]*Context),
		users:    users,
		hub:      hub,
		clock:    clk,
		secret:   []byte(secret),
		ttl:      ttl,
	}
}

// Open creates a logged-out context under a fresh session id.
func (m *Manager) Open() (*Context, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	c := &Context{
		id:       id,
		users:    m.users,
		hub:      m.hub,
		clock:    m.clock,
		lastSeen: m.clock.Now(),
	}
	m.mu.Lock()
	m.contexts[id] = c
	m.mu.Unlock()
	return c, nil
}

// Lookup resolves a session id to its context and marks it as seen.
func (m *Manager) Lookup(id string) (*Context, bool) {
	m.mu.Lock()
	c, ok := m.contexts[id]
	m.mu.Unlock()
	if ok {
		c.touch(m.clock.Now())
	}
	return c, ok
}

// Discard drops the context for the session id. Unknown ids are ignored.
func (m *Manager) Discard(id string) {
	m.mu.Lock()
	delete(m.contexts, id)
	m.mu.Unlock()
}

// PruneIdle drops contexts that have not been seen for at least idle and
// reports how many were removed. A context idle that long is unreachable
// anyway: the cookie that pointed at it has expired.
func (m *Manager) PruneIdle(idle time.Duration) int {
	cutoff := m.clock.Now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	pruned := 0
	for id, c := range m.contexts {
		if c.seen().Before(cutoff) {
			delete(m.contexts, id)
			pruned++
		}
	}
	return pruned
}

func newSessionID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}

// Context is one caller's login state.
type Context struct {
	mu       sync.Mutex
	userID   int64
	lastSeen time.Time

	id    string
	users UserSource
	hub   *notifier.Hub
	clock clock.Clock
}

// ID returns the opaque session id.
func (c *Context) ID() string {
	return c.id
}

// Login looks the email up in the directory and stores the user as the
// session's current user. It reports false for unknown emails and for
// deactivated users, without changing the session.
func (c *Context) Login(email string) bool {
	user, ok := c.users.GetByEmail(email)
	if !ok || !user.IsActive {
		return false
	}

	c.mu.Lock()
	c.userID = user.ID
	c.mu.Unlock()

	c.hub.Publish(notifier.Change{
		Kind:      notifier.ChangeLogin,
		UserID:    user.ID,
		SessionID: c.id,
		At:        c.clock.Now(),
	})
	return true
}

// Logout clears the current user. It is a no-op on a logged-out session.
func (c *Context) Logout() {
	c.mu.Lock()
	userID := c.userID
	c.userID = 0
	c.mu.Unlock()
	if userID == 0 {
		return
	}

	c.hub.Publish(notifier.Change{
		Kind:      notifier.ChangeLogout,
		UserID:    userID,
		SessionID: c.id,
		At:        c.clock.Now(),
	})
}

// IsLoggedIn reports whether the session has a current user.
func (c *Context) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID != 0
}

// CurrentUser returns the session's user, freshly loaded from the
// directory so profile edits made after login show through.
func (c *Context) CurrentUser() (models.User, bool) {
	c.mu.Lock()
	userID := c.userID
	c.mu.Unlock()
	if userID == 0 {
		return models.User{}, false
	}
	return c.users.Get(userID)
}

func (c *Context) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *Context) seen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}
