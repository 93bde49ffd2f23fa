package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gatherly/gatherly-api/internal/catalog"
	"github.com/gatherly/gatherly-api/internal/clock"
	"github.com/gatherly/gatherly-api/internal/directory"
	"github.com/gatherly/gatherly-api/internal/ledger"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/notifier"
	"github.com/gatherly/gatherly-api/internal/session"
)

var testNow = time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

// env wires real stores together the way main does. Event 3 is seeded
// full; user 2 (Alan) is deactivated.
type env struct {
	catalog   *catalog.Catalog
	directory *directory.Directory
	ledger    *ledger.Ledger
	sessions  *session.Manager
	hub       *notifier.Hub
	clk       *clock.Fixed
}

func newEnv(t *testing.T) *env {
	t.Helper()

	clk := clock.NewFixed(testNow)
	cat, err := catalog.New([]models.Event{
		{ID: 1, Name: "Go Conference", Date: testNow.AddDate(0, 0, 21), Location: "Hall B", Capacity: 100, Category: "Tech"},
		{ID: 2, Name: "Jazz Night", Date: testNow.AddDate(0, 0, 10), Capacity: 2, Category: "Music"},
		{ID: 3, Name: "Tiny Workshop", Date: testNow.AddDate(0, 0, 5), Capacity: 1, RegisteredAttendees: 1, Category: "Tech"},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	dir, err := directory.New(clk, []models.User{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-0100", RegisteredAt: testNow.AddDate(0, -1, 0), IsActive: true},
		{ID: 2, FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Phone: "555-0101", RegisteredAt: testNow.AddDate(0, -1, 0), IsActive: false},
		{ID: 3, FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Phone: "555-0102", RegisteredAt: testNow.AddDate(0, 0, -20), IsActive: true},
	})
	if err != nil {
		t.Fatalf("directory.New: %v", err)
	}

	hub := notifier.NewHub()
	t.Cleanup(hub.Close)

	return &env{
		catalog:   cat,
		directory: dir,
		ledger:    ledger.New(dir, cat, clk, hub),
		sessions:  session.NewManager(dir, hub, clk, "test-secret", 24*time.Hour),
		hub:       hub,
		clk:       clk,
	}
}

// login opens a session through the login handler and returns a Cookie
// header value for follow-up requests.
func (e *env) login(t *testing.T, email string) string {
	t.Helper()
	h := NewSessionHandler(e.sessions, e.ledger)
	req := &LoginRequest{}
	req.Body.Email = email
	resp, err := h.HandleLogin(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleLogin(%s): %v", email, err)
	}
	// The Set-Cookie value starts with name=value; that part is what a
	// browser echoes back on the Cookie header.
	header, _, _ := strings.Cut(resp.SetCookie, ";")
	return header
}

// assertStatus fails unless err is a huma error with the given status.
func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a status %d error, got nil", want)
	}
	var se huma.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error is not a status error: %v", err)
	}
	if se.GetStatus() != want {
		t.Fatalf("status = %d, want %d (%v)", se.GetStatus(), want, err)
	}
}
