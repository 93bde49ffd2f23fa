package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/gatherly-api/internal/notifier"
	"github.com/gatherly/gatherly-api/internal/session"
)

func TestHandleLogin(t *testing.T) {
	e := newEnv(t)
	h := NewSessionHandler(e.sessions, e.ledger)

	t.Run("active user gets a session cookie", func(t *testing.T) {
		req := &LoginRequest{}
		req.Body.Email = "ada@example.com"
		resp, err := h.HandleLogin(context.Background(), req)
		if err != nil {
			t.Fatalf("HandleLogin: %v", err)
		}
		if !strings.HasPrefix(resp.SetCookie, session.CookieName+"=") {
			t.Errorf("Set-Cookie = %q, want a %s cookie", resp.SetCookie, session.CookieName)
		}
		if resp.Body.User.ID != 1 {
			t.Errorf("user = %+v, want Ada", resp.Body.User)
		}
	})

	t.Run("unknown email is unauthorized", func(t *testing.T) {
		req := &LoginRequest{}
		req.Body.Email = "nobody@example.com"
		_, err := h.HandleLogin(context.Background(), req)
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("deactivated user is unauthorized", func(t *testing.T) {
		req := &LoginRequest{}
		req.Body.Email = "alan@example.com"
		_, err := h.HandleLogin(context.Background(), req)
		assertStatus(t, err, http.StatusUnauthorized)
	})
}

func TestHandleMe(t *testing.T) {
	e := newEnv(t)
	h := NewSessionHandler(e.sessions, e.ledger)

	t.Run("authenticated", func(t *testing.T) {
		req := &MeRequest{}
		req.Cookie = e.login(t, "grace@example.com")
		resp, err := h.HandleMe(context.Background(), req)
		if err != nil {
			t.Fatalf("HandleMe: %v", err)
		}
		if resp.Body.Email != "grace@example.com" {
			t.Errorf("user = %+v, want Grace", resp.Body)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := h.HandleMe(context.Background(), &MeRequest{})
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := &MeRequest{}
		req.Cookie = session.CookieName + "=not-a-token"
		_, err := h.HandleMe(context.Background(), req)
		assertStatus(t, err, http.StatusUnauthorized)
	})
}

func TestHandleLogout(t *testing.T) {
	e := newEnv(t)
	h := NewSessionHandler(e.sessions, e.ledger)

	cookie := e.login(t, "ada@example.com")

	req := &LogoutRequest{}
	req.Cookie = cookie
	resp, err := h.HandleLogout(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleLogout: %v", err)
	}
	if !strings.Contains(resp.SetCookie, "Max-Age=0") {
		t.Errorf("Set-Cookie = %q, want the cookie dropped", resp.SetCookie)
	}

	t.Run("session is gone afterwards", func(t *testing.T) {
		me := &MeRequest{}
		me.Cookie = cookie
		_, err := h.HandleMe(context.Background(), me)
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("logout without a session still clears the cookie", func(t *testing.T) {
		resp, err := h.HandleLogout(context.Background(), &LogoutRequest{})
		if err != nil {
			t.Fatalf("HandleLogout: %v", err)
		}
		if !strings.Contains(resp.SetCookie, "Max-Age=0") {
			t.Errorf("Set-Cookie = %q", resp.SetCookie)
		}
	})
}

func TestHandleHistory(t *testing.T) {
	e := newEnv(t)
	h := NewSessionHandler(e.sessions, e.ledger)

	rec, err := e.ledger.Register(1, 1)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	e.clk.Advance(time.Minute)
	if _, err := e.ledger.Register(3, 1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	e.clk.Advance(time.Minute)
	e.ledger.CheckIn(rec.ID)

	t.Run("requires a login", func(t *testing.T) {
		_, err := h.HandleHistory(context.Background(), &HistoryRequest{})
		assertStatus(t, err, http.StatusUnauthorized)
	})

	t.Run("returns the caller's entries newest first", func(t *testing.T) {
		req := &HistoryRequest{}
		req.Cookie = e.login(t, "ada@example.com")
		resp, err := h.HandleHistory(context.Background(), req)
		if err != nil {
			t.Fatalf("HandleHistory: %v", err)
		}
		if len(resp.Body) != 2 {
			t.Fatalf("got %d entries, want 2 (other users' entries must be excluded)", len(resp.Body))
		}
		if resp.Body[0].Kind != notifier.ChangeCheckedIn || resp.Body[1].Kind != notifier.ChangeRegistered {
			t.Errorf("entries = %+v, want check-in then registration", resp.Body)
		}
	})
}
