package handlers

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/gatherly-api/internal/notifier"
)

// readEvent reads one SSE event block (up to the blank line) and returns
// the event name and data line.
func readEvent(t *testing.T, scanner *bufio.Scanner) (string, string) {
	t.Helper()
	var name, data string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			return name, data
		}
		if v, ok := strings.CutPrefix(line, "event: "); ok {
			name = v
		}
		if v, ok := strings.CutPrefix(line, "data: "); ok {
			data = v
		}
	}
	t.Fatalf("stream ended early: %v", scanner.Err())
	return "", ""
}

func TestStream(t *testing.T) {
	hub := notifier.NewHub()
	defer hub.Close()
	h := NewStreamHandler(hub)

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q", got)
	}

	scanner := bufio.NewScanner(resp.Body)

	// The connected preamble proves the subscription is in place before
	// anything is published.
	name, _ := readEvent(t, scanner)
	if name != "connected" {
		t.Fatalf("first event = %q, want connected", name)
	}

	hub.Publish(notifier.Change{
		Seq:          1,
		Kind:         notifier.ChangeRegistered,
		AttendanceID: 7,
		UserID:       1,
		EventID:      2,
		At:           time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
	})

	name, data := readEvent(t, scanner)
	if name != string(notifier.ChangeRegistered) {
		t.Errorf("event = %q, want %q", name, notifier.ChangeRegistered)
	}
	for _, want := range []string{`"seq":1`, `"attendance_id":7`, `"user_id":1`, `"event_id":2`} {
		if !strings.Contains(data, want) {
			t.Errorf("data = %s, missing %s", data, want)
		}
	}
}
