// Package seed holds the demo fixtures loaded at startup when
// SEED_DEMO_DATA is on: a spread of upcoming events (one already at
// capacity), a few users (one deactivated) and some registrations to
// make the stats endpoints show something.
package seed

import (
	"time"

	"github.com/gatherly/gatherly-api/internal/models"
)

// Events returns the demo catalog. Dates are relative to now so the
// events stay upcoming no matter when the server boots. The
// registered-attendees counters match the records in Registrations,
// except for the yoga class, which is seeded full to exercise the
// capacity path.
func Events(now time.Time) []models.Event {
	return []models.Event{
		{
			ID:                  1,
			Name:                "Go Conference 2026",
			Date:                now.AddDate(0, 0, 21),
			Location:            "Harbor Convention Center, Hall B",
			Description:         "Two tracks of talks on services, tooling and the runtime, with hallway time built in.",
			Capacity:            300,
			RegisteredAttendees: 2,
			Category:            "Tech",
			ImageURL:            "https://picsum.photos/seed/gatherly-1/800/400",
		},
		{
			ID:                  2,
			Name:                "Summer Jazz Evening",
			Date:                now.AddDate(0, 0, 10),
			Location:            "Riverside Amphitheater",
			Description:         "An open-air quartet set. Bring a blanket; the lawn opens an hour before the music.",
			Capacity:            150,
			RegisteredAttendees: 1,
			Category:            "Music",
			ImageURL:            "https://picsum.photos/seed/gatherly-2/800/400",
		},
		{
			ID:                  3,
			Name:                "Artisan Food Market",
			Date:                now.AddDate(0, 0, 35),
			Location:            "Old Town Square",
			Description:         "Forty local producers, tastings all day, and a bread workshop at noon.",
			Capacity:            500,
			Category:            "Food",
			ImageURL:            "https://picsum.photos/seed/gatherly-3/800/400",
		},
		{
			ID:                  4,
			Name:                "Startup Pitch Night",
			Date:                now.AddDate(0, 0, 5),
			Location:            "Foundry Cowork, 4th floor",
			Description:         "Eight teams, five minutes each, followed by investor Q&A and drinks.",
			Capacity:            80,
			RegisteredAttendees: 1,
			Category:            "Business",
			ImageURL:            "https://picsum.photos/seed/gatherly-4/800/400",
		},
		{
			ID:                  5,
			Name:                "Morning Yoga in the Park",
			Date:                now.AddDate(0, 0, 3),
			Location:            "Lakeside Park, east meadow",
			Description:         "A small sunrise class. Mats provided, numbers kept low on purpose.",
			Capacity:            25,
			RegisteredAttendees: 25,
			Category:            "Wellness",
			ImageURL:            "https://picsum.photos/seed/gatherly-5/800/400",
		},
		{
			ID:                  6,
			Name:                "City Marathon Expo",
			Date:                now.AddDate(0, 0, 60),
			Location:            "Exhibition Grounds",
			Description:         "Bib pickup, gear stands and pacing clinics in the run-up to race day.",
			Capacity:            1000,
			Category:            "Sports",
			ImageURL:            "https://picsum.photos/seed/gatherly-6/800/400",
		},
	}
}

// Users returns the demo directory. Alan is deactivated so listings and
// login have an excluded case to show.
func Users(now time.Time) []models.User {
	return []models.User{
		{
			ID:           1,
			FirstName:    "Ada",
			LastName:     "Lovelace",
			Email:        "ada@example.com",
			Phone:        "555-0100",
			Organization: "Analytical Engines Ltd",
			RegisteredAt: now.AddDate(0, -2, 0),
			IsActive:     true,
		},
		{
			ID:           2,
			FirstName:    "Grace",
			LastName:     "Hopper",
			Email:        "grace@example.com",
			Phone:        "555-0101",
			Organization: "Compiler Works",
			RegisteredAt: now.AddDate(0, -1, -12),
			IsActive:     true,
		},
		{
			ID:           3,
			FirstName:    "Alan",
			LastName:     "Turing",
			Email:        "alan@example.com",
			Phone:        "555-0102",
			Organization: "Hut Eight",
			RegisteredAt: now.AddDate(0, -1, 0),
			IsActive:     false,
		},
		{
			ID:           4,
			FirstName:    "Katherine",
			LastName:     "Johnson",
			Email:        "katherine@example.com",
			Phone:        "555-0103",
			Organization: "Flight Research",
			RegisteredAt: now.AddDate(0, 0, -9),
			IsActive:     true,
		},
	}
}

// Registration is one demo sign-up, replayed through the ledger at
// startup so the change log and stats line up with the records.
type Registration struct {
	UserID    int64
	EventID   int64
	DaysAgo   int
	CheckedIn bool
	Notes     string
}

// Registrations returns the demo sign-ups, oldest first.
func Registrations() []Registration {
	return []Registration{
		{UserID: 1, EventID: 1, DaysAgo: 14, Notes: "Interested in the concurrency talks"},
		{UserID: 2, EventID: 1, DaysAgo: 9, CheckedIn: true},
		{UserID: 2, EventID: 4, DaysAgo: 4},
		{UserID: 4, EventID: 2, DaysAgo: 2},
	}
}
