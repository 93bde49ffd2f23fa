package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/gatherly-api/internal/catalog"
	"github.com/gatherly/gatherly-api/internal/clock"
	"github.com/gatherly/gatherly-api/internal/config"
	"github.com/gatherly/gatherly-api/internal/directory"
	"github.com/gatherly/gatherly-api/internal/handlers"
	"github.com/gatherly/gatherly-api/internal/ledger"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/notifier"
	"github.com/gatherly/gatherly-api/internal/seed"
	"github.com/gatherly/gatherly-api/internal/session"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	clk := clock.NewSystem()
	hub := notifier.NewHub()

	// Build the in-memory stores
	var seedEvents []models.Event
	var seedUsers []models.User
	if cfg.SeedDemoData {
		seedEvents = seed.Events(clk.Now())
		seedUsers = seed.Users(clk.Now())
	}

	eventCatalog, err := catalog.New(seedEvents)
	if err != nil {
		log.Fatalf("Failed to build event catalog: %v", err)
	}
	userDirectory, err := directory.New(clk, seedUsers)
	if err != nil {
		log.Fatalf("Failed to build user directory: %v", err)
	}
	attendanceLedger := ledger.New(userDirectory, eventCatalog, clk, hub)

	// Replay the demo registrations before anyone subscribes, so boot
	// data does not spam the notification channel
	if cfg.SeedDemoData {
		if err := loadDemoData(attendanceLedger, clk.Now()); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Printf("Seeded %d events, %d users, %d registrations",
			len(seedEvents), len(seedUsers), len(seed.Registrations()))
	}

	// Initialize Discord notifier
	discordNotifier, err := notifier.NewDiscordNotifier(cfg.DiscordBotToken, cfg.DiscordNotificationsChannelID, userDirectory, eventCatalog)
	if err != nil {
		log.Printf("Discord notifier not initialized: %v", err)
	} else {
		hub.Subscribe(discordNotifier.HandleChange)
	}

	// Initialize Sessions
	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour
	sessions := session.NewManager(userDirectory, hub, clk, cfg.SessionSecret, sessionTTL)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessions.PruneIdle(sessionTTL); n > 0 {
				log.Printf("Pruned %d idle sessions", n)
			}
		}
	}()

	// Initialize Handlers
	eventHandler := handlers.NewEventHandler(eventCatalog, attendanceLedger)
	userHandler := handlers.NewUserHandler(userDirectory, sessions)
	attendanceHandler := handlers.NewAttendanceHandler(eventCatalog, userDirectory, attendanceLedger, sessions)
	sessionHandler := handlers.NewSessionHandler(sessions, attendanceLedger)
	streamHandler := handlers.NewStreamHandler(hub)

	// Initialize Router
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, sessions, eventHandler, userHandler, attendanceHandler, sessionHandler, streamHandler)

	// No WriteTimeout: /updates holds its response open indefinitely
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	hub.Close()
	log.Println("Server exited")
}

// loadDemoData replays the seed registrations through the ledger so the
// records, the change log and the user profiles all agree.
func loadDemoData(attendanceLedger *ledger.Ledger, now time.Time) error {
	for _, r := range seed.Registrations() {
		rec, err := attendanceLedger.RegisterAt(r.UserID, r.EventID, now.AddDate(0, 0, -r.DaysAgo))
		if err != nil {
			return fmt.Errorf("registration for user %d, event %d: %w", r.UserID, r.EventID, err)
		}
		if r.CheckedIn {
			attendanceLedger.CheckIn(rec.ID)
		}
		if r.Notes != "" {
			attendanceLedger.UpdateNotes(rec.ID, r.Notes)
		}
	}
	return nil
}
