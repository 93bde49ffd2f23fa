package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gatherly/gatherly-api/internal/config"
	"github.com/gatherly/gatherly-api/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(
	r *chi.Mux,
	cfg *config.Config,
	sessions *session.Manager,
	events *EventHandler,
	users *UserHandler,
	attendance *AttendanceHandler,
	sessionHandler *SessionHandler,
	stream *StreamHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(CORS(cfg.AllowedOrigins))
	}
	r.Use(sessions.Renew)

	// Initialize Huma API
	apiConfig := huma.DefaultConfig("Gatherly API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: session.CookieName,
		},
	}
	api := humachi.New(r, apiConfig)

	// Raw routes: the health probe and the SSE stream stay outside huma
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/updates", stream.Stream)

	// Event catalog
	huma.Get(api, "/events", events.HandleListEvents)
	huma.Get(api, "/events/{id}", events.HandleGetEvent)
	huma.Get(api, "/events/{id}/attendance", events.HandleEventAttendance)
	huma.Get(api, "/events/{id}/stats", events.HandleEventStats)
	huma.Get(api, "/categories", events.HandleListCategories)

	// User directory
	huma.Post(api, "/users", users.HandleCreateUser)
	huma.Get(api, "/users", users.HandleListUsers)
	huma.Get(api, "/users/{id}", users.HandleGetUser)
	huma.Put(api, "/users/{id}", users.HandleUpdateUser, withCookieAuth)

	// Attendance ledger
	huma.Get(api, "/attendance", attendance.HandleListAttendance)
	huma.Post(api, "/attendance", attendance.HandleRegisterAttendance, withCookieAuth)
	huma.Post(api, "/attendance/check-in", attendance.HandleCheckInByPair, withCookieAuth)
	huma.Post(api, "/attendance/{id}/check-in", attendance.HandleCheckIn, withCookieAuth)
	huma.Put(api, "/attendance/{id}/notes", attendance.HandleUpdateNotes, withCookieAuth)
	huma.Delete(api, "/attendance/{id}", attendance.HandleCancelAttendance, withCookieAuth)
	huma.Get(api, "/stats", attendance.HandleStats)

	// Sessions
	huma.Post(api, "/login", sessionHandler.HandleLogin)
	huma.Post(api, "/logout", sessionHandler.HandleLogout)
	huma.Get(api, "/me", sessionHandler.HandleMe, withCookieAuth)
	huma.Get(api, "/history", sessionHandler.HandleHistory, withCookieAuth)
}

func withCookieAuth(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}}
}
