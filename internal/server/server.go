package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dukerupert/eventcal/internal/config"
	"github.com/dukerupert/eventcal/internal/handler"
	"github.com/dukerupert/eventcal/internal/ical"
	"github.com/dukerupert/eventcal/internal/middleware"
	"github.com/dukerupert/eventcal/internal/store"
	ws "github.com/dukerupert/eventcal/internal/websocket"
)

type Server struct {
	db          *sql.DB
	cfg         config.Config
	hub         *ws.Hub
	eventH      *handler.EventHandler
	occurrenceH *handler.OccurrenceHandler
	calendarH   *handler.CalendarHandler
	logger      *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	eventStore := store.NewEventStore(db, cfg.Location)
	occurrenceStore := store.NewOccurrenceStore(db)

	icalOpts := ical.Options{
		Name:     "eventcal",
		Domain:   hostOf(cfg.BaseURL),
		Location: cfg.Location,
	}

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		eventH:      handler.NewEventHandler(eventStore, hub, logger.With("component", "event")),
		occurrenceH: handler.NewOccurrenceHandler(eventStore, occurrenceStore, hub, logger.With("component", "occurrence")),
		calendarH:   handler.NewCalendarHandler(eventStore, icalOpts, logger.With("component", "calendar")),
		logger:      logger,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.cfg.WSOrigins, s.logger.With("component", "websocket")))

	// Event API routes
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Recurrence expansion
	mux.HandleFunc("GET /api/events/{id}/occurrences", s.eventH.Occurrences)
	mux.HandleFunc("GET /api/events/{id}/dates", s.eventH.Dates)
	mux.HandleFunc("GET /api/events/{id}/month", s.eventH.Month)
	mux.HandleFunc("GET /api/events/{id}/week", s.eventH.Week)

	// Occurrence records
	mux.HandleFunc("POST /api/events/{id}/occurrence-records", s.occurrenceH.Create)
	mux.HandleFunc("GET /api/events/{id}/occurrence-records", s.occurrenceH.List)
	mux.HandleFunc("DELETE /api/occurrence-records/{id}", s.occurrenceH.Delete)

	// Whole-calendar views
	mux.HandleFunc("GET /api/calendar", s.calendarH.Feed)
	mux.HandleFunc("GET /calendar.ics", s.calendarH.ICS)

	var h http.Handler = mux
	if s.cfg.AuthUsername != "" {
		h = middleware.BasicAuth(s.cfg.AuthUsername, s.cfg.AuthPasswordHash, "/health")(h)
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return u.Hostname()
}
