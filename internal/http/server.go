// Package httpapi exposes the scheduling core as JSON over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hperssn/coachbook/internal/calendar"
	"github.com/hperssn/coachbook/internal/notify"
	"github.com/hperssn/coachbook/internal/schedule"
)

type Server struct {
	store        *schedule.Store
	booker       *schedule.Booker
	availability *schedule.Availability
	calendar     *calendar.Calendar
	reminders    *notify.Broadcaster
	clock        func() time.Time
	logger       *slog.Logger
}

type Option func(*Server)

func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithReminderStream enables GET /reminders/events.
func WithReminderStream(b *notify.Broadcaster) Option {
	return func(s *Server) {
		s.reminders = b
	}
}

func New(store *schedule.Store, availability *schedule.Availability, opts ...Option) *Server {
	s := &Server{
		store:        store,
		booker:       schedule.NewBooker(store, availability),
		availability: availability,
		calendar:     calendar.New(store, availability),
		clock:        time.Now,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(ExtractActor)

	r.Route("/clients", func(r chi.Router) {
		r.Post("/", s.createClient)
		r.Get("/", s.listClients)
		r.Get("/{id}", s.getClient)
		r.Put("/{id}", s.updateClient)
		r.Get("/{id}/sessions", s.clientSessions)
	})

	r.Post("/sessions", s.bookSession)
	r.Get("/sessions/{id}", s.getSession)

	r.Get("/availability", s.checkAvailability)
	r.Get("/calendar/{year}/{month}", s.monthView)
	r.Get("/days/{date}", s.dayView)

	if s.reminders != nil {
		r.Get("/reminders/events", StreamReminders(s.reminders))
	}

	return r
}
