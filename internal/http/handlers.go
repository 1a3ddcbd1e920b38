package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hperssn/coachbook/internal/domain"
	"github.com/hperssn/coachbook/internal/schedule"
)

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decode(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c := domain.NewClient("", req.Name, req.Contact, req.TrainingType, req.ModuleCount)
	c.Goals = req.Goals
	c.Notes = req.Notes

	created, err := s.store.AddClient(r.Context(), *c)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.logger.Info("client created", "client", created.ID, "actor", Actor(r.Context()))
	respondJSON(w, toClientResponse(created), http.StatusCreated)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	clients := s.store.Clients()
	out := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	respondJSON(w, out, http.StatusOK)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClient(chi.URLParam(r, "id"))
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, toClientResponse(c), http.StatusOK)
}

// updateClient replaces the editable fields. Switching to the single plan
// clears the module balance.
func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decode(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var updated domain.Client
	err := s.store.Update(r.Context(), func(tx *schedule.Tx) error {
		c, err := tx.GetClient(chi.URLParam(r, "id"))
		if err != nil {
			return err
		}

		c.Name = req.Name
		c.Contact = req.Contact
		c.Goals = req.Goals
		c.Notes = req.Notes
		c.TrainingType = req.TrainingType
		c.ModuleCount = req.ModuleCount
		if c.TrainingType == domain.TrainingSingle {
			c.ModuleCount = 0
		}

		updated = c
		return tx.UpdateClient(c)
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	s.logger.Info("client updated", "client", updated.ID, "actor", Actor(r.Context()))
	respondJSON(w, toClientResponse(updated), http.StatusOK)
}

func (s *Server) clientSessions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	now := s.clock()

	history, err := s.calendar.History(id, now)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	entries, err := s.calendar.Schedule(id, now)
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	resp := clientSessionsResponse{
		History:  toSessionResponses(history),
		Schedule: make([]entryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Schedule = append(resp.Schedule, entryResponse{
			Session: toSessionResponse(e.Session),
			Status:  string(e.Status),
		})
	}

	respondJSON(w, resp, http.StatusOK)
}

func (s *Server) bookSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decode(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sess, err := s.booker.Book(r.Context(), schedule.Booking{
		ClientID:    req.ClientID,
		Start:       req.Start,
		DurationMin: req.DurationMin,
		LeadMin:     req.LeadMin,
	})
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}

	respondJSON(w, toSessionResponse(sess), http.StatusCreated)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		s.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, toSessionResponse(sess), http.StatusOK)
}

// checkAvailability lists the bookable durations at start. With duration set
// it also reports why that one duration can or cannot be booked.
func (s *Server) checkAvailability(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		respondError(w, "start must be an RFC 3339 timestamp", http.StatusBadRequest)
		return
	}

	resp := availabilityResponse{
		Start:     start,
		Durations: s.availability.AvailableDurations(start),
	}
	if resp.Durations == nil {
		resp.Durations = []int{}
	}

	if raw := r.URL.Query().Get("duration"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, "duration must be a number of minutes", http.StatusBadRequest)
			return
		}

		res, err := s.availability.Check(start, minutes)
		if err != nil {
			s.respondDomainError(w, r, err)
			return
		}

		resp.Checked = &checkResponse{
			DurationMin: minutes,
			End:         res.Interval.End,
			Status:      res.Status.String(),
		}
		if len(res.Conflicts) > 0 {
			resp.Checked.Conflicts = toSessionResponses(res.Conflicts)
		}
	}

	respondJSON(w, resp, http.StatusOK)
}

func (s *Server) monthView(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respondError(w, "invalid year", http.StatusBadRequest)
		return
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		respondError(w, "invalid month", http.StatusBadRequest)
		return
	}

	respondJSON(w, s.calendar.Month(year, time.Month(month), s.clock()), http.StatusOK)
}

func (s *Server) dayView(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(chi.URLParam(r, "date"), s.clock().Location())
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	respondJSON(w, s.calendar.Day(date), http.StatusOK)
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like 2006-01-02: %q", raw)
	}
	return date, nil
}
