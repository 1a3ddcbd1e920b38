package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hperssn/coachbook/internal/domain"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Conflicts []sessionResponse `json:"conflicts,omitempty"`
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, errorResponse{Error: message}, status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondDomainError maps core errors onto status codes. Internal errors are
// logged and hidden from the client.
func (s *Server) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondError(w, "internal error", status)
		return
	}

	resp := errorResponse{Error: err.Error()}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		for _, sess := range conflict.Sessions {
			resp.Conflicts = append(resp.Conflicts, toSessionResponse(sess))
		}
	}

	respondJSON(w, resp, status)
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(domain.ErrInvalidInput, err)
	}
	return nil
}
