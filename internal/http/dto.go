package httpapi

import (
	"time"

	"github.com/hperssn/coachbook/internal/domain"
)

type clientRequest struct {
	Name         string              `json:"name"`
	Contact      string              `json:"phone"`
	Goals        string              `json:"goals"`
	Notes        string              `json:"notes"`
	TrainingType domain.TrainingType `json:"trainingType"`
	ModuleCount  int                 `json:"moduleCount"`
}

type clientResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Contact      string              `json:"phone"`
	Goals        string              `json:"goals,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	TrainingType domain.TrainingType `json:"trainingType"`
	ModuleCount  int                 `json:"moduleCount"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func toClientResponse(c domain.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Name:         c.Name,
		Contact:      c.Contact,
		Goals:        c.Goals,
		Notes:        c.Notes,
		TrainingType: c.TrainingType,
		ModuleCount:  c.ModuleCount,
		CreatedAt:    c.CreatedAt,
	}
}

type sessionRequest struct {
	ClientID    string    `json:"clientId"`
	Start       time.Time `json:"date"`
	DurationMin int       `json:"duration"`
	LeadMin     int       `json:"notificationTime"`
}

type sessionResponse struct {
	ID               string    `json:"id"`
	ClientID         string    `json:"clientId"`
	Start            time.Time `json:"date"`
	End              time.Time `json:"endTime"`
	DurationMin      int       `json:"duration"`
	LeadMin          int       `json:"notificationTime"`
	Completed        bool      `json:"completed"`
	ModuleDeducted   bool      `json:"moduleDeducted"`
	NotificationSent bool      `json:"notificationSent"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{
		ID:               s.ID,
		ClientID:         s.ClientID,
		Start:            s.Start,
		End:              s.End(),
		DurationMin:      s.DurationMin,
		LeadMin:          s.LeadMin,
		Completed:        s.Completed,
		ModuleDeducted:   s.ModuleDeducted,
		NotificationSent: s.NotificationSent,
	}
}

func toSessionResponses(sessions []domain.Session) []sessionResponse {
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

type entryResponse struct {
	Session sessionResponse `json:"session"`
	Status  string          `json:"status"`
}

type clientSessionsResponse struct {
	History  []sessionResponse `json:"history"`
	Schedule []entryResponse   `json:"schedule"`
}

type availabilityResponse struct {
	Start     time.Time      `json:"start"`
	Durations []int          `json:"durations"`
	Checked   *checkResponse `json:"checked,omitempty"`
}

type checkResponse struct {
	DurationMin int               `json:"duration"`
	End         time.Time         `json:"endTime"`
	Status      string            `json:"status"`
	Conflicts   []sessionResponse `json:"conflicts,omitempty"`
}
