package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hperssn/coachbook/internal/domain"
)

type ClientRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Goals        string    `json:"goals"`
	Notes        string    `json:"notes"`
	TrainingType string    `json:"trainingType"`
	ModuleCount  int       `json:"moduleCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SessionRecord struct {
	ID               string    `json:"id"`
	ClientID         string    `json:"clientId"`
	Date             time.Time `json:"date"`
	Duration         int       `json:"duration"`
	NotificationTime int       `json:"notificationTime"` // lead time in minutes
	Completed        bool      `json:"completed"`
	ModuleDeducted   bool      `json:"moduleDeducted"`
	NotificationSent bool      `json:"notificationSent"`
	EndTime          time.Time `json:"endTime"` // informational, recomputed on load
	CreatedAt        time.Time `json:"createdAt"`
}

func FromDomainClient(c domain.Client) ClientRecord {
	return ClientRecord{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Contact,
		Goals:        c.Goals,
		Notes:        c.Notes,
		TrainingType: string(c.TrainingType),
		ModuleCount:  c.ModuleCount,
		CreatedAt:    c.CreatedAt,
	}
}

func (r ClientRecord) ToDomain() domain.Client {
	return domain.Client{
		ID:           r.ID,
		Name:         r.Name,
		Contact:      r.Phone,
		Goals:        r.Goals,
		Notes:        r.Notes,
		TrainingType: domain.TrainingType(r.TrainingType),
		ModuleCount:  r.ModuleCount,
		CreatedAt:    r.CreatedAt,
	}
}

func FromDomainSession(s domain.Session) SessionRecord {
	return SessionRecord{
		ID:               s.ID,
		ClientID:         s.ClientID,
		Date:             s.Start,
		Duration:         s.DurationMin,
		NotificationTime: s.LeadMin,
		Completed:        s.Completed,
		ModuleDeducted:   s.ModuleDeducted,
		NotificationSent: s.NotificationSent,
		EndTime:          s.End(),
		CreatedAt:        s.CreatedAt,
	}
}

func (r SessionRecord) ToDomain() domain.Session {
	return domain.Session{
		ID:               r.ID,
		ClientID:         r.ClientID,
		Start:            r.Date,
		DurationMin:      r.Duration,
		LeadMin:          r.NotificationTime,
		Completed:        r.Completed,
		ModuleDeducted:   r.ModuleDeducted,
		NotificationSent: r.NotificationSent,
		CreatedAt:        r.CreatedAt,
	}
}

// encodeSnapshot serializes each collection as one ordered JSON array.
func encodeSnapshot(snap *Snapshot) (map[string][]byte, error) {
	clients := make([]ClientRecord, len(snap.Clients))
	for i, c := range snap.Clients {
		clients[i] = FromDomainClient(c)
	}

	sessions := make([]SessionRecord, len(snap.Sessions))
	for i, s := range snap.Sessions {
		sessions[i] = FromDomainSession(s)
	}

	clientsJSON, err := json.Marshal(clients)
	if err != nil {
		return nil, fmt.Errorf("encode clients: %w", err)
	}

	sessionsJSON, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("encode sessions: %w", err)
	}

	return map[string][]byte{
		CollectionClients:  clientsJSON,
		CollectionSessions: sessionsJSON,
	}, nil
}

// decodeSnapshot is the inverse of encodeSnapshot. Missing collections load
// as empty.
func decodeSnapshot(raw map[string][]byte) (*Snapshot, error) {
	snap := &Snapshot{}

	if data := raw[CollectionClients]; len(data) > 0 {
		var records []ClientRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode clients: %w", err)
		}
		for _, r := range records {
			snap.Clients = append(snap.Clients, r.ToDomain())
		}
	}

	if data := raw[CollectionSessions]; len(data) > 0 {
		var records []SessionRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode sessions: %w", err)
		}
		for _, r := range records {
			snap.Sessions = append(snap.Sessions, r.ToDomain())
		}
	}

	return snap, nil
}
