package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TrainingType string

const (
	TrainingSingle TrainingType = "single"
	TrainingModule TrainingType = "module"
)

func (t TrainingType) Valid() bool {
	return t == TrainingSingle || t == TrainingModule
}

type Client struct {
	ID           string
	Name         string
	Contact      string
	Goals        string
	Notes        string
	TrainingType TrainingType
	ModuleCount  int
	CreatedAt    time.Time
}

func NewClient(id, name, contact string, trainingType TrainingType, moduleCount int) *Client {
	if id == "" {
		id = uuid.New().String()
	}

	if trainingType != TrainingModule {
		moduleCount = 0
	}

	return &Client{
		ID:           id,
		Name:         name,
		Contact:      contact,
		TrainingType: trainingType,
		ModuleCount:  moduleCount,
		CreatedAt:    time.Now(),
	}
}

func (c Client) OnModulePlan() bool {
	return c.TrainingType == TrainingModule
}

// HasCredit reports whether one more session can be deducted.
func (c Client) HasCredit() bool {
	return c.OnModulePlan() && c.ModuleCount > 0
}

func (c Client) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return invalid("client name is required")
	case !c.TrainingType.Valid():
		return invalid("unknown training type %q", c.TrainingType)
	case c.ModuleCount < 0:
		return invalid("module count %d is negative", c.ModuleCount)
	case c.TrainingType == TrainingSingle && c.ModuleCount != 0:
		return invalid("module count set on a single-session client")
	}
	return nil
}
