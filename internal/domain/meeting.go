package domain

import (
	"fmt"
	"time"
)

// MeetingType is a reusable meeting configuration
type MeetingType struct {
	ID                  string `json:"id" yaml:"id"`
	Name                string `json:"name" yaml:"name"`
	Description         string `json:"description,omitempty" yaml:"description"`
	DefaultGoal         string `json:"defaultGoal,omitempty" yaml:"defaultGoal"`
	DefaultInstructions string `json:"defaultInstructions,omitempty" yaml:"defaultInstructions"`
	GenerationTemplate  string `json:"generationTemplate,omitempty" yaml:"generationTemplate"`
}

// Persona is a simulated meeting participant
type Persona struct {
	ID                string `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	Role              string `json:"role" yaml:"role"`
	SystemInstruction string `json:"systemInstruction" yaml:"systemInstruction"`
}

// Participant is a real attendee reported by an external recorder.
type Participant struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Transcript sources
const (
	TranscriptSourceGenerated = "generated"
	TranscriptSourceFireflies = "fireflies"
)

// UnknownMeetingType is recorded when no meeting type could be resolved.
const UnknownMeetingType = "unknown"

// Transcript is the persisted record of a meeting
type Transcript struct {
	ID                string
	MeetingID         string
	MeetingTypeID     string
	Text              string
	AttendeeIDs       []string
	Participants      []Participant
	KnowledgeRefs     []KnowledgeRef
	QueryEmbedding    []float32
	Goal              string
	Instructions      string
	AttachedFileNames []string
	Source            string
	CreatedAt         time.Time
}

// ValidateMeetingType validates a MeetingType instance
func ValidateMeetingType(m *MeetingType) error {
	if m == nil {
		return fmt.Errorf("meeting type cannot be nil")
	}
	if m.ID == "" {
		return fmt.Errorf("meeting type ID is required")
	}
	if m.Name == "" {
		return fmt.Errorf("meeting type Name is required")
	}
	return nil
}

// ValidatePersona validates a Persona instance
func ValidatePersona(p *Persona) error {
	if p == nil {
		return fmt.Errorf("persona cannot be nil")
	}
	if p.ID == "" {
		return fmt.Errorf("persona ID is required")
	}
	if p.Name == "" {
		return fmt.Errorf("persona Name is required")
	}
	if p.Role == "" {
		return fmt.Errorf("persona Role is required")
	}
	return nil
}

// ValidateTranscript validates a Transcript instance
func ValidateTranscript(t *Transcript) error {
	if t == nil {
		return fmt.Errorf("transcript cannot be nil")
	}
	if t.ID == "" {
		return fmt.Errorf("transcript ID is required")
	}
	if t.MeetingID == "" {
		return fmt.Errorf("transcript MeetingID is required")
	}
	if t.Text == "" {
		return fmt.Errorf("transcript Text is required")
	}
	if t.MeetingTypeID == "" {
		return fmt.Errorf("transcript MeetingTypeID is required")
	}
	return nil
}
