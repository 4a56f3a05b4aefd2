package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/telemetry"
)

const (
	// TrainingObjectKey is where the training set is uploaded.
	TrainingObjectKey = "training.jsonl"
	// TrainingDocsPrefix is the object prefix for supporting documents.
	TrainingDocsPrefix = "TrainingDocs"
	// TrainingContentType is the MIME type of the training set.
	TrainingContentType = "application/jsonl"
)

// TrainingExample is one line of the training set
type TrainingExample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ExportResult reports an upload of the training set
type ExportResult struct {
	Transcripts int    `json:"transcripts"`
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key"`
}

// ExportService builds the fine-tuning data set from stored transcripts
type ExportService struct {
	transcripts  TranscriptRepositoryInterface
	meetingTypes MeetingTypeRepositoryInterface
	personas     PersonaRepositoryInterface
	objects      ObjectStore
	bucket       string
}

// NewExportService creates a new ExportService. objects may be nil, in which
// case only Build is usable.
func NewExportService(
	transcripts TranscriptRepositoryInterface,
	meetingTypes MeetingTypeRepositoryInterface,
	personas PersonaRepositoryInterface,
	objects ObjectStore,
	bucket string,
) *ExportService {
	return &ExportService{
		transcripts:  transcripts,
		meetingTypes: meetingTypes,
		personas:     personas,
		objects:      objects,
		bucket:       bucket,
	}
}

// Build renders every transcript as a JSONL training example and returns the
// data with the number of lines.
func (s *ExportService) Build(ctx context.Context) ([]byte, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "ExportService.Build", telemetry.SpanAttributes{Operation: "export"})
	defer span.End()

	transcripts, err := s.transcripts.ListAll(ctx)
	if err != nil {
		span.SetError(err)
		return nil, 0, fmt.Errorf("failed to list transcripts: %w", err)
	}
	typeNames, err := s.meetingTypeNames(ctx)
	if err != nil {
		return nil, 0, err
	}
	personaNames, err := s.personaNames(ctx)
	if err != nil {
		return nil, 0, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, t := range transcripts {
		if err := enc.Encode(TrainingExample{
			Input:  trainingInput(t, typeNames, personaNames),
			Output: t.Text,
		}); err != nil {
			return nil, 0, fmt.Errorf("failed to encode transcript %s: %w", t.ID, err)
		}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), len(transcripts), nil
}

// Export builds the training set and uploads it to object storage
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	if s.objects == nil {
		return nil, domain.ErrStorageNotConfigured
	}
	data, n, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.objects.PutObject(ctx, TrainingObjectKey, data, TrainingContentType); err != nil {
		return nil, domain.Wrap(domain.ErrStorageOperationFailed, err)
	}
	return &ExportResult{Transcripts: n, Bucket: s.bucket, Key: TrainingObjectKey}, nil
}

func (s *ExportService) meetingTypeNames(ctx context.Context) (map[string]string, error) {
	types, err := s.meetingTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting types: %w", err)
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[t.ID] = t.Name
	}
	return names, nil
}

func (s *ExportService) personaNames(ctx context.Context) (map[string]string, error) {
	personas, err := s.personas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	names := make(map[string]string, len(personas))
	for _, p := range personas {
		names[p.ID] = p.Name
	}
	return names, nil
}

func trainingInput(t *domain.Transcript, typeNames, personaNames map[string]string) string {
	meetingType := typeNames[t.MeetingTypeID]
	if meetingType == "" {
		meetingType = t.MeetingTypeID
	}

	var attendees []string
	for _, id := range t.AttendeeIDs {
		if name := personaNames[id]; name != "" {
			attendees = append(attendees, name)
		} else {
			attendees = append(attendees, id)
		}
	}
	for _, p := range t.Participants {
		attendees = append(attendees, p.Name)
	}

	return strings.Join([]string{
		"Meeting Type: " + meetingType,
		"Attendees: " + joinOr(attendees, "N/A"),
		"Goal: " + t.Goal,
		"Instructions: " + t.Instructions,
		"Attached Files: " + joinOr(t.AttachedFileNames, "None"),
	}, "\n")
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
