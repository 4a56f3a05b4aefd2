package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/events"
	"github.com/timberyard/meetingassist/internal/extract"
	"github.com/timberyard/meetingassist/internal/prompt"
	"github.com/timberyard/meetingassist/internal/retrieval"
	"github.com/timberyard/meetingassist/internal/telemetry"
)

const (
	// DefaultTopK is the number of knowledge items retrieved per run.
	DefaultTopK = 3
	// DefaultRetrievalQuery is embedded when a run has neither instructions nor goal.
	DefaultRetrievalQuery = "general meeting"
)

// AttachedFile is a file supplied with a run request
type AttachedFile struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"` // "base64" or empty for raw text
}

// RunRequest describes one meeting to facilitate
type RunRequest struct {
	Name          string
	MeetingTypeID string
	Instructions  string
	Goal          string
	AttendeeIDs   []string
	AttachedFiles []AttachedFile
}

// RunResult is returned by MeetingService.Run. On a persistence failure the
// result still carries the generated transcript.
type RunResult struct {
	Transcript    string
	StorageID     string
	KnowledgeUsed []domain.KnowledgeRef
}

// MeetingServiceConfig holds the optional collaborators of MeetingService
type MeetingServiceConfig struct {
	// Ranker is nil when retrieval is not configured.
	Ranker              retrieval.Ranker
	Publisher           EventPublisher
	TopK                int
	StoreQueryEmbedding bool
	Logger              *slog.Logger
}

// MeetingService runs AI-facilitated meetings
type MeetingService struct {
	meetingTypes        MeetingTypeRepositoryInterface
	personas            PersonaRepositoryInterface
	embedder            EmbeddingClient
	generator           Generator
	txRunner            TxRunner
	ranker              retrieval.Ranker
	publisher           EventPublisher
	topK                int
	storeQueryEmbedding bool
	logger              *slog.Logger
	uuidGen             UUIDGenerator
	now                 Clock
	retryWait           time.Duration
}

// NewMeetingService creates a new MeetingService instance
func NewMeetingService(
	meetingTypes MeetingTypeRepositoryInterface,
	personas PersonaRepositoryInterface,
	embedder EmbeddingClient,
	generator Generator,
	txRunner TxRunner,
	cfg MeetingServiceConfig,
) *MeetingService {
	s := &MeetingService{
		meetingTypes:        meetingTypes,
		personas:            personas,
		embedder:            embedder,
		generator:           generator,
		txRunner:            txRunner,
		ranker:              cfg.Ranker,
		publisher:           cfg.Publisher,
		topK:                cfg.TopK,
		storeQueryEmbedding: cfg.StoreQueryEmbedding,
		logger:              cfg.Logger,
		uuidGen:             &DefaultUUIDGenerator{},
		now:                 utcNow,
		retryWait:           defaultRetryWait,
	}
	if s.topK <= 0 {
		s.topK = DefaultTopK
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	return s
}

// resolved is everything a run derives before calling the model
type resolved struct {
	meetingType  *domain.MeetingType
	personas     []domain.Persona
	goal         string
	instructions string
	files        []string
	fileNames    []string
}

// Run facilitates one meeting: resolve configuration, retrieve knowledge,
// assemble the prompt, generate, and persist the transcript.
func (s *MeetingService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	ctx, span := telemetry.StartSpan(ctx, "MeetingService.Run", telemetry.SpanAttributes{
		MeetingTypeID: req.MeetingTypeID,
		Operation:     "run",
	})
	defer span.End()

	r := s.resolve(ctx, req)

	query := r.instructions
	if query == "" {
		query = r.goal
	}
	if query == "" {
		query = DefaultRetrievalQuery
	}
	knowledge, queryEmbedding := s.retrieve(ctx, query)

	meetingTypeName := ""
	template := ""
	if r.meetingType != nil {
		meetingTypeName = r.meetingType.Name
		template = r.meetingType.GenerationTemplate
	}
	text := prompt.Assemble(prompt.Input{
		MeetingTypeName:    meetingTypeName,
		Goal:               r.goal,
		Personas:           r.personas,
		Instructions:       r.instructions,
		AttachedFiles:      strings.Join(r.files, "\n\n"),
		Knowledge:          retrieval.FormatKnowledge(knowledge),
		GenerationTemplate: template,
	})

	generated, err := retryOnce(ctx, s.retryWait, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, text)
	})
	if err != nil {
		span.SetError(err)
		if domain.CodeOf(err) == "" {
			err = domain.Wrap(domain.ErrGenerationService, err)
		}
		return nil, err
	}

	result := &RunResult{
		Transcript:    generated,
		KnowledgeUsed: domain.RefsOf(knowledge),
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("request ended before transcript was stored: %w", err)
	}

	transcript := s.buildTranscript(req, r, generated, result.KnowledgeUsed, queryEmbedding)
	if err := s.persist(ctx, transcript); err != nil {
		span.SetError(err)
		s.logger.ErrorContext(ctx, "failed to persist transcript",
			slog.String("meeting_id", transcript.MeetingID),
			slog.Any("error", err),
		)
		return result, domain.Wrap(domain.ErrPersistence, err)
	}
	result.StorageID = transcript.ID
	span.SetData("storage_id", transcript.ID)

	evt := events.TranscriptCreated{
		TranscriptID:  transcript.ID,
		MeetingID:     transcript.MeetingID,
		MeetingTypeID: transcript.MeetingTypeID,
		Source:        transcript.Source,
		CreatedAt:     transcript.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.SubjectTranscriptCreated, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish transcript event",
			slog.String("transcript_id", transcript.ID),
			slog.Any("error", err),
		)
	}

	return result, nil
}

// uniqueIDs drops blank and repeated ids, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *MeetingService) resolve(ctx context.Context, req RunRequest) resolved {
	var r resolved

	if req.MeetingTypeID != "" {
		mt, err := s.meetingTypes.GetByID(ctx, req.MeetingTypeID)
		if err != nil {
			s.logger.WarnContext(ctx, "meeting type lookup failed, using defaults",
				slog.String("meeting_type_id", req.MeetingTypeID),
				slog.Any("error", err),
			)
		} else {
			r.meetingType = mt
		}
	}

	if ids := uniqueIDs(req.AttendeeIDs); len(ids) > 0 {
		personas, err := s.personas.GetByIDs(ctx, ids)
		if err != nil {
			s.logger.WarnContext(ctx, "persona lookup failed, continuing without participants",
				slog.Any("error", err),
			)
		}
		for _, p := range personas {
			if p != nil {
				r.personas = append(r.personas, *p)
			}
		}
	}

	var defaultGoal, defaultInstructions string
	if r.meetingType != nil {
		defaultGoal = r.meetingType.DefaultGoal
		defaultInstructions = r.meetingType.DefaultInstructions
	}
	r.goal = prompt.JoinNonEmpty(" — ", defaultGoal, req.Goal)
	r.instructions = prompt.JoinNonEmpty("\n\n", defaultInstructions, req.Instructions)

	for _, f := range req.AttachedFiles {
		r.fileNames = append(r.fileNames, f.Name)
		text, err := decodeAttachment(f)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping attached file",
				slog.String("file", f.Name),
				slog.Any("error", err),
			)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		r.files = append(r.files, fmt.Sprintf("### %s\n%s", f.Name, text))
	}

	return r
}

func decodeAttachment(f AttachedFile) (string, error) {
	data := []byte(f.Content)
	if strings.EqualFold(f.Encoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(f.Content)
		if err != nil {
			return "", domain.Wrap(domain.ErrParse, fmt.Errorf("invalid base64: %w", err))
		}
		data = decoded
	}
	return extract.ExtractFile(f.Name, data)
}

// retrieve returns the ranked knowledge for query and the query embedding.
// Any failure degrades to no knowledge.
func (s *MeetingService) retrieve(ctx context.Context, query string) ([]domain.ScoredItem, []float32) {
	if s.ranker == nil || s.embedder == nil {
		return nil, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "MeetingService.retrieve", telemetry.SpanAttributes{Operation: "retrieve"})
	defer span.End()

	vec, err := retryOnce(ctx, s.retryWait, func(ctx context.Context) ([]float32, error) {
		return s.embedder.GenerateEmbedding(ctx, query)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "query embedding failed, continuing without knowledge", slog.Any("error", err))
		return nil, nil
	}

	res, err := s.ranker.Rank(ctx, vec, s.topK)
	if err != nil {
		s.logger.WarnContext(ctx, "knowledge ranking failed, continuing without knowledge", slog.Any("error", err))
		return nil, vec
	}
	span.SetData("results", len(res.Items))
	return res.Items, vec
}

func (s *MeetingService) buildTranscript(
	req RunRequest,
	r resolved,
	text string,
	refs []domain.KnowledgeRef,
	queryEmbedding []float32,
) *domain.Transcript {
	now := s.now()

	meetingID := req.Name
	if meetingID == "" {
		meetingID = fmt.Sprintf("meeting.%d", now.UnixMilli())
	}

	meetingTypeID := domain.UnknownMeetingType
	switch {
	case r.meetingType != nil:
		meetingTypeID = r.meetingType.ID
	case req.MeetingTypeID != "":
		meetingTypeID = req.MeetingTypeID
	}

	attendees := make([]string, 0, len(r.personas))
	for _, p := range r.personas {
		attendees = append(attendees, p.ID)
	}

	t := &domain.Transcript{
		ID:                s.uuidGen.NewString(),
		MeetingID:         meetingID,
		MeetingTypeID:     meetingTypeID,
		Text:              text,
		AttendeeIDs:       attendees,
		KnowledgeRefs:     refs,
		Goal:              r.goal,
		Instructions:      r.instructions,
		AttachedFileNames: r.fileNames,
		Source:            domain.TranscriptSourceGenerated,
		CreatedAt:         now,
	}
	if s.storeQueryEmbedding {
		t.QueryEmbedding = queryEmbedding
	}
	return t
}

// persist stores the transcript and queues it as pending knowledge in one
// transaction.
func (s *MeetingService) persist(ctx context.Context, t *domain.Transcript) error {
	if err := domain.ValidateTranscript(t); err != nil {
		return err
	}
	item := domain.NewKnowledgeItem(t.ID, domain.KnowledgeKindTranscript, t.MeetingID, t.Text, t.CreatedAt)
	return s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Transcripts().Create(ctx, t); err != nil {
			return err
		}
		return repos.Knowledge().Upsert(ctx, item)
	})
}
