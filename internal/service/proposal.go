package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/prompt"
	"github.com/timberyard/meetingassist/internal/slides"
	"github.com/timberyard/meetingassist/internal/telemetry"
)

// ProposalService turns meeting transcripts into a discovery proposal deck
type ProposalService struct {
	transcripts TranscriptRepositoryInterface
	generator   Generator
	now         Clock
	retryWait   time.Duration
}

// NewProposalService creates a new ProposalService instance
func NewProposalService(transcripts TranscriptRepositoryInterface, generator Generator) *ProposalService {
	return &ProposalService{
		transcripts: transcripts,
		generator:   generator,
		now:         utcNow,
		retryWait:   defaultRetryWait,
	}
}

// Outline generates the slide outline for the given transcripts
func (s *ProposalService) Outline(ctx context.Context, transcriptIDs []string) ([]slides.Slide, error) {
	ctx, span := telemetry.StartSpan(ctx, "ProposalService.Outline", telemetry.SpanAttributes{Operation: "proposal"})
	defer span.End()

	if len(transcriptIDs) == 0 {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New("no meetingIds provided"))
	}
	if s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	transcripts, err := s.transcripts.GetByIDs(ctx, transcriptIDs)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to load transcripts: %w", err)
	}
	if len(transcripts) == 0 {
		return nil, domain.ErrTranscriptNotFound
	}

	meetings := make([]prompt.MeetingContext, 0, len(transcripts))
	for _, t := range transcripts {
		meetings = append(meetings, prompt.MeetingContext{MeetingType: t.MeetingTypeID, Transcript: t.Text})
	}

	text, err := retryOnce(ctx, s.retryWait, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, prompt.ProposalOutline(meetings))
	})
	if err != nil {
		span.SetError(err)
		if domain.CodeOf(err) == "" {
			err = domain.Wrap(domain.ErrGenerationService, err)
		}
		return nil, err
	}
	return ParseOutline(text), nil
}

// Render generates the outline and renders it as a PPTX deck
func (s *ProposalService) Render(ctx context.Context, transcriptIDs []string) ([]byte, error) {
	outline, err := s.Outline(ctx, transcriptIDs)
	if err != nil {
		return nil, err
	}
	return slides.Render(slides.ProposalCover(s.now()), outline)
}

// ParseOutline decodes a model's JSON slide outline, tolerating a surrounding
// markdown code fence. Anything else becomes a single "Summary" slide.
func ParseOutline(text string) []slides.Slide {
	body := stripCodeFence(text)

	var outline []slides.Slide
	if err := json.Unmarshal([]byte(body), &outline); err == nil && len(outline) > 0 {
		return outline
	}
	return []slides.Slide{{Title: "Summary", Bullets: []string{text}}}
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
