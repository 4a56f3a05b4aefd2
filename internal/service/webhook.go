package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/events"
)

// FirefliesSignatureHeader carries the hex HMAC-SHA256 of the raw body.
const FirefliesSignatureHeader = "x-fireflies-signature"

// FirefliesPayload is the body Fireflies posts when a transcript is ready
type FirefliesPayload struct {
	MeetingID    string               `json:"meeting_id"`
	MeetingTitle string               `json:"meeting_title"`
	Participants []domain.Participant `json:"participants"`
	Transcript   string               `json:"transcript"`
}

// WebhookResult reports what a webhook delivery stored
type WebhookResult struct {
	TranscriptID string `json:"transcriptId"`
	Indexed      bool   `json:"indexed"`
}

// Indexer embeds a knowledge item immediately
type Indexer interface {
	IndexItem(ctx context.Context, item *domain.KnowledgeItem) (int, error)
}

// WebhookService stores transcripts pushed by external recorders
type WebhookService struct {
	secret    []byte
	txRunner  TxRunner
	indexer   Indexer
	publisher EventPublisher
	logger    *slog.Logger
	now       Clock
}

// NewWebhookService creates a new WebhookService. indexer may be nil, in
// which case the transcript is left for the backfill worker.
func NewWebhookService(secret string, txRunner TxRunner, indexer Indexer, publisher EventPublisher, logger *slog.Logger) *WebhookService {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &WebhookService{
		secret:    []byte(secret),
		txRunner:  txRunner,
		indexer:   indexer,
		publisher: publisher,
		logger:    logger,
		now:       utcNow,
	}
}

// Sign returns the signature Fireflies sends for body
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against the raw body in constant time
func (s *WebhookService) VerifySignature(body []byte, signature string) error {
	if len(s.secret) == 0 {
		return domain.ErrWebhookNotConfigured
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return domain.ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// HandleFireflies verifies and stores a Fireflies transcript, then indexes it.
// Indexing failures are logged; the transcript stays pending for backfill.
func (s *WebhookService) HandleFireflies(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if err := s.VerifySignature(body, signature); err != nil {
		return nil, err
	}

	var p FirefliesPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, domain.Wrap(domain.ErrParse, fmt.Errorf("invalid webhook body: %w", err))
	}
	if strings.TrimSpace(p.Transcript) == "" {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New("no transcript"))
	}
	if strings.TrimSpace(p.MeetingID) == "" {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New("meeting_id is required"))
	}

	meetingID := "fireflies." + p.MeetingID
	now := s.now()
	t := &domain.Transcript{
		ID:            meetingID,
		MeetingID:     meetingID,
		MeetingTypeID: domain.TranscriptSourceFireflies,
		Text:          p.Transcript,
		Participants:  p.Participants,
		Goal:          p.MeetingTitle,
		Source:        domain.TranscriptSourceFireflies,
		CreatedAt:     now,
	}
	title := p.MeetingTitle
	if title == "" {
		title = meetingID
	}
	item := domain.NewKnowledgeItem(t.ID, domain.KnowledgeKindTranscript, title, t.Text, now)

	err := s.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Transcripts().Create(ctx, t); err != nil {
			return err
		}
		return repos.Knowledge().Upsert(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.SubjectTranscriptCreated, events.TranscriptCreated{
		TranscriptID:  t.ID,
		MeetingID:     t.MeetingID,
		MeetingTypeID: t.MeetingTypeID,
		Source:        t.Source,
		CreatedAt:     t.CreatedAt,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish transcript event", slog.String("transcript_id", t.ID), slog.Any("error", err))
	}

	res := &WebhookResult{TranscriptID: t.ID}
	if s.indexer == nil {
		return res, nil
	}
	if _, err := s.indexer.IndexItem(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "failed to index fireflies transcript",
			slog.String("transcript_id", t.ID),
			slog.Any("error", err),
		)
		return res, nil
	}
	res.Indexed = true
	return res, nil
}
