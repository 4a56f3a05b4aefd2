package service

import (
	"context"
	"errors"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/pagination"
)

const (
	DefaultTranscriptPageSize = 20
	MaxTranscriptPageSize     = 100
)

// TranscriptService reads stored transcripts
type TranscriptService struct {
	transcripts TranscriptRepositoryInterface
}

// NewTranscriptService creates a new TranscriptService instance
func NewTranscriptService(transcripts TranscriptRepositoryInterface) *TranscriptService {
	return &TranscriptService{transcripts: transcripts}
}

// List returns one page of transcripts, newest first
func (s *TranscriptService) List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*TranscriptSummary], error) {
	if limit <= 0 {
		limit = DefaultTranscriptPageSize
	}
	if limit > MaxTranscriptPageSize {
		limit = MaxTranscriptPageSize
	}

	c, err := pagination.DecodeCursor(cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	page, err := s.transcripts.ListWithCursor(ctx, c, limit)
	if err != nil {
		return nil, err
	}

	items := page.Items
	if items == nil {
		items = []*TranscriptSummary{}
	}
	return &pagination.PageResult[*TranscriptSummary]{
		Items:   items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

func (s *TranscriptService) Get(ctx context.Context, id string) (*domain.Transcript, error) {
	if id == "" {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New("transcript id is required"))
	}
	return s.transcripts.GetByID(ctx, id)
}
