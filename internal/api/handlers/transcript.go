package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/pagination"
	"github.com/timberyard/meetingassist/internal/service"
)

type TranscriptService interface {
	List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*service.TranscriptSummary], error)
	Get(ctx context.Context, id string) (*domain.Transcript, error)
}

type TranscriptHandler struct {
	svc TranscriptService
}

func NewTranscriptHandler(svc TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{svc: svc}
}

type TranscriptResponse struct {
	ID                string                `json:"id"`
	MeetingID         string                `json:"meetingId"`
	MeetingTypeID     string                `json:"meetingTypeId"`
	Text              string                `json:"transcript"`
	AttendeeIDs       []string              `json:"attendeeIds"`
	Participants      []domain.Participant  `json:"participants,omitempty"`
	KnowledgeRefs     []domain.KnowledgeRef `json:"knowledgeRefs,omitempty"`
	Goal              string                `json:"goal,omitempty"`
	Instructions      string                `json:"instructions,omitempty"`
	AttachedFileNames []string              `json:"attachedFileNames,omitempty"`
	Source            string                `json:"source"`
	CreatedAt         string                `json:"createdAt"`
}

func transcriptToResponse(t *domain.Transcript) *TranscriptResponse {
	attendees := t.AttendeeIDs
	if attendees == nil {
		attendees = []string{}
	}
	return &TranscriptResponse{
		ID:                t.ID,
		MeetingID:         t.MeetingID,
		MeetingTypeID:     t.MeetingTypeID,
		Text:              t.Text,
		AttendeeIDs:       attendees,
		Participants:      t.Participants,
		KnowledgeRefs:     t.KnowledgeRefs,
		Goal:              t.Goal,
		Instructions:      t.Instructions,
		AttachedFileNames: t.AttachedFileNames,
		Source:            t.Source,
		CreatedAt:         t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := h.svc.List(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, page)
}

func (h *TranscriptHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, transcriptToResponse(t))
}
