package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/slides"
)

const proposalFileName = "discovery-proposal.pptx"

type ProposalService interface {
	Outline(ctx context.Context, transcriptIDs []string) ([]slides.Slide, error)
	Render(ctx context.Context, transcriptIDs []string) ([]byte, error)
}

type ProposalHandler struct {
	svc ProposalService
}

func NewProposalHandler(svc ProposalService) *ProposalHandler {
	return &ProposalHandler{svc: svc}
}

type ProposalRequest struct {
	MeetingIDs []string `json:"meetingIds"`
	Format     string   `json:"format"`
}

type ProposalOutlineResponse struct {
	OK     bool           `json:"ok"`
	Slides []slides.Slide `json:"slides"`
}

// Create builds a discovery proposal from stored transcripts, as a PPTX
// download or, with format "json", as the slide outline.
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.MeetingIDs) == 0 {
		api.Error(w, http.StatusBadRequest, "meetingIds is required")
		return
	}

	switch req.Format {
	case "json":
		outline, err := h.svc.Outline(r.Context(), req.MeetingIDs)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		api.JSON(w, http.StatusOK, ProposalOutlineResponse{OK: true, Slides: outline})
	case "", "pptx":
		deck, err := h.svc.Render(r.Context(), req.MeetingIDs)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		w.Header().Set("Content-Type", slides.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+proposalFileName+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(deck)))
		w.WriteHeader(http.StatusOK)
		w.Write(deck)
	default:
		api.Error(w, http.StatusBadRequest, "format must be pptx or json")
	}
}
