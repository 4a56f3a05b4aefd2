package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/service"
)

type MeetingRunner interface {
	Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error)
}

type MeetingHandler struct {
	svc MeetingRunner
}

func NewMeetingHandler(svc MeetingRunner) *MeetingHandler {
	return &MeetingHandler{svc: svc}
}

type RunMeetingRequest struct {
	Name          string                 `json:"name"`
	MeetingTypeID string                 `json:"meetingTypeId"`
	Instructions  string                 `json:"instructions"`
	Goal          string                 `json:"goal"`
	AttendeeIDs   []string               `json:"attendeeIds"`
	AttachedFiles []service.AttachedFile `json:"attachedFiles"`
}

type RunMeetingResponse struct {
	OK            bool                  `json:"ok"`
	Transcript    string                `json:"transcript"`
	StorageID     string                `json:"storageId"`
	KnowledgeUsed []domain.KnowledgeRef `json:"knowledgeUsed,omitempty"`
}

// RunMeetingErrorResponse carries the generated transcript when only storing it failed.
type RunMeetingErrorResponse struct {
	Error      string `json:"error"`
	Transcript string `json:"transcript,omitempty"`
}

func (h *MeetingHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, f := range req.AttachedFiles {
		if f.Name == "" {
			api.Error(w, http.StatusBadRequest, "attached file name is required")
			return
		}
	}

	res, err := h.svc.Run(r.Context(), service.RunRequest{
		Name:          req.Name,
		MeetingTypeID: req.MeetingTypeID,
		Instructions:  req.Instructions,
		Goal:          req.Goal,
		AttendeeIDs:   req.AttendeeIDs,
		AttachedFiles: req.AttachedFiles,
	})
	if err != nil {
		body := RunMeetingErrorResponse{Error: api.ErrorMessage(err)}
		if res != nil {
			body.Transcript = res.Transcript
		}
		api.JSON(w, api.DomainErrorToHTTP(err), body)
		return
	}

	api.JSON(w, http.StatusOK, RunMeetingResponse{
		OK:            true,
		Transcript:    res.Transcript,
		StorageID:     res.StorageID,
		KnowledgeUsed: res.KnowledgeUsed,
	})
}
