package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/jira"
	"github.com/timberyard/meetingassist/internal/service"
)

type JiraService interface {
	GetIssue(ctx context.Context, issueID string) (*jira.Issue, error)
	Analyze(ctx context.Context, jiraID string) (*service.AnalysisResult, error)
}

type JiraHandler struct {
	svc JiraService
}

func NewJiraHandler(svc JiraService) *JiraHandler {
	return &JiraHandler{svc: svc}
}

type AnalyzeRequest struct {
	JiraID string `json:"jiraId"`
}

type AnalyzeResponse struct {
	OK            bool                  `json:"ok"`
	JiraID        string                `json:"jiraId"`
	Suggestions   string                `json:"suggestions"`
	KnowledgeUsed []domain.KnowledgeRef `json:"knowledgeUsed,omitempty"`
}

func (h *JiraHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := h.svc.GetIssue(r.Context(), chi.URLParam(r, "issueId"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, issue)
}

func (h *JiraHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.JiraID == "" {
		api.Error(w, http.StatusBadRequest, "jiraId is required")
		return
	}

	res, err := h.svc.Analyze(r.Context(), req.JiraID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, AnalyzeResponse{
		OK:            true,
		JiraID:        res.JiraID,
		Suggestions:   res.Suggestions,
		KnowledgeUsed: res.KnowledgeUsed,
	})
}
