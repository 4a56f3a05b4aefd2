package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/service"
)

type WebhookService interface {
	HandleFireflies(ctx context.Context, body []byte, signature string) (*service.WebhookResult, error)
}

type WebhookHandler struct {
	svc WebhookService
}

func NewWebhookHandler(svc WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

type WebhookResponse struct {
	OK           bool   `json:"ok"`
	TranscriptID string `json:"transcriptId"`
	Indexed      bool   `json:"indexed"`
}

// Fireflies reads the raw body so the signature is checked over the exact
// bytes that were sent.
func (h *WebhookHandler) Fireflies(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	res, err := h.svc.HandleFireflies(r.Context(), body, r.Header.Get(service.FirefliesSignatureHeader))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, WebhookResponse{OK: true, TranscriptID: res.TranscriptID, Indexed: res.Indexed})
}
