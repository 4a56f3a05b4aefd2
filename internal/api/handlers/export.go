package handlers

import (
	"context"
	"net/http"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/service"
)

type ExportService interface {
	Export(ctx context.Context) (*service.ExportResult, error)
}

type ExportHandler struct {
	svc ExportService
}

func NewExportHandler(svc ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

type ExportResponse struct {
	OK          bool   `json:"ok"`
	Transcripts int    `json:"transcripts"`
	Bucket      string `json:"bucket,omitempty"`
	Key         string `json:"key"`
}

// Training uploads the training set built from every stored transcript.
func (h *ExportHandler) Training(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Export(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, ExportResponse{
		OK:          true,
		Transcripts: res.Transcripts,
		Bucket:      res.Bucket,
		Key:         res.Key,
	})
}
