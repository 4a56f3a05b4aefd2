package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/service"
)

type CatalogService interface {
	Options(ctx context.Context) (*service.Options, error)
	GetMeetingType(ctx context.Context, id string) (*domain.MeetingType, error)
	GetPersona(ctx context.Context, id string) (*domain.Persona, error)
	PutMeetingType(ctx context.Context, m *domain.MeetingType) error
	PutPersona(ctx context.Context, p *domain.Persona) error
}

type CatalogHandler struct {
	svc CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Options(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, opts)
}

func (h *CatalogHandler) GetMeetingType(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMeetingType(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, m)
}

// PutMeetingType creates or replaces the meeting type named in the path.
func (h *CatalogHandler) PutMeetingType(w http.ResponseWriter, r *http.Request) {
	var m domain.MeetingType
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if m.ID != "" && m.ID != id {
		api.Error(w, http.StatusBadRequest, "id in body does not match path")
		return
	}
	m.ID = id

	if err := h.svc.PutMeetingType(r.Context(), &m); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, &m)
}

func (h *CatalogHandler) GetPersona(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPersona(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) PutPersona(w http.ResponseWriter, r *http.Request) {
	var p domain.Persona
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	if p.ID != "" && p.ID != id {
		api.Error(w, http.StatusBadRequest, "id in body does not match path")
		return
	}
	p.ID = id

	if err := h.svc.PutPersona(r.Context(), &p); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, &p)
}
