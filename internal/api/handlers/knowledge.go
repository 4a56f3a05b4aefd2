package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/service"
)

type IngestionService interface {
	Ingest(ctx context.Context, in service.IngestInput) (*service.IngestResult, error)
	CreateDocument(ctx context.Context, in service.CreateDocumentInput) (*domain.KnowledgeItem, error)
}

type KnowledgeQuerier interface {
	Query(ctx context.Context, in service.QueryInput) ([]service.QueryHit, error)
}

type KnowledgeHandler struct {
	ingestion IngestionService
	retrieval KnowledgeQuerier
}

func NewKnowledgeHandler(ingestion IngestionService, retrieval KnowledgeQuerier) *KnowledgeHandler {
	return &KnowledgeHandler{ingestion: ingestion, retrieval: retrieval}
}

type IngestRequest struct {
	ItemID    string `json:"itemId"`
	FileName  string `json:"fileName"`
	Content   string `json:"content"`
	ObjectKey string `json:"objectKey"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
}

type IngestResponse struct {
	OK     bool   `json:"ok"`
	ItemID string `json:"itemId"`
	Chunks int    `json:"chunks"`
}

type QueryRequest struct {
	QueryVector []float32 `json:"queryVector"`
	Query       string    `json:"query"`
	K           *int      `json:"k"`
}

type CreateDocumentRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type CreateDocumentResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// Ingest extracts and indexes a base64-encoded file or a stored object.
func (h *KnowledgeHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.ItemID) == "" {
		api.Error(w, http.StatusBadRequest, "itemId is required")
		return
	}
	if req.Content == "" && req.ObjectKey == "" {
		api.Error(w, http.StatusBadRequest, "content or objectKey is required")
		return
	}
	if req.Content != "" && req.FileName == "" {
		api.Error(w, http.StatusBadRequest, "fileName is required")
		return
	}

	kind, err := domain.ParseKnowledgeKind(req.Kind)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	var content []byte
	if req.Content != "" {
		content, err = base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "content must be base64 encoded")
			return
		}
	}

	res, err := h.ingestion.Ingest(r.Context(), service.IngestInput{
		ItemID:    req.ItemID,
		FileName:  req.FileName,
		Content:   content,
		ObjectKey: req.ObjectKey,
		Kind:      kind,
		Title:     req.Title,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusOK, IngestResponse{OK: true, ItemID: res.ItemID, Chunks: res.Chunks})
}

func (h *KnowledgeHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.QueryVector) == 0 && strings.TrimSpace(req.Query) == "" {
		api.Error(w, http.StatusBadRequest, "queryVector or query is required")
		return
	}

	hits, err := h.retrieval.Query(r.Context(), service.QueryInput{
		Vector: req.QueryVector,
		Query:  req.Query,
		K:      req.K,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if hits == nil {
		hits = []service.QueryHit{}
	}

	api.JSON(w, http.StatusOK, hits)
}

// Create stores a plain-text document for later embedding.
func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	item, err := h.ingestion.CreateDocument(r.Context(), service.CreateDocumentInput{
		ID:    req.ID,
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.JSON(w, http.StatusCreated, CreateDocumentResponse{OK: true, ID: item.ID})
}
