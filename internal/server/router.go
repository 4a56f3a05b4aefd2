package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timberyard/meetingassist/internal/api"
	"github.com/timberyard/meetingassist/internal/api/handlers"
	"github.com/timberyard/meetingassist/internal/api/middleware"
)

// DefaultMaxBodyBytes leaves room for base64-encoded attachments.
const DefaultMaxBodyBytes int64 = 25 * 1024 * 1024

type RouterConfig struct {
	APIToken     string
	MaxBodyBytes int64
	Logger       *slog.Logger

	MeetingHandler    *handlers.MeetingHandler
	CatalogHandler    *handlers.CatalogHandler
	TranscriptHandler *handlers.TranscriptHandler
	KnowledgeHandler  *handlers.KnowledgeHandler
	JiraHandler       *handlers.JiraHandler
	WebhookHandler    *handlers.WebhookHandler
	ProposalHandler   *handlers.ProposalHandler
	ExportHandler     *handlers.ExportHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Fireflies authenticates with its body signature, not the API token.
	r.Post("/webhooks/fireflies", cfg.WebhookHandler.Fireflies)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.APIToken))

		r.Post("/meetings/run", cfg.MeetingHandler.Run)

		r.Get("/options", cfg.CatalogHandler.Options)
		r.Route("/meeting-types", func(r chi.Router) {
			r.Get("/{id}", cfg.CatalogHandler.GetMeetingType)
			r.Put("/{id}", cfg.CatalogHandler.PutMeetingType)
		})
		r.Route("/personas", func(r chi.Router) {
			r.Get("/{id}", cfg.CatalogHandler.GetPersona)
			r.Put("/{id}", cfg.CatalogHandler.PutPersona)
		})

		r.Route("/transcripts", func(r chi.Router) {
			r.Get("/", cfg.TranscriptHandler.List)
			r.Get("/{id}", cfg.TranscriptHandler.Get)
		})

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/", cfg.KnowledgeHandler.Create)
			r.Post("/ingest", cfg.KnowledgeHandler.Ingest)
			r.Post("/query", cfg.KnowledgeHandler.Query)
		})

		r.Route("/jira", func(r chi.Router) {
			r.Get("/issues/{issueId}", cfg.JiraHandler.GetIssue)
			r.Post("/analyze", cfg.JiraHandler.Analyze)
		})

		r.Post("/proposals", cfg.ProposalHandler.Create)
		r.Post("/exports/training", cfg.ExportHandler.Training)
	})

	return r
}
