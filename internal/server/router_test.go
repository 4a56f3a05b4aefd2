package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/timberyard/meetingassist/internal/api/handlers"
	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/jira"
	"github.com/timberyard/meetingassist/internal/pagination"
	"github.com/timberyard/meetingassist/internal/service"
	"github.com/timberyard/meetingassist/internal/slides"
)

type MockMeetingRunner struct {
	mock.Mock
}

func (m *MockMeetingRunner) Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RunResult), args.Error(1)
}

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) HandleFireflies(ctx context.Context, body []byte, signature string) (*service.WebhookResult, error) {
	args := m.Called(ctx, body, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.WebhookResult), args.Error(1)
}

type stubCatalog struct{}

func (stubCatalog) Options(context.Context) (*service.Options, error) {
	return &service.Options{
		MeetingTypes: []service.MeetingTypeOption{},
		Personas:     []service.PersonaOption{{ID: "p1", Name: "Ana", Role: "QA"}},
	}, nil
}
func (stubCatalog) GetMeetingType(_ context.Context, id string) (*domain.MeetingType, error) {
	return &domain.MeetingType{ID: id, Name: "Daily"}, nil
}
func (stubCatalog) GetPersona(context.Context, string) (*domain.Persona, error) {
	return nil, domain.ErrPersonaNotFound
}
func (stubCatalog) PutMeetingType(context.Context, *domain.MeetingType) error { return nil }
func (stubCatalog) PutPersona(context.Context, *domain.Persona) error         { return nil }

type stubTranscripts struct{}

func (stubTranscripts) List(context.Context, string, int) (*pagination.PageResult[*service.TranscriptSummary], error) {
	return &pagination.PageResult[*service.TranscriptSummary]{Items: []*service.TranscriptSummary{}}, nil
}
func (stubTranscripts) Get(context.Context, string) (*domain.Transcript, error) {
	return nil, domain.ErrTranscriptNotFound
}

type stubKnowledge struct{}

func (stubKnowledge) Ingest(_ context.Context, in service.IngestInput) (*service.IngestResult, error) {
	return &service.IngestResult{ItemID: in.ItemID, Chunks: 1}, nil
}
func (stubKnowledge) CreateDocument(_ context.Context, in service.CreateDocumentInput) (*domain.KnowledgeItem, error) {
	return &domain.KnowledgeItem{ID: "doc-1"}, nil
}
func (stubKnowledge) Query(context.Context, service.QueryInput) ([]service.QueryHit, error) {
	return []service.QueryHit{{ID: "a", Score: 1, Text: "alpha"}}, nil
}

type stubJira struct{}

func (stubJira) GetIssue(_ context.Context, id string) (*jira.Issue, error) {
	return &jira.Issue{ID: id, Summary: "s", Status: "Done", Assignee: "Unassigned"}, nil
}
func (stubJira) Analyze(_ context.Context, id string) (*service.AnalysisResult, error) {
	return &service.AnalysisResult{JiraID: id, Suggestions: "x"}, nil
}

type stubProposals struct{}

func (stubProposals) Outline(context.Context, []string) ([]slides.Slide, error) { return nil, nil }
func (stubProposals) Render(context.Context, []string) ([]byte, error)          { return []byte("deck"), nil }

type stubExport struct{}

func (stubExport) Export(context.Context) (*service.ExportResult, error) {
	return &service.ExportResult{Key: service.TrainingObjectKey}, nil
}

func newTestRouter(token string, runner *MockMeetingRunner, webhooks *MockWebhookService) http.Handler {
	return NewRouter(RouterConfig{
		APIToken:          token,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		MeetingHandler:    handlers.NewMeetingHandler(runner),
		CatalogHandler:    handlers.NewCatalogHandler(stubCatalog{}),
		TranscriptHandler: handlers.NewTranscriptHandler(stubTranscripts{}),
		KnowledgeHandler:  handlers.NewKnowledgeHandler(stubKnowledge{}, stubKnowledge{}),
		JiraHandler:       handlers.NewJiraHandler(stubJira{}),
		WebhookHandler:    handlers.NewWebhookHandler(webhooks),
		ProposalHandler:   handlers.NewProposalHandler(stubProposals{}),
		ExportHandler:     handlers.NewExportHandler(stubExport{}),
	})
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := newTestRouter("secret", new(MockMeetingRunner), new(MockWebhookService))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	router := newTestRouter("secret", new(MockMeetingRunner), new(MockWebhookService))

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/meetings/run"},
		{http.MethodGet, "/options"},
		{http.MethodGet, "/meeting-types/daily"},
		{http.MethodPut, "/personas/p1"},
		{http.MethodGet, "/transcripts"},
		{http.MethodPost, "/knowledge"},
		{http.MethodPost, "/knowledge/ingest"},
		{http.MethodPost, "/knowledge/query"},
		{http.MethodGet, "/jira/issues/PROJ-1"},
		{http.MethodPost, "/jira/analyze"},
		{http.MethodPost, "/proposals"},
		{http.MethodPost, "/exports/training"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_AuthenticatedRoutes_WithValidAuth(t *testing.T) {
	router := newTestRouter("secret", new(MockMeetingRunner), new(MockWebhookService))

	tests := []struct {
		method   string
		path     string
		body     string
		expected int
	}{
		{http.MethodGet, "/options", "", http.StatusOK},
		{http.MethodGet, "/meeting-types/daily", "", http.StatusOK},
		{http.MethodGet, "/personas/ghost", "", http.StatusNotFound},
		{http.MethodGet, "/transcripts", "", http.StatusOK},
		{http.MethodGet, "/transcripts/t-9", "", http.StatusNotFound},
		{http.MethodPost, "/knowledge", `{"title":"t","text":"x"}`, http.StatusCreated},
		{http.MethodPost, "/knowledge/ingest", `{"itemId":"d","fileName":"a.txt","content":"aGk="}`, http.StatusOK},
		{http.MethodPost, "/knowledge/query", `{"queryVector":[1]}`, http.StatusOK},
		{http.MethodGet, "/jira/issues/PROJ-1", "", http.StatusOK},
		{http.MethodPost, "/jira/analyze", `{"jiraId":"PROJ-1"}`, http.StatusOK},
		{http.MethodPost, "/proposals", `{"meetingIds":["t-1"]}`, http.StatusOK},
		{http.MethodPost, "/exports/training", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Authorization", "Bearer secret")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, w.Code, w.Body.String())
		})
	}
}

func TestRouter_RunMeeting(t *testing.T) {
	runner := new(MockMeetingRunner)
	router := newTestRouter("", runner, new(MockWebhookService))

	runner.On("Run", mock.Anything, mock.MatchedBy(func(req service.RunRequest) bool {
		return req.Name == "Sprint Review"
	})).Return(&service.RunResult{Transcript: "hello", StorageID: "t-1"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/meetings/run", strings.NewReader(`{"name":"Sprint Review"}`)))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "t-1", resp["storageId"])
}

func TestRouter_WebhookSkipsBearerAuth(t *testing.T) {
	webhooks := new(MockWebhookService)
	router := newTestRouter("secret", new(MockMeetingRunner), webhooks)

	webhooks.On("HandleFireflies", mock.Anything, mock.Anything, "sig").
		Return(&service.WebhookResult{TranscriptID: "fireflies.abc"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/fireflies", strings.NewReader(`{"meeting_id":"abc"}`))
	req.Header.Set("x-fireflies-signature", "sig")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	webhooks.AssertExpectations(t)
}

func TestRouter_BodyLimit(t *testing.T) {
	router := NewRouter(RouterConfig{
		MaxBodyBytes:     8,
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		KnowledgeHandler: handlers.NewKnowledgeHandler(stubKnowledge{}, stubKnowledge{}),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/knowledge/query", strings.NewReader(`{"queryVector":[1,2,3]}`)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
