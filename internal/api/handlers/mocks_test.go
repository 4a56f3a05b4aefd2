package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

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

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Options(ctx context.Context) (*service.Options, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Options), args.Error(1)
}

func (m *MockCatalogService) GetMeetingType(ctx context.Context, id string) (*domain.MeetingType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeetingType), args.Error(1)
}

func (m *MockCatalogService) GetPersona(ctx context.Context, id string) (*domain.Persona, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Persona), args.Error(1)
}

func (m *MockCatalogService) PutMeetingType(ctx context.Context, mt *domain.MeetingType) error {
	args := m.Called(ctx, mt)
	return args.Error(0)
}

func (m *MockCatalogService) PutPersona(ctx context.Context, p *domain.Persona) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type MockTranscriptService struct {
	mock.Mock
}

func (m *MockTranscriptService) List(ctx context.Context, cursor string, limit int) (*pagination.PageResult[*service.TranscriptSummary], error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*service.TranscriptSummary]), args.Error(1)
}

func (m *MockTranscriptService) Get(ctx context.Context, id string) (*domain.Transcript, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transcript), args.Error(1)
}

type MockIngestionService struct {
	mock.Mock
}

func (m *MockIngestionService) Ingest(ctx context.Context, in service.IngestInput) (*service.IngestResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

func (m *MockIngestionService) CreateDocument(ctx context.Context, in service.CreateDocumentInput) (*domain.KnowledgeItem, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeItem), args.Error(1)
}

type MockKnowledgeQuerier struct {
	mock.Mock
}

func (m *MockKnowledgeQuerier) Query(ctx context.Context, in service.QueryInput) ([]service.QueryHit, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.QueryHit), args.Error(1)
}

type MockJiraService struct {
	mock.Mock
}

func (m *MockJiraService) GetIssue(ctx context.Context, issueID string) (*jira.Issue, error) {
	args := m.Called(ctx, issueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jira.Issue), args.Error(1)
}

func (m *MockJiraService) Analyze(ctx context.Context, jiraID string) (*service.AnalysisResult, error) {
	args := m.Called(ctx, jiraID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisResult), args.Error(1)
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

type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) Outline(ctx context.Context, ids []string) ([]slides.Slide, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]slides.Slide), args.Error(1)
}

func (m *MockProposalService) Render(ctx context.Context, ids []string) ([]byte, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Export(ctx context.Context) (*service.ExportResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func jsonRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withURLParams attaches chi route parameters to req.
func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func intPtr(v int) *int { return &v }
