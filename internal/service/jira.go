package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/timberyard/meetingassist/internal/domain"
	"github.com/timberyard/meetingassist/internal/jira"
	"github.com/timberyard/meetingassist/internal/prompt"
	"github.com/timberyard/meetingassist/internal/retrieval"
	"github.com/timberyard/meetingassist/internal/telemetry"
)

// KnowledgeRetriever answers knowledge queries
type KnowledgeRetriever interface {
	Query(ctx context.Context, in QueryInput) ([]QueryHit, error)
}

// AnalysisResult holds generated suggestions for an issue
type AnalysisResult struct {
	JiraID        string                `json:"jiraId"`
	Suggestions   string                `json:"suggestions"`
	KnowledgeUsed []domain.KnowledgeRef `json:"knowledgeUsed,omitempty"`
}

// JiraService looks up and analyzes Jira issues
type JiraService struct {
	issues    IssueFetcher
	retriever KnowledgeRetriever
	generator Generator
	logger    *slog.Logger
	retryWait time.Duration
}

// NewJiraService creates a new JiraService. issues is nil when Jira is not
// configured; retriever may be nil.
func NewJiraService(issues IssueFetcher, retriever KnowledgeRetriever, generator Generator, logger *slog.Logger) *JiraService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JiraService{
		issues:    issues,
		retriever: retriever,
		generator: generator,
		logger:    logger,
		retryWait: defaultRetryWait,
	}
}

// GetIssue returns the normalized issue
func (s *JiraService) GetIssue(ctx context.Context, issueID string) (*jira.Issue, error) {
	if s.issues == nil {
		return nil, domain.ErrJiraNotConfigured
	}
	return s.issues.GetIssue(ctx, issueID)
}

// Analyze proposes solution approaches, risks and next steps for an issue,
// grounded on related knowledge.
func (s *JiraService) Analyze(ctx context.Context, jiraID string) (*AnalysisResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "JiraService.Analyze", telemetry.SpanAttributes{
		ItemID:    jiraID,
		Operation: "analyze",
	})
	defer span.End()

	if strings.TrimSpace(jiraID) == "" {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, errors.New("jiraId is required"))
	}
	if s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}

	issue, err := s.GetIssue(ctx, jiraID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	var knowledge []domain.ScoredItem
	if s.retriever != nil {
		hits, err := s.retriever.Query(ctx, QueryInput{
			Query: prompt.JoinNonEmpty("\n\n", issue.Summary, issue.Description),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "knowledge lookup failed, analyzing without knowledge",
				slog.String("jira_id", jiraID),
				slog.Any("error", err),
			)
		}
		for _, h := range hits {
			knowledge = append(knowledge, domain.ScoredItem{
				Item:  domain.KnowledgeItem{ID: h.ID, Text: h.Text},
				Score: h.Score,
			})
		}
	}

	text := prompt.IssueAnalysis(prompt.IssueAnalysisInput{
		IssueID:     issue.ID,
		Summary:     issue.Summary,
		Description: issue.Description,
		Knowledge:   retrieval.FormatKnowledge(knowledge),
	})

	suggestions, err := retryOnce(ctx, s.retryWait, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, text)
	})
	if err != nil {
		span.SetError(err)
		if domain.CodeOf(err) == "" {
			err = domain.Wrap(domain.ErrGenerationService, err)
		}
		return nil, fmt.Errorf("failed to analyze %s: %w", jiraID, err)
	}

	return &AnalysisResult{
		JiraID:        jiraID,
		Suggestions:   suggestions,
		KnowledgeUsed: domain.RefsOf(knowledge),
	}, nil
}
