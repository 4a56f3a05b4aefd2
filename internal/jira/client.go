// Package jira fetches issues from the Jira Cloud REST API.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/timberyard/meetingassist/internal/domain"
)

const unassigned = "Unassigned"

// Issue is the normalized view of a Jira issue.
type Issue struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Assignee    string `json:"assignee"`
}

type Config struct {
	Domain   string
	Email    string
	APIToken string
	// BaseURL overrides https://{Domain}.
	BaseURL string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	email      string
	apiToken   string
}

// NewClient returns a client with bounded retries on transport errors and
// 429/5xx responses.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.RetryMax = 3
	retryClient.CheckRetry = retryablehttp.ErrorPropagatedRetryPolicy
	retryClient.Logger = nil
	if logger != nil {
		retryClient.Logger = logger
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + cfg.Domain
	}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      cfg.Email,
		apiToken:   cfg.APIToken,
	}
}

type issueResponse struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
		Status      *struct {
			Name string `json:"name"`
		} `json:"status"`
		Assignee *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
	} `json:"fields"`
}

// GetIssue fetches a single issue by key or numeric ID.
func (c *Client) GetIssue(ctx context.Context, issueID string) (*Issue, error) {
	if strings.TrimSpace(issueID) == "" {
		return nil, domain.Wrap(domain.ErrMissingRequiredField, fmt.Errorf("issue id is required"))
	}

	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s", c.baseURL, url.PathEscape(issueID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.Wrap(domain.ErrUpstream, fmt.Errorf("jira request failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrIssueNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.Wrap(domain.ErrUpstream, fmt.Errorf("jira rejected credentials: %s", resp.Status))
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, domain.Wrap(domain.ErrUpstream, fmt.Errorf("jira returned %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	var raw issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, domain.Wrap(domain.ErrUpstream, fmt.Errorf("failed to decode jira issue: %w", err))
	}

	issue := &Issue{
		ID:          raw.Key,
		Summary:     raw.Fields.Summary,
		Description: DescriptionText(raw.Fields.Description),
		Assignee:    unassigned,
	}
	if raw.Fields.Status != nil {
		issue.Status = raw.Fields.Status.Name
	}
	if raw.Fields.Assignee != nil && raw.Fields.Assignee.DisplayName != "" {
		issue.Assignee = raw.Fields.Assignee.DisplayName
	}
	return issue, nil
}
