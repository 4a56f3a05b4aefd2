package service

import (
	"context"

	"github.com/timberyard/meetingassist/internal/jira"
)

// EmbeddingClient turns text into a fixed-dimension vector
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Generator produces model output for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EventPublisher emits domain events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// ObjectStore reads and writes objects in the configured bucket
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// IssueFetcher loads Jira issues
type IssueFetcher interface {
	GetIssue(ctx context.Context, issueID string) (*jira.Issue, error)
}
