// Package telemetry wires Sentry error reporting and tracing.
package telemetry

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/timberyard/meetingassist/internal/domain"
)

const serviceName = "meetingassist"

// Config holds the configuration for Sentry initialization.
type Config struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
	Debug            bool
}

// SampleRateFor returns the trace sample rate used for an environment.
func SampleRateFor(environment string) float64 {
	if environment == "" || environment == "development" {
		return 1.0
	}
	return 0.1
}

// Init initializes Sentry with tracing enabled and returns a flush function.
// With an empty DSN it does nothing.
func Init(cfg Config) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TracesSampleRate == 0 {
		cfg.TracesSampleRate = SampleRateFor(cfg.Environment)
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		EnableTracing:    true,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       serviceName,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return scrubEvent(event)
		},
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			var emptySpanID sentry.SpanID
			if ctx.Span.ParentSpanID != emptySpanID {
				if ctx.Span.Sampled.Bool() {
					return 1.0
				}
				return 0.0
			}
			return cfg.TracesSampleRate
		}),
	})
	if err != nil {
		slog.Warn("sentry: failed to initialize, continuing without tracing", slog.Any("error", err))
		return func() {}, nil
	}

	slog.Info("sentry: tracing initialized",
		slog.String("environment", cfg.Environment),
		slog.Float64("sample_rate", cfg.TracesSampleRate),
	)
	return func() { sentry.Flush(5 * time.Second) }, nil
}

var sensitiveHeaders = []string{"Authorization", "Cookie", "X-Fireflies-Signature", "X-Hub-Signature"}

// scrubEvent drops credentials and request bodies, which carry transcripts
// and attachment content, before an event leaves the process.
func scrubEvent(event *sentry.Event) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	event.Request.Data = ""
	event.Request.Cookies = ""
	for name := range event.Request.Headers {
		for _, s := range sensitiveHeaders {
			if strings.EqualFold(name, s) {
				event.Request.Headers[name] = "[Filtered]"
			}
		}
	}
	return event
}

// SpanAttributes contains common attributes for service spans.
type SpanAttributes struct {
	MeetingID     string
	MeetingTypeID string
	ItemID        string
	Operation     string
}

// Span wraps sentry.Span. The zero value is a no-op.
type Span struct {
	inner *sentry.Span
}

// End finishes the span.
func (s *Span) End() {
	if s.inner != nil {
		s.inner.Finish()
	}
}

// SetError marks the span failed. Client errors (validation, missing
// records) only set the status; everything else is also reported.
func (s *Span) SetError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	status, report := spanStatusFor(err)
	s.inner.Status = status
	if !report {
		return
	}
	if hub := sentry.GetHubFromContext(s.inner.Context()); hub != nil {
		hub.CaptureException(err)
	}
}

// SetData attaches a key/value pair to the span.
func (s *Span) SetData(key string, value interface{}) {
	if s.inner != nil {
		s.inner.SetData(key, value)
	}
}

func spanStatusFor(err error) (sentry.SpanStatus, bool) {
	switch domain.CodeOf(err) {
	case domain.ErrCodeValidation, domain.ErrCodeInvalidOperation, domain.ErrCodeUnsupportedFormat,
		domain.ErrCodeParse, domain.ErrCodeDimensionMismatch:
		return sentry.SpanStatusInvalidArgument, false
	case domain.ErrCodeNotFound:
		return sentry.SpanStatusNotFound, false
	case domain.ErrCodeAlreadyExists:
		return sentry.SpanStatusAlreadyExists, false
	case domain.ErrCodeUnauthorized:
		return sentry.SpanStatusUnauthenticated, false
	case domain.ErrCodeEmbeddingService, domain.ErrCodeGenerationService, domain.ErrCodeUpstream, domain.ErrCodeUnavailable:
		return sentry.SpanStatusUnavailable, true
	default:
		return sentry.SpanStatusInternalError, true
	}
}

// StartSpan creates a child span when ctx already carries one and a new
// transaction otherwise.
func StartSpan(ctx context.Context, name string, attrs SpanAttributes) (context.Context, *Span) {
	var span *sentry.Span
	if parent := sentry.SpanFromContext(ctx); parent != nil {
		span = parent.StartChild(name)
	} else {
		span = sentry.StartSpan(ctx, name, sentry.WithTransactionName(name))
	}

	for tag, v := range map[string]string{
		"meeting_id":      attrs.MeetingID,
		"meeting_type_id": attrs.MeetingTypeID,
		"item_id":         attrs.ItemID,
	} {
		if v != "" {
			span.SetTag(tag, v)
		}
	}
	if attrs.Operation != "" {
		span.SetData("operation", attrs.Operation)
	}

	return span.Context(), &Span{inner: span}
}
