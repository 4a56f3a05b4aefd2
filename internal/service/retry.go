package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/timberyard/meetingassist/internal/openai"
)

const defaultRetryWait = 500 * time.Millisecond

// retryOnce runs fn and, if it fails with a retryable error, runs it once more
// after wait. Caller errors such as empty input are returned immediately.
func retryOnce[T any](ctx context.Context, wait time.Duration, fn func(context.Context) (T, error)) (T, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(wait), 1), ctx)
	return backoff.RetryWithData(func() (T, error) {
		v, err := fn(ctx)
		if err != nil && errors.Is(err, openai.ErrEmptyText) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, b)
}
