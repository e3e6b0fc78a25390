// Package retry runs operations with bounded exponential backoff. Errors are
// classified by the caller into retryable and fatal.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gorm.io/gorm"
)

type Decision int

const (
	Retryable Decision = iota
	Fatal
)

// Classifier decides whether an error is worth another attempt.
type Classifier func(err error) Decision

type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// OnRetry is called before sleeping between attempts.
	OnRetry func(err error, wait time.Duration)
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
	}
}

// Do runs op until it succeeds, returns a fatal error, the attempts are
// exhausted or ctx is done.
func Do[T any](ctx context.Context, p Policy, classify Classifier, op func(ctx context.Context) (T, error)) (T, error) {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxAttempts),
	}
	if p.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(p.OnRetry))
	}

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err != nil && classify != nil && classify(err) == Fatal {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, opts...)
}

// HTTPStatusError is returned by HTTP clients for non-2xx responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// ClassifyHTTP retries rate limits, server errors, timeouts and network
// failures. Other 4xx responses and cancellation are fatal.
func ClassifyHTTP(err error) Decision {
	if errors.Is(err, context.Canceled) {
		return Fatal
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return ClassifyStatus(statusErr.StatusCode)
	}
	return Retryable
}

func ClassifyStatus(code int) Decision {
	switch {
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return Retryable
	case code >= 500:
		return Retryable
	default:
		return Fatal
	}
}

// ClassifyStore retries transient database failures. Missing records,
// constraint violations and cancellation are fatal.
func ClassifyStore(err error) Decision {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrInvalidData),
		errors.Is(err, gorm.ErrInvalidTransaction):
		return Fatal
	}
	return Retryable
}
