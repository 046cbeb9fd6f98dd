package internal

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"charm.land/fantasy"
	"github.com/openai/openai-go/v2"
)

// maxRetryAfter bounds how long a server-supplied retry hint is trusted.
const maxRetryAfter = time.Minute

// RetryPolicy bounds how often and how patiently a service call is retried.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	MaxBackoff time.Duration
	Timeout    time.Duration // per attempt, 0 = none
}

// Delay returns the wait before retry n (0-indexed) with up to 50% jitter,
// never more than MaxBackoff when one is set.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	base := p.Backoff << uint(attempt)
	if base <= 0 || (p.MaxBackoff > 0 && base > p.MaxBackoff) {
		base = p.MaxBackoff
	}
	if base <= 0 {
		return 0
	}
	wait := base + time.Duration(rand.Int64N(int64(base)/2+1))
	if p.MaxBackoff > 0 {
		wait = min(wait, p.MaxBackoff)
	}
	return wait
}

// withRetry runs fn until it succeeds, fails permanently, exhausts the policy
// or ctx is done. Errors returned by fn are classified first.
func withRetry[T any](ctx context.Context, p RetryPolicy, log *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := callWithTimeout(ctx, p.Timeout, fn)
		if err == nil {
			return v, nil
		}
		err = classifyServiceError(err)
		if !IsTransient(err) || attempt >= p.MaxRetries || ctx.Err() != nil {
			return zero, err
		}

		wait := p.Delay(attempt)
		if hint := retryAfter(err); hint > 0 {
			wait = hint
		}
		if log != nil {
			log.Warn("retrying service call", "op", op, "attempt", attempt+1, "wait", wait, "error", err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, err
		case <-t.C:
		}
	}
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(callCtx)
}

// retryAfter reads the rate-limit hint a provider sent with a failed call.
// It returns 0 when there is none or it is out of range.
func retryAfter(err error) time.Duration {
	var headers map[string]string

	var provErr *fantasy.ProviderError
	var apiErr *openai.Error
	switch {
	case errors.As(err, &provErr):
		headers = provErr.ResponseHeaders
	case errors.As(err, &apiErr) && apiErr.Response != nil:
		headers = map[string]string{
			"retry-after-ms": apiErr.Response.Header.Get("Retry-After-Ms"),
			"retry-after":    apiErr.Response.Header.Get("Retry-After"),
		}
	}

	var d time.Duration
	if ms, err := strconv.ParseFloat(headers["retry-after-ms"], 64); err == nil {
		d = time.Duration(ms * float64(time.Millisecond))
	} else if s, err := strconv.ParseFloat(headers["retry-after"], 64); err == nil {
		d = time.Duration(s * float64(time.Second))
	}
	if d <= 0 || d > maxRetryAfter {
		return 0
	}
	return d
}
