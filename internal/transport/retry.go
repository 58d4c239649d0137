package transport

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shelfmark/refsync/pkg/constants"
	"github.com/shelfmark/refsync/pkg/logging"
)

// RetryPolicy wraps individual requests in bounded retry with exponential
// backoff. Rate limits and server-side failures are retried; everything
// else is returned to the caller on the first attempt.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Backoff is the delay before the second attempt; it doubles per
	// attempt up to MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
}

// DefaultRetryPolicy returns the policy used for both stores.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: constants.MaxRetries,
		Backoff:     constants.RetryBackoff,
		MaxBackoff:  constants.MaxRetryBackoff,
	}
}

// Do runs fn until it yields a non-retryable outcome or attempts run out.
// The last response or error is returned either way; callers map final
// statuses to typed errors when decoding.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (*http.Response, error)) (*http.Response, error) {
	logger := logging.FromContext(ctx)

	var (
		resp *http.Response
		err  error
	)

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := p.delay(attempt, resp)
			if resp != nil {
				drain(resp)
			}
			logger.Debug().
				Int("attempt", attempt+1).
				Dur("backoff", delay).
				Msg("Retrying request")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err = fn(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			// Network-level failure, worth another try.
			continue
		}
		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// delay computes the backoff before the given attempt, honoring a
// Retry-After header when the server sent one.
func (p RetryPolicy) delay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				d := time.Duration(secs) * time.Second
				if d > p.MaxBackoff {
					return p.MaxBackoff
				}
				return d
			}
		}
	}

	d := p.Backoff << (attempt - 1)
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// drain discards a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
