// SPDX-FileCopyrightText: 2023 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package retry provides round tripper middleware that transparently
// retries failed HTTP requests with exponential backoff.
package retry

import (
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/xmidt-org/httpaux/roundtrip"
)

const (
	// DefaultInterval is the initial backoff used when Policy.Interval is unset
	DefaultInterval = 100 * time.Millisecond

	// DefaultMultiplier is the backoff growth factor used when Policy.Multiplier is unset
	DefaultMultiplier = 2.0

	// DefaultMaxInterval caps the backoff when Policy.MaxInterval is unset
	DefaultMaxInterval = 10 * time.Second
)

// after is the backoff timer.  Overridable for testing.
var after = time.After

// Policy describes when and how requests are retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values less than two disable retries entirely.
	MaxAttempts int

	// Interval is the delay before the first retry.  Subsequent delays
	// grow by Multiplier, up to MaxInterval.
	Interval time.Duration

	// Multiplier is the exponential growth factor for the delay.
	Multiplier float64

	// MaxInterval caps the delay between attempts.
	MaxInterval time.Duration

	// Jitter is the fraction of each delay that is randomized, in the
	// range [0.0, 1.0].  Zero disables jitter.
	Jitter float64

	// Retryable decides whether an attempt's outcome warrants a retry.
	// If unset, DefaultRetryable is used.
	Retryable func(*http.Response, error) bool
}

// DefaultRetryable retries any transport error, 429 Too Many Requests,
// and all 5xx responses.
func DefaultRetryable(response *http.Response, err error) bool {
	switch {
	case err != nil:
		return true

	case response.StatusCode == http.StatusTooManyRequests:
		return true

	default:
		return response.StatusCode >= 500
	}
}

// New produces retrying middleware from a policy.  If the policy's
// MaxAttempts disables retries, the returned constructor is a no-op.
//
// Requests whose bodies cannot be rewound, meaning Body is set but
// GetBody is not, are never retried.
func New(p Policy) roundtrip.Constructor {
	if p.MaxAttempts < 2 {
		return func(next http.RoundTripper) http.RoundTripper {
			return next
		}
	}

	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}

	if p.Multiplier < 1.0 {
		p.Multiplier = DefaultMultiplier
	}

	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultMaxInterval
	}

	if p.Retryable == nil {
		p.Retryable = DefaultRetryable
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &roundTripper{
			next:   next,
			policy: p,
		}
	}
}

type roundTripper struct {
	next   http.RoundTripper
	policy Policy
}

func (rt *roundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	if request.Body != nil && request.GetBody == nil {
		return rt.next.RoundTrip(request)
	}

	var (
		response *http.Response
		err      error
		delay    = rt.policy.Interval
	)

	for attempt := 1; ; attempt++ {
		response, err = rt.next.RoundTrip(request)
		if attempt >= rt.policy.MaxAttempts || !rt.policy.Retryable(response, err) {
			return response, err
		}

		wait := rt.wait(response, delay)
		if response != nil {
			// release the connection before backing off
			io.Copy(io.Discard, response.Body) //nolint:errcheck
			response.Body.Close()
		}

		select {
		case <-after(wait):
			// continue to the next attempt

		case <-request.Context().Done():
			return nil, request.Context().Err()
		}

		if request.GetBody != nil {
			body, rewindErr := request.GetBody()
			if rewindErr != nil {
				return nil, rewindErr
			}

			request.Body = body
		}

		delay = time.Duration(float64(delay) * rt.policy.Multiplier)
		if delay > rt.policy.MaxInterval {
			delay = rt.policy.MaxInterval
		}
	}
}

// wait computes the delay before the next attempt, honoring any
// Retry-After header the server sent.
func (rt *roundTripper) wait(response *http.Response, delay time.Duration) time.Duration {
	if response != nil {
		if retryAfter := parseRetryAfter(response.Header.Get("Retry-After")); retryAfter > 0 {
			return retryAfter
		}
	}

	if rt.policy.Jitter > 0 {
		spread := rt.policy.Jitter * float64(delay)
		delay += time.Duration(rand.Float64()*spread - spread/2)
	}

	return delay
}

// parseRetryAfter understands both forms of the Retry-After header:
// a delay in seconds, or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if len(v) == 0 {
		return 0
	}

	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}

	return 0
}
