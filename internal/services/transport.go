package services

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitedTransport paces outgoing requests with a token bucket before handing them to Base.
//
// It only delays requests; failed responses are returned as-is and never retried.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// NewRateLimitedTransport wraps base with a limiter allowing rps requests per second.
//
// A non-positive rps disables pacing. A nil base uses [http.DefaultTransport].
func NewRateLimitedTransport(base http.RoundTripper, rps float64) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &RateLimitedTransport{Base: base, Limiter: rate.NewLimiter(limit, 1)}
}

// RoundTrip implements [http.RoundTripper].
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.Base.RoundTrip(req)
}
