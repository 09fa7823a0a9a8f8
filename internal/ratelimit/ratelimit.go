// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ratelimit provides a client-side politeness limiter for outgoing
// HTTP requests, applied per server via the registry's rate_limit setting.
package ratelimit

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
)

// Transport is an [http.RoundTripper] that delays each request until the
// limiter grants a token, honoring the request's context while waiting.
type Transport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// New wraps base with a limiter allowing rps requests per second, with a
// burst of one. If base is nil, http.DefaultTransport is used.
func New(base http.RoundTripper, rps float64) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// RoundTrip implements the [http.RoundTripper] interface.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return t.base.RoundTrip(req)
}
