// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package auth supplies HTTP credentials for MCP servers.
//
// It provides an [http.RoundTripper] that attaches a bearer token from an
// [oauth2.TokenSource] to every outgoing request, which keeps token refresh
// concerns out of the transport layer: the MCP transport sees an ordinary
// http.Client.
package auth

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// ErrUnauthorized reports that the server rejected the request's credentials.
// Use [errors.Is] to detect it anywhere in an error chain.
var ErrUnauthorized = errors.New("unauthorized")

// HTTPTransport is an [http.RoundTripper] that injects a bearer token into
// every request. A 401 or 403 response is converted into an error wrapping
// [ErrUnauthorized], so callers can distinguish bad credentials from other
// HTTP failures without inspecting status codes.
type HTTPTransport struct {
	// Base is the underlying RoundTripper. If nil, http.DefaultTransport is
	// used.
	Base http.RoundTripper

	// Source supplies the token for each request. Sources returned by the
	// oauth2 package cache and refresh automatically.
	Source oauth2.TokenSource
}

// RoundTrip implements the [http.RoundTripper] interface.
func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("fetching token: %w", err)
	}

	// Per the RoundTripper contract the request must not be mutated.
	req = req.Clone(req.Context())
	token.SetAuthHeader(req)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", resp.Status, ErrUnauthorized)
	}
	return resp, nil
}

// StaticTokenSource returns a token source that always yields the given
// bearer token, for servers configured with a fixed API key.
func StaticTokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}
