// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/kauffinger/relay/auth"
	"github.com/kauffinger/relay/internal/config"
	"github.com/kauffinger/relay/internal/ratelimit"
	"github.com/kauffinger/relay/mcp"
)

// resolveServer looks up a registry entry by name, falling back to the
// registry's default_server when name is empty.
func resolveServer(name string) (string, config.Server, error) {
	if configLoadErr != nil {
		return "", config.Server{}, errors.Wrap(configLoadErr, "loading config")
	}
	if registry == nil || len(registry.Servers) == 0 {
		return "", config.Server{}, errors.New("no servers configured; create a config.yaml with a servers section")
	}
	if name == "" {
		name = registry.DefaultServer
	}
	if name == "" {
		return "", config.Server{}, errors.New("no server named and no default_server configured")
	}
	srv, ok := registry.Servers[name]
	if !ok {
		return "", config.Server{}, errors.Newf("unknown server %q", name)
	}
	return name, srv, nil
}

// newClient builds an MCP client for a registry entry, assembling the HTTP
// round tripper chain (custom headers, bearer auth, rate limiting) or the
// subprocess transport as the entry dictates.
func newClient(srv config.Server) *mcp.Client {
	var transport mcp.Transport
	switch srv.EffectiveTransport() {
	case config.TransportCommand:
		transport = mcp.NewCommandTransport(srv.Command, &mcp.CommandTransportOptions{
			Args:         srv.Args,
			Env:          srv.Env,
			NoInitialize: srv.NoInitialize,
			Logger:       logger,
		})
	default:
		timeout := time.Duration(srv.Timeout) * time.Second
		if timeoutFlag > 0 {
			timeout = timeoutFlag
		}
		transport = mcp.NewHTTPTransport(srv.URL, &mcp.HTTPTransportOptions{
			Timeout:      timeout,
			NoInitialize: srv.NoInitialize,
			HTTPClient:   &http.Client{Transport: roundTripper(srv)},
			Logger:       logger,
		})
	}
	return mcp.NewClient(transport, &mcp.ClientOptions{NoInputValidation: noValidate})
}

// roundTripper stacks the registry entry's HTTP middleware onto the default
// transport: static headers innermost, then bearer auth, then rate limiting
// outermost so throttling covers authenticated requests too.
func roundTripper(srv config.Server) http.RoundTripper {
	rt := http.DefaultTransport
	if len(srv.Headers) > 0 {
		rt = &headerTransport{base: rt, headers: srv.Headers}
	}
	if srv.APIKey != "" {
		rt = &auth.HTTPTransport{Base: rt, Source: auth.StaticTokenSource(srv.APIKey)}
	}
	if srv.RateLimit > 0 {
		rt = ratelimit.New(rt, srv.RateLimit)
	}
	return rt
}

// headerTransport sets static headers on every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
