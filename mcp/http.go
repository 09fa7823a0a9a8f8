// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	internaljson "github.com/kauffinger/relay/internal/json"
	"github.com/kauffinger/relay/internal/relaydebug"
)

// sessionHeader is the HTTP header carrying the MCP session token.
const sessionHeader = "Mcp-Session-Id"

// defaultTimeout applies when HTTPTransportOptions.Timeout is unset.
const defaultTimeout = 30 * time.Second

// HTTPTransportOptions provides options for the [NewHTTPTransport]
// constructor.
type HTTPTransportOptions struct {
	// Timeout bounds each request/response round trip, including reading the
	// full response body. If zero, a default of 30 seconds is used.
	Timeout time.Duration

	// APIKey, if set, is sent as an Authorization bearer token on every
	// request.
	APIKey string

	// NoInitialize skips the initialize/initialized handshake: Start becomes
	// a no-op state transition with no network activity.
	NoInitialize bool

	// HTTPClient is the client to use for making HTTP requests. If nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	// MaxBodyBytes limits the size of response bodies. Zero means
	// [DefaultMaxBodyBytes]; negative means no limit.
	MaxBodyBytes int64

	// Logger receives debug-level wire logging. If nil, logging is disabled
	// unless the RELAYDEBUG environment variable contains wirelog=1, in which
	// case slog.Default is used.
	Logger *slog.Logger
}

// An HTTPTransport is a [Transport] that POSTs each JSON-RPC message to a
// single endpoint and decodes the response from either a plain JSON document
// or a text/event-stream body, per the MCP streamable HTTP transport.
//
// The zero value is not usable; call [NewHTTPTransport].
type HTTPTransport struct {
	endpoint     string
	timeout      time.Duration
	apiKey       string
	noInitialize bool
	client       *http.Client
	maxBodyBytes int64
	logger       *slog.Logger

	// Mutable per-session state. See the concurrency note on [Transport].
	lastID  int64
	session string
	started bool
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport returns a new transport that connects to the MCP server at
// the provided endpoint URL.
func NewHTTPTransport(endpoint string, opts *HTTPTransportOptions) *HTTPTransport {
	t := &HTTPTransport{endpoint: endpoint}
	if opts == nil {
		opts = &HTTPTransportOptions{}
	}
	t.timeout = opts.Timeout
	if t.timeout <= 0 {
		t.timeout = defaultTimeout
	}
	t.apiKey = opts.APIKey
	t.noInitialize = opts.NoInitialize
	t.client = opts.HTTPClient
	if t.client == nil {
		t.client = http.DefaultClient
	}
	t.maxBodyBytes = effectiveMaxBodyBytes(opts.MaxBodyBytes)
	t.logger = opts.Logger
	if t.logger == nil && relaydebug.Value("wirelog") == "1" {
		t.logger = slog.Default()
	}
	return t
}

// frame assigns the next request id and builds a JSON-RPC request envelope.
// The counter increases monotonically across the transport's lifetime,
// handshake calls included.
func (t *HTTPTransport) frame(method string, params map[string]any) *request {
	t.lastID++
	if params == nil {
		params = map[string]any{}
	}
	return &request{
		JSONRPC: "2.0",
		ID:      strconv.FormatInt(t.lastID, 10),
		Method:  method,
		Params:  params,
	}
}

// httpResponse is a fully-read HTTP response: status, headers and body. The
// body is materialized up front so that both decode branches operate on a
// complete text.
type httpResponse struct {
	status      int
	contentType string
	body        []byte
}

// do performs one POST round trip and updates the session token from the
// response headers. The session update runs before any status or body
// handling, so rotation takes effect even for responses that subsequently
// fail to decode.
func (t *HTTPTransport) do(ctx context.Context, req *request, suppressSession bool) (*httpResponse, error) {
	data, err := internaljson.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", req.Method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating POST request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json, text/event-stream")
	if !suppressSession && t.session != "" {
		hreq.Header.Set(sessionHeader, t.session)
	}
	if t.apiKey != "" {
		hreq.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	if t.logger != nil {
		t.logger.Debug("mcp send", "method", req.Method, "id", req.ID, "body", string(data))
	}

	resp, err := t.client.Do(hreq)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", t.endpoint, err)
	}
	defer resp.Body.Close()

	t.updateSession(resp.Header)

	body, err := readBody(resp.Body, t.maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if t.logger != nil {
		t.logger.Debug("mcp recv", "status", resp.StatusCode,
			"contentType", resp.Header.Get("Content-Type"), "body", string(body))
	}

	return &httpResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// updateSession records a session token issued by the server. A non-empty
// header overwrites the held value unconditionally, supporting server-side
// session rotation. It never fails.
func (t *HTTPTransport) updateSession(h http.Header) {
	if id := h.Get(sessionHeader); id != "" {
		if t.logger != nil && t.session != "" && t.session != id {
			t.logger.Debug("mcp session rotated")
		}
		t.session = id
	}
}

// decode normalizes a raw HTTP response into the JSON-RPC result object for
// the request with the given id.
func (t *HTTPTransport) decode(res *httpResponse, id string) (map[string]any, error) {
	if res.status < 200 || res.status >= 300 {
		return nil, errHTTPStatus(res.status, res.body)
	}
	var env *response
	if strings.Contains(res.contentType, "text/event-stream") {
		var err error
		env, err = matchEvent(res.body, id)
		if err != nil {
			return nil, err
		}
	} else {
		env = new(response)
		if err := internaljson.Unmarshal(res.body, env); err != nil {
			return nil, wrapUnexpected("decoding response body", err)
		}
	}
	return validateEnvelope(env, id)
}

// matchEvent scans an SSE body in order and returns the envelope embedded in
// the first event whose data decodes to JSON with a matching id. Events
// without data, with undecodable data, or with a different id (server
// notifications, interleaved messages) are skipped.
//
// When several events carry the same id, the first wins; strictly serial
// sends make that rule safe.
func matchEvent(body []byte, id string) (*response, error) {
	for evt, err := range scanEvents(bytes.NewReader(body)) {
		if err != nil {
			return nil, wrapUnexpected("scanning SSE events", err)
		}
		if evt.set&fieldData == 0 {
			continue
		}
		var env response
		if err := internaljson.Unmarshal(evt.data, &env); err != nil {
			continue
		}
		if coerceID(env.ID) == id {
			return &env, nil
		}
	}
	return nil, errNoMatch(id)
}

// validateEnvelope checks the JSON-RPC 2.0 shape of env against the
// outstanding request id, maps a server error object to KindRPC, and returns
// the result object (empty if absent).
func validateEnvelope(env *response, id string) (map[string]any, error) {
	if env.JSONRPC != "2.0" {
		return nil, errInvalidEnvelope("jsonrpc version %q, want \"2.0\"", env.JSONRPC)
	}
	if len(bytes.TrimSpace(env.ID)) == 0 {
		return nil, errInvalidEnvelope("response has no id, want %q", id)
	}
	if got := coerceID(env.ID); got != id {
		return nil, errInvalidEnvelope("response id %q does not match request id %q", got, id)
	}
	if env.Error != nil {
		return nil, errRPC(env.Error)
	}
	result := map[string]any{}
	if d := bytes.TrimSpace(env.Result); len(d) > 0 && string(d) != "null" {
		if err := internaljson.Unmarshal(d, &result); err != nil {
			return nil, wrapUnexpected("decoding result", err)
		}
	}
	return result, nil
}

// Start implements the [Transport] interface. Unless the transport was
// configured with NoInitialize, it performs the two-step MCP handshake:
// an initialize request (with the session header suppressed), then a
// notifications/initialized notification. Any failure leaves the transport
// unstarted; a subsequent Start runs a fresh handshake.
func (t *HTTPTransport) Start(ctx context.Context) error {
	if t.started {
		return nil
	}
	if t.noInitialize {
		t.started = true
		return nil
	}

	req := t.frame(methodInitialize, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      clientInfo,
	})
	res, err := t.do(ctx, req, true)
	if err != nil {
		return errHandshake("initialize", wrapUnexpected("sending initialize", err))
	}
	if _, err := t.decode(res, req.ID); err != nil {
		return errHandshake("initialize", err)
	}

	// The initialized message is a notification: no id, no correlated
	// response. Many servers answer with 202 and an empty body; a non-blank
	// body is still decoded so that an error reply does not go unnoticed.
	note := &request{JSONRPC: "2.0", Method: methodInitialized, Params: map[string]any{}}
	res, err = t.do(ctx, note, false)
	if err != nil {
		return errHandshake("initialized notification", wrapUnexpected("sending initialized", err))
	}
	if err := checkNotifyResponse(res); err != nil {
		return errHandshake("initialized notification", err)
	}

	t.started = true
	return nil
}

// checkNotifyResponse validates the server's reply to a notification. The
// body is usually empty; when it isn't, decode it far enough to surface a
// JSON-RPC error object.
func checkNotifyResponse(res *httpResponse) error {
	if res.status < 200 || res.status >= 300 {
		return errHTTPStatus(res.status, res.body)
	}
	body := bytes.TrimSpace(res.body)
	if len(body) == 0 {
		return nil
	}
	var env response
	if err := internaljson.Unmarshal(body, &env); err != nil {
		return wrapUnexpected("decoding notification response", err)
	}
	if env.JSONRPC != "2.0" {
		return errInvalidEnvelope("jsonrpc version %q, want \"2.0\"", env.JSONRPC)
	}
	if env.Error != nil {
		return errRPC(env.Error)
	}
	return nil
}

// SendRequest implements the [Transport] interface: one strictly serial
// request/response round trip. It does not invoke the handshake implicitly;
// call [HTTPTransport.Start] first.
func (t *HTTPTransport) SendRequest(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	if !t.started {
		return nil, errUnexpected("transport not started")
	}
	req := t.frame(method, params)
	res, err := t.do(ctx, req, false)
	if err != nil {
		return nil, wrapUnexpected("sending "+method, err)
	}
	return t.decode(res, req.ID)
}

// Close implements the [Transport] interface. It discards the held session
// token and does not contact the server; the next request simply carries no
// session header.
func (t *HTTPTransport) Close() error {
	t.session = ""
	return nil
}

// SessionID returns the session token currently held by the transport, if
// any.
func (t *HTTPTransport) SessionID() string { return t.session }
