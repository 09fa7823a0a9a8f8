// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mcp implements a client-side transport for the Model Context
// Protocol (MCP), a JSON-RPC 2.0 dialect exchanged over HTTP or over a
// subprocess's standard streams.
//
// The central type is [Transport], with two concrete bindings:
// [HTTPTransport], which POSTs each request and decodes the response from
// either a plain JSON document or a Server-Sent-Events stream, and
// [CommandTransport], which speaks newline-delimited JSON-RPC to a
// subprocess. [Client] layers typed MCP operations (tools/list, tools/call,
// resources/read, ...) on top of either binding.
//
// All failures surface as a [*TransportError] carrying a [Kind] that
// distinguishes transport failures from remote procedure failures from
// malformed responses.
package mcp

import "context"

// A Transport is a single logical MCP session: an optional initialize
// handshake followed by strictly serial request/response exchanges.
//
// Transports hold mutable state (a request counter and a session token) with
// no internal synchronization. They are not safe for concurrent use; callers
// that share a transport across goroutines must serialize access themselves.
type Transport interface {
	// Start performs the MCP initialize handshake, if the transport is
	// configured to send one. It must be called before SendRequest.
	Start(ctx context.Context) error

	// SendRequest performs one request/response round trip and returns the
	// JSON-RPC result object, or an empty map if the server omitted one.
	SendRequest(ctx context.Context, method string, params map[string]any) (map[string]any, error)

	// Close releases the transport's session state. It is idempotent.
	Close() error
}
