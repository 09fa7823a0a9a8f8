// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bytes"
	"encoding/json"
	"strings"
)

// protocolVersion is the MCP protocol revision this client announces during
// the initialize handshake.
const protocolVersion = "2024-11-05"

// Handshake method names, as defined by the MCP spec.
const (
	methodInitialize  = "initialize"
	methodInitialized = "notifications/initialized"
)

// clientInfo identifies this client to servers during initialization.
var clientInfo = Implementation{Name: "relay", Version: "1.0.0"}

// request is the JSON-RPC 2.0 request envelope. Notifications leave ID empty,
// which omits the field entirely.
type request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      string         `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// response is the JSON-RPC 2.0 response envelope. The ID is kept raw because
// servers disagree about whether ids are strings or numbers.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

// wireError is the JSON-RPC 2.0 error object. Code is a pointer so that an
// absent code can be told apart from a literal zero.
type wireError struct {
	Code    *int            `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// coerceID normalizes a raw JSON id for comparison against the stringified
// request counter: JSON strings are unquoted, numbers keep their decimal
// form, and anything else falls back to the trimmed raw text.
func coerceID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil && n != "" {
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}

// Implementation describes the name and version of an MCP implementation,
// sent as clientInfo during initialization and returned as serverInfo.
type Implementation struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"`
}

// Tool is a tool definition as returned by tools/list.
type Tool struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	// InputSchema holds the JSON Schema object describing the tool's expected
	// arguments. It is kept raw so it can be resolved lazily and only for
	// tools that are actually called.
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// listToolsResult is the result of a tools/list request.
type listToolsResult struct {
	NextCursor string  `json:"nextCursor,omitempty"`
	Tools      []*Tool `json:"tools"`
}

// ContentBlock is one element of a tool result's content array. Type is one
// of "text", "image", "audio" or "resource"; the remaining fields are
// populated according to the type.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"` // base64-encoded, for image/audio
	MIMEType string `json:"mimeType,omitempty"`
}

// CallToolResult is the result of a tools/call request.
type CallToolResult struct {
	Content           []*ContentBlock `json:"content"`
	StructuredContent json.RawMessage `json:"structuredContent,omitempty"`
	// IsError reports a tool-level failure. Unlike a JSON-RPC error, the call
	// itself succeeded and Content typically explains what went wrong.
	IsError bool `json:"isError,omitempty"`
}

// Resource is a concrete resource listed by resources/list.
type Resource struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
	URI         string `json:"uri"`
}

// ResourceTemplate is a parameterized resource listed by
// resources/templates/list. URITemplate follows RFC 6570.
type ResourceTemplate struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
	URITemplate string `json:"uriTemplate"`
}

// listResourcesResult is the result of a resources/list request.
type listResourcesResult struct {
	NextCursor string      `json:"nextCursor,omitempty"`
	Resources  []*Resource `json:"resources"`
}

// listResourceTemplatesResult is the result of a resources/templates/list
// request.
type listResourceTemplatesResult struct {
	NextCursor        string              `json:"nextCursor,omitempty"`
	ResourceTemplates []*ResourceTemplate `json:"resourceTemplates"`
}

// ResourceContents is the contents of one resource, as returned by
// resources/read. Exactly one of Text and Blob is set.
type ResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"` // base64-encoded
}

// ReadResourceResult is the result of a resources/read request.
type ReadResourceResult struct {
	Contents []*ResourceContents `json:"contents"`
}
