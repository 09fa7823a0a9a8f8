// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bytes"
	"errors"
	"fmt"
)

// Kind classifies a [TransportError].
type Kind int

const (
	// KindUnexpected is any failure outside the transport's taxonomy:
	// network errors, encoding errors, misuse. The cause is preserved.
	KindUnexpected Kind = iota
	// KindHTTPStatus is a non-2xx HTTP response.
	KindHTTPStatus
	// KindInvalidEnvelope is a response body that parsed but failed JSON-RPC
	// 2.0 shape or id validation.
	KindInvalidEnvelope
	// KindNoMatch is an SSE stream that was fully parsed without any event
	// matching the outstanding request id.
	KindNoMatch
	// KindRPC is a well-formed JSON-RPC error object returned by the server.
	KindRPC
	// KindHandshake is any other kind occurring during Start, re-wrapped to
	// identify the failing handshake step.
	KindHandshake
)

var kindNames = map[Kind]string{
	KindUnexpected:      "unexpected",
	KindHTTPStatus:      "http status",
	KindInvalidEnvelope: "invalid envelope",
	KindNoMatch:         "no matching response",
	KindRPC:             "rpc error",
	KindHandshake:       "handshake failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// A TransportError is the single error type surfaced by this package. Use
// [errors.As] to retrieve it and [TransportError.Kind] to branch on the
// failure class.
type TransportError struct {
	Kind Kind
	// Status is the HTTP status code, for KindHTTPStatus.
	Status int

	msg string
	err error
}

func (e *TransportError) Error() string {
	if e.err != nil && e.msg != "" {
		return e.msg + ": " + e.err.Error()
	}
	if e.err != nil {
		return e.err.Error()
	}
	return e.msg
}

func (e *TransportError) Unwrap() error { return e.err }

// errHTTPStatus reports a non-2xx response. The body, if non-empty, is
// included for context.
func errHTTPStatus(status int, body []byte) *TransportError {
	msg := fmt.Sprintf("HTTP status %d", status)
	if b := bytes.TrimSpace(body); len(b) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, b)
	}
	return &TransportError{Kind: KindHTTPStatus, Status: status, msg: msg}
}

func errInvalidEnvelope(format string, args ...any) *TransportError {
	return &TransportError{Kind: KindInvalidEnvelope, msg: fmt.Sprintf(format, args...)}
}

func errNoMatch(id string) *TransportError {
	return &TransportError{Kind: KindNoMatch, msg: fmt.Sprintf("no response matched request id %q", id)}
}

// errRPC converts a server-side JSON-RPC error object into a TransportError.
// The data member is appended only when it carries information: null, false,
// zero, empty strings and empty composites are omitted.
func errRPC(we *wireError) *TransportError {
	msg := we.Message
	if msg == "" {
		msg = "Unknown error"
	}
	code := -1
	if we.Code != nil {
		code = *we.Code
	}
	s := fmt.Sprintf("JSON-RPC error: %s (code: %d)", msg, code)
	if d := bytes.TrimSpace(we.Data); len(d) > 0 && !falsy(d) {
		s += fmt.Sprintf(" Details: %s", d)
	}
	return &TransportError{Kind: KindRPC, msg: s}
}

// falsy reports whether a JSON-encoded value is empty or false-equivalent.
func falsy(data []byte) bool {
	switch string(data) {
	case "null", "false", "0", `""`, "{}", "[]":
		return true
	}
	return false
}

// errHandshake wraps a failure during Start, naming the step that failed.
func errHandshake(step string, err error) *TransportError {
	return &TransportError{Kind: KindHandshake, msg: "initialize handshake failed during " + step, err: err}
}

// wrapUnexpected funnels any error that is not already a TransportError into
// KindUnexpected, preserving the cause.
func wrapUnexpected(msg string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Kind: KindUnexpected, msg: msg, err: err}
}

func errUnexpected(format string, args ...any) *TransportError {
	return &TransportError{Kind: KindUnexpected, msg: fmt.Sprintf(format, args...)}
}
