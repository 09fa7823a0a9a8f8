// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	internaljson "github.com/kauffinger/relay/internal/json"
)

// killGrace is how long Close waits for a subprocess to exit after its stdin
// is closed, before killing it.
const killGrace = 2 * time.Second

// CommandTransportOptions provides options for the [NewCommandTransport]
// constructor.
type CommandTransportOptions struct {
	// Args are the arguments to pass to the command.
	Args []string

	// Env is appended to the subprocess's inherited environment, in the form
	// "KEY=value".
	Env []string

	// NoInitialize skips the initialize/initialized handshake.
	NoInitialize bool

	// Logger receives debug-level wire logging. If nil, logging is disabled.
	Logger *slog.Logger
}

// A CommandTransport is a [Transport] that launches a subprocess and speaks
// newline-delimited JSON-RPC over its standard streams: one request written
// to stdin, frames read from stdout until the response with the matching id
// arrives. Server-initiated messages interleaved in the stream are discarded.
//
// It shares the strictly serial model of [HTTPTransport]: one request in
// flight, no internal locking, not safe for concurrent use.
type CommandTransport struct {
	command      string
	args         []string
	env          []string
	noInitialize bool
	logger       *slog.Logger

	cmd *exec.Cmd
	in  io.WriteCloser // subprocess stdin; injectable for tests
	out *bufio.Scanner // subprocess stdout

	lastID  int64
	started bool
	closed  bool
}

var _ Transport = (*CommandTransport)(nil)

// NewCommandTransport returns a new transport that communicates with a
// subprocess running the given command. The subprocess is not launched until
// [CommandTransport.Start].
func NewCommandTransport(command string, opts *CommandTransportOptions) *CommandTransport {
	t := &CommandTransport{command: command}
	if opts != nil {
		t.args = opts.Args
		t.env = opts.Env
		t.noInitialize = opts.NoInitialize
		t.logger = opts.Logger
	}
	return t
}

// frame assigns the next request id and builds a JSON-RPC request envelope.
func (t *CommandTransport) frame(method string, params map[string]any) *request {
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

// spawn launches the subprocess and wires up its pipes. Tests bypass it by
// setting in and out directly.
func (t *CommandTransport) spawn() error {
	cmd := exec.Command(t.command, t.args...)
	cmd.Env = append(os.Environ(), t.env...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("opening stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", t.command, err)
	}

	t.cmd = cmd
	t.in = stdin
	t.out = bufio.NewScanner(stdout)
	t.out.Buffer(nil, 1<<20)
	return nil
}

// Start implements the [Transport] interface: it launches the subprocess (if
// not injected by a test) and performs the initialize handshake unless the
// transport was configured with NoInitialize.
func (t *CommandTransport) Start(ctx context.Context) error {
	if t.started {
		return nil
	}
	if t.closed {
		return errUnexpected("transport closed")
	}
	if t.in == nil {
		if err := t.spawn(); err != nil {
			return errHandshake("launch", wrapUnexpected("launching subprocess", err))
		}
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
	if err := t.write(req); err != nil {
		return errHandshake("initialize", wrapUnexpected("sending initialize", err))
	}
	env, err := t.readMatching(ctx, req.ID)
	if err != nil {
		return errHandshake("initialize", err)
	}
	if _, err := validateEnvelope(env, req.ID); err != nil {
		return errHandshake("initialize", err)
	}

	note := &request{JSONRPC: "2.0", Method: methodInitialized, Params: map[string]any{}}
	if err := t.write(note); err != nil {
		return errHandshake("initialized notification", wrapUnexpected("sending initialized", err))
	}

	t.started = true
	return nil
}

// write sends one newline-terminated JSON-RPC message to the subprocess.
func (t *CommandTransport) write(req *request) error {
	data, err := internaljson.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", req.Method, err)
	}
	if t.logger != nil {
		t.logger.Debug("mcp send", "method", req.Method, "id", req.ID, "body", string(data))
	}
	if _, err := t.in.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing to subprocess: %w", err)
	}
	return nil
}

// wireFrame is a decode probe for one stdout line: just enough structure to
// tell responses apart from server-initiated requests and notifications.
type wireFrame struct {
	Method string `json:"method"`
	response
}

// readMatching reads stdout frames until one is a response whose id matches
// the outstanding request. Frames carrying a method (server requests and
// notifications) and responses with stale ids are discarded. Cancellation is
// observed between frames; Close unblocks a pending read by terminating the
// subprocess.
func (t *CommandTransport) readMatching(ctx context.Context, id string) (*response, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, wrapUnexpected("reading from subprocess", err)
		}
		if !t.out.Scan() {
			if err := t.out.Err(); err != nil {
				return nil, wrapUnexpected("reading from subprocess", err)
			}
			return nil, errUnexpected("subprocess closed its output before responding to request %q", id)
		}
		line := t.out.Bytes()
		if len(line) == 0 {
			continue
		}
		if t.logger != nil {
			t.logger.Debug("mcp recv", "body", string(line))
		}
		var frame wireFrame
		if err := internaljson.Unmarshal(line, &frame); err != nil {
			continue
		}
		if frame.Method != "" {
			// A request or notification from the server; this transport is
			// strictly request/response and does not handle those.
			continue
		}
		if coerceID(frame.ID) == id {
			env := frame.response
			return &env, nil
		}
	}
}

// SendRequest implements the [Transport] interface.
func (t *CommandTransport) SendRequest(ctx context.Context, method string, params map[string]any) (map[string]any, error) {
	if !t.started {
		return nil, errUnexpected("transport not started")
	}
	if t.closed {
		return nil, errUnexpected("transport closed")
	}
	req := t.frame(method, params)
	if err := t.write(req); err != nil {
		return nil, wrapUnexpected("sending "+method, err)
	}
	env, err := t.readMatching(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return validateEnvelope(env, req.ID)
}

// Close implements the [Transport] interface. It closes the subprocess's
// stdin, waits briefly for it to exit, and kills it if it does not. Close is
// idempotent; unlike [HTTPTransport.Close], the transport is unusable
// afterwards.
func (t *CommandTransport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.started = false

	var errs []error
	if t.in != nil {
		if err := t.in.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.cmd != nil {
		done := make(chan error, 1)
		go func() { done <- t.cmd.Wait() }()
		select {
		case <-done:
		case <-time.After(killGrace):
			if err := t.cmd.Process.Kill(); err != nil {
				errs = append(errs, err)
			}
			<-done
		}
	}
	return errors.Join(errs...)
}
