// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kauffinger/relay/internal/logging"
)

// stdioPair wires a CommandTransport to an in-process fake server instead of
// a subprocess: the test-supplied handle receives each decoded request and
// returns the raw lines to write back.
func stdioPair(t *testing.T, handle func(req wireRequest) []string) *CommandTransport {
	t.Helper()

	clientReads, serverWrites := io.Pipe()
	serverReads, clientWrites := io.Pipe()
	t.Cleanup(func() {
		serverWrites.Close()
		clientWrites.Close()
	})

	go func() {
		scanner := bufio.NewScanner(serverReads)
		for scanner.Scan() {
			var req wireRequest
			if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
				t.Errorf("fake server: decoding %q: %v", scanner.Text(), err)
				return
			}
			for _, line := range handle(req) {
				if _, err := io.WriteString(serverWrites, line+"\n"); err != nil {
					return
				}
			}
		}
	}()

	tr := NewCommandTransport("unused", &CommandTransportOptions{Logger: logging.ForTest(t)})
	tr.in = clientWrites
	tr.out = bufio.NewScanner(clientReads)
	return tr
}

// echoHandler responds to the handshake and echoes a fixed result for
// everything else, preceded by chatter the client must skip.
func echoHandler(result string) func(req wireRequest) []string {
	return func(req wireRequest) []string {
		if !req.hasID() {
			return nil // notification, no response
		}
		switch req.Method {
		case methodInitialize:
			return []string{
				fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":{"protocolVersion":"2024-11-05"}}`, req.ID),
			}
		default:
			return []string{
				`{"jsonrpc":"2.0","method":"notifications/progress","params":{}}`,
				`not json at all`,
				`{"jsonrpc":"2.0","id":"999","result":{"stale":true}}`,
				fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result),
			}
		}
	}
}

func TestCommandTransport(t *testing.T) {
	tr := stdioPair(t, echoHandler(`{"ok":true}`))
	ctx := context.Background()

	if err := tr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	got, err := tr.SendRequest(ctx, "ping", nil)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"ok": true}, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	// Ids keep increasing across the transport's lifetime: initialize was
	// "1", so the next send is "3".
	if _, err := tr.SendRequest(ctx, "ping", nil); err != nil {
		t.Fatal(err)
	}
	if got, want := tr.lastID, int64(3); got != want {
		t.Errorf("lastID = %d, want %d", got, want)
	}
}

func TestCommandTransportSendBeforeStart(t *testing.T) {
	tr := stdioPair(t, echoHandler(`{}`))

	_, err := tr.SendRequest(context.Background(), "ping", nil)
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindUnexpected {
		t.Fatalf("got error %v, want KindUnexpected", err)
	}
}

func TestCommandTransportRPCError(t *testing.T) {
	tr := stdioPair(t, func(req wireRequest) []string {
		if !req.hasID() {
			return nil
		}
		if req.Method == methodInitialize {
			return []string{fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"result":{}}`, req.ID)}
		}
		return []string{fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"error":{"code":7,"message":"denied"}}`, req.ID)}
	})
	ctx := context.Background()

	if err := tr.Start(ctx); err != nil {
		t.Fatal(err)
	}
	_, err := tr.SendRequest(ctx, "ping", nil)
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindRPC {
		t.Fatalf("got error %v, want KindRPC", err)
	}
	if got, want := te.Error(), "JSON-RPC error: denied (code: 7)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCommandTransportServerEOF(t *testing.T) {
	clientReads, serverWrites := io.Pipe()
	serverReads, clientWrites := io.Pipe()
	go io.Copy(io.Discard, serverReads) // accept writes, never respond
	tr := NewCommandTransport("unused", &CommandTransportOptions{NoInitialize: true})
	tr.in = clientWrites
	tr.out = bufio.NewScanner(clientReads)
	serverWrites.Close() // immediate EOF on the client's read side

	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := tr.SendRequest(context.Background(), "ping", nil)
	var te *TransportError
	if !errors.As(err, &te) || te.Kind != KindUnexpected {
		t.Fatalf("got error %v, want KindUnexpected", err)
	}
}

func TestCommandTransportCloseIdempotent(t *testing.T) {
	tr := stdioPair(t, echoHandler(`{}`))
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if err := tr.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}
	// A closed transport refuses further work.
	if _, err := tr.SendRequest(context.Background(), "ping", nil); err == nil {
		t.Fatal("SendRequest succeeded on closed transport")
	}
}
