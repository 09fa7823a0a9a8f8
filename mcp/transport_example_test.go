// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"

	"github.com/kauffinger/relay/mcp"
)

// ExampleHTTPTransport shows a complete round trip against a server that
// answers with a plain JSON body.
func ExampleHTTPTransport() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":{"ok":true}}`, req.ID)
	}))
	defer srv.Close()

	ctx := context.Background()
	tr := mcp.NewHTTPTransport(srv.URL, &mcp.HTTPTransportOptions{NoInitialize: true})
	if err := tr.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer tr.Close()

	result, err := tr.SendRequest(ctx, "ping", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result["ok"])
	// Output: true
}

// ExampleHTTPTransport_sse shows the same round trip against a server that
// streams its response as Server-Sent Events.
func ExampleHTTPTransport_sse() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: notification\ndata: {\"jsonrpc\":\"2.0\",\"method\":\"notifications/progress\"}\n\n")
		fmt.Fprint(w, "event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":\"1\",\"result\":{\"found\":true}}\n\n")
	}))
	defer srv.Close()

	ctx := context.Background()
	tr := mcp.NewHTTPTransport(srv.URL, &mcp.HTTPTransportOptions{NoInitialize: true})
	if err := tr.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer tr.Close()

	result, err := tr.SendRequest(ctx, "ping", nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(result["found"])
	// Output: true
}
