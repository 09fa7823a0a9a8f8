// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kauffinger/relay/mcp"
)

func TestParseToolArgs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		rawJSON string
		want    map[string]any
		wantErr string
	}{
		{
			name:  "string and number pairs",
			pairs: []string{"message=hi", "count=3"},
			want:  map[string]any{"message": "hi", "count": float64(3)},
		},
		{
			name:  "json values",
			pairs: []string{"enabled=true", "tags=[\"a\",\"b\"]", "empty=null"},
			want:  map[string]any{"enabled": true, "tags": []any{"a", "b"}, "empty": nil},
		},
		{
			name:  "value containing equals",
			pairs: []string{"expr=a=b"},
			want:  map[string]any{"expr": "a=b"},
		},
		{
			name:  "unparseable value stays a string",
			pairs: []string{"path={not json"},
			want:  map[string]any{"path": "{not json"},
		},
		{
			name:    "json object",
			rawJSON: `{"a": 1, "b": "two"}`,
			want:    map[string]any{"a": float64(1), "b": "two"},
		},
		{
			name:    "both flags rejected",
			pairs:   []string{"a=1"},
			rawJSON: `{}`,
			wantErr: "mutually exclusive",
		},
		{
			name:    "missing key rejected",
			pairs:   []string{"=value"},
			wantErr: "want key=value",
		},
		{
			name:    "missing separator rejected",
			pairs:   []string{"novalue"},
			wantErr: "want key=value",
		},
		{
			name:    "malformed json rejected",
			rawJSON: `{"a":`,
			wantErr: "parsing --json",
		},
		{
			name: "no flags yields empty object",
			want: map[string]any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseToolArgs(tt.pairs, tt.rawJSON)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, &mcp.CallToolResult{
		Content: []*mcp.ContentBlock{
			{Type: "text", Text: "hello"},
			{Type: "image", MIMEType: "image/png", Data: "aGkh"},
		},
		StructuredContent: json.RawMessage(`{"n":1}`),
	})

	out := buf.String()
	assert.Contains(t, out, "hello\n")
	assert.Contains(t, out, "[image content, image/png, 4 bytes base64]")
	assert.Contains(t, out, "\"n\": 1")
}
