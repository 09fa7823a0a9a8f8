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

	"github.com/kauffinger/relay/internal/config"
)

// withRegistry swaps in a test registry for the duration of the test.
func withRegistry(t *testing.T, cfg *config.Config) {
	t.Helper()
	oldRegistry, oldErr := registry, configLoadErr
	registry, configLoadErr = cfg, nil
	t.Cleanup(func() { registry, configLoadErr = oldRegistry, oldErr })
}

func testRegistry() *config.Config {
	return &config.Config{
		Version:       1,
		DefaultServer: "everything",
		Servers: map[string]config.Server{
			"everything": {URL: "https://mcp.example.com/mcp"},
			"fs":         {Command: "mcp-fs", Args: []string{"--root", "/tmp"}},
		},
	}
}

func TestRunServersText(t *testing.T) {
	withRegistry(t, testRegistry())
	serversJSON = false

	var out, errOut bytes.Buffer
	require.NoError(t, runServers(&out, &errOut))

	got := out.String()
	assert.Contains(t, got, "everything *")
	assert.Contains(t, got, "https://mcp.example.com/mcp")
	assert.Contains(t, got, "command")
	assert.Contains(t, got, "mcp-fs")
}

func TestRunServersJSON(t *testing.T) {
	withRegistry(t, testRegistry())
	serversJSON = true
	t.Cleanup(func() { serversJSON = false })

	var out, errOut bytes.Buffer
	require.NoError(t, runServers(&out, &errOut))

	var infos []serverInfoJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "everything", infos[0].Name)
	assert.True(t, infos[0].Default)
	assert.Equal(t, "command", infos[1].Transport)
}

func TestRunServersEmpty(t *testing.T) {
	withRegistry(t, &config.Config{Version: 1})

	var out, errOut bytes.Buffer
	require.NoError(t, runServers(&out, &errOut))
	assert.Contains(t, out.String(), "No servers configured.")
}

func TestRunServersWarnsOnInvalidEntries(t *testing.T) {
	withRegistry(t, &config.Config{
		Version: 1,
		Servers: map[string]config.Server{
			"bad": {URL: "https://a.example.com", Command: "also-a-command"},
		},
	})
	serversJSON = false

	var out, errOut bytes.Buffer
	require.NoError(t, runServers(&out, &errOut))
	assert.Contains(t, errOut.String(), "warning:")
}

func TestResolveServer(t *testing.T) {
	withRegistry(t, testRegistry())

	name, srv, err := resolveServer("")
	require.NoError(t, err)
	assert.Equal(t, "everything", name)
	assert.Equal(t, "https://mcp.example.com/mcp", srv.URL)

	name, srv, err = resolveServer("fs")
	require.NoError(t, err)
	assert.Equal(t, "fs", name)
	assert.Equal(t, "mcp-fs", srv.Command)

	_, _, err = resolveServer("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown server "nope"`)
}

func TestResolveServerNoDefault(t *testing.T) {
	withRegistry(t, &config.Config{
		Version: 1,
		Servers: map[string]config.Server{"a": {URL: "https://a.example.com"}},
	})

	_, _, err := resolveServer("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no default_server")
}
