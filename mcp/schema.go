// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	internaljson "github.com/kauffinger/relay/internal/json"
)

// schemaCache resolves and caches the input schemas a server declared for its
// tools, keyed by tool name. Resolution is lazy: a schema is only resolved
// the first time its tool is called. The cache is invalidated wholesale when
// the tool list is re-fetched, since the server may have changed schemas.
//
// Like its owning [Client], the cache assumes single-goroutine use.
type schemaCache struct {
	resolved map[string]*jsonschema.Resolved
}

func newSchemaCache() *schemaCache {
	return &schemaCache{resolved: make(map[string]*jsonschema.Resolved)}
}

func (c *schemaCache) invalidate() {
	clear(c.resolved)
}

// resolve returns the resolved schema for the given tool, resolving and
// caching the raw schema JSON on first use. Tools without a declared input
// schema resolve to nil.
func (c *schemaCache) resolve(tool *Tool) (*jsonschema.Resolved, error) {
	if r, ok := c.resolved[tool.Name]; ok {
		return r, nil
	}
	if len(tool.InputSchema) == 0 {
		c.resolved[tool.Name] = nil
		return nil, nil
	}
	var schema jsonschema.Schema
	if err := internaljson.Unmarshal(tool.InputSchema, &schema); err != nil {
		return nil, fmt.Errorf("unmarshaling input schema for tool %q: %w", tool.Name, err)
	}
	r, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving input schema for tool %q: %w", tool.Name, err)
	}
	c.resolved[tool.Name] = r
	return r, nil
}

// applySchema validates arguments against a resolved schema after applying
// the schema's defaults, and returns the arguments augmented with those
// defaults. A nil schema passes everything through.
func applySchema(args map[string]any, resolved *jsonschema.Resolved) (map[string]any, error) {
	if resolved == nil {
		return args, nil
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := resolved.ApplyDefaults(&args); err != nil {
		return nil, fmt.Errorf("applying schema defaults: %w", err)
	}
	if err := resolved.Validate(&args); err != nil {
		return nil, err
	}
	return args, nil
}
