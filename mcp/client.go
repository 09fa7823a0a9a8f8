// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mcp

import (
	"context"
	"fmt"

	"github.com/yosida95/uritemplate/v3"
)

// ClientOptions provides options for the [NewClient] constructor.
type ClientOptions struct {
	// NoInputValidation disables client-side validation of tool arguments
	// against the tool's declared input schema. The server still validates;
	// this only trades an early, descriptive error for a round trip.
	NoInputValidation bool
}

// A Client layers typed MCP operations on top of a [Transport]. It follows
// list pagination, validates tool arguments against the schemas the server
// declared, and expands RFC 6570 resource templates.
//
// A Client owns its transport: closing the client closes the transport.
// Like the transports, a Client is not safe for concurrent use.
type Client struct {
	transport  Transport
	noValidate bool

	// tools is the tool list from the most recent ListTools, keyed by name.
	// CallTool consults it for input schemas.
	tools   map[string]*Tool
	schemas *schemaCache
}

// NewClient returns a new client over the given transport.
func NewClient(t Transport, opts *ClientOptions) *Client {
	c := &Client{transport: t, schemas: newSchemaCache()}
	if opts != nil {
		c.noValidate = opts.NoInputValidation
	}
	return c
}

// Connect starts the underlying transport, performing the MCP handshake if
// the transport is configured to send one.
func (c *Client) Connect(ctx context.Context) error {
	return c.transport.Start(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.transport.Close()
}

// Ping verifies that the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.transport.SendRequest(ctx, "ping", nil)
	return err
}

// ListTools fetches the server's tool list, following nextCursor pagination
// until exhausted. It refreshes the client's tool cache and invalidates any
// input schemas resolved from a previous listing.
func (c *Client) ListTools(ctx context.Context) ([]*Tool, error) {
	var all []*Tool
	cursor := ""
	for {
		params := map[string]any{}
		if cursor != "" {
			params["cursor"] = cursor
		}
		res, err := c.transport.SendRequest(ctx, "tools/list", params)
		if err != nil {
			return nil, err
		}
		var page listToolsResult
		if err := remarshal(res, &page); err != nil {
			return nil, fmt.Errorf("decoding tools/list result: %w", err)
		}
		all = append(all, page.Tools...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	c.tools = make(map[string]*Tool, len(all))
	for _, t := range all {
		c.tools[t.Name] = t
	}
	c.schemas.invalidate()
	return all, nil
}

// CallTool invokes the named tool. Unless the client was configured with
// NoInputValidation, args is validated against the tool's declared input
// schema (with schema defaults applied) before anything is sent; the tool
// list is fetched first if the client has not listed tools yet.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*CallToolResult, error) {
	if !c.noValidate {
		if c.tools == nil {
			if _, err := c.ListTools(ctx); err != nil {
				return nil, fmt.Errorf("listing tools before call: %w", err)
			}
		}
		tool, ok := c.tools[name]
		if !ok {
			return nil, fmt.Errorf("server does not declare tool %q", name)
		}
		resolved, err := c.schemas.resolve(tool)
		if err != nil {
			return nil, err
		}
		args, err = applySchema(args, resolved)
		if err != nil {
			return nil, fmt.Errorf("invalid arguments for tool %q: %w", name, err)
		}
	}
	if args == nil {
		args = map[string]any{}
	}

	res, err := c.transport.SendRequest(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}
	var out CallToolResult
	if err := remarshal(res, &out); err != nil {
		return nil, fmt.Errorf("decoding tools/call result: %w", err)
	}
	return &out, nil
}

// ListResources fetches the server's resource list, following nextCursor
// pagination until exhausted.
func (c *Client) ListResources(ctx context.Context) ([]*Resource, error) {
	var all []*Resource
	cursor := ""
	for {
		params := map[string]any{}
		if cursor != "" {
			params["cursor"] = cursor
		}
		res, err := c.transport.SendRequest(ctx, "resources/list", params)
		if err != nil {
			return nil, err
		}
		var page listResourcesResult
		if err := remarshal(res, &page); err != nil {
			return nil, fmt.Errorf("decoding resources/list result: %w", err)
		}
		all = append(all, page.Resources...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return all, nil
}

// ListResourceTemplates fetches the server's resource template list,
// following nextCursor pagination until exhausted.
func (c *Client) ListResourceTemplates(ctx context.Context) ([]*ResourceTemplate, error) {
	var all []*ResourceTemplate
	cursor := ""
	for {
		params := map[string]any{}
		if cursor != "" {
			params["cursor"] = cursor
		}
		res, err := c.transport.SendRequest(ctx, "resources/templates/list", params)
		if err != nil {
			return nil, err
		}
		var page listResourceTemplatesResult
		if err := remarshal(res, &page); err != nil {
			return nil, fmt.Errorf("decoding resources/templates/list result: %w", err)
		}
		all = append(all, page.ResourceTemplates...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return all, nil
}

// ReadResource reads the resource at the given URI.
func (c *Client) ReadResource(ctx context.Context, uri string) (*ReadResourceResult, error) {
	res, err := c.transport.SendRequest(ctx, "resources/read", map[string]any{"uri": uri})
	if err != nil {
		return nil, err
	}
	var out ReadResourceResult
	if err := remarshal(res, &out); err != nil {
		return nil, fmt.Errorf("decoding resources/read result: %w", err)
	}
	return &out, nil
}

// ReadResourceTemplate expands the RFC 6570 template with the given variables
// and reads the resulting URI.
func (c *Client) ReadResourceTemplate(ctx context.Context, template string, vars map[string]string) (*ReadResourceResult, error) {
	uri, err := ExpandTemplate(template, vars)
	if err != nil {
		return nil, err
	}
	return c.ReadResource(ctx, uri)
}

// ExpandTemplate expands an RFC 6570 URI template with the given variables.
func ExpandTemplate(template string, vars map[string]string) (string, error) {
	tmpl, err := uritemplate.New(template)
	if err != nil {
		return "", fmt.Errorf("parsing URI template %q: %w", template, err)
	}
	values := make(uritemplate.Values, len(vars))
	for k, v := range vars {
		values[k] = uritemplate.String(v)
	}
	uri, err := tmpl.Expand(values)
	if err != nil {
		return "", fmt.Errorf("expanding URI template %q: %w", template, err)
	}
	return uri, nil
}
