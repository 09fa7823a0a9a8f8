// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kauffinger/relay/mcp"
)

var (
	callArgs []string
	callJSON string
)

func init() {
	callCmd.Flags().StringArrayVar(&callArgs, "arg", nil,
		"tool argument as key=value; repeatable, values parsed as JSON when possible")
	callCmd.Flags().StringVar(&callJSON, "json", "",
		"tool arguments as a single JSON object")
	rootCmd.AddCommand(callCmd)
}

var callCmd = &cobra.Command{
	Use:   "call [server] <tool>",
	Short: "Call a tool on a server",
	Long: `Call a tool and print its result. Arguments are given either as repeated
--arg key=value pairs or as one JSON object via --json. Values in --arg
pairs are parsed as JSON when they look like it, so --arg count=3 sends a
number and --arg name=fred sends a string.

Text content is printed verbatim; binary content is summarized. A
tool-level failure (the server answered, but the tool reported an error)
exits non-zero after printing the tool's output.`,
	Example: `  relay call everything echo --arg message=hi
  relay call everything add --arg a=1 --arg b=2
  relay call fs write --json '{"path": "/tmp/x", "content": "hello"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, tool := "", args[0]
		if len(args) == 2 {
			server, tool = args[0], args[1]
		}
		return runCall(cmd, server, tool)
	},
}

func runCall(cmd *cobra.Command, server, tool string) error {
	toolArgs, err := parseToolArgs(callArgs, callJSON)
	if err != nil {
		return err
	}

	server, srv, err := resolveServer(server)
	if err != nil {
		return err
	}

	client := newClient(srv)
	ctx := cmd.Context()
	if err := client.Connect(ctx); err != nil {
		return errors.Wrapf(err, "connecting to %q", server)
	}
	defer client.Close()

	result, err := client.CallTool(ctx, tool, toolArgs)
	if err != nil {
		return errors.Wrapf(err, "calling %q on %q", tool, server)
	}

	printResult(cmd.OutOrStdout(), result)
	if result.IsError {
		return errors.Newf("tool %q reported an error", tool)
	}
	return nil
}

// parseToolArgs builds the argument object from the --arg and --json flags,
// which are mutually exclusive.
func parseToolArgs(pairs []string, rawJSON string) (map[string]any, error) {
	if rawJSON != "" && len(pairs) > 0 {
		return nil, errors.New("--arg and --json are mutually exclusive")
	}
	if rawJSON != "" {
		var args map[string]any
		if err := json.Unmarshal([]byte(rawJSON), &args); err != nil {
			return nil, errors.Wrap(err, "parsing --json")
		}
		return args, nil
	}
	args := map[string]any{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid --arg %q: want key=value", pair)
		}
		args[key] = parseArgValue(value)
	}
	return args, nil
}

// parseArgValue interprets an --arg value as JSON when it parses as such,
// so numbers, booleans, null, arrays, and objects can be passed without
// quoting gymnastics. Anything else is a plain string.
func parseArgValue(value string) any {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err == nil {
		return v
	}
	return value
}

func printResult(out io.Writer, result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Fprintln(out, color.RedString("tool error:"))
	}
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			fmt.Fprintln(out, block.Text)
		default:
			fmt.Fprintf(out, "[%s content, %s, %d bytes base64]\n",
				block.Type, block.MIMEType, len(block.Data))
		}
	}
	if len(result.StructuredContent) > 0 {
		var buf bytes.Buffer
		if err := json.Indent(&buf, result.StructuredContent, "", "  "); err == nil {
			fmt.Fprintln(out, buf.String())
		} else {
			fmt.Fprintln(out, string(result.StructuredContent))
		}
	}
}
