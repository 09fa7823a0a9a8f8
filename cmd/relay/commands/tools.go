// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kauffinger/relay/mcp"
)

var toolsJSON bool

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Output full tool definitions as JSON")
	rootCmd.AddCommand(toolsCmd)
}

var toolsCmd = &cobra.Command{
	Use:   "tools [server]",
	Short: "List the tools a server exposes",
	Long: `Connect to a server and list its tools. With --json the full tool
definitions are printed, including each tool's input schema.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return runTools(cmd, name)
	},
}

func runTools(cmd *cobra.Command, name string) error {
	name, srv, err := resolveServer(name)
	if err != nil {
		return err
	}

	client := newClient(srv)
	ctx := cmd.Context()
	if err := client.Connect(ctx); err != nil {
		return errors.Wrapf(err, "connecting to %q", name)
	}
	defer client.Close()

	tools, err := client.ListTools(ctx)
	if err != nil {
		return errors.Wrapf(err, "listing tools on %q", name)
	}

	out := cmd.OutOrStdout()
	if toolsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(tools), "encoding JSON output")
	}
	return printTools(out, tools)
}

func printTools(out io.Writer, tools []*mcp.Tool) error {
	if len(tools) == 0 {
		fmt.Fprintln(out, "No tools.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, tool := range tools {
		fmt.Fprintf(tw, "%s\t%s\n", tool.Name, firstLine(tool.Description))
	}
	return tw.Flush()
}

// firstLine truncates a description to its first line for tabular output.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
