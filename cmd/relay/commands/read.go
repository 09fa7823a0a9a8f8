// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/kauffinger/relay/mcp"
)

var readVars []string

func init() {
	readCmd.Flags().StringArrayVar(&readVars, "var", nil,
		"template variable as key=value; the URI is treated as an RFC 6570 template")
	rootCmd.AddCommand(readCmd)
}

var readCmd = &cobra.Command{
	Use:   "read [server] <uri>",
	Short: "Read a resource from a server",
	Long: `Read a resource and print its contents. Text contents are written to
stdout verbatim; binary contents are base64-decoded before writing.

With --var the URI is expanded as an RFC 6570 template first:

  relay read fs 'file:///{path}' --var path=README.md`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, uri := "", args[0]
		if len(args) == 2 {
			server, uri = args[0], args[1]
		}
		return runRead(cmd, server, uri)
	},
}

func runRead(cmd *cobra.Command, server, uri string) error {
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

	var result *mcp.ReadResourceResult
	if len(readVars) > 0 {
		vars := make(map[string]string, len(readVars))
		for _, pair := range readVars {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return errors.Newf("invalid --var %q: want key=value", pair)
			}
			vars[key] = value
		}
		result, err = client.ReadResourceTemplate(ctx, uri, vars)
	} else {
		result, err = client.ReadResource(ctx, uri)
	}
	if err != nil {
		return errors.Wrapf(err, "reading %q from %q", uri, server)
	}

	return printContents(cmd.OutOrStdout(), result.Contents)
}

func printContents(out io.Writer, contents []*mcp.ResourceContents) error {
	for _, c := range contents {
		if c.Blob != "" {
			decoded, err := base64.StdEncoding.DecodeString(c.Blob)
			if err != nil {
				return errors.Wrapf(err, "decoding blob contents of %q", c.URI)
			}
			if _, err := out.Write(decoded); err != nil {
				return err
			}
			continue
		}
		fmt.Fprint(out, c.Text)
	}
	return nil
}
