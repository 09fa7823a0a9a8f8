// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pingCmd)
}

var pingCmd = &cobra.Command{
	Use:   "ping [server]",
	Short: "Check that a server answers",
	Long: `Connect to a server, run the handshake, and send a ping request.
Reports the round trip time on success.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return runPing(cmd, name)
	},
}

func runPing(cmd *cobra.Command, name string) error {
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

	start := time.Now()
	if err := client.Ping(ctx); err != nil {
		return errors.Wrapf(err, "pinging %q", name)
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("%s: ok (%s)", name, time.Since(start).Round(time.Millisecond)))
	return nil
}
