// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kauffinger/relay/internal/config"
)

var serversJSON bool

func init() {
	serversCmd.Flags().BoolVar(&serversJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(serversCmd)
}

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List configured MCP servers",
	Long: `List the servers defined in the registry, one line per entry with its
transport kind and target. The default server is marked with an asterisk.

Any validation problems in the registry are reported as warnings.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServers(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// serverInfoJSON represents one registry entry in JSON output.
type serverInfoJSON struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
	URL       string `json:"url,omitempty"`
	Command   string `json:"command,omitempty"`
	Default   bool   `json:"default"`
}

func runServers(out, errOut io.Writer) error {
	if configLoadErr != nil {
		return errors.Wrap(configLoadErr, "loading config")
	}
	if registry == nil || len(registry.Servers) == 0 {
		fmt.Fprintln(out, "No servers configured.")
		return nil
	}

	names := make([]string, 0, len(registry.Servers))
	for name := range registry.Servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, err := range config.Validate(registry) {
		fmt.Fprintln(errOut, color.YellowString("warning: %v", err))
	}

	if serversJSON {
		infos := make([]serverInfoJSON, 0, len(names))
		for _, name := range names {
			srv := registry.Servers[name]
			infos = append(infos, serverInfoJSON{
				Name:      name,
				Transport: srv.EffectiveTransport(),
				URL:       srv.URL,
				Command:   srv.Command,
				Default:   name == registry.DefaultServer,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(infos), "encoding JSON output")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTRANSPORT\tTARGET")
	for _, name := range names {
		srv := registry.Servers[name]
		target := srv.URL
		if srv.EffectiveTransport() == config.TransportCommand {
			target = srv.Command
		}
		marker := ""
		if name == registry.DefaultServer {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\n", name, marker, srv.EffectiveTransport(), target)
	}
	return tw.Flush()
}
