// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var (
	resourcesJSON      bool
	resourcesTemplates bool
)

func init() {
	resourcesCmd.Flags().BoolVar(&resourcesJSON, "json", false, "Output in JSON format")
	resourcesCmd.Flags().BoolVar(&resourcesTemplates, "templates", false,
		"List resource templates instead of concrete resources")
	rootCmd.AddCommand(resourcesCmd)
}

var resourcesCmd = &cobra.Command{
	Use:   "resources [server]",
	Short: "List the resources a server exposes",
	Long: `Connect to a server and list its concrete resources, or its RFC 6570
resource templates with --templates.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		return runResources(cmd, name)
	},
}

func runResources(cmd *cobra.Command, name string) error {
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

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	if resourcesTemplates {
		templates, err := client.ListResourceTemplates(ctx)
		if err != nil {
			return errors.Wrapf(err, "listing resource templates on %q", name)
		}
		if resourcesJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return errors.Wrap(enc.Encode(templates), "encoding JSON output")
		}
		if len(templates) == 0 {
			fmt.Fprintln(out, "No resource templates.")
			return nil
		}
		fmt.Fprintln(tw, "NAME\tTEMPLATE")
		for _, t := range templates {
			fmt.Fprintf(tw, "%s\t%s\n", t.Name, t.URITemplate)
		}
		return tw.Flush()
	}

	resources, err := client.ListResources(ctx)
	if err != nil {
		return errors.Wrapf(err, "listing resources on %q", name)
	}
	if resourcesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(resources), "encoding JSON output")
	}
	if len(resources) == 0 {
		fmt.Fprintln(out, "No resources.")
		return nil
	}
	fmt.Fprintln(tw, "NAME\tURI")
	for _, r := range resources {
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.URI)
	}
	return tw.Flush()
}
