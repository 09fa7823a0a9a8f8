// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package commands implements the CLI commands for relay.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kauffinger/relay/internal/config"
	"github.com/kauffinger/relay/internal/logging"
	"github.com/kauffinger/relay/mcp"
)

// version is set at build time via ldflags.
// Default to a development version for local builds.
const version = "1.0.0"

// cfgFile holds the value of the --config flag.
var cfgFile string

// logLevel holds the value of the --log-level flag.
var logLevel string

// logFormat holds the value of the --log-format flag.
var logFormat string

// timeoutFlag overrides the per-server request timeout when non-zero.
var timeoutFlag time.Duration

// noValidate holds the value of the --no-input-validation flag.
var noValidate bool

// registry holds the loaded server registry, or nil when loading failed.
var registry *config.Config

// configLoadErr holds any error that occurred during config loading. It is
// reported lazily so commands that never touch the registry still work.
var configLoadErr error

// logger is the process-wide logger, configured in PersistentPreRunE.
var logger *slog.Logger = logging.NewDiscard()

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $XDG_CONFIG_HOME/relay/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0,
		"per-request timeout override (e.g. 45s)")
	rootCmd.PersistentFlags().BoolVar(&noValidate, "no-input-validation", false,
		"skip client-side validation of tool arguments")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("relay version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting
	registry, configLoadErr = config.Load(cfgFile)
}

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Command-line client for MCP servers",
	Long: `relay is a command-line client for Model Context Protocol servers.

It speaks JSON-RPC 2.0 over HTTP (with streaming SSE responses) or over
the standard streams of a locally launched subprocess. Servers are named
in a registry file; every command addresses one by name, falling back to
the registry's default_server when the name is omitted.`,
	Example: `  # List configured servers
  relay servers

  # List a server's tools
  relay tools everything

  # Call a tool
  relay call everything echo --arg message=hi

  # Read a resource
  relay read everything file:///project/README.md`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the process logger from the --log-level and
// --log-format flags, honoring RELAYDEBUG-free defaults.
func setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}

	logger = logging.New(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command and prints any resulting error.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
	}
	return err
}

// ExitCode maps an error to a process exit code: 2 for transport and server
// failures, 1 for user errors such as bad flags or config.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var te *mcp.TransportError
	if errors.As(err, &te) {
		return 2
	}
	return 1
}
