// Copyright 2025 The Relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package main is the entry point for the relay CLI.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kauffinger/relay/cmd/relay/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.Execute(ctx); err != nil {
		stop()
		os.Exit(commands.ExitCode(err))
	}
}
