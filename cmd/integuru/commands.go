// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	prompt         string
	harPath        string
	cookiePath     string
	modelName      string
	inputVariables map[string]string
	maxSteps       int
	generateCode   bool
	renderTree     bool
	configPath     string
	logLevel       string
	logJSON        bool
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "integuru",
	Short: "Reverse engineer a browser action into a replayable request graph",
	Long: `Integuru takes a recorded browser session (a HAR capture plus a cookie
snapshot) and a plain-language description of the action you performed,
and works out which requests the action depends on: which response or
cookie produced every dynamic token the action consumes, recursively,
until only your own inputs remain.

The result is a dependency graph whose reverse order is a replay script.
With --generate-code the same graph is turned into runnable integration
code.

Record the session first:
  1. Open your browser's network tab, tick "Preserve log".
  2. Perform the action once (download an invoice, book a slot, ...).
  3. Export the capture as HAR and your cookies as a JSON array.

Examples:
  integuru --prompt "Download the March invoice as PDF"
  integuru --prompt "Book the 9am slot" --har-path booking.har --max-steps 30
  integuru --prompt "Export my data" --input-variables email=me@example.com --generate-code`,
	RunE:          runDiscover,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	registerRootFlags(rootCmd)
	_ = rootCmd.MarkFlagRequired("prompt")
}

// registerRootFlags binds the package flag vars to cmd. Split out of
// init so tests can rebuild the set on a throwaway command.
func registerRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&prompt, "prompt", "",
		"Plain-language description of the action to trace (required)")
	cmd.Flags().StringVar(&harPath, "har-path", "network_requests.har",
		"Path to the HAR capture of the recorded session")
	cmd.Flags().StringVar(&cookiePath, "cookie-path", "cookies.json",
		"Path to the cookie snapshot (JSON array)")
	cmd.Flags().StringVar(&modelName, "model", "",
		"Reasoning model for discovery calls (default from config)")
	cmd.Flags().StringToStringVar(&inputVariables, "input-variables", nil,
		"Values you typed during the session, as name=value (repeatable)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0,
		"Maximum requests to resolve before returning the partial graph (default from config)")
	cmd.Flags().BoolVar(&generateCode, "generate-code", false,
		"Generate runnable integration code from the discovered graph")
	cmd.Flags().BoolVar(&renderTree, "render", false,
		"Also print the forward dependency tree (action first)")

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/.integuru/integuru.yaml, created on first run)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log verbosity: debug, info, warn, error (default from config)")
	cmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"Emit logs as JSON instead of text")
}
