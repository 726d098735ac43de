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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wlg001/Integuru/cmd/integuru/config"
	"github.com/wlg001/Integuru/pkg/ux"
	"github.com/wlg001/Integuru/services/agent"
	"github.com/wlg001/Integuru/services/agent/graph"
	"github.com/wlg001/Integuru/services/agent/har"
	"github.com/wlg001/Integuru/services/llm"
)

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runDiscover drives the whole pipeline: parse the capture, identify
// the action, resolve its dependency graph, print it, and optionally
// emit integration code.
func runDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := appLog.Slog()

	archive, err := har.ParseHAR(harPath)
	if err != nil {
		return fmt.Errorf("loading HAR capture: %w", err)
	}
	jar, err := har.ParseCookies(cookiePath)
	if err != nil {
		return fmt.Errorf("loading cookie snapshot: %w", err)
	}

	printHeader(archive, jar)

	oracle, err := llm.NewOpenAIOracle(llm.Config{
		Model:          modelName,
		AlternateModel: config.Global.Model.Alternate,
		BaseURL:        config.Global.Model.BaseURL,
	}, log)
	if err != nil {
		return err
	}

	eng := agent.New(prompt, archive, jar, oracle,
		agent.WithMaxSteps(maxSteps),
		agent.WithInputVariables(inputVariables),
		agent.WithLogger(log))

	res, runErr := eng.Run(ctx)
	if res.ActionURL != "" {
		printAction(res.ActionURL)
	}
	// The partial graph is still worth showing when the run died: for a
	// cycle it is the only way to see the offending requests.
	if res.DAG.Len() > 0 {
		printGraph(res.DAG)
	}
	if runErr != nil {
		return fmt.Errorf("discovery: %w", runErr)
	}
	if res.Exhausted {
		ux.Warning(fmt.Sprintf(
			"step budget (%d) ran out with dependencies still unresolved; raise --max-steps to finish",
			maxSteps))
	}

	if generateCode {
		emitter := agent.NewEmitter(res.DAG, oracle, log)
		artifacts, err := emitter.Emit(ctx, ".")
		if err != nil {
			return fmt.Errorf("code generation: %w", err)
		}
		fmt.Println()
		ux.Success("snippets written to " + artifacts.SnippetsPath)
		ux.Success("program written to " + artifacts.ProgramPath)
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func printHeader(archive *har.Archive, jar *har.CookieJar) {
	ux.Title("Integuru")
	ux.Info(fmt.Sprintf("capture: %d requests, %d cookies", len(archive.Entries), jar.Len()))
	ux.Info("action:  " + prompt)
}

func printAction(url string) {
	ux.Success("identified " + url)
}

// printGraph writes the replay listing, plus the forward tree when
// --render was given. Everything lands on stdout so it can be piped.
func printGraph(d *graph.DAG) {
	opts := graph.RenderOptions{Color: styled}

	if renderTree {
		fmt.Println()
		ux.Title("Dependency graph")
		if err := d.Render(os.Stdout, opts); err != nil {
			ux.Warning("graph render failed: " + err.Error())
		}
	}

	fmt.Println()
	ux.Title("Replay order")
	if err := d.RenderReverse(os.Stdout, opts); err != nil {
		ux.Warning("replay render failed: " + err.Error())
	}
}
