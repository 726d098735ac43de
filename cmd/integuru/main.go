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
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/wlg001/Integuru/cmd/integuru/config"
	"github.com/wlg001/Integuru/pkg/logging"
	"github.com/wlg001/Integuru/pkg/ux"
)

// appLog carries diagnostics for the whole run; stdout stays reserved
// for the graph and replay output.
var appLog *logging.Logger

// styled reports whether stdout is a terminal. Piped output drops the
// colors so the graph dump stays grep-friendly.
var styled bool

func main() {
	styled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	ux.SetPlain(!styled)

	err := rootCmd.Execute()
	if appLog != nil {
		_ = appLog.Close()
	}
	if err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// .env is optional; the API key may already be in the environment.
		_ = godotenv.Load()

		if err := config.Load(configPath); err != nil {
			return err
		}
		applyConfigDefaults(cmd)

		appLog = logging.New(logging.Config{
			Level:   logging.ParseLevel(logLevel),
			JSON:    logJSON,
			LogDir:  config.Global.Logging.Dir,
			Service: "integuru",
		})
		return nil
	}
}

// applyConfigDefaults fills every flag the user left untouched from the
// loaded config file, so precedence is flag > config > built-in.
func applyConfigDefaults(cmd *cobra.Command) {
	cfg := config.Global
	flags := cmd.Flags()

	if !flags.Changed("har-path") && cfg.Capture.HARPath != "" {
		harPath = cfg.Capture.HARPath
	}
	if !flags.Changed("cookie-path") && cfg.Capture.CookiePath != "" {
		cookiePath = cfg.Capture.CookiePath
	}
	if !flags.Changed("model") && modelName == "" {
		modelName = cfg.Model.Name
	}
	if !flags.Changed("max-steps") && maxSteps == 0 {
		maxSteps = cfg.Discovery.MaxSteps
	}
	if !flags.Changed("log-level") && logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	if !flags.Changed("log-json") && cfg.Logging.JSON {
		logJSON = true
	}
}
