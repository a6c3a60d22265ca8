// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rolecall/rolecall/internal/config"
	"github.com/rolecall/rolecall/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the rolecall CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rolecall",
		Short: "rolecall - role-based authorization policy tool",
		Long: `rolecall evaluates and validates declarative role documents for the
rolecall authorization engine. Policies live in YAML role documents whose
detect/when clauses use the condition expression language.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("logging.level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("logging.format", "json", "log format (json, text)")

	// Add subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewLintCmd())

	return cmd
}

// loadConfig resolves configuration from the --config file and flag
// overrides, and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := logging.Setup("rolecall", version, cfg.Logging.Format, cfg.Logging.Level, nil)
	slog.SetDefault(logger)
	return cfg, nil
}
