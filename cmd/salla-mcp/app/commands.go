// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the salla-mcp command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/salla-mcp/pkg/config"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

const rootLong = `salla-mcp serves the Salla admin API as MCP tools.

Merchants connect their MCP client, sign in with Salla through the built-in
OAuth authorization server, and the tools then act on their store.`

// NewRootCmd creates the root command of the salla-mcp CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "salla-mcp",
		Short:             "MCP server for Salla stores",
		Long:              rootLong,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// The debug flag is bound to viper, so the level is only
			// known after flag parsing.
			logger.Initialize()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool(config.FlagDebug, false, "Enable debug logging")
	if err := viper.BindPFlag(config.FlagDebug, flags.Lookup(config.FlagDebug)); err != nil {
		logger.Errorw("failed to bind flag", "flag", config.FlagDebug, "error", err)
	}

	rootCmd.AddCommand(newServeCmd(), newVersionCmd())
	return rootCmd
}
