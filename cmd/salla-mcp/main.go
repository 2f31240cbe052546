// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package main is the entry point for the Salla MCP server.
package main

import (
	"context"
	"os"

	"github.com/stacklok/salla-mcp/cmd/salla-mcp/app"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

func main() {
	// Commands reinitialize once flags are parsed; this covers flag errors.
	logger.Initialize()

	if err := app.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
