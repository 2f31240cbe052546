// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stacklok/salla-mcp/pkg/versions"
)

func newVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version of salla-mcp",
		Long:  "Print the version, git commit, build date, Go version and platform of this binary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			if asJSON {
				return writeVersionJSON(cmd.OutOrStdout(), info)
			}
			return writeVersionText(cmd.OutOrStdout(), info)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")
	return cmd
}

func writeVersionText(w io.Writer, info versions.VersionInfo) error {
	if _, err := fmt.Fprintf(w, "salla-mcp %s\n", info.Version); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, row := range [][2]string{
		{"Commit:", info.Commit},
		{"Built:", info.BuildDate},
		{"Go version:", info.GoVersion},
		{"Platform:", info.Platform},
	} {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func writeVersionJSON(w io.Writer, info versions.VersionInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		return fmt.Errorf("failed to encode version info: %w", err)
	}
	return nil
}
