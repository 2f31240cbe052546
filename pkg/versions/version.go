// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package versions provides the build metadata of the salla-mcp binary.
package versions

import (
	"runtime"
	"time"
)

const (
	devVersion = "dev"
	unknownStr = "unknown"

	buildDateLayout = "2006-01-02 15:04:05 MST"
)

// Build metadata, set at link time with -ldflags "-X".
var (
	Version   = devVersion
	Commit    = unknownStr
	BuildDate = unknownStr
)

// VersionInfo is the version information reported by the CLI and the MCP server.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the version information of the running binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   displayVersion(Version, Commit),
		Commit:    Commit,
		BuildDate: displayBuildDate(BuildDate),
		GoVersion: runtime.Version(),
		Platform:  platform(),
	}
}

// UserAgent is the User-Agent sent to the Salla API.
func UserAgent() string {
	return "salla-mcp/" + GetVersionInfo().Version + " (" + platform() + ")"
}

// displayVersion reports development builds as "build-<commit prefix>".
func displayVersion(version, commit string) string {
	if version != devVersion {
		return version
	}
	return "build-" + commit[:min(len(commit), 8)]
}

// displayBuildDate renders an RFC 3339 build date in UTC. Other values pass through.
func displayBuildDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(buildDateLayout)
}

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
