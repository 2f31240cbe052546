// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setBuild(t *testing.T, version, commit, buildDate string) {
	t.Helper()
	prevVersion, prevCommit, prevDate := Version, Commit, BuildDate
	Version, Commit, BuildDate = version, commit, buildDate
	t.Cleanup(func() { Version, Commit, BuildDate = prevVersion, prevCommit, prevDate })
}

func TestGetVersionInfo(t *testing.T) { //nolint:paralleltest // replaces link-time variables
	tests := []struct {
		name                      string
		version, commit, built    string
		wantVersion, wantBuiltOut string
	}{
		{"unstamped build", devVersion, unknownStr, unknownStr, "build-unknown", unknownStr},
		{"dev build with long commit", devVersion, "9f2c4e1a7b3d", unknownStr, "build-9f2c4e1a", unknownStr},
		{"dev build with short commit", devVersion, "9f2c", unknownStr, "build-9f2c", unknownStr},
		{"release", "v0.4.0", "9f2c4e1a7b3d", "2025-06-01T08:15:00Z", "v0.4.0", "2025-06-01 08:15:00 UTC"},
		{"release with offset date", "v0.4.1", "9f2c", "2025-06-01T11:15:00+03:00", "v0.4.1", "2025-06-01 08:15:00 UTC"},
		{"unparseable date", "v0.5.0-rc.1", "9f2c", "last tuesday", "v0.5.0-rc.1", "last tuesday"},
	}

	for _, tt := range tests { //nolint:paralleltest // replaces link-time variables
		t.Run(tt.name, func(t *testing.T) {
			setBuild(t, tt.version, tt.commit, tt.built)

			assert.Equal(t, VersionInfo{
				Version:   tt.wantVersion,
				Commit:    tt.commit,
				BuildDate: tt.wantBuiltOut,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}, GetVersionInfo())
		})
	}
}

func TestUserAgent(t *testing.T) { //nolint:paralleltest // replaces link-time variables
	setBuild(t, "v0.4.0", "9f2c", unknownStr)
	assert.Equal(t, "salla-mcp/v0.4.0 ("+runtime.GOOS+"/"+runtime.GOARCH+")", UserAgent())

	setBuild(t, devVersion, "0123456789", unknownStr)
	assert.Equal(t, "salla-mcp/build-01234567 ("+runtime.GOOS+"/"+runtime.GOARCH+")", UserAgent())
}
