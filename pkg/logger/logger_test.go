// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-core/env/mocks"
	"github.com/stacklok/toolhive-core/logging"
)

func envReader(t *testing.T, vars map[string]string) *mocks.MockReader {
	t.Helper()
	reader := mocks.NewMockReader(gomock.NewController(t))
	reader.EXPECT().Getenv(gomock.Any()).DoAndReturn(func(key string) string {
		return vars[key]
	}).AnyTimes()
	return reader
}

func TestOptionsFromEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		vars      map[string]string
		debug     bool
		wantJSON  bool
		wantDebug bool
		wantInfo  bool
	}{
		{name: "defaults", wantInfo: true},
		{name: "json output", vars: map[string]string{EnvUnstructuredLogs: "false"}, wantJSON: true, wantInfo: true},
		{name: "unparseable format flag keeps text", vars: map[string]string{EnvUnstructuredLogs: "nope"}, wantInfo: true},
		{name: "debug flag", debug: true, wantDebug: true, wantInfo: true},
		{name: "log level debug", vars: map[string]string{EnvLogLevel: "DEBUG"}, wantDebug: true, wantInfo: true},
		{name: "log level warn", vars: map[string]string{EnvLogLevel: "warn"}},
		{name: "debug flag beats log level", vars: map[string]string{EnvLogLevel: "error"}, debug: true, wantDebug: true, wantInfo: true},
		{name: "unknown log level ignored", vars: map[string]string{EnvLogLevel: "verbose"}, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			opts := append(optionsFromEnv(envReader(t, tt.vars), tt.debug), logging.WithOutput(&buf))
			l := logging.New(opts...)

			assert.Equal(t, tt.wantDebug, l.Enabled(context.Background(), slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, l.Enabled(context.Background(), slog.LevelInfo))
			assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))

			l.Warn("store synced", "store", "demo")
			line := strings.TrimSpace(buf.String())
			assert.Equal(t, tt.wantJSON, json.Valid([]byte(line)), line)
		})
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Get()
	Set(logging.New(logging.WithOutput(&buf), logging.WithLevel(slog.LevelDebug)))
	t.Cleanup(func() { Set(prev) })
	return &buf
}

func TestPackageFunctions(t *testing.T) { //nolint:paralleltest // replaces the process logger
	buf := captureLogs(t)

	Debugw("redirecting upstream", "client_id", "abc")
	Info("server listening")
	Infow("authorization completed", "user_id", "42")
	Warn("state cookie missing")
	Warnw("consent rejected", "client_id", "abc")
	Error("storage unavailable")
	Errorw("exchange failed", "status", 401)
	With("provider", "salla").Info("callback received")

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		records = append(records, rec)
	}
	require.Len(t, records, 8)

	wantLevels := []string{"DEBUG", "INFO", "INFO", "WARN", "WARN", "ERROR", "ERROR", "INFO"}
	for i, rec := range records {
		assert.Equal(t, wantLevels[i], rec["level"], rec["msg"])
	}
	assert.Equal(t, "abc", records[0]["client_id"])
	assert.Equal(t, "42", records[2]["user_id"])
	assert.InDelta(t, 401, records[6]["status"], 0)
	assert.Equal(t, "salla", records[7]["provider"])
	assert.Equal(t, "callback received", records[7]["msg"])
}

func TestInitializeWithEnv(t *testing.T) { //nolint:paralleltest // replaces the process logger
	prev := Get()
	t.Cleanup(func() { Set(prev) })

	InitializeWithEnv(envReader(t, map[string]string{EnvUnstructuredLogs: "false", EnvLogLevel: "error"}))

	got := Get()
	require.NotNil(t, got)
	assert.NotSame(t, prev, got)
	assert.False(t, got.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, got.Enabled(context.Background(), slog.LevelError))
}
