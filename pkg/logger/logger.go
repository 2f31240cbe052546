// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logger holds the process-wide structured logger.
//
// Call sites log with key/value pairs through the package functions.
// Components that keep their own logger take it from [Get] or [With].
package logger

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spf13/viper"

	"github.com/stacklok/toolhive-core/env"
	"github.com/stacklok/toolhive-core/logging"
)

// Environment variables read by Initialize.
const (
	// EnvUnstructuredLogs set to false selects JSON output.
	EnvUnstructuredLogs = "UNSTRUCTURED_LOGS"

	// EnvLogLevel is one of debug, info, warn or error.
	EnvLogLevel = "LOG_LEVEL"
)

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(logging.New())
}

// Get returns the current logger.
func Get() *slog.Logger {
	return current.Load()
}

// Set replaces the current logger.
func Set(l *slog.Logger) {
	current.Store(l)
}

// With returns a child of the current logger carrying keysAndValues.
func With(keysAndValues ...any) *slog.Logger {
	return Get().With(keysAndValues...)
}

func logAt(level slog.Level, msg string, keysAndValues []any) {
	Get().Log(context.Background(), level, msg, keysAndValues...)
}

// Debugw logs at debug level.
func Debugw(msg string, keysAndValues ...any) { logAt(slog.LevelDebug, msg, keysAndValues) }

// Info logs at info level.
func Info(msg string) { logAt(slog.LevelInfo, msg, nil) }

// Infow logs at info level.
func Infow(msg string, keysAndValues ...any) { logAt(slog.LevelInfo, msg, keysAndValues) }

// Warn logs at warn level.
func Warn(msg string) { logAt(slog.LevelWarn, msg, nil) }

// Warnw logs at warn level.
func Warnw(msg string, keysAndValues ...any) { logAt(slog.LevelWarn, msg, keysAndValues) }

// Error logs at error level.
func Error(msg string) { logAt(slog.LevelError, msg, nil) }

// Errorw logs at error level.
func Errorw(msg string, keysAndValues ...any) { logAt(slog.LevelError, msg, keysAndValues) }

// Initialize builds the logger from the process environment and the
// viper debug flag.
func Initialize() {
	InitializeWithEnv(&env.OSReader{})
}

// InitializeWithEnv is Initialize reading variables from envReader.
func InitializeWithEnv(envReader env.Reader) {
	Set(logging.New(optionsFromEnv(envReader, viper.GetBool("debug"))...))
}

func optionsFromEnv(envReader env.Reader, debug bool) []logging.Option {
	var opts []logging.Option

	// Text unless explicitly turned off.
	if unstructured, err := strconv.ParseBool(envReader.Getenv(EnvUnstructuredLogs)); err != nil || unstructured {
		opts = append(opts, logging.WithFormat(logging.FormatText))
	}

	if level, ok := levelFromEnv(envReader, debug); ok {
		opts = append(opts, logging.WithLevel(level))
	}
	return opts
}

// levelFromEnv returns the level to use, if any overrides the default.
// The debug flag wins over LOG_LEVEL.
func levelFromEnv(envReader env.Reader, debug bool) (slog.Level, bool) {
	if debug {
		return slog.LevelDebug, true
	}
	raw := strings.TrimSpace(envReader.Getenv(EnvLogLevel))
	if raw == "" {
		return 0, false
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, false
	}
	return level, true
}
