// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus counters for the authorization flow and tool calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authorization stages.
const (
	StageAuthorize = "authorize"
	StageConsent   = "consent"
	StageCallback  = "callback"
	StageExchange  = "exchange"
	StageIdentity  = "identity"
	StageComplete  = "complete"
	StageRegister  = "register"
)

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Config configures the metrics registry.
type Config struct {
	// IncludeRuntimeMetrics adds the Go runtime and process collectors.
	IncludeRuntimeMetrics bool
}

// Metrics holds the counters and the registry they are registered with.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	authorization *prometheus.CounterVec
	toolCalls     *prometheus.CounterVec
}

// New creates the counters on a private registry.
func New(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	if cfg.IncludeRuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: registry,
		authorization: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salla_mcp",
			Name:      "authorization_total",
			Help:      "Authorization flow transitions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salla_mcp",
			Name:      "tool_calls_total",
			Help:      "MCP tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
	}
	registry.MustRegister(m.authorization, m.toolCalls)
	return m
}

// Authorization counts one authorization flow transition.
func (m *Metrics) Authorization(stage, outcome string) {
	if m == nil {
		return
	}
	m.authorization.WithLabelValues(stage, outcome).Inc()
}

// ToolCall counts one tool invocation.
func (m *Metrics) ToolCall(tool string, failed bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if failed {
		outcome = OutcomeFailure
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
