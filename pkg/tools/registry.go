// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tools defines the MCP tools that expose the Salla admin API.
//
// Each tool runs on behalf of the merchant whose props were bound to the
// access token of the MCP request. A call without props is answered with
// NotAuthenticatedMessage and never reaches Salla.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/salla"
)

// NotAuthenticatedMessage is returned by every tool called without props.
const NotAuthenticatedMessage = "Error: Not authenticated with Salla. Please authenticate first."

// Handler serves one tool call for the merchant described by props.
// props is never nil and always carries an access token.
type Handler func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error)

// Tool pairs an MCP tool definition with its handler.
type Tool struct {
	Definition mcp.Tool
	Handler    Handler
}

// Registry holds the Salla tools by name.
type Registry struct {
	tools   []Tool
	byName  map[string]Tool
	metrics *metrics.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics counts tool invocations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry builds every Salla tool on top of client.
func NewRegistry(client salla.Client, opts ...Option) *Registry {
	r := &Registry{
		tools: []Tool{
			ordersList(client),
			orderDetails(client),
			orderStatusUpdate(client),
			productsList(client),
			productDetails(client),
			productCreate(client),
			productUpdate(client),
			customersList(client),
			customerDetails(client),
			storeInfo(client),
			categoriesList(client),
			categoryDetails(client),
			brandsList(client),
			abandonedCarts(client),
			hourlyVisitors(client),
			summaryReport(client),
			latestOrders(client),
			generalStatistics(client),
		},
		byName: make(map[string]Tool),
	}
	for _, tool := range r.tools {
		r.byName[tool.Definition.Name] = tool
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tools returns the tools in registration order.
func (r *Registry) Tools() []Tool {
	return slices.Clone(r.tools)
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Call dispatches request to the named tool on behalf of props.
func (r *Registry) Call(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
	name := request.Params.Name
	tool, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}

	if props == nil || props.AccessToken == "" {
		logger.Debugw("tool called without Salla credentials", "tool", name)
		r.metrics.ToolCall(name, true)
		return mcp.NewToolResultError(NotAuthenticatedMessage), nil
	}

	result, err := tool.Handler(ctx, request, props)
	r.metrics.ToolCall(name, err != nil || (result != nil && result.IsError))
	return result, err
}

// Register adds every tool to s. Props are read from the request context,
// where the bearer middleware put them.
func (r *Registry) Register(s *server.MCPServer) {
	for _, tool := range r.tools {
		s.AddTool(tool.Definition, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			props, _ := session.PropsFromContext(ctx)
			return r.Call(ctx, request, props)
		})
	}
}

// bindArgs decodes the tool arguments into target, or returns the failure result.
func bindArgs(request mcp.CallToolRequest, verb string, target any) *mcp.CallToolResult {
	if err := request.BindArguments(target); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error %s: invalid arguments: %v", verb, err))
	}
	return nil
}

// required returns the failure result for a missing required argument.
func required(verb, name string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("Error %s: %s is required", verb, name))
}

// respond renders a Salla response as "<label>:\n\n<indented JSON>",
// or the failure as "Error <verb>: <message>".
func respond(label, verb string, raw json.RawMessage, err error) *mcp.CallToolResult {
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error %s: %v", verb, err))
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error %s: invalid response from Salla: %v", verb, err))
	}
	return mcp.NewToolResultText(label + ":\n\n" + out.String())
}
