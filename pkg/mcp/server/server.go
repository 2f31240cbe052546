// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package server serves the Salla tools over MCP.
//
// Two transports are exposed, both behind bearer authentication: the legacy
// SSE transport at /sse (with its message endpoint at /message) and the
// streamable HTTP transport at /mcp. The authenticated props travel in the
// request context to the tool handlers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	authmw "github.com/stacklok/salla-mcp/pkg/auth/middleware"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/oauth"
	"github.com/stacklok/salla-mcp/pkg/tools"
	"github.com/stacklok/salla-mcp/pkg/versions"
)

const (
	// DefaultMCPPort is the default port for the MCP server.
	DefaultMCPPort = "8787"

	// ServerName is the MCP server name reported to clients.
	ServerName = "Salla"

	// StreamablePath is the streamable HTTP endpoint.
	StreamablePath = "/mcp"

	// SSEPath is the SSE stream endpoint.
	SSEPath = "/sse"

	// MessagePath receives client messages for SSE sessions.
	MessagePath = "/message"

	// MetricsPath serves Prometheus metrics.
	MetricsPath = "/metrics"
)

// Config holds the configuration for the MCP server.
type Config struct {
	Host string
	Port string

	// Issuer is the public base URL, used for the SSE message endpoint and
	// the protected resource metadata URL.
	Issuer string

	// Introspector validates bearer tokens on the MCP endpoints.
	Introspector authmw.TokenIntrospector

	// Props loads the props of a token's grant.
	Props authmw.PropsGetter

	// Tools are registered on the MCP server.
	Tools *tools.Registry

	// AuthRoutes registers the authorization server endpoints on the root router.
	AuthRoutes func(chi.Router)

	// Metrics is served at MetricsPath when set.
	Metrics http.Handler
}

func (c *Config) validate() error {
	if c.Issuer == "" {
		return errors.New("issuer is required")
	}
	if c.Introspector == nil {
		return errors.New("token introspector is required")
	}
	if c.Props == nil {
		return errors.New("props storage is required")
	}
	if c.Tools == nil {
		return errors.New("tool registry is required")
	}
	return nil
}

// Server is the Salla MCP server together with its HTTP surface.
type Server struct {
	config     *Config
	mcpServer  *server.MCPServer
	streamable *server.StreamableHTTPServer
	sse        *server.SSEServer
	httpServer *http.Server
}

// New creates the MCP server, registers the tools and assembles the router.
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	versionInfo := versions.GetVersionInfo()
	mcpServer := server.NewMCPServer(
		ServerName,
		versionInfo.Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithInstructions(homepageDescription),
	)
	config.Tools.Register(mcpServer)

	streamable := server.NewStreamableHTTPServer(
		mcpServer,
		server.WithEndpointPath(StreamablePath),
		server.WithHTTPContextFunc(propsContext),
	)

	s := &Server{
		config:     config,
		mcpServer:  mcpServer,
		streamable: streamable,
	}
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(config.Host, config.Port),
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		IdleTimeout:       120 * time.Second,
	}

	// The SSE server owns the HTTP server so that its Shutdown closes the
	// open event streams before draining connections.
	s.sse = server.NewSSEServer(
		mcpServer,
		server.WithHTTPServer(s.httpServer),
		server.WithBaseURL(config.Issuer),
		server.WithSSEEndpoint(SSEPath),
		server.WithMessageEndpoint(MessagePath),
		server.WithSSEContextFunc(propsContext),
		server.WithKeepAlive(true),
	)
	s.httpServer.Handler = s.Handler()

	return s, nil
}

// Handler returns the root router: homepage, metrics, authorization server
// endpoints and the authenticated MCP transports.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.HomepageHandler)
	if s.config.Metrics != nil {
		r.Method(http.MethodGet, MetricsPath, s.config.Metrics)
	}
	if s.config.AuthRoutes != nil {
		s.config.AuthRoutes(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.CORS)
		r.Use(authmw.TokenMiddleware(authmw.Config{
			Introspector:        s.config.Introspector,
			Props:               s.config.Props,
			Resource:            s.config.Issuer + StreamablePath,
			ResourceMetadataURL: s.config.Issuer + oauth.WellKnownProtectedResourcePath,
		}))
		r.Handle(StreamablePath, s.streamable)
		r.Handle(SSEPath, s.sse.SSEHandler())
		r.Handle(MessagePath, s.sse.MessageHandler())
	})
	return r
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logger.Infow("starting Salla MCP server",
		"address", s.httpServer.Addr,
		"streamable", s.config.Issuer+StreamablePath,
		"sse", s.config.Issuer+SSEPath,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Shutdown closes the MCP sessions and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("shutting down MCP server")
	var errs []error
	if err := s.streamable.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop streamable transport: %w", err))
	}
	if err := s.sse.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shut down HTTP server: %w", err))
	}
	return errors.Join(errs...)
}

// GetAddress returns the streamable HTTP endpoint URL.
func (s *Server) GetAddress() string {
	return s.config.Issuer + StreamablePath
}

// propsContext carries the props set by the bearer middleware into the MCP
// request context.
func propsContext(ctx context.Context, r *http.Request) context.Context {
	if props, ok := session.PropsFromContext(r.Context()); ok {
		return session.WithProps(ctx, props)
	}
	return ctx
}
