// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ory/fosite"

	apierrors "github.com/stacklok/salla-mcp/pkg/api/errors"
	"github.com/stacklok/salla-mcp/pkg/authserver/consent"
	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/server"
	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream"
	"github.com/stacklok/salla-mcp/pkg/oauth"
)

// DefaultServerInfo describes this server on the approval dialog.
var DefaultServerInfo = consent.ServerInfo{
	Name:        "Salla MCP Server",
	Logo:        "https://accounts.salla.sa/./accounts/images/salla-smile.svg",
	Description: "Connect to your Salla store to manage products, orders, customers, and analytics through AI assistants.",
}

// ApprovalStore is the Consent Store of the authorization gate.
// *consent.Store implements it.
type ApprovalStore interface {
	AlreadyApproved(r *http.Request, clientID string) bool
	ParseApproval(r *http.Request) (*state.PendingAuthorization, http.Header, error)
}

// Handler provides HTTP handlers for the OAuth authorization server endpoints.
type Handler struct {
	provider   fosite.OAuth2Provider
	config     *server.AuthorizationServerConfig
	storage    storage.Storage
	upstream   upstream.Provider
	codec      *state.Codec
	consent    ApprovalStore
	bridge     *server.Bridge
	metrics    *metrics.Metrics
	serverInfo consent.ServerInfo
	resource   string
}

var _ ApprovalStore = (*consent.Store)(nil)

// Option configures a Handler.
type Option func(*Handler)

// WithCompletionSink replaces the fosite-backed completion sink.
func WithCompletionSink(sink server.CompletionSink) Option {
	return func(h *Handler) {
		h.bridge = server.NewBridge(sink)
	}
}

// WithMetrics records authorization flow transitions.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithServerInfo overrides DefaultServerInfo on the approval dialog.
func WithServerInfo(info consent.ServerInfo) Option {
	return func(h *Handler) {
		h.serverInfo = info
	}
}

// WithResource sets the protected resource advertised by the RFC 9728 document.
func WithResource(resource string) Option {
	return func(h *Handler) {
		h.resource = resource
	}
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(
	provider fosite.OAuth2Provider,
	config *server.AuthorizationServerConfig,
	stor storage.Storage,
	upstreamIDP upstream.Provider,
	codec *state.Codec,
	consentStore ApprovalStore,
	opts ...Option,
) *Handler {
	h := &Handler{
		provider:   provider,
		config:     config,
		storage:    stor,
		upstream:   upstreamIDP,
		codec:      codec,
		consent:    consentStore,
		bridge:     server.NewBridge(server.NewFositeSink(provider, config, stor)),
		serverInfo: DefaultServerInfo,
		resource:   config.AccessTokenIssuer + "/mcp",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns a router with all OAuth endpoints registered.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.OAuthRoutes(r)
	h.WellKnownRoutes(r)
	return r
}

// OAuthRoutes registers the authorization gate and the OAuth endpoints on the provided router.
func (h *Handler) OAuthRoutes(r chi.Router) {
	r.Get("/authorize", apierrors.ErrorHandler(h.AuthorizeHandler))
	r.Post("/authorize", apierrors.ErrorHandler(h.ApproveHandler))
	r.Get("/callback/{provider}", apierrors.ErrorHandler(h.CallbackHandler))
	r.Post("/token", h.TokenHandler)
	r.Post("/revoke", h.RevokeHandler)
	r.Post("/register", h.RegisterClientHandler)
}

// WellKnownRoutes registers well-known endpoints (JWKS, discovery) on the provided router.
// Protected resource metadata is served both at the root and suffixed with the
// resource path, as MCP clients request either form.
func (h *Handler) WellKnownRoutes(r chi.Router) {
	r.Get(oauth.WellKnownJWKSPath, h.JWKSHandler)
	r.Get(oauth.WellKnownAuthorizationServerPath, h.OAuthDiscoveryHandler)
	r.Get(oauth.WellKnownProtectedResourcePath, h.ProtectedResourceHandler)
	r.Get(oauth.WellKnownProtectedResourcePath+"/*", h.ProtectedResourceHandler)
}
