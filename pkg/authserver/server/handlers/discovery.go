// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ory/fosite"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/crypto"
	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/oauth"
)

// Cache-Control max-age values for discovery endpoints.
const (
	// DefaultJWKSCacheMaxAge is the Cache-Control max-age for the JWKS endpoint (1 hour).
	// This balances caching efficiency with timely key rotation propagation.
	DefaultJWKSCacheMaxAge = 3600

	// DefaultDiscoveryCacheMaxAge is the Cache-Control max-age for the discovery endpoints (1 hour).
	DefaultDiscoveryCacheMaxAge = 3600
)

// JWKSHandler handles GET /.well-known/jwks.json requests.
// It returns the public keys used for verifying JWTs.
func (h *Handler) JWKSHandler(w http.ResponseWriter, _ *http.Request) {
	publicJWKS := h.config.PublicJWKS()
	if publicJWKS == nil {
		logger.Error("no public JWKS available")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeDiscoveryJSON(w, publicJWKS, DefaultJWKSCacheMaxAge)
}

// buildOAuthMetadata constructs the OAuth 2.0 Authorization Server Metadata (RFC 8414).
func (h *Handler) buildOAuthMetadata() oauth.AuthorizationServerMetadata {
	issuer := h.config.AccessTokenIssuer

	return oauth.AuthorizationServerMetadata{
		// REQUIRED
		Issuer: issuer,

		// RECOMMENDED
		AuthorizationEndpoint:  issuer + "/authorize",
		TokenEndpoint:          issuer + "/token",
		JWKSURI:                issuer + oauth.WellKnownJWKSPath,
		RegistrationEndpoint:   issuer + "/register",
		ScopesSupported:        h.config.ScopesSupported,
		ResponseTypesSupported: []string{oauth.ResponseTypeCode},

		// OPTIONAL
		RevocationEndpoint: issuer + "/revoke",
		GrantTypesSupported: []string{
			string(fosite.GrantTypeAuthorizationCode),
			string(fosite.GrantTypeRefreshToken),
		},
		CodeChallengeMethodsSupported:          []string{crypto.PKCEChallengeMethodS256},
		TokenEndpointAuthMethodsSupported:      []string{oauth.TokenEndpointAuthMethodNone},
		RevocationEndpointAuthMethodsSupported: []string{oauth.TokenEndpointAuthMethodNone},
	}
}

// OAuthDiscoveryHandler handles GET /.well-known/oauth-authorization-server requests.
// It returns the OAuth 2.0 Authorization Server Metadata per RFC 8414.
func (h *Handler) OAuthDiscoveryHandler(w http.ResponseWriter, _ *http.Request) {
	writeDiscoveryJSON(w, h.buildOAuthMetadata(), DefaultDiscoveryCacheMaxAge)
}

// ProtectedResourceHandler handles GET /.well-known/oauth-protected-resource requests.
// It returns the RFC 9728 metadata MCP clients use to find this authorization server.
func (h *Handler) ProtectedResourceHandler(w http.ResponseWriter, _ *http.Request) {
	writeDiscoveryJSON(w, oauth.ProtectedResourceMetadata{
		Resource:               h.resource,
		AuthorizationServers:   []string{h.config.AccessTokenIssuer},
		ScopesSupported:        h.config.ScopesSupported,
		BearerMethodsSupported: []string{oauth.BearerMethodHeader},
		ResourceName:           h.serverInfo.Name,
	}, DefaultDiscoveryCacheMaxAge)
}

func writeDiscoveryJSON(w http.ResponseWriter, v any, maxAge int) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Errorw("failed to encode discovery document", "error", err.Error())
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	// MCP clients fetch metadata from browser contexts.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(data)
}
