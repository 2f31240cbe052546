// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package handlers provides HTTP handlers for the OAuth 2.0 authorization server endpoints.
//
// This package implements the HTTP layer for the authorization server, including:
//   - The authorization gate (GET/POST /authorize and GET /callback/{provider}), which
//     sends the user to Salla and binds the resolved identity to a downstream grant
//   - Token and revocation endpoints backed by fosite
//   - Dynamic client registration (RFC 7591)
//   - Discovery documents (RFC 8414, RFC 9728) and the JWKS endpoint
//
// The Handler struct coordinates all handlers and provides route registration methods
// for integrating with standard Go HTTP servers.
package handlers
