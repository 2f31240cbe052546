// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package upstream talks to the upstream OAuth 2.0 provider (Salla) on behalf
// of the authorization server.
//
// It covers the three upstream legs of the authorization-code bridge:
//
//   - BuildAuthorizeURL: the browser redirect to the upstream authorize endpoint
//   - Exchange: the authorization-code-for-token exchange
//   - Resolve: the profile fetch that turns an access token into an Identity
//
// Each leg is a plain function taking explicit parameters. [SallaProvider]
// binds them to a [Config] for use by the HTTP handlers.
//
// None of the calls retry. Upstream codes are single use, so a failed exchange
// is reported as an [ExchangeError] carrying the upstream status and body for
// the caller to relay verbatim.
//
// # Usage
//
//	provider, err := upstream.NewSallaProvider(&upstream.Config{
//	    AuthorizeURL: "https://accounts.salla.sa/oauth2/auth",
//	    TokenURL:     "https://accounts.salla.sa/oauth2/token",
//	    APIBaseURL:   "https://accounts.salla.sa",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	})
//
//	authURL, err := provider.AuthorizationURL(redirectURI, encodedState)
//	token, err := provider.ExchangeCode(ctx, code, redirectURI)
//	identity, err := provider.ResolveIdentity(ctx, token)
package upstream
