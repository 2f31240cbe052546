// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package middleware provides the HTTP bearer authentication middleware that
// guards the MCP endpoints.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/ory/fosite"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

// TokenIntrospector validates access tokens issued by the authorization server.
// fosite.OAuth2Provider satisfies it.
type TokenIntrospector interface {
	IntrospectToken(
		ctx context.Context, token string, tokenUse fosite.TokenUse, session fosite.Session, scope ...string,
	) (fosite.TokenUse, fosite.AccessRequester, error)
}

// PropsGetter loads the props bound to a grant.
type PropsGetter interface {
	GetProps(ctx context.Context, grantID string) (*session.Props, error)
}

// Config configures TokenMiddleware.
type Config struct {
	// Introspector validates the bearer token.
	Introspector TokenIntrospector

	// Props resolves the props of the grant behind the token.
	Props PropsGetter

	// Resource is the protected resource URI. Tokens bound to other audiences are rejected.
	Resource string

	// ResourceMetadataURL is advertised in the WWW-Authenticate challenge (RFC 9728).
	ResourceMetadataURL string
}

var (
	errMissingToken  = errors.New("authorization header required")
	errInvalidScheme = errors.New("invalid authorization header format")
)

// TokenMiddleware creates an HTTP middleware that validates bearer tokens and
// puts the props of the token's grant in the request context.
func TokenMiddleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, cfg.ResourceMetadataURL, errMissingToken, false)
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				unauthorized(w, cfg.ResourceMetadataURL, errInvalidScheme, false)
				return
			}

			props, err := authenticate(r.Context(), cfg, tokenString)
			if err != nil {
				logger.Debugw("rejected MCP request", "path", r.URL.Path, "error", err)
				unauthorized(w, cfg.ResourceMetadataURL, err, true)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithProps(r.Context(), props)))
		})
	}
}

func authenticate(ctx context.Context, cfg Config, token string) (*session.Props, error) {
	_, requester, err := cfg.Introspector.IntrospectToken(ctx, token, fosite.AccessToken, session.New("", "", ""))
	if err != nil {
		var rfcErr *fosite.RFC6749Error
		if errors.As(err, &rfcErr) && rfcErr.DescriptionField != "" {
			return nil, fmt.Errorf("invalid token: %s", rfcErr.DescriptionField)
		}
		return nil, errors.New("invalid token")
	}

	if audience := requester.GetGrantedAudience(); cfg.Resource != "" && len(audience) > 0 &&
		!slices.Contains(audience, cfg.Resource) {
		return nil, errors.New("token is not valid for this resource")
	}

	grantID := session.GrantIDFromSession(requester.GetSession())
	if grantID == "" {
		return nil, errors.New("token has no grant")
	}

	props, err := cfg.Props.GetProps(ctx, grantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrExpired) {
			return nil, errors.New("grant is no longer valid")
		}
		logger.Errorw("failed to load props", "error", err)
		return nil, errors.New("grant could not be loaded")
	}
	return props, nil
}

func unauthorized(w http.ResponseWriter, resourceMetadataURL string, err error, includeError bool) {
	w.Header().Set("WWW-Authenticate", buildWWWAuthenticate(resourceMetadataURL, includeError, err.Error()))
	http.Error(w, err.Error(), http.StatusUnauthorized)
}

// buildWWWAuthenticate builds a RFC 6750 / RFC 9728 compliant value for the
// WWW-Authenticate header. If includeError is true, it appends
// error="invalid_token" and the description.
func buildWWWAuthenticate(resourceMetadataURL string, includeError bool, errDescription string) string {
	var parts []string

	if resourceMetadataURL != "" {
		parts = append(parts, fmt.Sprintf(`resource_metadata="%s"`, EscapeQuotes(resourceMetadataURL)))
	}

	// error fields (RFC 6750 §3)
	if includeError {
		parts = append(parts, `error="invalid_token"`)
		if errDescription != "" {
			parts = append(parts, fmt.Sprintf(`error_description="%s"`, EscapeQuotes(errDescription)))
		}
	}
	if len(parts) == 0 {
		return "Bearer"
	}
	return "Bearer " + strings.Join(parts, ", ")
}

// EscapeQuotes escapes quotes in a string for use in a quoted-string context.
func EscapeQuotes(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
