// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package upstream

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=types.go Provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/stacklok/salla-mcp/pkg/networking"
)

// maxResponseSize bounds how much of an upstream response body is read.
const maxResponseSize = 1 << 20

// DefaultScope is requested from Salla so that a refresh token is issued.
const DefaultScope = "offline_access"

// FallbackDisplayName is used when the profile has neither a person nor a store name.
const FallbackDisplayName = "Salla User"

var (
	// ErrExchangeFailed is returned when the token exchange did not yield an access token.
	ErrExchangeFailed = errors.New("upstream token exchange failed")

	// ErrUpstreamUnavailable is returned when the profile endpoint could not be read.
	ErrUpstreamUnavailable = errors.New("failed to fetch user info")

	// ErrMissingIdentity is returned when the profile has no usable id.
	ErrMissingIdentity = errors.New("failed to get user ID from upstream profile")
)

// Identity is the normalized principal resolved from an upstream profile.
type Identity struct {
	// ID is the upstream user identifier. Numeric ids are rendered in decimal.
	ID string

	// DisplayName is the person name, then the store name, then FallbackDisplayName.
	DisplayName string

	// Email is the person email, then the store email, else empty.
	Email string
}

// Provider is the upstream identity provider as seen by the authorization gate.
type Provider interface {
	// Name returns the provider name used in the callback path.
	Name() string

	// AuthorizationURL builds the upstream authorize redirect.
	AuthorizationURL(redirectURI, state string) (string, error)

	// ExchangeCode trades an upstream code for an access token.
	ExchangeCode(ctx context.Context, code, redirectURI string) (string, error)

	// ResolveIdentity fetches the profile behind an access token.
	ResolveIdentity(ctx context.Context, accessToken string) (*Identity, error)
}

// Config is the upstream client registration.
type Config struct {
	// AuthorizeURL is the upstream authorize endpoint.
	AuthorizeURL string

	// TokenURL is the upstream token endpoint.
	TokenURL string

	// APIBaseURL is the upstream base URL; the profile lives at <APIBaseURL>/oauth2/user/info.
	APIBaseURL string

	// ClientID and ClientSecret are the registered upstream credentials.
	ClientID     string
	ClientSecret string

	// Scope is the space-separated upstream scope. Defaults to DefaultScope.
	Scope string
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return errors.New("client_id is required")
	}
	if c.ClientSecret == "" {
		return errors.New("client_secret is required")
	}
	for name, raw := range map[string]string{
		"authorize_url": c.AuthorizeURL,
		"token_url":     c.TokenURL,
		"api_base_url":  c.APIBaseURL,
	} {
		if err := validateEndpoint(name, raw); err != nil {
			return err
		}
	}
	return nil
}

func validateEndpoint(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s must be a valid URL", name)
	}
	if parsed.Scheme != networking.HttpScheme && parsed.Scheme != networking.HttpsScheme {
		return fmt.Errorf("%s must use http or https scheme", name)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	return nil
}
