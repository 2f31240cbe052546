// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/networking"
)

// ProviderName is the name used in the callback path, /callback/salla.
const ProviderName = "salla"

// SallaProvider implements Provider against the Salla accounts service.
type SallaProvider struct {
	config     *Config
	httpClient networking.HTTPClient
}

// Option configures a SallaProvider.
type Option func(*SallaProvider)

// WithHTTPClient sets the HTTP client used for upstream calls.
func WithHTTPClient(client networking.HTTPClient) Option {
	return func(p *SallaProvider) {
		p.httpClient = client
	}
}

// NewSallaProvider validates config and returns a provider.
func NewSallaProvider(config *Config, opts ...Option) (*SallaProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid upstream config: %w", err)
	}

	cfg := *config
	if cfg.Scope == "" {
		cfg.Scope = DefaultScope
	}

	p := &SallaProvider{config: &cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: networking.HttpTimeout}
	}
	return p, nil
}

// Name implements Provider.
func (*SallaProvider) Name() string {
	return ProviderName
}

// AuthorizationURL implements Provider.
func (p *SallaProvider) AuthorizationURL(redirectURI, state string) (string, error) {
	return BuildAuthorizeURL(p.config.AuthorizeURL, p.config.ClientID, redirectURI, p.config.Scope, state)
}

// ExchangeCode implements Provider.
func (p *SallaProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	logger.Debugw("exchanging upstream authorization code", "token_url", p.config.TokenURL)

	token, err := Exchange(ctx, p.httpClient, ExchangeRequest{
		TokenURL:     p.config.TokenURL,
		ClientID:     p.config.ClientID,
		ClientSecret: p.config.ClientSecret,
		Code:         code,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		logger.Warnw("upstream token exchange failed", "error", err)
		return "", err
	}
	return token, nil
}

// ResolveIdentity implements Provider.
func (p *SallaProvider) ResolveIdentity(ctx context.Context, accessToken string) (*Identity, error) {
	identity, err := Resolve(ctx, p.httpClient, p.config.APIBaseURL, accessToken)
	if err != nil {
		logger.Warnw("failed to resolve upstream identity", "error", err)
		return nil, err
	}
	logger.Debugw("resolved upstream identity", "subject", identity.ID)
	return identity, nil
}
