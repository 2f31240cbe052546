// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package server assembles the fosite OAuth 2.0 provider that issues tokens
// to MCP clients and bridges completed upstream logins into authorization codes.
package server

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	josev3 "github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v4"
	"github.com/ory/fosite"
	"github.com/ory/fosite/compose"

	servercrypto "github.com/stacklok/salla-mcp/pkg/authserver/server/crypto"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

// Lifespan defaults and bounds.
const (
	DefaultAccessTokenLifespan  = time.Hour
	DefaultRefreshTokenLifespan = 30 * 24 * time.Hour
	DefaultAuthCodeLifespan     = 10 * time.Minute

	minAccessTokenLifespan  = time.Minute
	maxAccessTokenLifespan  = 24 * time.Hour
	minRefreshTokenLifespan = time.Hour
	maxRefreshTokenLifespan = 90 * 24 * time.Hour
	minAuthCodeLifespan     = 30 * time.Second
	maxAuthCodeLifespan     = 10 * time.Minute
)

// AuthorizationServerParams are the inputs of NewAuthorizationServerConfig.
// Zero lifespans select the defaults.
type AuthorizationServerParams struct {
	Issuer               string
	AccessTokenLifespan  time.Duration
	RefreshTokenLifespan time.Duration
	AuthCodeLifespan     time.Duration
	HMACSecrets          *servercrypto.HMACSecrets
	SigningKeyID         string
	SigningKeyAlgorithm  string
	SigningKey           crypto.Signer

	// AllowedAudiences are the resource URIs (RFC 8707) a token may be bound to.
	AllowedAudiences []string

	// ScopesSupported are advertised in metadata and granted to registered clients.
	ScopesSupported []string
}

// AuthorizationServerConfig is the fosite configuration plus the signing key.
type AuthorizationServerConfig struct {
	*fosite.Config

	SigningKey       *jose.JSONWebKey
	SigningJWKS      *jose.JSONWebKeySet
	AllowedAudiences []string
	ScopesSupported  []string
}

// NewAuthorizationServerConfig validates params and builds the fosite configuration.
func NewAuthorizationServerConfig(params *AuthorizationServerParams) (*AuthorizationServerConfig, error) {
	if params == nil {
		return nil, errors.New("config is required")
	}
	p := *params
	if p.AccessTokenLifespan == 0 {
		p.AccessTokenLifespan = DefaultAccessTokenLifespan
	}
	if p.RefreshTokenLifespan == 0 {
		p.RefreshTokenLifespan = DefaultRefreshTokenLifespan
	}
	if p.AuthCodeLifespan == 0 {
		p.AuthCodeLifespan = DefaultAuthCodeLifespan
	}

	if err := validateParams(&p); err != nil {
		return nil, err
	}

	jwk := jose.JSONWebKey{
		Key:       p.SigningKey,
		KeyID:     p.SigningKeyID,
		Algorithm: p.SigningKeyAlgorithm,
		Use:       "sig",
	}

	cfg := &fosite.Config{
		AccessTokenIssuer:     p.Issuer,
		AccessTokenLifespan:   p.AccessTokenLifespan,
		RefreshTokenLifespan:  p.RefreshTokenLifespan,
		AuthorizeCodeLifespan: p.AuthCodeLifespan,
		GlobalSecret:          p.HMACSecrets.Current,
		RotatedGlobalSecrets:  p.HMACSecrets.Rotated,
		TokenURL:              p.Issuer + "/token",
		// Public clients must use S256 PKCE.
		EnforcePKCEForPublicClients:    true,
		EnablePKCEPlainChallengeMethod: false,
		// Refresh tokens are issued for every grant, not only for offline scopes.
		RefreshTokenScopes: []string{},
	}

	return &AuthorizationServerConfig{
		Config:           cfg,
		SigningKey:       &jwk,
		SigningJWKS:      &jose.JSONWebKeySet{Keys: []jose.JSONWebKey{jwk}},
		AllowedAudiences: p.AllowedAudiences,
		ScopesSupported:  p.ScopesSupported,
	}, nil
}

func validateParams(p *AuthorizationServerParams) error {
	if p.Issuer == "" {
		return errors.New("issuer is required")
	}
	u, err := url.Parse(p.Issuer)
	if err != nil {
		return fmt.Errorf("issuer is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("issuer must use http or https scheme")
	}
	if u.Host == "" {
		return errors.New("issuer must have a host")
	}
	if strings.HasSuffix(p.Issuer, "/") {
		return errors.New("issuer must not have a trailing slash")
	}

	if p.HMACSecrets == nil {
		return errors.New("HMAC secrets are required")
	}
	if len(p.HMACSecrets.Current) < servercrypto.MinHMACSecretLength {
		return fmt.Errorf("current HMAC secret must be at least %d bytes", servercrypto.MinHMACSecretLength)
	}

	if p.SigningKeyID == "" {
		return errors.New("signing key ID is required")
	}
	if p.SigningKeyAlgorithm == "" {
		return errors.New("signing key algorithm is required")
	}
	if p.SigningKey == nil {
		return errors.New("signing key is required")
	}
	if err := servercrypto.ValidateAlgorithmForKey(p.SigningKeyAlgorithm, p.SigningKey); err != nil {
		return fmt.Errorf("invalid signing configuration: %w", err)
	}

	if err := checkLifespan("access token", p.AccessTokenLifespan, minAccessTokenLifespan, maxAccessTokenLifespan); err != nil {
		return err
	}
	if err := checkLifespan("refresh token", p.RefreshTokenLifespan, minRefreshTokenLifespan, maxRefreshTokenLifespan); err != nil {
		return err
	}
	return checkLifespan("authorization code", p.AuthCodeLifespan, minAuthCodeLifespan, maxAuthCodeLifespan)
}

func checkLifespan(name string, value, minimum, maximum time.Duration) error {
	if value < minimum || value > maximum {
		return fmt.Errorf("%s lifespan must be between %s and %s, got %s", name, minimum, maximum, value)
	}
	return nil
}

// PublicJWKS returns the public half of the signing key set.
func (c *AuthorizationServerConfig) PublicJWKS() *jose.JSONWebKeySet {
	if c.SigningJWKS == nil {
		return nil
	}
	public := &jose.JSONWebKeySet{Keys: make([]jose.JSONWebKey, 0, len(c.SigningJWKS.Keys))}
	for _, key := range c.SigningJWKS.Keys {
		public.Keys = append(public.Keys, key.Public())
	}
	return public
}

// NewProvider composes the fosite provider:
//   - JWT access tokens signed with the configured key
//   - HMAC authorization codes and refresh tokens
//   - authorization code, refresh token, PKCE, introspection and revocation handlers
func NewProvider(cfg *AuthorizationServerConfig, storage fosite.Storage) fosite.OAuth2Provider {
	logger.Debugw("configuring OAuth2 provider",
		"key_id", cfg.SigningKey.KeyID,
		"algorithm", cfg.SigningKey.Algorithm,
	)

	// fosite signs with go-jose v3; the v3 key keeps the kid in JWT headers.
	signingKey := &josev3.JSONWebKey{
		Key:       cfg.SigningKey.Key,
		KeyID:     cfg.SigningKey.KeyID,
		Algorithm: cfg.SigningKey.Algorithm,
		Use:       cfg.SigningKey.Use,
	}

	jwtStrategy := compose.NewOAuth2JWTStrategy(
		func(_ context.Context) (interface{}, error) { return signingKey, nil },
		compose.NewOAuth2HMACStrategy(cfg.Config),
		cfg.Config,
	)

	return compose.Compose(
		cfg.Config,
		storage,
		&compose.CommonStrategy{CoreStrategy: jwtStrategy},
		compose.OAuth2AuthorizeExplicitFactory,
		compose.OAuth2RefreshTokenGrantFactory,
		compose.OAuth2PKCEFactory,
		compose.OAuth2TokenIntrospectionFactory,
		compose.OAuth2TokenRevocationFactory,
	)
}
