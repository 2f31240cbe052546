// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"errors"
	"fmt"

	"github.com/ory/fosite"
	"golang.org/x/crypto/bcrypt"
)

// Defaults applied by New when the corresponding Config field is empty.
var (
	DefaultGrantTypes    = []string{"authorization_code", "refresh_token"}
	DefaultResponseTypes = []string{"code"}
	DefaultScopes        = []string{"mcp", "offline_access"}
)

// Client is a registered client together with the metadata the consent
// dialog displays.
type Client struct {
	*fosite.DefaultClient

	ClientName string `json:"client_name,omitempty"`
	ClientURI  string `json:"client_uri,omitempty"`
	LogoURI    string `json:"logo_uri,omitempty"`
}

// GetClientName returns the display name, falling back to the client ID.
func (c *Client) GetClientName() string {
	if c.ClientName != "" {
		return c.ClientName
	}
	return c.GetID()
}

// Config describes a client to create.
type Config struct {
	ID           string
	Secret       string
	RedirectURIs []string
	Public       bool

	GrantTypes    []string
	ResponseTypes []string
	Scopes        []string

	ClientName string
	ClientURI  string
	LogoURI    string
}

// New builds a client from cfg. Confidential clients need a secret, which is
// stored bcrypt hashed as fosite expects.
func New(cfg Config) (*Client, error) {
	if cfg.ID == "" {
		return nil, errors.New("client ID is required")
	}

	dc := &fosite.DefaultClient{
		ID:            cfg.ID,
		RedirectURIs:  cfg.RedirectURIs,
		GrantTypes:    orDefault(cfg.GrantTypes, DefaultGrantTypes),
		ResponseTypes: orDefault(cfg.ResponseTypes, DefaultResponseTypes),
		Scopes:        orDefault(cfg.Scopes, DefaultScopes),
		Public:        cfg.Public,
	}

	if !cfg.Public {
		if cfg.Secret == "" {
			return nil, errors.New("confidential client requires a secret")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.Secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash client secret: %w", err)
		}
		dc.Secret = hashed
	}

	return &Client{
		DefaultClient: dc,
		ClientName:    cfg.ClientName,
		ClientURI:     cfg.ClientURI,
		LogoURI:       cfg.LogoURI,
	}, nil
}

func orDefault(values, defaults []string) []string {
	if len(values) == 0 {
		return defaults
	}
	return values
}

// Compile-time interface compliance check
var _ fosite.Client = (*Client)(nil)
