// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package registration

import (
	"testing"

	"github.com/ory/fosite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		check   func(t *testing.T, c *Client)
		wantErr string
	}{
		{
			name: "public client gets defaults",
			cfg: Config{
				ID:           "claude",
				RedirectURIs: []string{"https://claude.ai/api/mcp/auth_callback"},
				Public:       true,
				ClientName:   "Claude",
				LogoURI:      "https://claude.ai/logo.png",
			},
			check: func(t *testing.T, c *Client) {
				t.Helper()
				assert.True(t, c.IsPublic())
				assert.Empty(t, c.GetHashedSecret())
				assert.Equal(t, "Claude", c.GetClientName())
				assert.Equal(t, "https://claude.ai/logo.png", c.LogoURI)
				assert.Equal(t, fosite.Arguments(DefaultGrantTypes), c.GetGrantTypes())
				assert.Equal(t, fosite.Arguments(DefaultResponseTypes), c.GetResponseTypes())
				assert.Equal(t, fosite.Arguments(DefaultScopes), c.GetScopes())
			},
		},
		{
			name: "explicit lists win and empty lists default",
			cfg: Config{
				ID:            "inspector",
				RedirectURIs:  []string{"http://localhost:6274/oauth/callback"},
				Public:        true,
				GrantTypes:    []string{"authorization_code"},
				ResponseTypes: []string{},
				Scopes:        []string{"mcp"},
			},
			check: func(t *testing.T, c *Client) {
				t.Helper()
				assert.Equal(t, fosite.Arguments{"authorization_code"}, c.GetGrantTypes())
				assert.Equal(t, fosite.Arguments(DefaultResponseTypes), c.GetResponseTypes())
				assert.Equal(t, fosite.Arguments{"mcp"}, c.GetScopes())
				assert.Equal(t, "inspector", c.GetClientName())
			},
		},
		{
			name: "confidential client secret is hashed",
			cfg: Config{
				ID:           "backend",
				Secret:       "s3cret",
				RedirectURIs: []string{"https://backend.example.com/cb"},
			},
			check: func(t *testing.T, c *Client) {
				t.Helper()
				assert.False(t, c.IsPublic())
				assert.NoError(t, bcrypt.CompareHashAndPassword(c.GetHashedSecret(), []byte("s3cret")))
			},
		},
		{
			name:    "missing ID",
			cfg:     Config{Public: true},
			wantErr: "client ID is required",
		},
		{
			name:    "confidential without secret",
			cfg:     Config{ID: "backend", RedirectURIs: []string{"https://backend.example.com/cb"}},
			wantErr: "confidential client requires a secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := New(tt.cfg)
			if tt.wantErr != "" {
				assert.Nil(t, client)
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.ID, client.GetID())
			assert.Equal(t, tt.cfg.RedirectURIs, client.GetRedirectURIs())
			tt.check(t, client)
		})
	}
}
