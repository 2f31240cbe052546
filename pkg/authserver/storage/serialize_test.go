// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/ory/fosite"
	"github.com/ory/fosite/handler/oauth2"
	"github.com/ory/fosite/token/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/registration"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
)

func TestClientEncoding(t *testing.T) {
	t.Parallel()

	t.Run("registered client keeps display metadata", func(t *testing.T) {
		t.Parallel()

		client, err := registration.New(registration.Config{
			ID:           "client-1",
			RedirectURIs: []string{"http://127.0.0.1:6274/cb"},
			Public:       true,
			ClientName:   "MCP Inspector",
			ClientURI:    "https://inspector.example.com",
		})
		require.NoError(t, err)

		data, err := marshalClient(client)
		require.NoError(t, err)
		got, err := unmarshalClient(data)
		require.NoError(t, err)

		assert.Equal(t, client.DefaultClient, got.DefaultClient)
		assert.Equal(t, "MCP Inspector", got.ClientName)
		assert.Equal(t, "https://inspector.example.com", got.ClientURI)
	})

	t.Run("foreign client is stored as a registration client", func(t *testing.T) {
		t.Parallel()

		data, err := marshalClient(&fosite.DefaultClient{
			ID:           "raw",
			Secret:       []byte("$2a$hash"),
			RedirectURIs: []string{"https://client.example.com/cb"},
			Scopes:       []string{"mcp"},
		})
		require.NoError(t, err)
		got, err := unmarshalClient(data)
		require.NoError(t, err)

		assert.Equal(t, "raw", got.GetID())
		assert.Equal(t, []byte("$2a$hash"), got.GetHashedSecret())
		assert.Equal(t, "raw", got.GetClientName())
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := unmarshalClient([]byte(`{"id":`))
		require.Error(t, err)
		_, err = unmarshalClient([]byte(`{"client_name":"x"}`))
		require.Error(t, err)
	})
}

func TestRequesterEncoding_ForeignSession(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	foreign := &oauth2.JWTSession{
		JWTClaims: &jwt.JWTClaims{
			Subject: "42",
			Extra:   map[string]interface{}{session.TokenSessionIDClaimKey: "grant-9"},
		},
		JWTHeader: &jwt.Headers{},
		ExpiresAt: map[fosite.TokenType]time.Time{fosite.AccessToken: exp},
		Subject:   "42",
		Username:  "merchant@example.com",
	}

	req := fosite.NewRequest()
	req.ID = "req-9"
	req.Session = foreign

	data, err := marshalRequester(req)
	require.NoError(t, err)
	assert.Equal(t, "req-9", requestIDOf(data))

	got, err := unmarshalRequester(data, nil)
	require.NoError(t, err)

	sess, ok := got.GetSession().(*session.Session)
	require.True(t, ok)
	assert.Equal(t, "42", sess.GetSubject())
	assert.Equal(t, "grant-9", sess.GetGrantID())
	assert.Equal(t, "merchant@example.com", sess.GetUsername())
	assert.True(t, exp.Equal(sess.GetExpiresAt(fosite.AccessToken)))
	assert.Nil(t, got.GetClient())
}

func TestRequesterEncoding_MissingSession(t *testing.T) {
	t.Parallel()

	got, err := unmarshalRequester([]byte(`{"id":"req-1","requested_at":"2025-06-01T08:00:00Z"}`), nil)
	require.NoError(t, err)

	sess, ok := got.GetSession().(*session.Session)
	require.True(t, ok)
	assert.NotNil(t, sess.JWTClaims)
	assert.NotNil(t, sess.GetJWTHeader())
	assert.Empty(t, got.GetGrantedScopes())
	assert.NotNil(t, got.GetRequestForm())
}

func TestRequesterEncoding_ClientLookupFailure(t *testing.T) {
	t.Parallel()

	req := fosite.NewRequest()
	req.ID = "req-1"
	req.Client = &fosite.DefaultClient{ID: "gone"}
	req.Session = session.New("42", "grant-1", "gone")

	data, err := marshalRequester(req)
	require.NoError(t, err)

	lookupErr := errors.New("not found")
	_, err = unmarshalRequester(data, func(string) (fosite.Client, error) { return nil, lookupErr })
	require.ErrorIs(t, err, lookupErr)
	assert.Contains(t, err.Error(), `"gone"`)
}
