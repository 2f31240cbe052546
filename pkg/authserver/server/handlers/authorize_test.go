// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/ory/fosite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/salla-mcp/pkg/authserver/consent"
	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream/mocks"
)

// strictUpstream is an upstream mock that fails the test if a redirect is built.
func strictUpstream(t *testing.T) *mocks.MockProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := mocks.NewMockProvider(ctrl)
	m.EXPECT().Name().Return("salla").AnyTimes()
	return m
}

func TestAuthorizeHandler_MissingClientID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, strictUpstream(t))

	query := env.authorizeQuery()
	query.Del("client_id")
	rec := env.do(httptest.NewRequest(http.MethodGet, testIssuer+"/authorize?"+query.Encode(), nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request")
	assert.Contains(t, rec.Body.String(), "client_id is required")
}

func TestAuthorizeHandler_InvalidRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(q url.Values)
		wantMsg string
	}{
		{
			name:   "unknown client",
			mutate: func(q url.Values) { q.Set("client_id", "nobody") },
		},
		{
			name:   "unregistered redirect URI",
			mutate: func(q url.Values) { q.Set("redirect_uri", "https://evil.example.com/cb") },
		},
		{
			name:   "unsupported response type",
			mutate: func(q url.Values) { q.Set("response_type", "token") },
		},
		{
			name:   "scope not allowed for client",
			mutate: func(q url.Values) { q.Set("scope", "admin") },
		},
		{
			name:   "state too short",
			mutate: func(q url.Values) { q.Set("state", "abc") },
		},
		{
			name:    "missing PKCE for public client",
			mutate:  func(q url.Values) { q.Del("code_challenge"); q.Del("code_challenge_method") },
			wantMsg: "code_challenge is required for public clients",
		},
		{
			name:    "plain PKCE method",
			mutate:  func(q url.Values) { q.Set("code_challenge_method", "plain") },
			wantMsg: "code_challenge_method must be S256",
		},
		{
			name:    "resource not allowed",
			mutate:  func(q url.Values) { q.Set("resource", "https://other.example.com/mcp") },
			wantMsg: "invalid request",
		},
		{
			name: "multiple resources",
			mutate: func(q url.Values) {
				q["resource"] = []string{testIssuer + "/mcp", testIssuer + "/other"}
			},
			wantMsg: "Multiple resource parameters are not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, strictUpstream(t))
			query := env.authorizeQuery()
			tt.mutate(query)

			rec := env.do(httptest.NewRequest(http.MethodGet, testIssuer+"/authorize?"+query.Encode(), nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid request")
			if tt.wantMsg != "" {
				assert.Contains(t, rec.Body.String(), tt.wantMsg)
			}
		})
	}
}

func TestAuthorizeHandler_RendersDialog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, strictUpstream(t))

	rec := env.do(httptest.NewRequest(http.MethodGet, testIssuer+"/authorize?"+env.authorizeQuery().Encode(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, testClientName)
	assert.Contains(t, body, "https://claude.example.com/logo.png")
	assert.Contains(t, body, DefaultServerInfo.Name)

	match := dialogStatePattern.FindStringSubmatch(body)
	require.Len(t, match, 2)
	pending, err := env.codec.Decode(match[1])
	require.NoError(t, err)
	assert.Equal(t, env.pending(), pending)
}

func TestAuthorizeHandler_SkipsDialogWhenApproved(t *testing.T) {
	t.Parallel()

	stub := newSallaStub(t)
	env := newTestEnv(t, stub.provider(t))

	req := httptest.NewRequest(http.MethodGet, testIssuer+"/authorize?"+env.authorizeQuery().Encode(), nil)
	req.AddCookie(env.approvalCookie(t))
	rec := env.do(req)

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)

	assert.Equal(t, "accounts.salla.sa", location.Host)
	assert.Equal(t, "/oauth2/auth", location.Path)
	query := location.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "salla-client-id", query.Get("client_id"))
	assert.Equal(t, testCallbackURL, query.Get("redirect_uri"))
	assert.Equal(t, "offline_access", query.Get("scope"))

	pending, err := env.codec.Decode(query.Get("state"))
	require.NoError(t, err)
	assert.Equal(t, env.pending(), pending)

	// No new cookie is needed when the dialog was skipped.
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
	assert.Contains(t, env.scrape(t), `salla_mcp_authorization_total{outcome="skipped",stage="consent"} 1`)
}

func TestAuthorizeHandler_CookieForOtherClientShowsDialog(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, strictUpstream(t))

	other, err := consent.NewStore("another-key", env.codec)
	require.NoError(t, err)
	encoded := env.encodedState(t)
	_, headers, err := other.ParseApproval(postForm("/authorize", url.Values{"state": {encoded}}))
	require.NoError(t, err)
	forged := findCookie((&http.Response{Header: headers}).Cookies(), consent.CookieName)
	require.NotNil(t, forged)

	req := httptest.NewRequest(http.MethodGet, testIssuer+"/authorize?"+env.authorizeQuery().Encode(), nil)
	req.AddCookie(&http.Cookie{Name: forged.Name, Value: forged.Value})
	rec := env.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApproveHandler(t *testing.T) {
	t.Parallel()

	stub := newSallaStub(t)
	env := newTestEnv(t, stub.provider(t))

	rec := env.do(postForm("/authorize", url.Values{"state": {env.encodedState(t)}}))

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.salla.sa", location.Host)

	pending, err := env.codec.Decode(location.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, env.pending(), pending)

	cookie := findCookie(rec.Result().Cookies(), consent.CookieName)
	require.NotNil(t, cookie)

	// The cookie set here skips the dialog next time.
	req := httptest.NewRequest(http.MethodGet, testIssuer+"/authorize", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	assert.True(t, env.consent.AlreadyApproved(req, testClientID))
}

func TestApproveHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{name: "no pending request", form: url.Values{}, wantMsg: "invalid request"},
		{name: "corrupt state", form: url.Values{"state": {"%%%"}}, wantMsg: "invalid state"},
		{name: "state without client", form: url.Values{"state": {"eyJzY29wZSI6WyJtY3AiXX0"}}, wantMsg: "invalid state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, strictUpstream(t))
			rec := env.do(postForm("/authorize", tt.form))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
			assert.Empty(t, rec.Header().Get("Location"))
		})
	}
}

// failingApprovals cannot issue approval cookies.
type failingApprovals struct{}

func (failingApprovals) AlreadyApproved(*http.Request, string) bool { return false }

func (failingApprovals) ParseApproval(*http.Request) (*state.PendingAuthorization, http.Header, error) {
	return nil, nil, fmt.Errorf("%w: signer unavailable", consent.ErrApprovalNotRecorded)
}

func TestApproveHandler_CookieFailureIsServerError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, strictUpstream(t))
	env.handler.consent = failingApprovals{}

	rec := env.do(postForm("/authorize", url.Values{"state": {env.encodedState(t)}}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, env.scrape(t), `salla_mcp_authorization_total{outcome="failure",stage="consent"} 1`)
}

// vanishingClientStorage serves the client to fosite and then forgets it.
type vanishingClientStorage struct {
	storage.Storage
	lookups atomic.Int32
}

func (s *vanishingClientStorage) GetClient(ctx context.Context, id string) (fosite.Client, error) {
	if s.lookups.Add(1) > 1 {
		return nil, fosite.ErrNotFound
	}
	return s.Storage.GetClient(ctx, id)
}

func TestAuthorizeHandler_ClientGoneBeforeDialog(t *testing.T) {
	t.Parallel()

	mem := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = mem.Close() })
	stor := &vanishingClientStorage{Storage: mem}
	env := newTestEnvWithStorage(t, strictUpstream(t), stor)

	rec := env.do(httptest.NewRequest(http.MethodGet, testIssuer+"/authorize?"+env.authorizeQuery().Encode(), nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown client")
	assert.Contains(t, env.scrape(t), `salla_mcp_authorization_total{outcome="failure",stage="authorize"} 1`)
}

func TestRequestOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		target    string
		forwarded string
		want      string
	}{
		{name: "plain http", target: "http://mcp.example.com/authorize", want: "http://mcp.example.com"},
		{name: "tls", target: "https://mcp.example.com/authorize", want: "https://mcp.example.com"},
		{name: "forwarded proto", target: "http://mcp.example.com/authorize", forwarded: "https", want: "https://mcp.example.com"},
		{name: "bogus forwarded proto", target: "http://mcp.example.com:8787/authorize", forwarded: "ftp", want: "http://mcp.example.com:8787"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			assert.Equal(t, tt.want, requestOrigin(req))
		})
	}
}
