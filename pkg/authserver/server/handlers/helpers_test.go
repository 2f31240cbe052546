// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ory/fosite"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/salla-mcp/pkg/authserver/consent"
	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/server"
	servercrypto "github.com/stacklok/salla-mcp/pkg/authserver/server/crypto"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/registration"
	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream"
)

const (
	testClientID          = "abc"
	testClientName        = "Claude"
	testRedirectURI       = "http://127.0.0.1:8080/callback"
	testIssuer            = "http://mcp.example.com"
	testClientState       = "client-state-123"
	testCookieKey         = "test-cookie-encryption-key"
	testUpstreamAuthorize = "https://accounts.salla.sa/oauth2/auth"
	testCallbackURL       = testIssuer + "/callback/salla"
)

var dialogStatePattern = regexp.MustCompile(`name="state" value="([^"]+)"`)

type testEnv struct {
	handler  *Handler
	router   http.Handler
	provider fosite.OAuth2Provider
	store    storage.Storage
	storage  *storage.MemoryStorage
	codec    *state.Codec
	consent  *consent.Store
	metrics  *metrics.Metrics
	verifier string
}

// newTestEnv wires a Handler with real fosite, memory storage and the given upstream.
func newTestEnv(t *testing.T, upstreamIDP upstream.Provider, opts ...Option) *testEnv {
	t.Helper()

	stor := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = stor.Close() })

	env := newTestEnvWithStorage(t, upstreamIDP, stor, opts...)
	env.storage = stor
	return env
}

// newTestEnvWithStorage is newTestEnv over the given storage backend.
func newTestEnvWithStorage(t *testing.T, upstreamIDP upstream.Provider, stor storage.Storage, opts ...Option) *testEnv {
	t.Helper()

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	secrets, err := servercrypto.NewHMACSecrets([]byte("test-secret-with-32-bytes-long!!"))
	require.NoError(t, err)

	cfg, err := server.NewAuthorizationServerConfig(&server.AuthorizationServerParams{
		Issuer:               testIssuer,
		AccessTokenLifespan:  time.Hour,
		RefreshTokenLifespan: 24 * time.Hour,
		AuthCodeLifespan:     10 * time.Minute,
		HMACSecrets:          secrets,
		SigningKeyID:         "test-key-1",
		SigningKeyAlgorithm:  "RS256",
		SigningKey:           rsaKey,
		AllowedAudiences:     []string{testIssuer + "/mcp"},
		ScopesSupported:      registration.DefaultScopes,
	})
	require.NoError(t, err)

	client, err := registration.New(registration.Config{
		ID:           testClientID,
		RedirectURIs: []string{testRedirectURI},
		Public:       true,
		ClientName:   testClientName,
		LogoURI:      "https://claude.example.com/logo.png",
	})
	require.NoError(t, err)
	require.NoError(t, stor.RegisterClient(context.Background(), client))

	codec := state.NewCodec()
	consentStore, err := consent.NewStore(testCookieKey, codec, consent.WithInsecureCookies())
	require.NoError(t, err)

	m := metrics.New(metrics.Config{})
	provider := server.NewProvider(cfg, stor)
	h := NewHandler(provider, cfg, stor, upstreamIDP, codec, consentStore, append([]Option{WithMetrics(m)}, opts...)...)

	return &testEnv{
		handler:  h,
		router:   h.Routes(),
		provider: provider,
		store:    stor,
		codec:    codec,
		consent:  consentStore,
		metrics:  m,
		verifier: servercrypto.GeneratePKCEVerifier(),
	}
}

// authorizeQuery is a valid downstream authorization request.
func (e *testEnv) authorizeQuery() url.Values {
	return url.Values{
		"client_id":             {testClientID},
		"response_type":         {"code"},
		"redirect_uri":          {testRedirectURI},
		"scope":                 {"mcp offline_access"},
		"state":                 {testClientState},
		"code_challenge":        {servercrypto.ComputePKCEChallenge(e.verifier)},
		"code_challenge_method": {"S256"},
	}
}

func (e *testEnv) pending() *state.PendingAuthorization {
	return &state.PendingAuthorization{
		ClientID:            testClientID,
		Scope:               []string{"mcp", "offline_access"},
		RedirectURI:         testRedirectURI,
		State:               testClientState,
		ResponseType:        "code",
		CodeChallenge:       servercrypto.ComputePKCEChallenge(e.verifier),
		CodeChallengeMethod: "S256",
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// approvalCookie returns a cookie approving testClientID, as set by a prior POST /authorize.
func (e *testEnv) approvalCookie(t *testing.T) *http.Cookie {
	t.Helper()

	encoded, err := e.codec.Encode(e.pending())
	require.NoError(t, err)

	req := postForm("/authorize", url.Values{"state": {encoded}})
	_, headers, err := e.consent.ParseApproval(req)
	require.NoError(t, err)

	cookie := findCookie((&http.Response{Header: headers}).Cookies(), consent.CookieName)
	require.NotNil(t, cookie)
	return &http.Cookie{Name: cookie.Name, Value: cookie.Value}
}

func (e *testEnv) callbackRequest(t *testing.T, query url.Values) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, testIssuer+"/callback/salla?"+query.Encode(), nil)
}

func (e *testEnv) encodedState(t *testing.T) string {
	t.Helper()
	encoded, err := e.codec.Encode(e.pending())
	require.NoError(t, err)
	return encoded
}

// scrape returns the metrics exposition text.
func (e *testEnv) scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, testIssuer+target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// sallaStub serves a Salla token endpoint and user info endpoint.
type sallaStub struct {
	server        *httptest.Server
	tokenStatus   int
	tokenBody     string
	profileStatus int
	profileBody   string
	tokenForm     url.Values
	profileHits   int
	bearer        string
}

func newSallaStub(t *testing.T) *sallaStub {
	t.Helper()

	stub := &sallaStub{
		tokenStatus:   http.StatusOK,
		tokenBody:     `{"access_token":"T","token_type":"bearer","expires_in":1209600}`,
		profileStatus: http.StatusOK,
		profileBody:   `{"id":7,"name":"Jane"}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		stub.tokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stub.tokenStatus)
		_, _ = w.Write([]byte(stub.tokenBody))
	})
	mux.HandleFunc("/oauth2/user/info", func(w http.ResponseWriter, r *http.Request) {
		stub.profileHits++
		stub.bearer = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stub.profileStatus)
		_, _ = w.Write([]byte(stub.profileBody))
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *sallaStub) provider(t *testing.T) *upstream.SallaProvider {
	t.Helper()

	p, err := upstream.NewSallaProvider(&upstream.Config{
		AuthorizeURL: testUpstreamAuthorize,
		TokenURL:     s.server.URL + "/oauth2/token",
		APIBaseURL:   s.server.URL,
		ClientID:     "salla-client-id",
		ClientSecret: "salla-client-secret",
	}, upstream.WithHTTPClient(s.server.Client()))
	require.NoError(t, err)
	return p
}
