// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ory/fosite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
)

const (
	testResource         = "http://mcp.example.com/mcp"
	testResourceMetadata = "http://mcp.example.com/.well-known/oauth-protected-resource"
)

// fakeIntrospector accepts exactly one token.
type fakeIntrospector struct {
	token    string
	grantID  string
	audience []string
}

func (f *fakeIntrospector) IntrospectToken(
	_ context.Context, token string, _ fosite.TokenUse, _ fosite.Session, _ ...string,
) (fosite.TokenUse, fosite.AccessRequester, error) {
	if token != f.token {
		return "", nil, fosite.ErrInactiveToken.WithDescription("Token is inactive because it is malformed, expired or otherwise invalid.")
	}
	ar := fosite.NewAccessRequest(session.New("7", f.grantID, "abc"))
	for _, aud := range f.audience {
		ar.GrantAudience(aud)
	}
	return fosite.AccessToken, ar, nil
}

type propsFunc func(ctx context.Context, grantID string) (*session.Props, error)

func (f propsFunc) GetProps(ctx context.Context, grantID string) (*session.Props, error) {
	return f(ctx, grantID)
}

func newTestMiddleware(t *testing.T, introspector TokenIntrospector) (http.Handler, *storage.MemoryStorage) {
	t.Helper()

	stor := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = stor.Close() })
	require.NoError(t, stor.StoreProps(context.Background(), "grant-1",
		&session.Props{SubjectID: "7", DisplayName: "Jane", AccessToken: "T"}, time.Hour))

	mw := TokenMiddleware(Config{
		Introspector:        introspector,
		Props:               stor,
		Resource:            testResource,
		ResourceMetadataURL: testResourceMetadata,
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		props, ok := session.PropsFromContext(r.Context())
		if !ok {
			http.Error(w, "no props", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(props.DisplayName + ":" + props.AccessToken))
	})
	return mw(next), stor
}

func TestTokenMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		introspector  *fakeIntrospector
		authorization string
		wantStatus    int
		wantBody      string
		wantChallenge string
	}{
		{
			name:          "valid token",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-1"},
			authorization: "Bearer good",
			wantStatus:    http.StatusOK,
			wantBody:      "Jane:T",
		},
		{
			name:          "lowercase scheme",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-1"},
			authorization: "bearer good",
			wantStatus:    http.StatusOK,
			wantBody:      "Jane:T",
		},
		{
			name:          "audience matches resource",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-1", audience: []string{testResource}},
			authorization: "Bearer good",
			wantStatus:    http.StatusOK,
			wantBody:      "Jane:T",
		},
		{
			name:          "missing header",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-1"},
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "authorization header required",
			wantChallenge: `Bearer resource_metadata="` + testResourceMetadata + `"`,
		},
		{
			name:          "basic scheme",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-1"},
			authorization: "Basic Zm9vOmJhcg==",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "invalid authorization header format",
			wantChallenge: `Bearer resource_metadata="` + testResourceMetadata + `"`,
		},
		{
			name:          "unknown token",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-1"},
			authorization: "Bearer bad",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "invalid token: Token is inactive",
			wantChallenge: `Bearer resource_metadata="` + testResourceMetadata + `", error="invalid_token", ` +
				`error_description="invalid token: Token is inactive because it is malformed, expired or otherwise invalid."`,
		},
		{
			name:          "foreign audience",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-1", audience: []string{"https://other.example.com"}},
			authorization: "Bearer good",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "token is not valid for this resource",
		},
		{
			name:          "grant without props",
			introspector:  &fakeIntrospector{token: "good", grantID: "grant-2"},
			authorization: "Bearer good",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "grant is no longer valid",
		},
		{
			name:          "session without grant",
			introspector:  &fakeIntrospector{token: "good"},
			authorization: "Bearer good",
			wantStatus:    http.StatusUnauthorized,
			wantBody:      "token has no grant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler, _ := newTestMiddleware(t, tt.introspector)

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `resource_metadata="`+testResourceMetadata+`"`)
			}
			if tt.wantChallenge != "" {
				assert.Equal(t, tt.wantChallenge, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestTokenMiddleware_PropsBackendFailure(t *testing.T) {
	t.Parallel()

	mw := TokenMiddleware(Config{
		Introspector: &fakeIntrospector{token: "good", grantID: "grant-1"},
		Props: propsFunc(func(context.Context, string) (*session.Props, error) {
			return nil, errors.New("connection refused")
		}),
	})
	handler := mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/sse", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer error="invalid_token", error_description="grant could not be loaded"`,
		rec.Header().Get("WWW-Authenticate"))
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestBuildWWWAuthenticate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Bearer", buildWWWAuthenticate("", false, "ignored"))
	assert.Equal(t, `Bearer resource_metadata="https://x/\"q\""`, buildWWWAuthenticate(`https://x/"q"`, false, ""))
	assert.Equal(t, `Bearer error="invalid_token"`, buildWWWAuthenticate("", true, ""))
}

func TestCORS(t *testing.T) {
	t.Parallel()

	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "http://localhost:6274")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "http://localhost:6274", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
