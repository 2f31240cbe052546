// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/salla-mcp/pkg/authserver/server"
	servermocks "github.com/stacklok/salla-mcp/pkg/authserver/server/mocks"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
)

func TestCallbackHandler_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      func(env *testEnv, t *testing.T) url.Values
		wantStatus int
		wantMsg    string
	}{
		{
			name: "missing state",
			query: func(_ *testEnv, _ *testing.T) url.Values {
				return url.Values{"code": {"C"}}
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid state",
		},
		{
			name: "corrupt state",
			query: func(_ *testEnv, _ *testing.T) url.Values {
				return url.Values{"code": {"C"}, "state": {"!!not-state!!"}}
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "invalid state",
		},
		{
			name: "upstream denied",
			query: func(env *testEnv, t *testing.T) url.Values {
				return url.Values{
					"state":             {env.encodedState(t)},
					"error":             {"access_denied"},
					"error_description": {"user cancelled"},
				}
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "upstream authorization failed: user cancelled",
		},
		{
			name: "missing code",
			query: func(env *testEnv, t *testing.T) url.Values {
				return url.Values{"state": {env.encodedState(t)}}
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "missing code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := newSallaStub(t)
			env := newTestEnv(t, stub.provider(t))

			rec := env.do(env.callbackRequest(t, tt.query(env, t)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
			assert.Nil(t, stub.tokenForm, "upstream token endpoint must not be called")
			assert.Zero(t, stub.profileHits)
		})
	}
}

func TestCallbackHandler_UnknownProvider(t *testing.T) {
	t.Parallel()

	stub := newSallaStub(t)
	env := newTestEnv(t, stub.provider(t))

	query := url.Values{"state": {env.encodedState(t)}, "code": {"C"}}
	req := httptest.NewRequest(http.MethodGet, testIssuer+"/callback/github?"+query.Encode(), nil)
	rec := env.do(req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, stub.tokenForm)
}

func TestCallbackHandler_ExchangeRejectedVerbatim(t *testing.T) {
	t.Parallel()

	stub := newSallaStub(t)
	stub.tokenStatus = http.StatusBadRequest
	stub.tokenBody = `{"error":"invalid_grant"}`
	env := newTestEnv(t, stub.provider(t))

	rec := env.do(env.callbackRequest(t, url.Values{"state": {env.encodedState(t)}, "code": {"C"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `{"error":"invalid_grant"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Zero(t, stub.profileHits)

	require.NotNil(t, stub.tokenForm)
	assert.Equal(t, "authorization_code", stub.tokenForm.Get("grant_type"))
	assert.Equal(t, "C", stub.tokenForm.Get("code"))
	assert.Equal(t, testCallbackURL, stub.tokenForm.Get("redirect_uri"))
}

func TestCallbackHandler_ExchangeUnreachable(t *testing.T) {
	t.Parallel()

	stub := newSallaStub(t)
	env := newTestEnv(t, stub.provider(t))
	stub.server.Close()

	rec := env.do(env.callbackRequest(t, url.Values{"state": {env.encodedState(t)}, "code": {"C"}}))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCallbackHandler_IdentityFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		profileStatus int
		profileBody   string
		wantMsg       string
	}{
		{
			name:          "profile endpoint error",
			profileStatus: http.StatusUnauthorized,
			profileBody:   `{"error":"unauthorized"}`,
			wantMsg:       "failed to fetch user info",
		},
		{
			name:          "profile without id",
			profileStatus: http.StatusOK,
			profileBody:   `{"name":"Jane"}`,
			wantMsg:       "failed to get user ID from upstream profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := newSallaStub(t)
			stub.profileStatus = tt.profileStatus
			stub.profileBody = tt.profileBody
			env := newTestEnv(t, stub.provider(t))

			rec := env.do(env.callbackRequest(t, url.Values{"state": {env.encodedState(t)}, "code": {"C"}}))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
			assert.Equal(t, 1, stub.profileHits)
			assert.Equal(t, "Bearer T", stub.bearer)
			assert.Zero(t, env.storage.Stats().Props)
		})
	}
}

func TestCallbackHandler_CompletesWithSink(t *testing.T) {
	t.Parallel()

	stub := newSallaStub(t)
	ctrl := gomock.NewController(t)
	sink := servermocks.NewMockCompletionSink(ctrl)

	var env *testEnv
	sink.EXPECT().
		CompleteAuthorization(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *server.CompletionRequest) (*server.CompletionResult, error) {
			assert.Equal(t, env.pending(), req.Request)
			assert.Equal(t, "7", req.SubjectID)
			assert.Equal(t, "Jane", req.Metadata.Label)
			assert.Equal(t, []string{"mcp", "offline_access"}, req.Scope)
			assert.Equal(t, &session.Props{SubjectID: "7", DisplayName: "Jane", AccessToken: "T"}, req.Props)
			return &server.CompletionResult{RedirectTo: testRedirectURI + "?code=X&state=" + testClientState}, nil
		})

	env = newTestEnv(t, stub.provider(t), WithCompletionSink(sink))

	rec := env.do(env.callbackRequest(t, url.Values{"state": {env.encodedState(t)}, "code": {"C"}}))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testRedirectURI+"?code=X&state="+testClientState, rec.Header().Get("Location"))
	assert.Equal(t, "Bearer T", stub.bearer)
	assert.Equal(t, "salla-client-id", stub.tokenForm.Get("client_id"))
	assert.Equal(t, "salla-client-secret", stub.tokenForm.Get("client_secret"))

	scraped := env.scrape(t)
	for _, stage := range []string{"callback", "exchange", "identity", "complete"} {
		assert.Contains(t, scraped, `salla_mcp_authorization_total{outcome="success",stage="`+stage+`"} 1`)
	}
}

func TestCallbackHandler_SinkFailure(t *testing.T) {
	t.Parallel()

	stub := newSallaStub(t)
	ctrl := gomock.NewController(t)
	sink := servermocks.NewMockCompletionSink(ctrl)
	sink.EXPECT().CompleteAuthorization(gomock.Any(), gomock.Any()).Return(nil, errors.New("sink down"))

	env := newTestEnv(t, stub.provider(t), WithCompletionSink(sink))

	rec := env.do(env.callbackRequest(t, url.Values{"state": {env.encodedState(t)}, "code": {"C"}}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
}
