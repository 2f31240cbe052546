// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ory/fosite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/salla/mocks"
	"github.com/stacklok/salla-mcp/pkg/tools"
)

const testIssuer = "http://mcp.example.com"

func init() {
	logger.Initialize()
}

// fakeIntrospector accepts "good" as the access token of grant-1.
type fakeIntrospector struct{}

func (fakeIntrospector) IntrospectToken(
	_ context.Context, token string, _ fosite.TokenUse, _ fosite.Session, _ ...string,
) (fosite.TokenUse, fosite.AccessRequester, error) {
	if token != "good" {
		return "", nil, fosite.ErrInactiveToken
	}
	return fosite.AccessToken, fosite.NewAccessRequest(session.New("7", "grant-1", "abc")), nil
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T, client *mocks.MockClient) *Server {
	t.Helper()

	stor := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = stor.Close() })
	require.NoError(t, stor.StoreProps(context.Background(), "grant-1",
		&session.Props{SubjectID: "7", DisplayName: "Jane", AccessToken: "salla-token"}, time.Hour))

	m := metrics.New(metrics.Config{})
	s, err := New(&Config{
		Host:         "127.0.0.1",
		Port:         DefaultMCPPort,
		Issuer:       testIssuer,
		Introspector: fakeIntrospector{},
		Props:        stor,
		Tools:        tools.NewRegistry(client, tools.WithMetrics(m)),
		Metrics:      m.Handler(),
		AuthRoutes: func(r chi.Router) {
			r.Get("/authorize", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			})
		},
	})
	require.NoError(t, err)
	return s
}

func rpc(t *testing.T, ts *httptest.Server, sessionID, method string, id int, params any) (*http.Response, rpcResponse) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": id, "method": method, "params": params})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+StreamablePath, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer good")
	if sessionID != "" {
		req.Header.Set("Mcp-Session-Id", sessionID)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Nil(t, out.Error)
	return resp, out
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	registry := tools.NewRegistry(mocks.NewMockClient(ctrl))
	stor := storage.NewMemoryStorage()
	t.Cleanup(func() { _ = stor.Close() })

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "nil config", wantErr: "config is required"},
		{
			name:    "missing issuer",
			config:  &Config{Introspector: fakeIntrospector{}, Props: stor, Tools: registry},
			wantErr: "issuer is required",
		},
		{
			name:    "missing introspector",
			config:  &Config{Issuer: testIssuer, Props: stor, Tools: registry},
			wantErr: "token introspector is required",
		},
		{
			name:    "missing props",
			config:  &Config{Issuer: testIssuer, Introspector: fakeIntrospector{}, Tools: registry},
			wantErr: "props storage is required",
		},
		{
			name:    "missing tools",
			config:  &Config{Issuer: testIssuer, Introspector: fakeIntrospector{}, Props: stor},
			wantErr: "tool registry is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := New(tt.config)
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Nil(t, s)
		})
	}
}

func TestServer_Address(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mocks.NewMockClient(gomock.NewController(t)))
	assert.Equal(t, "127.0.0.1:8787", s.httpServer.Addr)
	assert.Equal(t, testIssuer+"/mcp", s.GetAddress())
}

func TestServer_PublicRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mocks.NewMockClient(gomock.NewController(t)))
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Salla MCP Server")
	assert.Contains(t, rec.Body.String(), testIssuer+"/sse")
	assert.Contains(t, rec.Body.String(), "<code>salla-general-statistics</code>")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/authorize", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestServer_TransportsRequireBearer(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mocks.NewMockClient(gomock.NewController(t)))
	handler := s.Handler()

	for _, path := range []string{StreamablePath, SSEPath, MessagePath + "?sessionId=x"} {
		t.Run(path, func(t *testing.T) {
			t.Parallel()

			method := http.MethodPost
			if path == SSEPath {
				method = http.MethodGet
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t,
				`Bearer resource_metadata="`+testIssuer+`/.well-known/oauth-protected-resource"`,
				rec.Header().Get("WWW-Authenticate"))
		})
	}

	req := httptest.NewRequest(http.MethodPost, StreamablePath, nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
}

func TestServer_StreamableToolCall(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	client.EXPECT().GetStoreInfo(gomock.Any(), "salla-token").
		Return(json.RawMessage(`{"data":{"name":"Jane's Shop"}}`), nil)

	s := newTestServer(t, client)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	resp, initialized := rpc(t, ts, "", "initialize", 1, map[string]any{
		"protocolVersion": "2025-03-26",
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test-client", "version": "1.0.0"},
	})
	sessionID := resp.Header.Get("Mcp-Session-Id")
	require.NotEmpty(t, sessionID)

	var info struct {
		ServerInfo struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(initialized.Result, &info))
	assert.Equal(t, ServerName, info.ServerInfo.Name)

	_, listed := rpc(t, ts, sessionID, "tools/list", 2, map[string]any{})
	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(listed.Result, &list))
	assert.Len(t, list.Tools, 18)

	_, called := rpc(t, ts, sessionID, "tools/call", 3, map[string]any{
		"name":      "salla-store-info",
		"arguments": map[string]any{},
	})
	var result struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(called.Result, &result))
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "Store information:\n\n{\n  \"data\": {\n    \"name\": \"Jane's Shop\"\n  }\n}", result.Content[0].Text)
}

func TestPropsContext(t *testing.T) {
	t.Parallel()

	props := &session.Props{SubjectID: "7", AccessToken: "T"}
	req := httptest.NewRequest(http.MethodPost, "/message", nil)
	req = req.WithContext(session.WithProps(req.Context(), props))

	got, ok := session.PropsFromContext(propsContext(context.Background(), req))
	require.True(t, ok)
	assert.Same(t, props, got)

	_, ok = session.PropsFromContext(propsContext(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.False(t, ok)
}

func TestServer_Shutdown(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, mocks.NewMockClient(gomock.NewController(t)))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Shutdown(ctx))
}
