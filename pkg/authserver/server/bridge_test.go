// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/salla-mcp/pkg/authserver/server"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/mocks"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream"
)

func TestBridge_Complete(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	sink := mocks.NewMockCompletionSink(ctrl)

	pending := &state.PendingAuthorization{ClientID: "X", Scope: []string{"mcp", "offline_access"}}
	identity := &upstream.Identity{ID: "7", DisplayName: "Jane", Email: "jane@example.com"}

	sink.EXPECT().
		CompleteAuthorization(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *server.CompletionRequest) (*server.CompletionResult, error) {
			assert.Same(t, pending, req.Request)
			assert.Equal(t, "7", req.SubjectID)
			assert.Equal(t, "Jane", req.Metadata.Label)
			assert.Equal(t, []string{"mcp", "offline_access"}, req.Scope)
			assert.Equal(t, &session.Props{
				SubjectID:   "7",
				DisplayName: "Jane",
				Email:       "jane@example.com",
				AccessToken: "T",
			}, req.Props)
			return &server.CompletionResult{RedirectTo: "http://127.0.0.1:9876/cb?code=abc"}, nil
		})

	target, err := server.NewBridge(sink).Complete(context.Background(), pending, identity, "T")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9876/cb?code=abc", target)
}

func TestBridge_Complete_Errors(t *testing.T) {
	t.Parallel()

	sinkErr := errors.New("sink down")

	tests := []struct {
		name      string
		pending   *state.PendingAuthorization
		identity  *upstream.Identity
		setupMock func(m *mocks.MockCompletionSink)
		wantErr   error
		wantMsg   string
	}{
		{
			name:     "nil pending request",
			identity: &upstream.Identity{ID: "7"},
			wantMsg:  "pending authorization is required",
		},
		{
			name:     "identity without id",
			pending:  &state.PendingAuthorization{ClientID: "X"},
			identity: &upstream.Identity{DisplayName: "Jane"},
			wantErr:  upstream.ErrMissingIdentity,
		},
		{
			name:     "sink failure",
			pending:  &state.PendingAuthorization{ClientID: "X"},
			identity: &upstream.Identity{ID: "7"},
			setupMock: func(m *mocks.MockCompletionSink) {
				m.EXPECT().CompleteAuthorization(gomock.Any(), gomock.Any()).Return(nil, sinkErr)
			},
			wantErr: sinkErr,
		},
		{
			name:     "empty redirect target",
			pending:  &state.PendingAuthorization{ClientID: "X"},
			identity: &upstream.Identity{ID: "7"},
			setupMock: func(m *mocks.MockCompletionSink) {
				m.EXPECT().CompleteAuthorization(gomock.Any(), gomock.Any()).Return(&server.CompletionResult{}, nil)
			},
			wantMsg: "without a redirect target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			sink := mocks.NewMockCompletionSink(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(sink)
			}

			target, err := server.NewBridge(sink).Complete(context.Background(), tt.pending, tt.identity, "T")
			require.Error(t, err)
			assert.Empty(t, target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}
