// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

//go:generate mockgen -destination=mocks/mock_completion.go -package=mocks -source=completion.go CompletionSink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/ory/fosite"
	"github.com/stacklok/toolhive-core/httperr"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/authserver/storage"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

// CompletionMetadata is shown wherever the grant is listed.
type CompletionMetadata struct {
	Label string
}

// CompletionRequest is what the bridge hands to a CompletionSink.
type CompletionRequest struct {
	// Request is the original downstream authorization request.
	Request *state.PendingAuthorization

	// SubjectID becomes the token subject.
	SubjectID string

	Metadata CompletionMetadata

	// Scope is the scope originally requested by the client.
	Scope []string

	// Props are stored with the grant and handed to tool calls.
	Props *session.Props
}

// CompletionResult tells the gate where to send the user agent next.
type CompletionResult struct {
	RedirectTo string
}

// CompletionSink issues the downstream grant for a completed upstream login.
type CompletionSink interface {
	CompleteAuthorization(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)
}

// Bridge binds a resolved upstream identity to a downstream grant.
type Bridge struct {
	sink CompletionSink
}

// NewBridge creates a Bridge that completes authorizations through sink.
func NewBridge(sink CompletionSink) *Bridge {
	return &Bridge{sink: sink}
}

// Complete hands the pending request, identity and upstream token to the sink
// and returns the URL the user agent must be redirected to.
func (b *Bridge) Complete(
	ctx context.Context,
	pending *state.PendingAuthorization,
	identity *upstream.Identity,
	accessToken string,
) (string, error) {
	if pending == nil {
		return "", errors.New("pending authorization is required")
	}
	if identity == nil || identity.ID == "" {
		return "", upstream.ErrMissingIdentity
	}

	result, err := b.sink.CompleteAuthorization(ctx, &CompletionRequest{
		Request:   pending,
		SubjectID: identity.ID,
		Metadata:  CompletionMetadata{Label: identity.DisplayName},
		Scope:     pending.Scope,
		Props: &session.Props{
			SubjectID:   identity.ID,
			DisplayName: identity.DisplayName,
			Email:       identity.Email,
			AccessToken: accessToken,
		},
	})
	if err != nil {
		return "", err
	}
	if result == nil || result.RedirectTo == "" {
		return "", errors.New("authorization completed without a redirect target")
	}
	return result.RedirectTo, nil
}

// FositeSink completes authorizations by minting a fosite authorization code.
type FositeSink struct {
	provider fosite.OAuth2Provider
	config   *AuthorizationServerConfig
	props    storage.PropsStorage
}

// NewFositeSink creates a FositeSink. Props live as long as refresh tokens.
func NewFositeSink(provider fosite.OAuth2Provider, config *AuthorizationServerConfig, props storage.PropsStorage) *FositeSink {
	return &FositeSink{provider: provider, config: config, props: props}
}

// CompleteAuthorization implements CompletionSink.
func (s *FositeSink) CompleteAuthorization(ctx context.Context, req *CompletionRequest) (*CompletionResult, error) {
	if err := req.Props.Validate(); err != nil {
		return nil, fmt.Errorf("invalid props: %w", err)
	}

	httpReq, err := authorizeRequestFor(ctx, s.config.AccessTokenIssuer, req.Request)
	if err != nil {
		return nil, err
	}

	// The pending request is re-validated: the client may have been removed,
	// and the state token itself may not be authenticated.
	ar, err := s.provider.NewAuthorizeRequest(ctx, httpReq)
	if err != nil {
		return nil, fositeError("failed to restore authorization request", err)
	}

	for _, scope := range req.Scope {
		if ar.GetRequestedScopes().Has(scope) {
			ar.GrantScope(scope)
		}
	}

	if resource := req.Request.Resource; resource != "" {
		if err := ValidateResource(resource, s.config.AllowedAudiences); err != nil {
			return nil, fositeError("invalid resource", err)
		}
		ar.GrantAudience(resource)
	}

	grantID := uuid.NewString()
	sess := session.New(req.SubjectID, grantID, req.Request.ClientID)
	sess.SetUsername(req.Metadata.Label)

	if err := s.props.StoreProps(ctx, grantID, req.Props, s.config.RefreshTokenLifespan); err != nil {
		return nil, fmt.Errorf("failed to store grant props: %w", err)
	}

	resp, err := s.provider.NewAuthorizeResponse(ctx, ar, sess)
	if err != nil {
		if delErr := s.props.DeleteProps(ctx, grantID); delErr != nil {
			logger.Warnw("failed to roll back grant props", "error", delErr)
		}
		return nil, fositeError("failed to issue authorization code", err)
	}

	target := *ar.GetRedirectURI()
	query := target.Query()
	for key, values := range resp.GetParameters() {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	target.RawQuery = query.Encode()

	logger.Infow("authorization completed",
		"client_id", req.Request.ClientID,
		"subject", req.SubjectID,
		"grant_id", grantID,
	)

	return &CompletionResult{RedirectTo: target.String()}, nil
}

// authorizeRequestFor rebuilds the downstream authorize request so fosite can
// validate it again.
func authorizeRequestFor(ctx context.Context, issuer string, pending *state.PendingAuthorization) (*http.Request, error) {
	if pending == nil || pending.ClientID == "" {
		return nil, httperr.WithCode(errors.New("pending authorization has no client"), http.StatusBadRequest)
	}

	responseType := pending.ResponseType
	if responseType == "" {
		responseType = "code"
	}

	query := url.Values{
		"client_id":     {pending.ClientID},
		"response_type": {responseType},
	}
	setIfPresent(query, "redirect_uri", pending.RedirectURI)
	setIfPresent(query, "state", pending.State)
	setIfPresent(query, "scope", strings.Join(pending.Scope, " "))
	setIfPresent(query, "code_challenge", pending.CodeChallenge)
	setIfPresent(query, "code_challenge_method", pending.CodeChallengeMethod)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuer+"/authorize?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization request: %w", err)
	}
	return req, nil
}

func setIfPresent(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}

// fositeError wraps a fosite error with its RFC 6749 status code.
func fositeError(msg string, err error) error {
	rfcErr := fosite.ErrorToRFC6749Error(err)
	code := rfcErr.CodeField
	if code == 0 {
		code = http.StatusInternalServerError
	}
	description := rfcErr.GetDescription()
	return httperr.WithCode(fmt.Errorf("%s: %s: %w", msg, description, err), code)
}
