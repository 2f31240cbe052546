// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ory/fosite"
	"github.com/stacklok/toolhive-core/httperr"

	"github.com/stacklok/salla-mcp/pkg/authserver/consent"
	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/server"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/crypto"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/registration"
	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

// AuthorizeHandler handles GET /authorize requests.
// It validates the client's authorization request, then either renders the
// approval dialog or, when the client was approved before, redirects upstream.
func (h *Handler) AuthorizeHandler(w http.ResponseWriter, req *http.Request) error {
	pending, err := h.parseAuthorizeRequest(req)
	if err != nil {
		h.metrics.Authorization(metrics.StageAuthorize, metrics.OutcomeFailure)
		return err
	}
	h.metrics.Authorization(metrics.StageAuthorize, metrics.OutcomeSuccess)

	if h.consent.AlreadyApproved(req, pending.ClientID) {
		logger.Debugw("client already approved, skipping dialog", "client_id", pending.ClientID)
		h.metrics.Authorization(metrics.StageConsent, metrics.OutcomeSkipped)
		return h.redirectToUpstream(w, req, pending, nil)
	}

	client, err := h.storage.GetClient(req.Context(), pending.ClientID)
	if err != nil {
		h.metrics.Authorization(metrics.StageAuthorize, metrics.OutcomeFailure)
		return invalidRequest("unknown client")
	}

	encoded, err := h.codec.Encode(pending)
	if err != nil {
		return fmt.Errorf("failed to encode authorization state: %w", err)
	}

	return consent.RenderDialog(w, &consent.Dialog{
		Server: h.serverInfo,
		Client: clientInfo(client),
		State:  encoded,
	})
}

// ApproveHandler handles POST /authorize, the submitted approval dialog.
func (h *Handler) ApproveHandler(w http.ResponseWriter, req *http.Request) error {
	pending, headers, err := h.consent.ParseApproval(req)
	if err != nil {
		h.metrics.Authorization(metrics.StageConsent, metrics.OutcomeFailure)
		switch {
		case errors.Is(err, state.ErrInvalidState):
			return httperr.WithCode(err, http.StatusBadRequest)
		case errors.Is(err, consent.ErrApprovalNotRecorded):
			return httperr.WithCode(err, http.StatusInternalServerError)
		}
		return invalidRequest("%v", err)
	}
	h.metrics.Authorization(metrics.StageConsent, metrics.OutcomeSuccess)

	return h.redirectToUpstream(w, req, pending, headers)
}

// redirectToUpstream sends the user agent to the upstream authorize endpoint,
// carrying the pending request in the state parameter.
func (h *Handler) redirectToUpstream(
	w http.ResponseWriter,
	req *http.Request,
	pending *state.PendingAuthorization,
	headers http.Header,
) error {
	callbackURL := h.callbackURL(req)

	encoded, err := h.codec.Encode(pending)
	if err != nil {
		return fmt.Errorf("failed to encode authorization state: %w", err)
	}

	target, err := h.upstream.AuthorizationURL(callbackURL, encoded)
	if err != nil {
		return fmt.Errorf("failed to build upstream authorization URL: %w", err)
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	logger.Infow("redirecting to upstream",
		"client_id", pending.ClientID,
		"provider", h.upstream.Name(),
		"redirect_uri", callbackURL,
	)
	http.Redirect(w, req, target, http.StatusFound)
	return nil
}

// parseAuthorizeRequest is the request parser of the gate. client_id is
// checked before anything else; fosite validates the client, redirect URI,
// response type, scopes and state.
func (h *Handler) parseAuthorizeRequest(req *http.Request) (*state.PendingAuthorization, error) {
	ctx := req.Context()

	if req.URL.Query().Get("client_id") == "" {
		return nil, invalidRequest("client_id is required")
	}

	ar, err := h.provider.NewAuthorizeRequest(ctx, req)
	if err != nil {
		rfcErr := fosite.ErrorToRFC6749Error(err)
		logger.Debugw("rejected authorization request", "error", rfcErr.ErrorField, "hint", rfcErr.HintField)
		return nil, invalidRequest("%s", describe(rfcErr))
	}

	form := ar.GetRequestForm()
	challenge := form.Get("code_challenge")
	method := form.Get("code_challenge_method")
	if challenge == "" && ar.GetClient().IsPublic() {
		return nil, invalidRequest("code_challenge is required for public clients")
	}
	if challenge != "" && method != crypto.PKCEChallengeMethodS256 {
		return nil, invalidRequest("code_challenge_method must be %s", crypto.PKCEChallengeMethodS256)
	}

	resource, err := server.RequestedResource(form, h.config.AllowedAudiences)
	if err != nil {
		return nil, invalidRequest("%s", describe(fosite.ErrorToRFC6749Error(err)))
	}

	return &state.PendingAuthorization{
		ClientID: ar.GetClient().GetID(),
		Scope:    []string(ar.GetRequestedScopes()),
		// The raw value is kept: replaying a redirect URI the client omitted
		// would make fosite require it at the token endpoint.
		RedirectURI:         form.Get("redirect_uri"),
		State:               ar.GetState(),
		ResponseType:        form.Get("response_type"),
		CodeChallenge:       challenge,
		CodeChallengeMethod: method,
		Resource:            resource,
	}, nil
}

// callbackURL is the request origin plus /callback/<provider>.
func (h *Handler) callbackURL(req *http.Request) string {
	return requestOrigin(req) + "/callback/" + h.upstream.Name()
}

// requestOrigin derives scheme://host from the request, honoring X-Forwarded-Proto.
func requestOrigin(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if forwarded := req.Header.Get("X-Forwarded-Proto"); forwarded == "http" || forwarded == "https" {
		scheme = forwarded
	}
	return scheme + "://" + req.Host
}

func clientInfo(client fosite.Client) consent.ClientInfo {
	info := consent.ClientInfo{
		ID:           client.GetID(),
		RedirectURIs: client.GetRedirectURIs(),
	}
	if c, ok := client.(*registration.Client); ok {
		info.Name = c.ClientName
		info.URI = c.ClientURI
		info.LogoURI = c.LogoURI
	}
	return info
}

func describe(rfcErr *fosite.RFC6749Error) string {
	if rfcErr.HintField != "" {
		return rfcErr.DescriptionField + " " + rfcErr.HintField
	}
	return rfcErr.DescriptionField
}
