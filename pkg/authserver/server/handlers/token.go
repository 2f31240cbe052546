// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ory/fosite"

	"github.com/stacklok/salla-mcp/pkg/authserver/server"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

// TokenHandler handles POST /token for the authorization_code and
// refresh_token grants.
func (h *Handler) TokenHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	// fosite fills the template from the session stored with the code or
	// refresh token.
	accessRequest, err := h.provider.NewAccessRequest(ctx, req, session.New("", "", ""))
	if err != nil {
		logger.Debugw("token request rejected", "error", err)
		h.provider.WriteAccessError(ctx, w, accessRequest, err)
		return
	}

	// RFC 8707 resource on the token request narrows the audience.
	resource, err := server.RequestedResource(accessRequest.GetRequestForm(), h.config.AllowedAudiences)
	if err != nil {
		logger.Debugw("rejected resource", "error", err)
		h.provider.WriteAccessError(ctx, w, accessRequest, err)
		return
	}
	if resource != "" {
		accessRequest.GrantAudience(resource)
	}

	response, err := h.provider.NewAccessResponse(ctx, accessRequest)
	if err != nil {
		logger.Errorw("failed to issue tokens", "client_id", accessRequest.GetClient().GetID(), "error", err)
		h.provider.WriteAccessError(ctx, w, accessRequest, err)
		return
	}

	if accessRequest.GetGrantTypes().ExactOne("refresh_token") {
		h.extendGrantProps(ctx, accessRequest)
	}

	h.provider.WriteAccessResponse(ctx, w, accessRequest, response)
}

// extendGrantProps stores the grant's props again so they expire with the
// refresh token just issued instead of the first one.
func (h *Handler) extendGrantProps(ctx context.Context, accessRequest fosite.AccessRequester) {
	sess := accessRequest.GetSession()
	grantID := session.GrantIDFromSession(sess)
	if grantID == "" {
		return
	}

	props, err := h.storage.GetProps(ctx, grantID)
	if err != nil {
		logger.Warnw("grant props missing on refresh", "grant_id", grantID, "error", err)
		return
	}

	ttl := h.config.RefreshTokenLifespan
	if exp := sess.GetExpiresAt(fosite.RefreshToken); !exp.IsZero() {
		ttl = time.Until(exp)
	}
	if err := h.storage.StoreProps(ctx, grantID, props, ttl); err != nil {
		logger.Warnw("failed to extend grant props", "grant_id", grantID, "error", err)
	}
}

// RevokeHandler handles POST /revoke requests (RFC 7009).
// Revoking either token of a grant revokes the whole grant.
func (h *Handler) RevokeHandler(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	err := h.provider.NewRevocationRequest(ctx, req)
	if err != nil {
		logger.Debugw("revocation request failed", "error", err)
	}
	h.provider.WriteRevocationResponse(ctx, w, err)
}
