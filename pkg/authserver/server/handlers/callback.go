// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stacklok/toolhive-core/httperr"

	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/upstream"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

// CallbackHandler handles GET /callback/{provider}, the upstream redirect.
// The steps run strictly in order and any failure ends the flow:
// decode state, exchange the code, resolve the identity, complete the grant.
func (h *Handler) CallbackHandler(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()
	query := req.URL.Query()

	pending, err := h.codec.Decode(query.Get("state"))
	if err != nil {
		logger.Warnw("rejected upstream callback with invalid state", "error", err)
		h.metrics.Authorization(metrics.StageCallback, metrics.OutcomeFailure)
		return httperr.WithCode(err, http.StatusBadRequest)
	}

	if provider := chi.URLParam(req, "provider"); provider != "" && provider != h.upstream.Name() {
		h.metrics.Authorization(metrics.StageCallback, metrics.OutcomeFailure)
		return httperr.WithCode(fmt.Errorf("unknown provider %q", provider), http.StatusNotFound)
	}

	if upstreamErr := query.Get("error"); upstreamErr != "" {
		h.metrics.Authorization(metrics.StageCallback, metrics.OutcomeFailure)
		description := query.Get("error_description")
		if description == "" {
			description = upstreamErr
		}
		return invalidRequest("upstream authorization failed: %s", description)
	}

	code := query.Get("code")
	if code == "" {
		h.metrics.Authorization(metrics.StageCallback, metrics.OutcomeFailure)
		return invalidRequest("missing code")
	}
	h.metrics.Authorization(metrics.StageCallback, metrics.OutcomeSuccess)

	logger.Debugw("upstream callback received", "client_id", pending.ClientID, "provider", h.upstream.Name())

	accessToken, err := h.upstream.ExchangeCode(ctx, code, h.callbackURL(req))
	if err != nil {
		h.metrics.Authorization(metrics.StageExchange, metrics.OutcomeFailure)
		var exchangeErr *upstream.ExchangeError
		if errors.As(err, &exchangeErr) {
			// Written verbatim by the error handler.
			return err
		}
		return httperr.WithCode(err, http.StatusBadGateway)
	}
	h.metrics.Authorization(metrics.StageExchange, metrics.OutcomeSuccess)

	identity, err := h.upstream.ResolveIdentity(ctx, accessToken)
	if err != nil {
		h.metrics.Authorization(metrics.StageIdentity, metrics.OutcomeFailure)
		return httperr.WithCode(err, http.StatusInternalServerError)
	}
	h.metrics.Authorization(metrics.StageIdentity, metrics.OutcomeSuccess)

	target, err := h.bridge.Complete(ctx, pending, identity, accessToken)
	if err != nil {
		h.metrics.Authorization(metrics.StageComplete, metrics.OutcomeFailure)
		return err
	}
	h.metrics.Authorization(metrics.StageComplete, metrics.OutcomeSuccess)

	http.Redirect(w, req, target, http.StatusFound)
	return nil
}
