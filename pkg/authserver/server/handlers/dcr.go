// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stacklok/salla-mcp/pkg/authserver/metrics"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/registration"
	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/networking"
)

// maxRegistrationBody bounds a registration document.
const maxRegistrationBody = 64 << 10

var errServerRegistration = &registration.DCRError{
	Error:            "server_error",
	ErrorDescription: "failed to register client",
}

// RegisterClientHandler handles POST /register (RFC 7591). Only public
// clients are accepted, so no client secret is ever issued.
func (h *Handler) RegisterClientHandler(w http.ResponseWriter, req *http.Request) {
	metadata, dcrErr := h.readRegistration(w, req)
	if dcrErr != nil {
		h.metrics.Authorization(metrics.StageRegister, metrics.OutcomeFailure)
		writeRegistrationJSON(w, http.StatusBadRequest, dcrErr)
		return
	}

	clientID := uuid.NewString()
	client, err := registration.New(registration.Config{
		ID:            clientID,
		RedirectURIs:  metadata.RedirectURIs,
		Public:        true,
		GrantTypes:    metadata.GrantTypes,
		ResponseTypes: metadata.ResponseTypes,
		Scopes:        strings.Fields(metadata.Scope),
		ClientName:    metadata.ClientName,
		ClientURI:     metadata.ClientURI,
		LogoURI:       metadata.LogoURI,
	})
	if err == nil {
		err = h.storage.RegisterClient(req.Context(), client)
	}
	if err != nil {
		logger.Errorw("client registration failed", "client_name", metadata.ClientName, "error", err)
		h.metrics.Authorization(metrics.StageRegister, metrics.OutcomeFailure)
		writeRegistrationJSON(w, http.StatusInternalServerError, errServerRegistration)
		return
	}

	h.metrics.Authorization(metrics.StageRegister, metrics.OutcomeSuccess)
	logger.Infow("client registered", "client_id", clientID, "client_name", metadata.ClientName)

	writeRegistrationJSON(w, http.StatusCreated, registration.DCRResponse{
		ClientID:                clientID,
		ClientIDIssuedAt:        time.Now().Unix(),
		RedirectURIs:            metadata.RedirectURIs,
		ClientName:              metadata.ClientName,
		ClientURI:               metadata.ClientURI,
		LogoURI:                 metadata.LogoURI,
		TokenEndpointAuthMethod: metadata.TokenEndpointAuthMethod,
		GrantTypes:              metadata.GrantTypes,
		ResponseTypes:           metadata.ResponseTypes,
		Scope:                   metadata.Scope,
	})
}

// readRegistration decodes and validates the JSON registration document.
func (h *Handler) readRegistration(w http.ResponseWriter, req *http.Request) (*registration.DCRRequest, *registration.DCRError) {
	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != networking.ContentTypeJSON {
		return nil, &registration.DCRError{
			Error:            registration.DCRErrorInvalidClientMetadata,
			ErrorDescription: "Content-Type must be application/json",
		}
	}

	var body registration.DCRRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRegistrationBody)).Decode(&body); err != nil {
		return nil, &registration.DCRError{
			Error:            registration.DCRErrorInvalidClientMetadata,
			ErrorDescription: "invalid JSON request body",
		}
	}

	return registration.ValidateDCRRequest(&body, h.config.ScopesSupported)
}

func writeRegistrationJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", networking.ContentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debugw("failed to write registration response", "error", err)
	}
}
