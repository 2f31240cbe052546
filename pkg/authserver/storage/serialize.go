// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ory/fosite"
	"github.com/ory/fosite/token/jwt"
	"github.com/tidwall/gjson"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/registration"
	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
)

// requestRecord is the stored form of a fosite.Requester. The client is
// kept by ID and resolved again on load so that deleting a client
// invalidates its outstanding tokens.
type requestRecord struct {
	ID          string           `json:"id"`
	RequestedAt time.Time        `json:"requested_at"`
	ClientID    string           `json:"client_id,omitempty"`
	Scopes      grantRecord      `json:"scopes"`
	Audience    grantRecord      `json:"audience"`
	Form        url.Values       `json:"form,omitempty"`
	Session     *session.Session `json:"session,omitempty"`
}

type grantRecord struct {
	Requested fosite.Arguments `json:"requested,omitempty"`
	Granted   fosite.Arguments `json:"granted,omitempty"`
}

// marshalClient encodes a client. Clients that are not *registration.Client
// lose nothing but the display metadata they do not have.
func marshalClient(client fosite.Client) ([]byte, error) {
	rc, ok := client.(*registration.Client)
	if !ok {
		rc = &registration.Client{DefaultClient: &fosite.DefaultClient{
			ID:            client.GetID(),
			Secret:        client.GetHashedSecret(),
			RedirectURIs:  client.GetRedirectURIs(),
			GrantTypes:    client.GetGrantTypes(),
			ResponseTypes: client.GetResponseTypes(),
			Scopes:        client.GetScopes(),
			Audience:      client.GetAudience(),
			Public:        client.IsPublic(),
		}}
	}
	return json.Marshal(rc)
}

func unmarshalClient(data []byte) (*registration.Client, error) {
	client := &registration.Client{}
	if err := json.Unmarshal(data, client); err != nil {
		return nil, fmt.Errorf("failed to unmarshal client: %w", err)
	}
	if client.DefaultClient == nil {
		return nil, errors.New("stored client has no body")
	}
	return client, nil
}

// storedSession converts any fosite session into a *session.Session, which
// encodes as plain JSON.
func storedSession(sess fosite.Session) *session.Session {
	switch s := sess.(type) {
	case nil:
		return nil
	case *session.Session:
		return s
	}

	converted := session.New(sess.GetSubject(), session.GrantIDFromSession(sess), "")
	converted.Username = sess.GetUsername()
	for _, tokenType := range []fosite.TokenType{fosite.AccessToken, fosite.RefreshToken, fosite.AuthorizeCode} {
		if exp := sess.GetExpiresAt(tokenType); !exp.IsZero() {
			converted.SetExpiresAt(tokenType, exp)
		}
	}
	return converted
}

// restoredSession fills the parts of a decoded session that fosite
// expects to be non-nil.
func restoredSession(sess *session.Session) *session.Session {
	if sess == nil || sess.JWTSession == nil {
		return session.New("", "", "")
	}
	if sess.JWTClaims == nil {
		sess.JWTClaims = &jwt.JWTClaims{Subject: sess.JWTSession.Subject}
	}
	if sess.JWTClaims.Extra == nil {
		sess.JWTClaims.Extra = make(map[string]interface{})
	}
	if sess.JWTHeader == nil {
		sess.JWTHeader = &jwt.Headers{}
	}
	if sess.JWTHeader.Extra == nil {
		sess.JWTHeader.Extra = make(map[string]interface{})
	}
	if sess.ExpiresAt == nil {
		sess.ExpiresAt = make(map[fosite.TokenType]time.Time)
	}
	return sess
}

func marshalRequester(r fosite.Requester) ([]byte, error) {
	record := requestRecord{
		ID:          r.GetID(),
		RequestedAt: r.GetRequestedAt(),
		Scopes:      grantRecord{Requested: r.GetRequestedScopes(), Granted: r.GetGrantedScopes()},
		Audience:    grantRecord{Requested: r.GetRequestedAudience(), Granted: r.GetGrantedAudience()},
		Session:     storedSession(r.GetSession()),
	}
	if client := r.GetClient(); client != nil {
		record.ClientID = client.GetID()
	}
	if form := r.GetRequestForm(); len(form) > 0 {
		record.Form = form
	}
	return json.Marshal(record)
}

// unmarshalRequester rebuilds a fosite.Request. A client that can no longer
// be found makes the request unusable.
func unmarshalRequester(data []byte, clientLookup func(string) (fosite.Client, error)) (fosite.Requester, error) {
	var record requestRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal requester: %w", err)
	}

	request := &fosite.Request{
		ID:          record.ID,
		RequestedAt: record.RequestedAt.UTC(),
		Form:        record.Form,
		Session:     restoredSession(record.Session),
	}
	if request.Form == nil {
		request.Form = make(url.Values)
	}
	if record.ClientID != "" && clientLookup != nil {
		client, err := clientLookup(record.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve client %q of stored request: %w", record.ClientID, err)
		}
		request.Client = client
	}

	for _, scope := range record.Scopes.Requested {
		request.AppendRequestedScope(scope)
	}
	for _, scope := range record.Scopes.Granted {
		request.GrantScope(scope)
	}
	for _, aud := range record.Audience.Requested {
		request.AppendRequestedAudience(aud)
	}
	for _, aud := range record.Audience.Granted {
		request.GrantAudience(aud)
	}
	return request, nil
}

// requestIDOf extracts the request ID from a stored requester without a full decode.
func requestIDOf(data []byte) string {
	return gjson.GetBytes(data, "id").String()
}

// grantIDOf extracts the grant ID of the session in a stored requester.
func grantIDOf(data []byte) string {
	return gjson.GetBytes(data, "session.GrantID").String()
}
