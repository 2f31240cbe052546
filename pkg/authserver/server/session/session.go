// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package session provides the fosite session type issued by the authorization
// server and the props bundle stored alongside each grant.
package session

import (
	"time"

	"github.com/ory/fosite"
	"github.com/ory/fosite/handler/oauth2"
	"github.com/ory/fosite/token/jwt"
)

// JWT claim keys added to issued access tokens.
const (
	// TokenSessionIDClaimKey carries the grant ID that keys the stored props.
	TokenSessionIDClaimKey = "tsid"

	// ClientIDClaimKey carries the downstream client ID.
	ClientIDClaimKey = "client_id"

	// AuthorizedPartyClaimKey is the OIDC azp claim, also set to the client ID.
	AuthorizedPartyClaimKey = "azp"
)

// Session is the fosite session for grants issued by this server.
// GrantID survives token refresh and is used to look up the grant's Props.
type Session struct {
	*oauth2.JWTSession

	GrantID string
}

// New creates a session for subject. Empty grantID or clientID leave the
// corresponding claims unset.
func New(subject, grantID, clientID string) *Session {
	extra := make(map[string]interface{})
	if grantID != "" {
		extra[TokenSessionIDClaimKey] = grantID
	}
	if clientID != "" {
		extra[ClientIDClaimKey] = clientID
		extra[AuthorizedPartyClaimKey] = clientID
	}

	return &Session{
		JWTSession: &oauth2.JWTSession{
			JWTClaims: &jwt.JWTClaims{
				Subject: subject,
				Extra:   extra,
			},
			JWTHeader: &jwt.Headers{
				Extra: make(map[string]interface{}),
			},
			ExpiresAt: make(map[fosite.TokenType]time.Time),
			Subject:   subject,
		},
		GrantID: grantID,
	}
}

// Clone implements fosite.Session.
func (s *Session) Clone() fosite.Session {
	if s == nil {
		return nil
	}

	clone := &Session{GrantID: s.GrantID}
	if s.JWTSession != nil {
		if jwtClone, ok := s.JWTSession.Clone().(*oauth2.JWTSession); ok {
			clone.JWTSession = jwtClone
		}
	}
	return clone
}

// SetExpiresAt implements fosite.Session.
func (s *Session) SetExpiresAt(key fosite.TokenType, exp time.Time) {
	s.ensureJWTSession()
	if s.JWTSession.ExpiresAt == nil {
		s.JWTSession.ExpiresAt = make(map[fosite.TokenType]time.Time)
	}
	s.JWTSession.ExpiresAt[key] = exp
}

// GetExpiresAt implements fosite.Session.
func (s *Session) GetExpiresAt(key fosite.TokenType) time.Time {
	if s.JWTSession == nil || s.JWTSession.ExpiresAt == nil {
		return time.Time{}
	}
	return s.JWTSession.ExpiresAt[key]
}

// SetSubject implements fosite.Session. It keeps the JWT sub claim in sync.
func (s *Session) SetSubject(subject string) {
	s.ensureJWTSession()
	s.JWTSession.Subject = subject
	if s.JWTClaims == nil {
		s.JWTClaims = &jwt.JWTClaims{Extra: make(map[string]interface{})}
	}
	s.JWTClaims.Subject = subject
}

// GetSubject implements fosite.Session.
func (s *Session) GetSubject() string {
	if s.JWTSession == nil {
		return ""
	}
	if s.JWTClaims != nil && s.JWTClaims.Subject != "" {
		return s.JWTClaims.Subject
	}
	return s.JWTSession.Subject
}

// SetUsername implements fosite.Session.
func (s *Session) SetUsername(username string) {
	s.ensureJWTSession()
	s.JWTSession.Username = username
}

// GetUsername implements fosite.Session.
func (s *Session) GetUsername() string {
	if s.JWTSession == nil {
		return ""
	}
	return s.JWTSession.Username
}

// GetGrantID returns the grant ID.
func (s *Session) GetGrantID() string {
	return s.GrantID
}

// SetGrantID sets the grant ID and the matching tsid claim.
func (s *Session) SetGrantID(grantID string) {
	s.GrantID = grantID
	s.ensureJWTSession()
	if s.JWTClaims == nil {
		s.JWTClaims = &jwt.JWTClaims{}
	}
	if s.JWTClaims.Extra == nil {
		s.JWTClaims.Extra = make(map[string]interface{})
	}
	s.JWTClaims.Extra[TokenSessionIDClaimKey] = grantID
}

// GetJWTClaims implements oauth2.JWTSessionContainer.
func (s *Session) GetJWTClaims() jwt.JWTClaimsContainer {
	s.ensureJWTSession()
	return s.JWTSession.GetJWTClaims()
}

// GetJWTHeader implements oauth2.JWTSessionContainer.
func (s *Session) GetJWTHeader() *jwt.Headers {
	s.ensureJWTSession()
	return s.JWTSession.GetJWTHeader()
}

func (s *Session) ensureJWTSession() {
	if s.JWTSession == nil {
		s.JWTSession = &oauth2.JWTSession{
			ExpiresAt: make(map[fosite.TokenType]time.Time),
		}
	}
}

// GrantIDFromSession extracts the grant ID from any fosite session,
// falling back to the tsid claim when the concrete type is not *Session.
func GrantIDFromSession(sess fosite.Session) string {
	switch s := sess.(type) {
	case *Session:
		if s.GrantID != "" {
			return s.GrantID
		}
		if s.JWTSession != nil && s.JWTClaims != nil {
			if v, ok := s.JWTClaims.Extra[TokenSessionIDClaimKey].(string); ok {
				return v
			}
		}
	case oauth2.JWTSessionContainer:
		claims := s.GetJWTClaims().ToMapClaims()
		if v, ok := claims[TokenSessionIDClaimKey].(string); ok {
			return v
		}
	}
	return ""
}

var (
	_ fosite.Session             = (*Session)(nil)
	_ oauth2.JWTSessionContainer = (*Session)(nil)
)
