// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package consent remembers which clients a user agent has approved and
// renders the approval dialog shown before the upstream redirect.
//
// Approvals live in a signed cookie, so no server-side state is kept.
package consent

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-jose/go-jose/v4"

	"github.com/stacklok/salla-mcp/pkg/authserver/state"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

const (
	// CookieName is the name of the approved-clients cookie.
	CookieName = "mcp-approved-clients"

	// CookieMaxAge is how long an approval is remembered.
	CookieMaxAge = 365 * 24 * time.Hour

	// maxApprovedClients bounds the cookie size; the oldest approvals are dropped first.
	maxApprovedClients = 50
)

var (
	// ErrMissingState is returned when an approval form carries no state.
	ErrMissingState = errors.New("missing state in approval form")

	// ErrKeyRequired is returned when the store is built without a cookie key.
	ErrKeyRequired = errors.New("cookie encryption key is required")

	// ErrApprovalNotRecorded is returned when the approval cookie cannot be
	// issued. It is a server fault, unlike the other ParseApproval errors.
	ErrApprovalNotRecorded = errors.New("failed to record approval")
)

// Store reads and writes the approved-clients cookie.
type Store struct {
	key    []byte
	codec  *state.Codec
	secure bool
}

// Option configures a Store.
type Option func(*Store)

// WithInsecureCookies drops the Secure attribute, for plain-http local development.
func WithInsecureCookies() Option {
	return func(s *Store) {
		s.secure = false
	}
}

// NewStore creates a Store. The cookie key is stretched with SHA-256 into an
// HS256 key; codec decodes the pending request carried by the approval form.
func NewStore(cookieKey string, codec *state.Codec, opts ...Option) (*Store, error) {
	if cookieKey == "" {
		return nil, ErrKeyRequired
	}
	if codec == nil {
		codec = state.NewCodec()
	}
	sum := sha256.Sum256([]byte(cookieKey))
	s := &Store{key: sum[:], codec: codec, secure: true}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AlreadyApproved reports whether the request carries a valid cookie that
// lists clientID. A missing or tampered cookie means no approval.
func (s *Store) AlreadyApproved(r *http.Request, clientID string) bool {
	if clientID == "" {
		return false
	}
	return slices.Contains(s.approvedClients(r), clientID)
}

// ParseApproval reads the posted approval form, recovers the pending request
// and returns the headers that record the approval for its client.
func (s *Store) ParseApproval(r *http.Request) (*state.PendingAuthorization, http.Header, error) {
	if err := r.ParseForm(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse approval form: %w", err)
	}

	encoded := r.PostForm.Get("state")
	if encoded == "" {
		return nil, nil, ErrMissingState
	}

	pending, err := s.codec.Decode(encoded)
	if err != nil {
		return nil, nil, err
	}

	approved := s.approvedClients(r)
	if !slices.Contains(approved, pending.ClientID) {
		approved = append(approved, pending.ClientID)
	}
	if len(approved) > maxApprovedClients {
		approved = approved[len(approved)-maxApprovedClients:]
	}

	cookie, err := s.cookie(approved)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrApprovalNotRecorded, err)
	}

	headers := make(http.Header)
	headers.Add("Set-Cookie", cookie.String())
	return pending, headers, nil
}

func (s *Store) cookie(clientIDs []string) (*http.Cookie, error) {
	payload, err := json.Marshal(clientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal approved clients: %w", err)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: s.key}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie signer: %w", err)
	}
	obj, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign approval cookie: %w", err)
	}
	value, err := obj.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize approval cookie: %w", err)
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (s *Store) approvedClients(r *http.Request) []string {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	obj, err := jose.ParseSigned(c.Value, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		logger.Debugw("ignoring malformed approval cookie", "error", err)
		return nil
	}
	payload, err := obj.Verify(s.key)
	if err != nil {
		logger.Debugw("ignoring approval cookie with bad signature")
		return nil
	}

	var clientIDs []string
	if err := json.Unmarshal(payload, &clientIDs); err != nil {
		return nil
	}
	return clientIDs
}
