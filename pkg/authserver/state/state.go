// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package state carries a pending authorization request across the upstream
// redirect as an opaque, URL-safe token.
//
// The token is the only piece of flow state that leaves the server, so
// [Codec.Decode] treats every malformed input as hostile and returns
// [ErrInvalidState] rather than a partial request.
package state

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
)

// ErrInvalidState is returned when a state token cannot be decoded into a
// pending authorization request.
var ErrInvalidState = errors.New("invalid state")

// PendingAuthorization is the downstream client's authorization request
// while the user is away at the upstream provider.
type PendingAuthorization struct {
	// ClientID identifies the requesting application. Required.
	ClientID string `json:"clientId"`

	// Scope is the list of scopes the client asked for.
	Scope []string `json:"scope,omitempty"`

	// RedirectURI is the client's own callback.
	RedirectURI string `json:"redirectUri,omitempty"`

	// State is the client's CSRF state, echoed back on completion.
	State string `json:"state,omitempty"`

	// ResponseType is the requested OAuth response type.
	ResponseType string `json:"responseType,omitempty"`

	// CodeChallenge and CodeChallengeMethod are the client's PKCE parameters.
	CodeChallenge       string `json:"codeChallenge,omitempty"`
	CodeChallengeMethod string `json:"codeChallengeMethod,omitempty"`

	// Resource is the RFC 8707 resource indicator, if any.
	Resource string `json:"resource,omitempty"`
}

// Codec encodes and decodes pending authorization requests.
// A zero Codec is unsigned and ready to use.
type Codec struct {
	signingKey []byte
}

// Option configures a Codec.
type Option func(*Codec)

// WithSigningKey makes the codec emit HS256 compact JWS tokens and reject any
// token whose signature does not verify. The secret is stretched with SHA-256
// so that short secrets still meet the HMAC key size.
func WithSigningKey(secret []byte) Option {
	return func(c *Codec) {
		if len(secret) == 0 {
			return
		}
		sum := sha256.Sum256(secret)
		c.signingKey = sum[:]
	}
}

// NewCodec creates a Codec.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Signed reports whether tokens produced by this codec are authenticated.
func (c *Codec) Signed() bool {
	return len(c.signingKey) > 0
}

// Encode serializes a pending request to a URL-safe token.
func (c *Codec) Encode(pending *PendingAuthorization) (string, error) {
	if pending == nil || pending.ClientID == "" {
		return "", fmt.Errorf("%w: client ID is required", ErrInvalidState)
	}

	payload, err := json.Marshal(pending)
	if err != nil {
		return "", fmt.Errorf("failed to marshal pending authorization: %w", err)
	}

	if !c.Signed() {
		return base64.RawURLEncoding.EncodeToString(payload), nil
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: c.signingKey}, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create state signer: %w", err)
	}
	obj, err := signer.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return obj.CompactSerialize()
}

// Decode is the inverse of Encode. Any token that is not valid under the
// encoding, not a JSON object once decoded, or missing a client ID yields
// ErrInvalidState.
func (c *Codec) Decode(text string) (*PendingAuthorization, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty state", ErrInvalidState)
	}

	payload, err := c.payload(text)
	if err != nil {
		return nil, err
	}

	var pending PendingAuthorization
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, fmt.Errorf("%w: malformed payload", ErrInvalidState)
	}
	if pending.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client ID", ErrInvalidState)
	}
	return &pending, nil
}

func (c *Codec) payload(text string) ([]byte, error) {
	if !c.Signed() {
		// Padded input is accepted as well since some clients re-encode query values.
		payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(text, "="))
		if err != nil {
			return nil, fmt.Errorf("%w: not base64url", ErrInvalidState)
		}
		return payload, nil
	}

	obj, err := jose.ParseSigned(text, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, fmt.Errorf("%w: not a signed token", ErrInvalidState)
	}
	payload, err := obj.Verify(c.signingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: signature mismatch", ErrInvalidState)
	}
	return payload, nil
}
