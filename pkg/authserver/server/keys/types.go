// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package keys manages the keys that sign access tokens and the public key
// set served at the JWKS endpoint.
package keys

import (
	"crypto"
	"time"
)

// DefaultAlgorithm is used for generated keys.
const DefaultAlgorithm = "ES256"

// SigningKeyData is a private signing key with its metadata.
type SigningKeyData struct {
	// KeyID is the RFC 7638 thumbprint of the key.
	KeyID string

	Algorithm string
	Key       crypto.Signer
	CreatedAt time.Time
}

func (k *SigningKeyData) clone() *SigningKeyData {
	c := *k
	return &c
}

// public returns the verification half of k.
func (k *SigningKeyData) public() *PublicKeyData {
	return &PublicKeyData{
		KeyID:     k.KeyID,
		Algorithm: k.Algorithm,
		PublicKey: k.Key.Public(),
		CreatedAt: k.CreatedAt,
	}
}

// PublicKeyData is the public portion of a signing key, safe for the JWKS endpoint.
type PublicKeyData struct {
	KeyID     string
	Algorithm string
	PublicKey crypto.PublicKey
	CreatedAt time.Time
}
