// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"golang.org/x/oauth2"
)

// PKCEChallengeMethodS256 is the only PKCE method the server accepts (RFC 7636).
const PKCEChallengeMethodS256 = "S256"

// GeneratePKCEVerifier returns a 43 character code_verifier. It panics if
// crypto/rand fails.
func GeneratePKCEVerifier() string {
	return oauth2.GenerateVerifier()
}

// ComputePKCEChallenge returns BASE64URL(SHA256(verifier)).
func ComputePKCEChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
