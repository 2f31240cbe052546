// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"
)

// MinHMACSecretLength is the minimum length of an HMAC secret in bytes.
const MinHMACSecretLength = 32

// HMACSecrets holds the secret used to sign opaque tokens and older secrets
// that are still accepted for verification.
type HMACSecrets struct {
	Current []byte
	Rotated [][]byte
}

// NewHMACSecrets validates current and returns a secrets set without rotation.
func NewHMACSecrets(current []byte) (*HMACSecrets, error) {
	if len(current) < MinHMACSecretLength {
		return nil, fmt.Errorf("HMAC secret must be at least %d bytes", MinHMACSecretLength)
	}
	return &HMACSecrets{Current: current}, nil
}

// hmacDerivationInfo is the HKDF info of the token HMAC secret.
var hmacDerivationInfo = []byte("salla-mcp/hmac")

// DeriveHMACSecrets derives a 32 byte secret from a passphrase with
// HKDF-SHA256. It is used when no secret files are configured.
func DeriveHMACSecrets(passphrase string) (*HMACSecrets, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase cannot be empty")
	}
	secret := make([]byte, MinHMACSecretLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(passphrase), nil, hmacDerivationInfo), secret); err != nil {
		return nil, fmt.Errorf("failed to derive HMAC secret: %w", err)
	}
	return NewHMACSecrets(secret)
}

// LoadHMACSecrets reads secrets from files. The first path is the current
// secret; the remaining non-empty paths are rotated secrets. An empty list
// returns nil secrets and no error.
func LoadHMACSecrets(paths []string) (*HMACSecrets, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if paths[0] == "" {
		return nil, errors.New("current HMAC secret path cannot be empty")
	}

	current, err := loadHMACSecret(paths[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load current HMAC secret: %w", err)
	}

	secrets := &HMACSecrets{Current: current}
	for i, path := range paths[1:] {
		if path == "" {
			continue
		}
		rotated, err := loadHMACSecret(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load rotated HMAC secret [%d]: %w", i+1, err)
		}
		secrets.Rotated = append(secrets.Rotated, rotated)
	}

	return secrets, nil
}

func loadHMACSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	secret := bytes.TrimSpace(data)
	if len(secret) < MinHMACSecretLength {
		return nil, fmt.Errorf("HMAC secret must be at least %d bytes, got %d", MinHMACSecretLength, len(secret))
	}
	return secret, nil
}
