// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keys

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"

	servercrypto "github.com/stacklok/salla-mcp/pkg/authserver/server/crypto"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=provider.go KeyProvider

// KeyProvider provides signing keys for JWT access tokens.
type KeyProvider interface {
	// SigningKey returns the key that signs new tokens.
	SigningKey(ctx context.Context) (*SigningKeyData, error)

	// PublicKeys returns every key that verifies tokens, signing key first.
	PublicKeys(ctx context.Context) ([]*PublicKeyData, error)
}

// FileProvider serves keys loaded from PEM files at construction.
// Changing the files requires a restart.
type FileProvider struct {
	signingKey *SigningKeyData
	allKeys    []*SigningKeyData
}

// NewFileProvider loads the signing key and the fallback keys.
func NewFileProvider(cfg Config) (*FileProvider, error) {
	if cfg.SigningKeyFile == "" {
		return nil, errors.New("signing key file is required")
	}

	signingKey, err := loadKeyFromFile(cfg.SigningKeyFile, cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	allKeys := []*SigningKeyData{signingKey}
	for _, path := range cfg.FallbackKeyFiles {
		key, err := loadKeyFromFile(path, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load fallback key %s: %w", path, err)
		}
		allKeys = append(allKeys, key)
	}

	logger.Infow("loaded signing keys", "key_id", signingKey.KeyID, "algorithm", signingKey.Algorithm,
		"fallback_keys", len(cfg.FallbackKeyFiles))

	return &FileProvider{
		signingKey: signingKey,
		allKeys:    allKeys,
	}, nil
}

func loadKeyFromFile(path, algorithm string) (*SigningKeyData, error) {
	signer, err := servercrypto.LoadSigningKey(path)
	if err != nil {
		return nil, err
	}

	params, err := servercrypto.DeriveSigningKeyParams(signer, "", algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key parameters: %w", err)
	}

	return &SigningKeyData{
		KeyID:     params.KeyID,
		Algorithm: params.Algorithm,
		Key:       params.Key,
		CreatedAt: time.Now(),
	}, nil
}

// SigningKey returns a copy of the signing key.
func (p *FileProvider) SigningKey(_ context.Context) (*SigningKeyData, error) {
	return p.signingKey.clone(), nil
}

// PublicKeys returns the public halves of the signing and fallback keys.
func (p *FileProvider) PublicKeys(_ context.Context) ([]*PublicKeyData, error) {
	pubKeys := make([]*PublicKeyData, 0, len(p.allKeys))
	for _, key := range p.allKeys {
		pubKeys = append(pubKeys, key.public())
	}
	return pubKeys, nil
}

// GeneratingProvider creates an ephemeral key on first use. Tokens it signed
// become unverifiable after a restart.
type GeneratingProvider struct {
	algorithm string
	key       func() (*SigningKeyData, error)
}

// NewGeneratingProvider creates a GeneratingProvider. Empty algorithm selects DefaultAlgorithm.
func NewGeneratingProvider(algorithm string) *GeneratingProvider {
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	p := &GeneratingProvider{algorithm: algorithm}
	p.key = sync.OnceValues(p.generate)
	return p
}

// SigningKey returns a copy of the key, generating it on the first call.
// A generation failure is sticky.
func (p *GeneratingProvider) SigningKey(_ context.Context) (*SigningKeyData, error) {
	key, err := p.key()
	if err != nil {
		return nil, err
	}
	return key.clone(), nil
}

// PublicKeys returns the public half of the generated key.
func (p *GeneratingProvider) PublicKeys(ctx context.Context) ([]*PublicKeyData, error) {
	key, err := p.SigningKey(ctx)
	if err != nil {
		return nil, err
	}
	return []*PublicKeyData{key.public()}, nil
}

var generationCurves = map[string]elliptic.Curve{
	"ES256": elliptic.P256(),
	"ES384": elliptic.P384(),
	"ES512": elliptic.P521(),
}

func (p *GeneratingProvider) generate() (*SigningKeyData, error) {
	curve, ok := generationCurves[p.algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported algorithm for key generation: %s", p.algorithm)
	}
	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	keyID, err := servercrypto.DeriveKeyID(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key ID: %w", err)
	}

	logger.Warnw("generated ephemeral signing key; issued tokens will not survive a restart",
		"algorithm", p.algorithm, "key_id", keyID)

	return &SigningKeyData{
		KeyID:     keyID,
		Algorithm: p.algorithm,
		Key:       privateKey,
		CreatedAt: time.Now(),
	}, nil
}

// JWKS builds the public key set served at /.well-known/jwks.json.
func JWKS(ctx context.Context, provider KeyProvider) (*jose.JSONWebKeySet, error) {
	pubKeys, err := provider.PublicKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get public keys: %w", err)
	}

	set := &jose.JSONWebKeySet{Keys: make([]jose.JSONWebKey, 0, len(pubKeys))}
	for _, k := range pubKeys {
		set.Keys = append(set.Keys, jose.JSONWebKey{
			Key:       k.PublicKey,
			KeyID:     k.KeyID,
			Algorithm: k.Algorithm,
			Use:       "sig",
		})
	}
	return set, nil
}

// Compile-time interface checks.
var (
	_ KeyProvider = (*FileProvider)(nil)
	_ KeyProvider = (*GeneratingProvider)(nil)
)
