// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package keys

// Config selects where signing keys come from.
type Config struct {
	// SigningKeyFile is the path of the PEM key that signs new tokens
	// (SIGNING_KEY_FILE). Empty selects an ephemeral generated key.
	SigningKeyFile string

	// FallbackKeyFiles are paths of older keys still published in the JWKS
	// so that tokens they signed stay verifiable until they expire.
	FallbackKeyFiles []string

	// Algorithm overrides the algorithm derived from the key.
	Algorithm string
}

// NewProviderFromConfig returns a FileProvider when SigningKeyFile is set and
// a GeneratingProvider otherwise.
func NewProviderFromConfig(cfg Config) (KeyProvider, error) {
	if cfg.SigningKeyFile != "" {
		return NewFileProvider(cfg)
	}
	return NewGeneratingProvider(cfg.Algorithm), nil
}
