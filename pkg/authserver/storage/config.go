// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"time"
)

// Type names a storage backend.
type Type string

// Supported backends.
const (
	TypeMemory Type = "memory"
	TypeRedis  Type = "redis"
)

// Lifetimes used when a request carries no expiry of its own.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
	DefaultAuthCodeTTL     = 10 * time.Minute
	DefaultPKCETTL         = DefaultAuthCodeTTL

	// DefaultInvalidatedCodeTTL is how long a used code is remembered so
	// that a replay revokes the grant.
	DefaultInvalidatedCodeTTL = 30 * time.Minute

	// DefaultPropsTTL outlives every token of the grant.
	DefaultPropsTTL = DefaultRefreshTokenTTL

	// DefaultPublicClientTTL expires dynamically registered clients in Redis.
	DefaultPublicClientTTL = 90 * 24 * time.Hour
)

// DefaultCleanupInterval is how often MemoryStorage purges expired entries.
const DefaultCleanupInterval = 5 * time.Minute

// DefaultRedisKeyPrefix namespaces the keys written by RedisStorage.
const DefaultRedisKeyPrefix = "salla-mcp:auth:"

// Config selects and configures a backend.
type Config struct {
	Type Type

	// CleanupInterval applies to TypeMemory.
	CleanupInterval time.Duration

	// Redis applies to TypeRedis.
	Redis RedisConfig
}

// New opens the backend described by cfg. A nil cfg or an empty Type
// selects memory.
func New(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	switch cfg.Type {
	case "", TypeMemory:
		if cfg.CleanupInterval > 0 {
			return NewMemoryStorage(WithCleanupInterval(cfg.CleanupInterval)), nil
		}
		return NewMemoryStorage(), nil
	case TypeRedis:
		return NewRedisStorage(ctx, cfg.Redis)
	}
	return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
}
