// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ory/fosite"
	"github.com/redis/go-redis/v9"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// Key types used to build Redis keys.
const (
	KeyTypeClient       = "client"
	KeyTypeJWT          = "jwt"
	KeyTypeAuthCode     = "authcode"
	KeyTypeInvalidated  = "invalidated"
	KeyTypeAccess       = "access"
	KeyTypeRefresh      = "refresh"
	KeyTypePKCE         = "pkce"
	KeyTypeProps        = "props"
	KeyTypeReqIDAccess  = "reqid:access"
	KeyTypeReqIDRefresh = "reqid:refresh"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the host:port of a standalone Redis server.
	Addr string

	// SentinelAddrs and MasterName select Sentinel failover instead of Addr.
	SentinelAddrs []string
	MasterName    string

	// Username and Password authenticate the connection (ACL user or legacy AUTH).
	Username string
	Password string

	// DB selects the logical database.
	DB int

	// KeyPrefix namespaces every key. Defaults to DefaultRedisKeyPrefix.
	KeyPrefix string

	// Timeouts (defaults: Dial=5s, Read=3s, Write=3s).
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Validate checks the connection settings.
func (c *RedisConfig) Validate() error {
	if len(c.SentinelAddrs) > 0 {
		if c.MasterName == "" {
			return errors.New("sentinel master name is required")
		}
		return nil
	}
	if c.Addr == "" {
		return errors.New("redis address is required")
	}
	return nil
}

// RedisStorage keeps grants in Redis so that every replica sees them.
// Entries expire through Redis TTLs.
type RedisStorage struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStorage connects to Redis and verifies the connection.
func NewRedisStorage(ctx context.Context, cfg RedisConfig) (*RedisStorage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis configuration: %w", err)
	}

	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultRedisKeyPrefix
	}

	addrs := cfg.SentinelAddrs
	if len(addrs) == 0 {
		addrs = []string{cfg.Addr}
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        addrs,
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStorageWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStorageWithClient wraps an existing client, such as one pointed at miniredis.
func NewRedisStorageWithClient(client redis.UniversalClient, keyPrefix string) *RedisStorage {
	return &RedisStorage{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// redisKey builds "<prefix><type>:<id>".
func redisKey(prefix, keyType, id string) string {
	return prefix + keyType + ":" + id
}

// redisSetKey builds the key of a secondary index set.
func redisSetKey(prefix, keyType, id string) string {
	return prefix + "set:" + keyType + ":" + id
}

// Close closes the client.
func (s *RedisStorage) Close() error {
	return s.client.Close()
}

// Health pings Redis.
func (s *RedisStorage) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// notFound wraps ErrNotFound together with the fosite error fosite handlers expect.
func notFound(what string) error {
	return fmt.Errorf("%w: %w", ErrNotFound, fosite.ErrNotFound.WithHint(what+" not found"))
}

// getBytes reads key, translating redis.Nil into a not-found error.
func (s *RedisStorage) getBytes(ctx context.Context, key, what string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(what)
		}
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return data, nil
}

// RegisterClient stores client. Public clients come from dynamic
// registration and expire after DefaultPublicClientTTL.
func (s *RedisStorage) RegisterClient(ctx context.Context, client fosite.Client) error {
	data, err := marshalClient(client)
	if err != nil {
		return fmt.Errorf("failed to marshal client: %w", err)
	}

	var ttl time.Duration
	if client.IsPublic() {
		ttl = DefaultPublicClientTTL
	}

	return s.client.Set(ctx, redisKey(s.keyPrefix, KeyTypeClient, client.GetID()), data, ttl).Err()
}

// GetClient loads the client by its ID.
func (s *RedisStorage) GetClient(ctx context.Context, id string) (fosite.Client, error) {
	data, err := s.getBytes(ctx, redisKey(s.keyPrefix, KeyTypeClient, id), "Client")
	if err != nil {
		return nil, err
	}

	client, err := unmarshalClient(data)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ClientAssertionJWTValid returns fosite.ErrJTIKnown while jti is remembered.
func (s *RedisStorage) ClientAssertionJWTValid(ctx context.Context, jti string) error {
	exists, err := s.client.Exists(ctx, redisKey(s.keyPrefix, KeyTypeJWT, jti)).Result()
	if err != nil {
		return fmt.Errorf("failed to check JWT: %w", err)
	}
	if exists > 0 {
		return fosite.ErrJTIKnown
	}
	return nil
}

// SetClientAssertionJWT remembers jti until exp. Past deadlines are ignored.
func (s *RedisStorage) SetClientAssertionJWT(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, redisKey(s.keyPrefix, KeyTypeJWT, jti), "1", ttl).Err()
}

// storeRequester writes request under key. With an indexType the signature
// is also added to the request ID index that revocation walks. Both writes
// happen in one MULTI so a token never exists without its index entry.
func (s *RedisStorage) storeRequester(
	ctx context.Context, key string, request fosite.Requester, ttl time.Duration, indexType, signature string,
) error {
	data, err := marshalRequester(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		if indexType != "" {
			index := redisSetKey(s.keyPrefix, indexType, request.GetID())
			pipe.SAdd(ctx, index, signature)
			pipe.Expire(ctx, index, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store request: %w", err)
	}
	return nil
}

func (s *RedisStorage) loadRequester(ctx context.Context, key, what string) (fosite.Requester, error) {
	data, err := s.getBytes(ctx, key, what)
	if err != nil {
		return nil, err
	}
	return unmarshalRequester(data, s.clientLookup(ctx))
}

// deleteIndexedRequester removes a token and its entry in the request ID index.
func (s *RedisStorage) deleteIndexedRequester(ctx context.Context, key, what, indexType, signature string) error {
	data, err := s.getBytes(ctx, key, what)
	if err != nil {
		return err
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}

	if requestID := requestIDOf(data); requestID != "" {
		_ = s.client.SRem(ctx, redisSetKey(s.keyPrefix, indexType, requestID), signature).Err()
	}
	return nil
}

// revokeByRequestID deletes every token indexed under requestID.
func (s *RedisStorage) revokeByRequestID(ctx context.Context, requestID, indexType, keyType string) error {
	reqIDKey := redisSetKey(s.keyPrefix, indexType, requestID)
	signatures, err := s.client.SMembers(ctx, reqIDKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get token signatures: %w", err)
	}

	for _, sig := range signatures {
		_ = s.client.Del(ctx, redisKey(s.keyPrefix, keyType, sig)).Err()
	}
	_ = s.client.Del(ctx, reqIDKey).Err()
	return nil
}

// revokeGrant revokes every token of keyType indexed under requestID and
// deletes the props of the grant they belong to.
func (s *RedisStorage) revokeGrant(ctx context.Context, requestID, indexType, keyType string) error {
	signatures, err := s.client.SMembers(ctx, redisSetKey(s.keyPrefix, indexType, requestID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get token signatures: %w", err)
	}

	for _, sig := range signatures {
		data, err := s.client.Get(ctx, redisKey(s.keyPrefix, keyType, sig)).Bytes()
		if err != nil {
			continue
		}
		if grantID := grantIDOf(data); grantID != "" {
			if err := s.client.Del(ctx, redisKey(s.keyPrefix, KeyTypeProps, grantID)).Err(); err != nil {
				return fmt.Errorf("failed to delete props: %w", err)
			}
			break
		}
	}

	return s.revokeByRequestID(ctx, requestID, indexType, keyType)
}

func (s *RedisStorage) clientLookup(ctx context.Context) func(string) (fosite.Client, error) {
	return func(id string) (fosite.Client, error) {
		return s.GetClient(ctx, id)
	}
}

// CreateAuthorizeCodeSession stores the request behind an authorization code.
func (s *RedisStorage) CreateAuthorizeCodeSession(ctx context.Context, code string, request fosite.Requester) error {
	if err := checkRequest(code, "authorization code", request); err != nil {
		return err
	}

	ttl := ttlFor(request, fosite.AuthorizeCode, DefaultAuthCodeTTL)
	return s.storeRequester(ctx, redisKey(s.keyPrefix, KeyTypeAuthCode, code), request, ttl, "", "")
}

// GetAuthorizeCodeSession returns the request behind code, together with
// fosite.ErrInvalidatedAuthorizeCode once the code was used.
func (s *RedisStorage) GetAuthorizeCodeSession(ctx context.Context, code string, _ fosite.Session) (fosite.Requester, error) {
	invalidated, err := s.client.Exists(ctx, redisKey(s.keyPrefix, KeyTypeInvalidated, code)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check invalidation status: %w", err)
	}

	request, err := s.loadRequester(ctx, redisKey(s.keyPrefix, KeyTypeAuthCode, code), "Authorization code")
	if err != nil {
		return nil, err
	}

	if invalidated > 0 {
		return request, fosite.ErrInvalidatedAuthorizeCode
	}
	return request, nil
}

// InvalidateAuthorizeCodeSession marks code as used.
func (s *RedisStorage) InvalidateAuthorizeCodeSession(ctx context.Context, code string) error {
	exists, err := s.client.Exists(ctx, redisKey(s.keyPrefix, KeyTypeAuthCode, code)).Result()
	if err != nil {
		return fmt.Errorf("failed to check authorization code: %w", err)
	}
	if exists == 0 {
		return notFound("Authorization code")
	}

	return s.client.Set(ctx, redisKey(s.keyPrefix, KeyTypeInvalidated, code), "1", DefaultInvalidatedCodeTTL).Err()
}

// CreateAccessTokenSession stores the request behind an access token and indexes it by request ID.
func (s *RedisStorage) CreateAccessTokenSession(ctx context.Context, signature string, request fosite.Requester) error {
	if err := checkRequest(signature, "access token signature", request); err != nil {
		return err
	}

	ttl := ttlFor(request, fosite.AccessToken, DefaultAccessTokenTTL)
	return s.storeRequester(ctx, redisKey(s.keyPrefix, KeyTypeAccess, signature), request, ttl,
		KeyTypeReqIDAccess, signature)
}

// GetAccessTokenSession loads the request behind an access token signature.
func (s *RedisStorage) GetAccessTokenSession(ctx context.Context, signature string, _ fosite.Session) (fosite.Requester, error) {
	return s.loadRequester(ctx, redisKey(s.keyPrefix, KeyTypeAccess, signature), "Access token")
}

// DeleteAccessTokenSession removes an access token and its index entry.
func (s *RedisStorage) DeleteAccessTokenSession(ctx context.Context, signature string) error {
	return s.deleteIndexedRequester(ctx, redisKey(s.keyPrefix, KeyTypeAccess, signature), "Access token",
		KeyTypeReqIDAccess, signature)
}

// CreateRefreshTokenSession stores the request behind a refresh token and indexes it by request ID.
func (s *RedisStorage) CreateRefreshTokenSession(
	ctx context.Context, signature string, _ string, request fosite.Requester,
) error {
	if err := checkRequest(signature, "refresh token signature", request); err != nil {
		return err
	}

	ttl := ttlFor(request, fosite.RefreshToken, DefaultRefreshTokenTTL)
	return s.storeRequester(ctx, redisKey(s.keyPrefix, KeyTypeRefresh, signature), request, ttl,
		KeyTypeReqIDRefresh, signature)
}

// GetRefreshTokenSession loads the request behind a refresh token signature.
func (s *RedisStorage) GetRefreshTokenSession(ctx context.Context, signature string, _ fosite.Session) (fosite.Requester, error) {
	return s.loadRequester(ctx, redisKey(s.keyPrefix, KeyTypeRefresh, signature), "Refresh token")
}

// DeleteRefreshTokenSession removes a refresh token and its index entry.
func (s *RedisStorage) DeleteRefreshTokenSession(ctx context.Context, signature string) error {
	return s.deleteIndexedRequester(ctx, redisKey(s.keyPrefix, KeyTypeRefresh, signature), "Refresh token",
		KeyTypeReqIDRefresh, signature)
}

// RotateRefreshToken removes a refresh token and every access token of the same request.
func (s *RedisStorage) RotateRefreshToken(ctx context.Context, requestID string, refreshTokenSignature string) error {
	_ = s.client.Del(ctx, redisKey(s.keyPrefix, KeyTypeRefresh, refreshTokenSignature)).Err()
	_ = s.client.SRem(ctx, redisSetKey(s.keyPrefix, KeyTypeReqIDRefresh, requestID), refreshTokenSignature).Err()

	return s.revokeByRequestID(ctx, requestID, KeyTypeReqIDAccess, KeyTypeAccess)
}

// RevokeAccessToken revokes every access token of a request and the props of its grant.
func (s *RedisStorage) RevokeAccessToken(ctx context.Context, requestID string) error {
	return s.revokeGrant(ctx, requestID, KeyTypeReqIDAccess, KeyTypeAccess)
}

// RevokeRefreshToken revokes every refresh token of a request and the props of its grant.
func (s *RedisStorage) RevokeRefreshToken(ctx context.Context, requestID string) error {
	return s.revokeGrant(ctx, requestID, KeyTypeReqIDRefresh, KeyTypeRefresh)
}

// RevokeRefreshTokenMaybeGracePeriod revokes immediately; grace periods are not supported.
func (s *RedisStorage) RevokeRefreshTokenMaybeGracePeriod(ctx context.Context, requestID string, _ string) error {
	return s.RevokeRefreshToken(ctx, requestID)
}

// CreatePKCERequestSession stores the PKCE challenge request behind a code signature.
func (s *RedisStorage) CreatePKCERequestSession(ctx context.Context, signature string, request fosite.Requester) error {
	if err := checkRequest(signature, "PKCE signature", request); err != nil {
		return err
	}

	ttl := ttlFor(request, fosite.AuthorizeCode, DefaultPKCETTL)
	return s.storeRequester(ctx, redisKey(s.keyPrefix, KeyTypePKCE, signature), request, ttl, "", "")
}

// GetPKCERequestSession loads a PKCE request.
func (s *RedisStorage) GetPKCERequestSession(ctx context.Context, signature string, _ fosite.Session) (fosite.Requester, error) {
	return s.loadRequester(ctx, redisKey(s.keyPrefix, KeyTypePKCE, signature), "PKCE request")
}

// DeletePKCERequestSession removes a PKCE request.
func (s *RedisStorage) DeletePKCERequestSession(ctx context.Context, signature string) error {
	result, err := s.client.Del(ctx, redisKey(s.keyPrefix, KeyTypePKCE, signature)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete PKCE request: %w", err)
	}
	if result == 0 {
		return notFound("PKCE request")
	}
	return nil
}

// StoreProps writes props as JSON with ttl, or DefaultPropsTTL when ttl is not positive.
func (s *RedisStorage) StoreProps(ctx context.Context, grantID string, props *session.Props, ttl time.Duration) error {
	if grantID == "" {
		return fosite.ErrInvalidRequest.WithHint("grant ID cannot be empty")
	}
	if props == nil {
		return fosite.ErrInvalidRequest.WithHint("props cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultPropsTTL
	}

	data, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("failed to marshal props: %w", err)
	}
	return s.client.Set(ctx, redisKey(s.keyPrefix, KeyTypeProps, grantID), data, ttl).Err()
}

// GetProps loads the props of grantID. Redis drops expired props, so a
// lapsed grant reports ErrNotFound.
func (s *RedisStorage) GetProps(ctx context.Context, grantID string) (*session.Props, error) {
	data, err := s.getBytes(ctx, redisKey(s.keyPrefix, KeyTypeProps, grantID), "Props")
	if err != nil {
		return nil, err
	}

	var props session.Props
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("failed to unmarshal props: %w", err)
	}
	return &props, nil
}

// DeleteProps removes the props for a grant.
func (s *RedisStorage) DeleteProps(ctx context.Context, grantID string) error {
	result, err := s.client.Del(ctx, redisKey(s.keyPrefix, KeyTypeProps, grantID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete props: %w", err)
	}
	if result == 0 {
		return notFound("Props")
	}
	return nil
}

// ttlFor turns the session expiry of tokenType into a Redis TTL. A deadline
// already in the past falls back to fallback.
func ttlFor(request fosite.Requester, tokenType fosite.TokenType, fallback time.Duration) time.Duration {
	if ttl := time.Until(expiresAt(request, tokenType, fallback)); ttl > 0 {
		return ttl
	}
	return fallback
}

var _ Storage = (*RedisStorage)(nil)
