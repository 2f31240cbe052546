// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/ory/fosite"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/logger"
)

type expiring[T any] struct {
	value     T
	expiresAt time.Time
}

func (e expiring[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// expiringMap is a map whose entries carry their own deadline. Callers
// synchronize access.
type expiringMap[T any] map[string]*expiring[T]

func (m expiringMap[T]) put(key string, value T, expiresAt time.Time) {
	m[key] = &expiring[T]{value: value, expiresAt: expiresAt}
}

// sweep drops every entry expired at now and returns the dropped keys.
func (m expiringMap[T]) sweep(now time.Time) []string {
	var dropped []string
	for key, e := range m {
		if e.expired(now) {
			delete(m, key)
			dropped = append(dropped, key)
		}
	}
	return dropped
}

// requesterMap holds fosite requests keyed by code or token signature.
type requesterMap = expiringMap[fosite.Requester]

// dropRequest deletes every entry of requestID and returns the grant ID of
// their session, if any.
func dropRequest(m requesterMap, requestID string) string {
	var grantID string
	for key, e := range m {
		if e.value.GetID() == requestID {
			if id := session.GrantIDFromSession(e.value.GetSession()); id != "" {
				grantID = id
			}
			delete(m, key)
		}
	}
	return grantID
}

// MemoryStorage keeps everything in process memory. Grants are lost on
// restart and are not shared between replicas; use RedisStorage for that.
//
// Requests are stored live, so the *session.Session inside a token survives
// refresh without a serialization round trip.
type MemoryStorage struct {
	mu sync.RWMutex

	clients  map[string]fosite.Client
	codes    requesterMap
	used     expiringMap[struct{}]
	access   requesterMap
	refresh  requesterMap
	pkce     requesterMap
	props    expiringMap[session.Props]
	jtis     expiringMap[struct{}]
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// MemoryStorageOption configures a MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(interval time.Duration) MemoryStorageOption {
	return func(s *MemoryStorage) {
		s.interval = interval
	}
}

// NewMemoryStorage returns an empty store and starts its purge loop. Close
// stops the loop.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	s := &MemoryStorage{
		clients:  make(map[string]fosite.Client),
		codes:    make(requesterMap),
		used:     make(expiringMap[struct{}]),
		access:   make(requesterMap),
		refresh:  make(requesterMap),
		pkce:     make(requesterMap),
		props:    make(expiringMap[session.Props]),
		jtis:     make(expiringMap[struct{}]),
		interval: DefaultCleanupInterval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.purgeLoop()
	return s
}

// Health always succeeds.
func (*MemoryStorage) Health(context.Context) error {
	return nil
}

// Close stops the purge loop and waits for it to exit.
func (s *MemoryStorage) Close() error {
	close(s.stop)
	<-s.done
	return nil
}

func (s *MemoryStorage) purgeLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.purge(now)
		}
	}
}

// purge removes every entry expired at now. A purged authorization code
// takes its used marker with it.
func (s *MemoryStorage) purge(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, code := range s.codes.sweep(now) {
		delete(s.used, code)
	}
	s.used.sweep(now)
	s.access.sweep(now)
	s.refresh.sweep(now)
	s.pkce.sweep(now)
	s.props.sweep(now)
	s.jtis.sweep(now)
}

// expiresAt returns the expiry recorded in the request session for
// tokenType, or now+fallback when there is none.
func expiresAt(request fosite.Requester, tokenType fosite.TokenType, fallback time.Duration) time.Time {
	if request != nil && request.GetSession() != nil {
		if exp := request.GetSession().GetExpiresAt(tokenType); !exp.IsZero() {
			return exp
		}
	}
	return time.Now().Add(fallback)
}

// checkRequest rejects an empty key or a nil request before anything is stored.
func checkRequest(key, what string, request fosite.Requester) error {
	if key == "" {
		return fosite.ErrInvalidRequest.WithHintf("%s cannot be empty", what)
	}
	if request == nil {
		return fosite.ErrInvalidRequest.WithHint("request cannot be nil")
	}
	return nil
}

func (s *MemoryStorage) putRequest(
	m requesterMap,
	key, what string,
	request fosite.Requester,
	tokenType fosite.TokenType,
	fallback time.Duration,
) error {
	if err := checkRequest(key, what, request); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m.put(key, request, expiresAt(request, tokenType, fallback))
	return nil
}

func (s *MemoryStorage) getRequest(m requesterMap, key, what string) (fosite.Requester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := m[key]
	if !ok {
		logger.Debugw("storage lookup missed", "kind", what)
		return nil, notFound(what)
	}
	return e.value, nil
}

func (s *MemoryStorage) deleteRequest(m requesterMap, key, what string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := m[key]; !ok {
		return notFound(what)
	}
	delete(m, key)
	return nil
}

// RegisterClient adds or replaces client.
func (s *MemoryStorage) RegisterClient(_ context.Context, client fosite.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client.GetID()] = client
	return nil
}

// GetClient implements fosite.ClientManager.
func (s *MemoryStorage) GetClient(_ context.Context, id string) (fosite.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		logger.Debugw("client not found", "client_id", id)
		return nil, notFound("Client")
	}
	return client, nil
}

// ClientAssertionJWTValid returns fosite.ErrJTIKnown while jti is remembered.
func (s *MemoryStorage) ClientAssertionJWTValid(_ context.Context, jti string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.jtis[jti]; ok && !e.expired(time.Now()) {
		return fosite.ErrJTIKnown
	}
	return nil
}

// SetClientAssertionJWT remembers jti until exp.
func (s *MemoryStorage) SetClientAssertionJWT(_ context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jtis.sweep(time.Now())
	s.jtis.put(jti, struct{}{}, exp)
	return nil
}

// CreateAuthorizeCodeSession stores the request behind an authorization code.
func (s *MemoryStorage) CreateAuthorizeCodeSession(_ context.Context, code string, request fosite.Requester) error {
	return s.putRequest(s.codes, code, "authorization code", request, fosite.AuthorizeCode, DefaultAuthCodeTTL)
}

// GetAuthorizeCodeSession returns the request behind code. A used code
// yields the request together with fosite.ErrInvalidatedAuthorizeCode so
// fosite can revoke the tokens it produced.
func (s *MemoryStorage) GetAuthorizeCodeSession(_ context.Context, code string, _ fosite.Session) (fosite.Requester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.codes[code]
	if !ok {
		return nil, notFound("Authorization code")
	}
	if _, used := s.used[code]; used {
		return e.value, fosite.ErrInvalidatedAuthorizeCode
	}
	return e.value, nil
}

// InvalidateAuthorizeCodeSession marks code as used.
func (s *MemoryStorage) InvalidateAuthorizeCodeSession(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.codes[code]; !ok {
		return notFound("Authorization code")
	}
	s.used.put(code, struct{}{}, time.Now().Add(DefaultInvalidatedCodeTTL))
	return nil
}

// CreateAccessTokenSession stores the request behind an access token signature.
func (s *MemoryStorage) CreateAccessTokenSession(_ context.Context, signature string, request fosite.Requester) error {
	return s.putRequest(s.access, signature, "access token signature", request, fosite.AccessToken, DefaultAccessTokenTTL)
}

// GetAccessTokenSession returns the request behind signature. The session
// prototype is unused since requests are stored live.
func (s *MemoryStorage) GetAccessTokenSession(_ context.Context, signature string, _ fosite.Session) (fosite.Requester, error) {
	return s.getRequest(s.access, signature, "Access token")
}

// DeleteAccessTokenSession removes an access token.
func (s *MemoryStorage) DeleteAccessTokenSession(_ context.Context, signature string) error {
	return s.deleteRequest(s.access, signature, "Access token")
}

// CreateRefreshTokenSession stores the request behind a refresh token
// signature. Tokens of one grant are linked by request ID, so the access
// token signature is not kept.
func (s *MemoryStorage) CreateRefreshTokenSession(_ context.Context, signature, _ string, request fosite.Requester) error {
	return s.putRequest(s.refresh, signature, "refresh token signature", request, fosite.RefreshToken, DefaultRefreshTokenTTL)
}

// GetRefreshTokenSession returns the request behind signature.
func (s *MemoryStorage) GetRefreshTokenSession(_ context.Context, signature string, _ fosite.Session) (fosite.Requester, error) {
	return s.getRequest(s.refresh, signature, "Refresh token")
}

// DeleteRefreshTokenSession removes a refresh token.
func (s *MemoryStorage) DeleteRefreshTokenSession(_ context.Context, signature string) error {
	return s.deleteRequest(s.refresh, signature, "Refresh token")
}

// RotateRefreshToken drops the refresh token being exchanged and every
// access token of its grant.
func (s *MemoryStorage) RotateRefreshToken(_ context.Context, requestID, refreshTokenSignature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refresh, refreshTokenSignature)
	dropRequest(s.access, requestID)
	return nil
}

// RevokeAccessToken drops every access token of the grant request requestID
// and the props of that grant.
func (s *MemoryStorage) RevokeAccessToken(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if grantID := dropRequest(s.access, requestID); grantID != "" {
		delete(s.props, grantID)
	}
	return nil
}

// RevokeRefreshToken drops every refresh token of the grant request requestID
// and the props of that grant.
func (s *MemoryStorage) RevokeRefreshToken(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if grantID := dropRequest(s.refresh, requestID); grantID != "" {
		delete(s.props, grantID)
	}
	return nil
}

// RevokeRefreshTokenMaybeGracePeriod revokes immediately; there is no grace period.
func (s *MemoryStorage) RevokeRefreshTokenMaybeGracePeriod(ctx context.Context, requestID, _ string) error {
	return s.RevokeRefreshToken(ctx, requestID)
}

// CreatePKCERequestSession stores the PKCE challenge request behind a code signature.
func (s *MemoryStorage) CreatePKCERequestSession(_ context.Context, signature string, request fosite.Requester) error {
	return s.putRequest(s.pkce, signature, "PKCE signature", request, fosite.AuthorizeCode, DefaultPKCETTL)
}

// GetPKCERequestSession returns the PKCE request behind signature.
func (s *MemoryStorage) GetPKCERequestSession(_ context.Context, signature string, _ fosite.Session) (fosite.Requester, error) {
	return s.getRequest(s.pkce, signature, "PKCE request")
}

// DeletePKCERequestSession removes a PKCE request.
func (s *MemoryStorage) DeletePKCERequestSession(_ context.Context, signature string) error {
	return s.deleteRequest(s.pkce, signature, "PKCE request")
}

// StoreProps stores a copy of props for grantID.
func (s *MemoryStorage) StoreProps(_ context.Context, grantID string, props *session.Props, ttl time.Duration) error {
	if grantID == "" {
		return fosite.ErrInvalidRequest.WithHint("grant ID cannot be empty")
	}
	if props == nil {
		return fosite.ErrInvalidRequest.WithHint("props cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultPropsTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.props.put(grantID, *props, time.Now().Add(ttl))
	return nil
}

// GetProps returns a copy of the props of grantID. Entries past their
// deadline report ErrExpired until they are purged.
func (s *MemoryStorage) GetProps(_ context.Context, grantID string) (*session.Props, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.props[grantID]
	if !ok {
		logger.Debugw("props not found", "grant_id", grantID)
		return nil, notFound("Props")
	}
	if e.expired(time.Now()) {
		return nil, ErrExpired
	}
	props := e.value
	return &props, nil
}

// DeleteProps removes the props of grantID.
func (s *MemoryStorage) DeleteProps(_ context.Context, grantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.props[grantID]; !ok {
		return notFound("Props")
	}
	delete(s.props, grantID)
	return nil
}

// Stats counts the entries held by a MemoryStorage.
type Stats struct {
	Clients             int
	AuthCodes           int
	AccessTokens        int
	RefreshTokens       int
	PKCERequests        int
	Props               int
	InvalidatedCodes    int
	ClientAssertionJWTs int
}

// Stats reports the current entry counts, expired entries included.
func (s *MemoryStorage) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Clients:             len(s.clients),
		AuthCodes:           len(s.codes),
		AccessTokens:        len(s.access),
		RefreshTokens:       len(s.refresh),
		PKCERequests:        len(s.pkce),
		Props:               len(s.props),
		InvalidatedCodes:    len(s.used),
		ClientAssertionJWTs: len(s.jtis),
	}
}

var _ Storage = (*MemoryStorage)(nil)
