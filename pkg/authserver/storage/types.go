// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package storage provides storage interfaces and implementations for the
// OAuth authorization server: fosite grant state, registered clients and the
// props bundle of each grant.
package storage

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks -source=types.go Storage,ClientRegistry,PropsStorage

import (
	"context"
	"errors"
	"time"

	"github.com/ory/fosite"
	"github.com/ory/fosite/handler/oauth2"
	"github.com/ory/fosite/handler/pkce"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
)

var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a requested item exists but has expired.
	ErrExpired = errors.New("expired")
)

// ClientRegistry is the Client Registry Lookup used by the authorization gate,
// plus registration for dynamic clients.
type ClientRegistry interface {
	fosite.ClientManager

	// RegisterClient adds or replaces a client.
	RegisterClient(ctx context.Context, client fosite.Client) error
}

// PropsStorage persists the props bundle of each grant, keyed by grant ID.
type PropsStorage interface {
	// StoreProps stores props for grantID. A non-positive ttl selects DefaultPropsTTL.
	StoreProps(ctx context.Context, grantID string, props *session.Props, ttl time.Duration) error

	// GetProps returns the props for grantID, or ErrNotFound.
	GetProps(ctx context.Context, grantID string) (*session.Props, error)

	// DeleteProps removes the props for grantID.
	DeleteProps(ctx context.Context, grantID string) error
}

// Storage is everything the authorization server persists.
type Storage interface {
	ClientRegistry

	oauth2.AuthorizeCodeStorage
	oauth2.AccessTokenStorage
	oauth2.RefreshTokenStorage
	oauth2.TokenRevocationStorage
	pkce.PKCERequestStorage

	PropsStorage

	// Health reports whether the backend is reachable.
	Health(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
