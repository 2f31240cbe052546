// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
)

// Props is the bundle handed to tool handlers for an authenticated grant.
// It holds the upstream access token and must never be logged.
type Props struct {
	// SubjectID is the upstream user ID.
	SubjectID string `json:"login"`

	// DisplayName is the resolved display name.
	DisplayName string `json:"name"`

	// Email is the resolved email address, possibly empty.
	Email string `json:"email"`

	// AccessToken is the upstream access token used for API calls.
	AccessToken string `json:"accessToken"`
}

// Validate checks that the props can authenticate upstream API calls.
func (p *Props) Validate() error {
	if p == nil {
		return errors.New("props are required")
	}
	if p.SubjectID == "" {
		return errors.New("props subject is required")
	}
	if p.AccessToken == "" {
		return errors.New("props access token is required")
	}
	return nil
}

// Redacted returns a copy safe to log.
func (p Props) Redacted() Props {
	if p.AccessToken != "" {
		p.AccessToken = "[REDACTED]"
	}
	return p
}

type propsContextKey struct{}

// WithProps returns a context carrying props.
func WithProps(ctx context.Context, props *Props) context.Context {
	return context.WithValue(ctx, propsContextKey{}, props)
}

// PropsFromContext returns the props placed by WithProps, if any.
func PropsFromContext(ctx context.Context) (*Props, bool) {
	props, ok := ctx.Value(propsContextKey{}).(*Props)
	return props, ok && props != nil
}
