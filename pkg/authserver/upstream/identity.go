// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/stacklok/salla-mcp/pkg/networking"
)

// UserInfoPath is the profile endpoint relative to the API base URL.
const UserInfoPath = "/oauth2/user/info"

// Profile fields are read from the first path that yields a value, relative
// to the profile root picked by profileRoot.
var (
	displayNamePaths = []string{"name", "store.name"}
	emailPaths       = []string{"email", "store.email"}
)

// Resolve fetches the upstream profile for accessToken and normalizes it.
func Resolve(ctx context.Context, client networking.HTTPClient, apiBaseURL, accessToken string) (*Identity, error) {
	endpoint := strings.TrimSuffix(apiBaseURL, "/") + UserInfoPath

	result, err := networking.FetchJSON[json.RawMessage](ctx, client, endpoint,
		networking.WithBearerToken(accessToken),
		networking.WithMaxResponseSize(maxResponseSize),
		networking.WithErrorHandler(func(_ *http.Response, body []byte) error {
			return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, body)
		}),
	)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	return identityFromProfile(result.Data)
}

func identityFromProfile(profile []byte) (*Identity, error) {
	if !gjson.ValidBytes(profile) {
		return nil, fmt.Errorf("%w: profile is not valid JSON", ErrUpstreamUnavailable)
	}

	root := profileRoot(profile)

	id := firstString(root, []string{"id"})
	if id == "" {
		return nil, ErrMissingIdentity
	}

	displayName := firstString(root, displayNamePaths)
	if displayName == "" {
		displayName = FallbackDisplayName
	}

	return &Identity{
		ID:          id,
		DisplayName: displayName,
		Email:       firstString(root, emailPaths),
	}, nil
}

// profileRoot is the "data" envelope when it holds a value, else the whole
// document. Fields are never mixed between the two.
func profileRoot(profile []byte) gjson.Result {
	doc := gjson.ParseBytes(profile)
	if data := doc.Get("data"); present(data) {
		return data
	}
	return doc
}

// present reports whether value is set: not null, false, zero or "".
func present(value gjson.Result) bool {
	switch value.Type {
	case gjson.JSON, gjson.True:
		return true
	case gjson.String:
		return value.Str != ""
	case gjson.Number:
		return value.Num != 0
	case gjson.Null, gjson.False:
	}
	return false
}

// firstString returns the first set string or number found under paths.
// Numbers keep their literal text, so 42 becomes "42".
func firstString(root gjson.Result, paths []string) string {
	for _, path := range paths {
		value := root.Get(path)
		if (value.Type == gjson.String || value.Type == gjson.Number) && present(value) {
			return value.String()
		}
	}
	return ""
}
