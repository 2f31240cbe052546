// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"fmt"
	"net/url"
)

// BuildAuthorizeURL appends the authorization-code request parameters to the
// upstream authorize endpoint. Existing query parameters on the endpoint are
// kept. It performs no I/O.
func BuildAuthorizeURL(authorizeURL, clientID, redirectURI, scope, state string) (string, error) {
	u, err := url.Parse(authorizeURL)
	if err != nil {
		return "", fmt.Errorf("invalid authorize URL: %w", err)
	}

	params := u.Query()
	params.Set("response_type", "code")
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("scope", scope)
	params.Set("state", state)
	u.RawQuery = params.Encode()

	return u.String(), nil
}
