// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package registration implements OAuth 2.0 Dynamic Client Registration
// (RFC 7591) for the public MCP clients that connect to the server.
package registration

import (
	"net"
	"net/url"
	"slices"
	"strings"
)

// DCR error codes per RFC 7591 Section 3.2.2
const (
	// DCRErrorInvalidRedirectURI indicates that the value of one or more
	// redirect_uris is invalid.
	DCRErrorInvalidRedirectURI = "invalid_redirect_uri"

	// DCRErrorInvalidClientMetadata indicates that the value of one of the
	// client metadata fields is invalid and the server has rejected this request.
	DCRErrorInvalidClientMetadata = "invalid_client_metadata"
)

// Request limits.
const (
	MaxRedirectURICount  = 10
	MaxRedirectURILength = 2048
	MaxClientNameLength  = 256
	MaxMetadataURILength = 2048
)

// DCRRequest is a registration request per RFC 7591 Section 2.
type DCRRequest struct {
	RedirectURIs []string `json:"redirect_uris"`

	// ClientName, ClientURI and LogoURI are shown on the consent dialog.
	ClientName string `json:"client_name,omitempty"`
	ClientURI  string `json:"client_uri,omitempty"`
	LogoURI    string `json:"logo_uri,omitempty"`

	// TokenEndpointAuthMethod must be "none"; only public clients register.
	TokenEndpointAuthMethod string `json:"token_endpoint_auth_method,omitempty"`

	GrantTypes    []string `json:"grant_types,omitempty"`
	ResponseTypes []string `json:"response_types,omitempty"`

	// Scope is a space separated list (RFC 7591 Section 2).
	Scope string `json:"scope,omitempty"`
}

// DCRResponse is a successful registration response per RFC 7591 Section 3.2.1.
type DCRResponse struct {
	ClientID                string   `json:"client_id"`
	ClientIDIssuedAt        int64    `json:"client_id_issued_at,omitempty"`
	RedirectURIs            []string `json:"redirect_uris"`
	ClientName              string   `json:"client_name,omitempty"`
	ClientURI               string   `json:"client_uri,omitempty"`
	LogoURI                 string   `json:"logo_uri,omitempty"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	Scope                   string   `json:"scope,omitempty"`
}

// DCRError is a registration error response per RFC 7591 Section 3.2.2.
type DCRError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func invalidMetadata(description string) *DCRError {
	return &DCRError{Error: DCRErrorInvalidClientMetadata, ErrorDescription: description}
}

func invalidRedirectURI(description string) *DCRError {
	return &DCRError{Error: DCRErrorInvalidRedirectURI, ErrorDescription: description}
}

var defaultGrantTypes = []string{"authorization_code", "refresh_token"}

var allowedGrantTypes = map[string]bool{
	"authorization_code": true,
	"refresh_token":      true,
}

var defaultResponseTypes = []string{"code"}

var allowedResponseTypes = map[string]bool{
	"code": true,
}

// ValidateDCRRequest validates req against the public-client policy and
// returns a copy with defaults applied.
func ValidateDCRRequest(req *DCRRequest, allowedScopes []string) (*DCRRequest, *DCRError) {
	if len(req.RedirectURIs) == 0 {
		return nil, invalidRedirectURI("redirect_uris is required")
	}
	if len(req.RedirectURIs) > MaxRedirectURICount {
		return nil, invalidRedirectURI("too many redirect_uris (maximum 10)")
	}
	for _, uri := range req.RedirectURIs {
		if err := ValidateRedirectURI(uri); err != nil {
			return nil, err
		}
	}

	if len(req.ClientName) > MaxClientNameLength {
		return nil, invalidMetadata("client_name too long (maximum 256 characters)")
	}
	for name, value := range map[string]string{"client_uri": req.ClientURI, "logo_uri": req.LogoURI} {
		if err := validateMetadataURI(name, value); err != nil {
			return nil, err
		}
	}

	authMethod := req.TokenEndpointAuthMethod
	if authMethod == "" {
		authMethod = "none"
	}
	if authMethod != "none" {
		return nil, invalidMetadata("token_endpoint_auth_method must be 'none' for public clients")
	}

	grantTypes, err := validateGrantTypes(req.GrantTypes)
	if err != nil {
		return nil, err
	}
	responseTypes, err := validateResponseTypes(req.ResponseTypes)
	if err != nil {
		return nil, err
	}
	scopes, err := ValidateScopes(req.Scope, allowedScopes)
	if err != nil {
		return nil, err
	}

	return &DCRRequest{
		RedirectURIs:            req.RedirectURIs,
		ClientName:              req.ClientName,
		ClientURI:               req.ClientURI,
		LogoURI:                 req.LogoURI,
		TokenEndpointAuthMethod: authMethod,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		Scope:                   strings.Join(scopes, " "),
	}, nil
}

func validateGrantTypes(grantTypes []string) ([]string, *DCRError) {
	if len(grantTypes) == 0 {
		grantTypes = defaultGrantTypes
	}
	if !slices.Contains(grantTypes, "authorization_code") {
		return nil, invalidMetadata("grant_types must include 'authorization_code'")
	}
	for _, gt := range grantTypes {
		if !allowedGrantTypes[gt] {
			return nil, invalidMetadata("unsupported grant_type: " + gt)
		}
	}
	return grantTypes, nil
}

func validateResponseTypes(responseTypes []string) ([]string, *DCRError) {
	if len(responseTypes) == 0 {
		responseTypes = defaultResponseTypes
	}
	if !slices.Contains(responseTypes, "code") {
		return nil, invalidMetadata("response_types must include 'code'")
	}
	for _, rt := range responseTypes {
		if !allowedResponseTypes[rt] {
			return nil, invalidMetadata("unsupported response_type: " + rt)
		}
	}
	return responseTypes, nil
}

// ValidateScopes parses a space separated scope string and checks every
// scope against allowed. An empty string selects DefaultScopes, which must
// themselves be allowed. Duplicates are dropped, order is kept.
func ValidateScopes(scope string, allowed []string) ([]string, *DCRError) {
	requested := strings.Fields(scope)
	if len(requested) == 0 {
		requested = DefaultScopes
	}

	scopes := make([]string, 0, len(requested))
	for _, s := range requested {
		if !slices.Contains(allowed, s) {
			return nil, invalidMetadata("unsupported scope: " + s)
		}
		if !slices.Contains(scopes, s) {
			scopes = append(scopes, s)
		}
	}
	return scopes, nil
}

// deniedSchemes can execute code or read local data in the user agent.
var deniedSchemes = map[string]bool{
	"javascript": true,
	"data":       true,
	"file":       true,
	"vbscript":   true,
}

// ValidateRedirectURI applies RFC 8252 to a redirect URI:
//   - https is allowed for any host
//   - http is allowed only for loopback hosts
//   - private-use schemes (for example cursor://) are allowed for native apps
//
// Fragments are never allowed (RFC 6749 Section 3.1.2).
func ValidateRedirectURI(uri string) *DCRError {
	if len(uri) > MaxRedirectURILength {
		return invalidRedirectURI("redirect_uri exceeds maximum length")
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return invalidRedirectURI("redirect_uri must be an absolute URI")
	}
	if u.Fragment != "" {
		return invalidRedirectURI("redirect_uri must not contain a fragment")
	}

	switch scheme := strings.ToLower(u.Scheme); {
	case scheme == "https":
		if u.Host == "" {
			return invalidRedirectURI("redirect_uri must include a host")
		}
	case scheme == "http":
		if !IsLoopbackHost(u.Hostname()) {
			return invalidRedirectURI("http redirect_uri is only allowed for loopback addresses")
		}
	case deniedSchemes[scheme]:
		return invalidRedirectURI("redirect_uri scheme is not allowed: " + scheme)
	}
	return nil
}

// IsLoopbackHost reports whether hostname is localhost or a loopback IP.
func IsLoopbackHost(hostname string) bool {
	if strings.EqualFold(hostname, "localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func validateMetadataURI(name, value string) *DCRError {
	if value == "" {
		return nil
	}
	if len(value) > MaxMetadataURILength {
		return invalidMetadata(name + " exceeds maximum length")
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return invalidMetadata(name + " must be an absolute http(s) URL")
	}
	return nil
}
