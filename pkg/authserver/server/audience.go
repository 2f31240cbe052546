// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/ory/fosite"
)

// ErrInvalidTarget is the RFC 8707 invalid_target error.
var ErrInvalidTarget = &fosite.RFC6749Error{
	ErrorField:       "invalid_target",
	DescriptionField: "The requested resource is invalid, unknown, or malformed.",
	CodeField:        http.StatusBadRequest,
}

// ValidateResource checks an RFC 8707 resource indicator. An empty resource
// is accepted. Otherwise it must be an absolute http(s) URL without a
// fragment that exactly matches one of allowed. With no allowed audiences
// every resource is rejected.
func ValidateResource(resource string, allowed []string) error {
	if resource == "" {
		return nil
	}

	u, err := url.Parse(resource)
	switch {
	case err != nil:
		return ErrInvalidTarget.WithHintf("Resource is not a valid URI: %v", err)
	case u.Scheme != "http" && u.Scheme != "https":
		return ErrInvalidTarget.WithHint("Resource must be an absolute http or https URI")
	case u.Host == "":
		return ErrInvalidTarget.WithHint("Resource must include a host")
	case u.Fragment != "":
		return ErrInvalidTarget.WithHint("Resource must not contain a fragment")
	}

	if !slices.Contains(allowed, resource) {
		return ErrInvalidTarget.WithHintf("Resource %q is not served by this authorization server", resource)
	}
	return nil
}

// RequestedResource returns the validated resource parameter of form, or ""
// when there is none. Requests naming more than one resource are rejected so
// that every token has a single audience.
func RequestedResource(form url.Values, allowed []string) (string, error) {
	resources := form["resource"]
	switch len(resources) {
	case 0:
		return "", nil
	case 1:
		return resources[0], ValidateResource(resources[0], allowed)
	}
	return "", ErrInvalidTarget.WithHint("Multiple resource parameters are not supported")
}
