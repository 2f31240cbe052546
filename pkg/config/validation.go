// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	neturl "net/url"
	"os"

	"github.com/stacklok/salla-mcp/pkg/networking"
)

// Error message templates for consistent error formatting
const (
	errFileNotFound     = "file not found or not accessible: %w"
	errInvalidURL       = "invalid URL format: %w"
	errInvalidURLScheme = "URL must start with %s://"
)

// validateFileExists checks if a file exists and is accessible.
func validateFileExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf(errFileNotFound, err)
	}
	return nil
}

// validateURLScheme validates that a URL has the correct scheme (http or https).
// If allowInsecure is false, only https is allowed.
// If allowInsecure is true, both http and https are allowed.
func validateURLScheme(rawURL string, allowInsecure bool) (*neturl.URL, error) {
	parsedURL, err := neturl.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf(errInvalidURL, err)
	}

	if allowInsecure {
		if parsedURL.Scheme != networking.HttpScheme && parsedURL.Scheme != networking.HttpsScheme {
			return nil, errors.New("URL must start with http:// or https://")
		}
	} else if parsedURL.Scheme != networking.HttpsScheme {
		return nil, fmt.Errorf(errInvalidURLScheme, networking.HttpsScheme)
	}

	if parsedURL.Host == "" {
		return nil, errors.New("URL must include a host")
	}
	return parsedURL, nil
}
