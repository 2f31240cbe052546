// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package oauth provides shared RFC-defined types and constants for OAuth 2.0
// discovery: authorization server metadata (RFC 8414) and protected resource
// metadata (RFC 9728).
package oauth
