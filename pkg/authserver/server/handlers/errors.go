// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-core/httperr"
)

// ErrInvalidRequest is returned when the downstream request is missing or malformed.
var ErrInvalidRequest = httperr.WithCode(errors.New("invalid request"), http.StatusBadRequest)

// invalidRequest wraps ErrInvalidRequest with a detail message for the user.
func invalidRequest(format string, args ...any) error {
	return httperr.WithCode(
		fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...)),
		http.StatusBadRequest,
	)
}
