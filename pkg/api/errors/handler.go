// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package errors turns handler errors into HTTP responses.
package errors

import (
	"errors"
	"net/http"

	"github.com/stacklok/toolhive-core/httperr"

	"github.com/stacklok/salla-mcp/pkg/logger"
)

// HandlerWithError is an http.HandlerFunc that reports failure by returning
// an error instead of writing a response.
type HandlerWithError func(http.ResponseWriter, *http.Request) error

// ResponseError writes its own response. Upstream failures that are
// relayed to the browser as received implement it.
type ResponseError interface {
	error
	WriteResponse(w http.ResponseWriter)
}

// ErrorHandler adapts fn to http.HandlerFunc. A returned ResponseError
// writes itself. Any other error becomes a plain-text response with the
// status from httperr.Code and the error text as body; 5xx errors are
// logged.
func ErrorHandler(fn HandlerWithError) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var respErr ResponseError
		if errors.As(err, &respErr) {
			logger.Debugw("relaying error response", "path", r.URL.Path, "error", err)
			respErr.WriteResponse(w)
			return
		}

		status := httperr.Code(err)
		if status >= http.StatusInternalServerError {
			logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
		}
		http.Error(w, err.Error(), status)
	}
}
