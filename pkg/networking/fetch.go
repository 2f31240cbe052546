// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	// DefaultMaxResponseSize caps how much of a response body is read (1MB).
	DefaultMaxResponseSize = 1 << 20

	// DefaultErrorPreviewSize caps HTTPError.Body.
	DefaultErrorPreviewSize = 1 << 10

	// ContentTypeJSON is the JSON media type.
	ContentTypeJSON = "application/json"

	// ContentTypeFormURLEncoded is the form media type.
	ContentTypeFormURLEncoded = "application/x-www-form-urlencoded"
)

// FetchResult is a decoded 2xx response.
type FetchResult[T any] struct {
	Data       T
	StatusCode int
	Headers    http.Header
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int

	// Status is the status line text, e.g. "404 Not Found".
	Status string

	// Body holds at most DefaultErrorPreviewSize bytes of the response body.
	Body string

	URL string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request to %s failed: %s", e.URL, e.Status)
}

// IsHTTPError reports whether err wraps an HTTPError with the given status.
// A zero statusCode matches any HTTPError.
func IsHTTPError(err error, statusCode int) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return statusCode == 0 || httpErr.StatusCode == statusCode
}

// FetchOption customizes a FetchJSON call.
type FetchOption func(*fetchRequest)

type fetchRequest struct {
	method       string
	header       http.Header
	body         io.Reader
	bodyErr      error
	limit        int64
	errorHandler func(*http.Response, []byte) error
}

// WithMethod overrides the default GET.
func WithMethod(method string) FetchOption {
	return func(r *fetchRequest) { r.method = method }
}

// WithHeader sets a request header.
func WithHeader(key, value string) FetchOption {
	return func(r *fetchRequest) { r.header.Set(key, value) }
}

// WithBody sets the raw request body.
func WithBody(body io.Reader) FetchOption {
	return func(r *fetchRequest) { r.body = body }
}

// WithJSONBody encodes v as the request body. An encoding failure is
// returned by FetchJSON before anything is sent.
func WithJSONBody(v any) FetchOption {
	return func(r *fetchRequest) {
		data, err := json.Marshal(v)
		if err != nil {
			r.bodyErr = fmt.Errorf("failed to marshal request body: %w", err)
			return
		}
		r.body = bytes.NewReader(data)
		r.header.Set("Content-Type", ContentTypeJSON)
	}
}

// WithBearerToken authenticates the request with token.
func WithBearerToken(token string) FetchOption {
	return func(r *fetchRequest) { r.header.Set("Authorization", "Bearer "+token) }
}

// WithMaxResponseSize overrides DefaultMaxResponseSize.
func WithMaxResponseSize(size int64) FetchOption {
	return func(r *fetchRequest) { r.limit = size }
}

// WithErrorHandler converts non-2xx responses into a caller specific error.
// When the handler returns nil an HTTPError is returned instead.
func WithErrorHandler(handler func(*http.Response, []byte) error) FetchOption {
	return func(r *fetchRequest) { r.errorHandler = handler }
}

// FetchJSON sends a request and decodes a 2xx JSON body into T. The
// response Content-Type is not checked since upstream APIs are loose about it.
func FetchJSON[T any](ctx context.Context, client HTTPClient, requestURL string, opts ...FetchOption) (*FetchResult[T], error) {
	fr := &fetchRequest{
		method: http.MethodGet,
		header: http.Header{"Accept": {ContentTypeJSON}},
		limit:  DefaultMaxResponseSize,
	}
	for _, opt := range opts {
		opt(fr)
	}
	if fr.bodyErr != nil {
		return nil, fr.bodyErr
	}

	req, err := http.NewRequestWithContext(ctx, fr.method, requestURL, fr.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = fr.header

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, fr.limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if fr.errorHandler != nil {
			if err := fr.errorHandler(resp, body); err != nil {
				return nil, err
			}
		}
		return nil, newHTTPError(resp, body, requestURL)
	}

	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return &FetchResult[T]{Data: data, StatusCode: resp.StatusCode, Headers: resp.Header}, nil
}

// newHTTPError builds the HTTPError for a non-2xx response.
func newHTTPError(resp *http.Response, body []byte, requestURL string) *HTTPError {
	if len(body) > DefaultErrorPreviewSize {
		body = body[:DefaultErrorPreviewSize]
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
		URL:        requestURL,
	}
}

// FetchJSONWithForm POSTs form as application/x-www-form-urlencoded and
// decodes the JSON response. Later opts override the form defaults.
func FetchJSONWithForm[T any](
	ctx context.Context,
	client HTTPClient,
	requestURL string,
	form url.Values,
	opts ...FetchOption,
) (*FetchResult[T], error) {
	return FetchJSON[T](ctx, client, requestURL, append([]FetchOption{
		WithMethod(http.MethodPost),
		WithHeader("Content-Type", ContentTypeFormURLEncoded),
		WithBody(strings.NewReader(form.Encode())),
	}, opts...)...)
}
