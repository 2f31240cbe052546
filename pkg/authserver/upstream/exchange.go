// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/stacklok/salla-mcp/pkg/networking"
)

// ExchangeRequest holds the parameters of one authorization-code exchange.
type ExchangeRequest struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Code         string
	RedirectURI  string
}

// ExchangeError is a non-2xx answer from the upstream token endpoint.
// It is relayed to the user agent unchanged.
type ExchangeError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Error implements error. The body is left out because it may echo request data.
func (e *ExchangeError) Error() string {
	return fmt.Sprintf("upstream token endpoint returned status %d", e.StatusCode)
}

// Unwrap allows errors.Is(err, ErrExchangeFailed).
func (*ExchangeError) Unwrap() error {
	return ErrExchangeFailed
}

// WriteResponse writes the upstream status and body verbatim.
func (e *ExchangeError) WriteResponse(w http.ResponseWriter) {
	contentType := e.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(e.Body)))
	w.WriteHeader(e.StatusCode)
	_, _ = w.Write(e.Body)
}

// Exchange trades an upstream authorization code for an access token with a
// single form POST. It never retries: the code is single use.
func Exchange(ctx context.Context, client networking.HTTPClient, req ExchangeRequest) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {req.ClientID},
		"client_secret": {req.ClientSecret},
		"code":          {req.Code},
		"redirect_uri":  {req.RedirectURI},
	}

	result, err := networking.FetchJSONWithForm[json.RawMessage](ctx, client, req.TokenURL, form,
		networking.WithMaxResponseSize(maxResponseSize),
		networking.WithErrorHandler(func(resp *http.Response, body []byte) error {
			return &ExchangeError{
				StatusCode:  resp.StatusCode,
				ContentType: resp.Header.Get("Content-Type"),
				Body:        body,
			}
		}),
	)
	if err != nil {
		var exchangeErr *ExchangeError
		if errors.As(err, &exchangeErr) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	accessToken := gjson.GetBytes(result.Data, "access_token").String()
	if accessToken == "" {
		return "", fmt.Errorf("%w: response did not include an access_token", ErrExchangeFailed)
	}
	return accessToken, nil
}
