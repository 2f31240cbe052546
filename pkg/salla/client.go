// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package salla is a client for the Salla merchant admin REST API.
package salla

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks -source=client.go Client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/networking"
	"github.com/stacklok/salla-mcp/pkg/versions"
)

const (
	// DefaultBaseURL is the Salla admin API base URL.
	DefaultBaseURL = "https://api.salla.dev/admin/v2"

	// maxResponseSize bounds list responses, which are larger than typical API payloads.
	maxResponseSize = 10 * 1024 * 1024
)

// Client is the subset of the Salla admin API exposed as MCP tools.
// Every call is made on behalf of the merchant owning accessToken and
// returns the raw JSON document Salla sent back.
type Client interface {
	ListOrders(ctx context.Context, accessToken string, params OrderListParams) (json.RawMessage, error)
	GetOrder(ctx context.Context, accessToken, orderID string) (json.RawMessage, error)
	UpdateOrderStatus(ctx context.Context, accessToken, orderID, status string) (json.RawMessage, error)

	ListProducts(ctx context.Context, accessToken string, params ProductListParams) (json.RawMessage, error)
	GetProduct(ctx context.Context, accessToken, productID string) (json.RawMessage, error)
	CreateProduct(ctx context.Context, accessToken string, product ProductInput) (json.RawMessage, error)
	UpdateProduct(ctx context.Context, accessToken, productID string, product ProductInput) (json.RawMessage, error)

	ListCustomers(ctx context.Context, accessToken string, params CustomerListParams) (json.RawMessage, error)
	GetCustomer(ctx context.Context, accessToken, customerID string) (json.RawMessage, error)

	ListCategories(ctx context.Context, accessToken string) (json.RawMessage, error)
	GetCategory(ctx context.Context, accessToken, categoryID string) (json.RawMessage, error)
	GetStoreInfo(ctx context.Context, accessToken string) (json.RawMessage, error)
	ListBrands(ctx context.Context, accessToken string, params BrandListParams) (json.RawMessage, error)

	AbandonedCarts(ctx context.Context, accessToken string) (json.RawMessage, error)
	HourlyVisitors(ctx context.Context, accessToken string) (json.RawMessage, error)
	SummaryReport(ctx context.Context, accessToken, period string) (json.RawMessage, error)
	LatestOrders(ctx context.Context, accessToken string) (json.RawMessage, error)
	GeneralStatistics(ctx context.Context, accessToken string) (json.RawMessage, error)
}

// APIError is a non-2xx response from the Salla API.
type APIError struct {
	*networking.HTTPError
}

// Error renders the status line and the response body for the user.
func (e *APIError) Error() string {
	return fmt.Sprintf("Salla API Error: %s - %s", e.Status, e.Body)
}

// Unwrap exposes the underlying HTTPError to networking.IsHTTPError.
func (e *APIError) Unwrap() error {
	return e.HTTPError
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient networking.HTTPClient
}

var _ Client = (*HTTPClient)(nil)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client networking.HTTPClient) Option {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewClient creates a client for the API at baseURL. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListOrders implements Client.
func (c *HTTPClient) ListOrders(ctx context.Context, accessToken string, params OrderListParams) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/orders", params.query())
}

// GetOrder implements Client.
func (c *HTTPClient) GetOrder(ctx context.Context, accessToken, orderID string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/orders/"+url.PathEscape(orderID), nil)
}

// UpdateOrderStatus implements Client.
func (c *HTTPClient) UpdateOrderStatus(ctx context.Context, accessToken, orderID, status string) (json.RawMessage, error) {
	body := map[string]string{"status": status}
	return c.send(ctx, accessToken, http.MethodPut, "/orders/"+url.PathEscape(orderID)+"/status", body)
}

// ListProducts implements Client.
func (c *HTTPClient) ListProducts(ctx context.Context, accessToken string, params ProductListParams) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/products", params.query())
}

// GetProduct implements Client.
func (c *HTTPClient) GetProduct(ctx context.Context, accessToken, productID string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/products/"+url.PathEscape(productID), nil)
}

// CreateProduct implements Client.
func (c *HTTPClient) CreateProduct(ctx context.Context, accessToken string, product ProductInput) (json.RawMessage, error) {
	return c.send(ctx, accessToken, http.MethodPost, "/products", product)
}

// UpdateProduct implements Client.
func (c *HTTPClient) UpdateProduct(
	ctx context.Context, accessToken, productID string, product ProductInput,
) (json.RawMessage, error) {
	return c.send(ctx, accessToken, http.MethodPut, "/products/"+url.PathEscape(productID), product)
}

// ListCustomers implements Client.
func (c *HTTPClient) ListCustomers(ctx context.Context, accessToken string, params CustomerListParams) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/customers", params.query())
}

// GetCustomer implements Client.
func (c *HTTPClient) GetCustomer(ctx context.Context, accessToken, customerID string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/customers/"+url.PathEscape(customerID), nil)
}

// ListCategories implements Client.
func (c *HTTPClient) ListCategories(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/categories", nil)
}

// GetCategory implements Client.
func (c *HTTPClient) GetCategory(ctx context.Context, accessToken, categoryID string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/categories/"+url.PathEscape(categoryID), nil)
}

// GetStoreInfo implements Client.
func (c *HTTPClient) GetStoreInfo(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/store/info", nil)
}

// ListBrands implements Client.
func (c *HTTPClient) ListBrands(ctx context.Context, accessToken string, params BrandListParams) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/brands", params.query())
}

// AbandonedCarts implements Client.
func (c *HTTPClient) AbandonedCarts(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/reports/abandoned-carts", nil)
}

// HourlyVisitors implements Client.
func (c *HTTPClient) HourlyVisitors(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/reports/hourly-visitors", nil)
}

// SummaryReport implements Client. Salla spells the endpoint "summery".
func (c *HTTPClient) SummaryReport(ctx context.Context, accessToken, period string) (json.RawMessage, error) {
	query := url.Values{}
	if period != "" {
		query.Set("period", period)
	}
	return c.get(ctx, accessToken, "/reports/summery", query)
}

// LatestOrders implements Client.
func (c *HTTPClient) LatestOrders(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/reports/latest-orders", nil)
}

// GeneralStatistics implements Client.
func (c *HTTPClient) GeneralStatistics(ctx context.Context, accessToken string) (json.RawMessage, error) {
	return c.get(ctx, accessToken, "/reports/general-statistics", nil)
}

func (c *HTTPClient) get(ctx context.Context, accessToken, path string, query url.Values) (json.RawMessage, error) {
	target := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return c.do(ctx, accessToken, target)
}

func (c *HTTPClient) send(ctx context.Context, accessToken, method, path string, body any) (json.RawMessage, error) {
	return c.do(ctx, accessToken, c.baseURL+path,
		networking.WithMethod(method),
		networking.WithJSONBody(body),
	)
}

func (c *HTTPClient) do(ctx context.Context, accessToken, target string, opts ...networking.FetchOption) (json.RawMessage, error) {
	opts = append([]networking.FetchOption{
		networking.WithBearerToken(accessToken),
		networking.WithHeader("Content-Type", networking.ContentTypeJSON),
		networking.WithHeader("User-Agent", versions.UserAgent()),
		networking.WithMaxResponseSize(maxResponseSize),
		networking.WithErrorHandler(func(resp *http.Response, body []byte) error {
			return &APIError{HTTPError: &networking.HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(body),
				URL:        target,
			}}
		}),
	}, opts...)

	result, err := networking.FetchJSON[json.RawMessage](ctx, c.httpClient, target, opts...)
	if err != nil {
		logger.Debugw("salla API request failed", "url", target, "error", err)
		return nil, err
	}
	return result.Data, nil
}
