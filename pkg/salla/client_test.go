// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package salla

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/salla-mcp/pkg/networking"
)

type recordedRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

func newTestServer(t *testing.T, status int, response string) (*HTTPClient, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		recorded.method = r.Method
		recorded.path = r.URL.Path
		recorded.query = r.URL.Query()
		recorded.header = r.Header.Clone()
		recorded.body = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/admin/v2/", WithHTTPClient(srv.Client())), recorded
}

func TestHTTPClient_Endpoints(t *testing.T) {
	t.Parallel()

	unread := false
	price := 99.5
	quantity := 3

	tests := []struct {
		name       string
		call       func(c *HTTPClient) (json.RawMessage, error)
		wantMethod string
		wantPath   string
		wantQuery  url.Values
		wantBody   string
	}{
		{
			name: "list orders with filters",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.ListOrders(context.Background(), "tok", OrderListParams{
					Page:           2,
					Keyword:        "966511804534",
					Status:         []string{"pending", "shipped"},
					CustomerID:     42,
					Unread:         &unread,
					SellingChannel: []string{"mobile"},
				})
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/orders",
			wantQuery: url.Values{
				"page":              {"2"},
				"keyword":           {"966511804534"},
				"status[]":          {"pending", "shipped"},
				"customer_id":       {"42"},
				"unread":            {"false"},
				"selling_channel[]": {"mobile"},
			},
		},
		{
			name: "get order",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.GetOrder(context.Background(), "tok", "1017120475")
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/orders/1017120475",
			wantQuery:  url.Values{},
		},
		{
			name: "update order status",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.UpdateOrderStatus(context.Background(), "tok", "55", "shipped")
			},
			wantMethod: http.MethodPut,
			wantPath:   "/admin/v2/orders/55/status",
			wantQuery:  url.Values{},
			wantBody:   `{"status":"shipped"}`,
		},
		{
			name: "list products",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.ListProducts(context.Background(), "tok", ProductListParams{Status: "hidden", PerPage: 50, Format: "light"})
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/products",
			wantQuery:  url.Values{"status": {"hidden"}, "per_page": {"50"}, "format": {"light"}},
		},
		{
			name: "create product",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.CreateProduct(context.Background(), "tok", ProductInput{Name: "Mug", Price: &price, Quantity: &quantity})
			},
			wantMethod: http.MethodPost,
			wantPath:   "/admin/v2/products",
			wantQuery:  url.Values{},
			wantBody:   `{"name":"Mug","price":99.5,"quantity":3}`,
		},
		{
			name: "update product",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.UpdateProduct(context.Background(), "tok", "9", ProductInput{Status: "hidden"})
			},
			wantMethod: http.MethodPut,
			wantPath:   "/admin/v2/products/9",
			wantQuery:  url.Values{},
			wantBody:   `{"status":"hidden"}`,
		},
		{
			name: "list customers",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.ListCustomers(context.Background(), "tok", CustomerListParams{DateFrom: "2024-01-01"})
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/customers",
			wantQuery:  url.Values{"date_from": {"2024-01-01"}},
		},
		{
			name: "category path is escaped",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.GetCategory(context.Background(), "tok", "a/b")
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/categories/a/b",
			wantQuery:  url.Values{},
		},
		{
			name: "store info",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.GetStoreInfo(context.Background(), "tok")
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/store/info",
			wantQuery:  url.Values{},
		},
		{
			name: "brands",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.ListBrands(context.Background(), "tok", BrandListParams{Page: 3})
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/brands",
			wantQuery:  url.Values{"page": {"3"}},
		},
		{
			name: "summary report",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.SummaryReport(context.Background(), "tok", "monthly")
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/reports/summery",
			wantQuery:  url.Values{"period": {"monthly"}},
		},
		{
			name: "general statistics",
			call: func(c *HTTPClient) (json.RawMessage, error) {
				return c.GeneralStatistics(context.Background(), "tok")
			},
			wantMethod: http.MethodGet,
			wantPath:   "/admin/v2/reports/general-statistics",
			wantQuery:  url.Values{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, recorded := newTestServer(t, http.StatusOK, `{"status":200,"success":true,"data":[]}`)

			got, err := tt.call(client)
			require.NoError(t, err)
			assert.JSONEq(t, `{"status":200,"success":true,"data":[]}`, string(got))

			assert.Equal(t, tt.wantMethod, recorded.method)
			assert.Equal(t, tt.wantPath, recorded.path)
			assert.Equal(t, tt.wantQuery, recorded.query)
			assert.Equal(t, "Bearer tok", recorded.header.Get("Authorization"))
			assert.Equal(t, "application/json", recorded.header.Get("Accept"))
			assert.Equal(t, "application/json", recorded.header.Get("Content-Type"))
			assert.Contains(t, recorded.header.Get("User-Agent"), "salla-mcp/")
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, recorded.body)
			}
		})
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	t.Parallel()

	client, _ := newTestServer(t, http.StatusUnauthorized, `{"error":{"message":"Unauthenticated"}}`)

	_, err := client.GetStoreInfo(context.Background(), "expired")
	require.Error(t, err)

	assert.Equal(t, `Salla API Error: 401 Unauthorized - {"error":{"message":"Unauthenticated"}}`, err.Error())
	assert.True(t, networking.IsHTTPError(err, http.StatusUnauthorized))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	t.Parallel()

	c := NewClient("")
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}

func TestOrderListParams_EmptyQuery(t *testing.T) {
	t.Parallel()

	assert.Empty(t, OrderListParams{}.query().Encode())
}
