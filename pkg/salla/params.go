// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package salla

import (
	"net/url"
	"strconv"
)

// OrderListParams filters GET /orders. Zero values are left out of the query.
type OrderListParams struct {
	Page               int
	Keyword            string
	PaymentMethod      []string
	Status             []string
	FromDate           string
	ToDate             string
	Country            int
	City               string
	Product            string
	Branch             []string
	Tags               []string
	ReferenceID        int
	Coupon             string
	CustomerID         int
	ShippingAppID      []string
	Source             []string
	SortBy             string
	AccountingServices string
	Unread             *bool
	AssignEmployee     []string
	SellingChannel     []string
	CreatedBy          int
}

func (p OrderListParams) query() url.Values {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setString(q, "keyword", p.Keyword)
	setList(q, "payment_method", p.PaymentMethod)
	setList(q, "status", p.Status)
	setString(q, "from_date", p.FromDate)
	setString(q, "to_date", p.ToDate)
	setInt(q, "country", p.Country)
	setString(q, "city", p.City)
	setString(q, "product", p.Product)
	setList(q, "branch", p.Branch)
	setList(q, "tags", p.Tags)
	setInt(q, "reference_id", p.ReferenceID)
	setString(q, "coupon", p.Coupon)
	setInt(q, "customer_id", p.CustomerID)
	setList(q, "shipping_app_id", p.ShippingAppID)
	setList(q, "source", p.Source)
	setString(q, "sort_by", p.SortBy)
	setString(q, "accounting_services", p.AccountingServices)
	if p.Unread != nil {
		q.Set("unread", strconv.FormatBool(*p.Unread))
	}
	setList(q, "assign_employee", p.AssignEmployee)
	setList(q, "selling_channel", p.SellingChannel)
	setInt(q, "created_by", p.CreatedBy)
	return q
}

// ProductListParams filters GET /products.
type ProductListParams struct {
	Page     int
	Keyword  string
	Status   string
	Category string
	PerPage  int
	Format   string
}

func (p ProductListParams) query() url.Values {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setString(q, "keyword", p.Keyword)
	setString(q, "status", p.Status)
	setString(q, "category", p.Category)
	setInt(q, "per_page", p.PerPage)
	setString(q, "format", p.Format)
	return q
}

// CustomerListParams filters GET /customers.
type CustomerListParams struct {
	Page     int
	Keyword  string
	DateFrom string
	DateTo   string
}

func (p CustomerListParams) query() url.Values {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setString(q, "keyword", p.Keyword)
	setString(q, "date_from", p.DateFrom)
	setString(q, "date_to", p.DateTo)
	return q
}

// BrandListParams paginates GET /brands.
type BrandListParams struct {
	Page    int
	PerPage int
}

func (p BrandListParams) query() url.Values {
	q := url.Values{}
	setInt(q, "page", p.Page)
	setInt(q, "per_page", p.PerPage)
	return q
}

// ProductInput is the body of product create and update calls.
// Unset fields are omitted so an update only touches what was given.
type ProductInput struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	SalePrice   *float64 `json:"sale_price,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	Status      string   `json:"status,omitempty"`
}

func setString(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int) {
	if value != 0 {
		q.Set(key, strconv.Itoa(value))
	}
}

// setList repeats the values under key[], the array form Salla expects.
func setList(q url.Values, key string, values []string) {
	for _, v := range values {
		q.Add(key+"[]", v)
	}
}
