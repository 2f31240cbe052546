// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/salla"
)

// productArgs are the writable product fields shared by create and update.
type productArgs struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	SalePrice   *float64 `json:"sale_price"`
	SKU         string   `json:"sku"`
	Quantity    *int     `json:"quantity"`
	Status      string   `json:"status"`
}

func (a productArgs) input() salla.ProductInput {
	return salla.ProductInput{
		Name:        a.Name,
		Description: a.Description,
		Price:       a.Price,
		SalePrice:   a.SalePrice,
		SKU:         a.SKU,
		Quantity:    a.Quantity,
		Status:      a.Status,
	}
}

func productFieldOptions(nameRequired bool) []mcp.ToolOption {
	nameOpts := []mcp.PropertyOption{mcp.Description("Product name")}
	priceOpts := []mcp.PropertyOption{mcp.Description("Product price")}
	if nameRequired {
		nameOpts = append(nameOpts, mcp.Required())
		priceOpts = append(priceOpts, mcp.Required())
	}
	return []mcp.ToolOption{
		mcp.WithString("name", nameOpts...),
		mcp.WithString("description", mcp.Description("Product description")),
		mcp.WithNumber("price", priceOpts...),
		mcp.WithNumber("sale_price", mcp.Description("Sale price, if on sale")),
		mcp.WithString("sku", mcp.Description("Product SKU")),
		mcp.WithNumber("quantity", mcp.Description("Available quantity")),
		mcp.WithString("status", mcp.Description("Product status, e.g. 'active', 'out-of-stock', 'hidden'")),
	}
}

func productsList(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-products-list",
			mcp.WithDescription("Get a list of products from the Salla store, with search, status and category filters."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
			mcp.WithString("keyword", mcp.Description("Search products by name or SKU")),
			mcp.WithString("status", mcp.Enum("hidden", "sale", "out"),
				mcp.Description("'hidden' (not visible), 'sale' (discounted) or 'out' (out of stock)")),
			mcp.WithString("category", mcp.Description("Category name or ID")),
			mcp.WithNumber("per_page", mcp.Description("Products per page (default: 15, max: 50)")),
			mcp.WithString("format", mcp.Enum("light"), mcp.Description("'light' returns simplified product data")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching products"
			var args struct {
				Page     int    `json:"page"`
				Keyword  string `json:"keyword"`
				Status   string `json:"status"`
				Category string `json:"category"`
				PerPage  int    `json:"per_page"`
				Format   string `json:"format"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}

			raw, err := client.ListProducts(ctx, props.AccessToken, salla.ProductListParams(args))
			return respond("Successfully retrieved products", verb, raw, err), nil
		},
	}
}

func productDetails(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-product-details",
			mcp.WithDescription("Get detailed information about a specific product by its ID."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("product_id", mcp.Required(), mcp.Description("The ID of the product to retrieve")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching product"
			var args struct {
				ProductID string `json:"product_id"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}
			if args.ProductID == "" {
				return required(verb, "product_id"), nil
			}

			raw, err := client.GetProduct(ctx, props.AccessToken, args.ProductID)
			return respond("Product details", verb, raw, err), nil
		},
	}
}

func productCreate(client salla.Client) Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Create a new product in the Salla store."),
	}, productFieldOptions(true)...)

	return Tool{
		Definition: mcp.NewTool("salla-product-create", opts...),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "creating product"
			var args productArgs
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}
			if args.Name == "" {
				return required(verb, "name"), nil
			}
			if args.Price == nil {
				return required(verb, "price"), nil
			}

			raw, err := client.CreateProduct(ctx, props.AccessToken, args.input())
			return respond("Successfully created product", verb, raw, err), nil
		},
	}
}

func productUpdate(client salla.Client) Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Update an existing product in the Salla store. Only the given fields change."),
		mcp.WithString("product_id", mcp.Required(), mcp.Description("The ID of the product to update")),
	}, productFieldOptions(false)...)

	return Tool{
		Definition: mcp.NewTool("salla-product-update", opts...),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "updating product"
			var args struct {
				ProductID string `json:"product_id"`
				productArgs
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}
			if args.ProductID == "" {
				return required(verb, "product_id"), nil
			}

			raw, err := client.UpdateProduct(ctx, props.AccessToken, args.ProductID, args.input())
			return respond("Successfully updated product", verb, raw, err), nil
		},
	}
}
