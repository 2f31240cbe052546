// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/salla"
)

func storeInfo(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-store-info",
			mcp.WithDescription("Get information about the Salla store, including its name, settings and configuration."),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		Handler: func(ctx context.Context, _ mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			raw, err := client.GetStoreInfo(ctx, props.AccessToken)
			return respond("Store information", "fetching store info", raw, err), nil
		},
	}
}

func categoriesList(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-categories-list",
			mcp.WithDescription("Get the product categories of the Salla store."),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		Handler: func(ctx context.Context, _ mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			raw, err := client.ListCategories(ctx, props.AccessToken)
			return respond("Categories", "fetching categories", raw, err), nil
		},
	}
}

func categoryDetails(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-category-details",
			mcp.WithDescription("Get detailed information about a specific category by its ID."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("category_id", mcp.Required(), mcp.Description("The ID of the category to retrieve")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching category"
			var args struct {
				CategoryID string `json:"category_id"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}
			if args.CategoryID == "" {
				return required(verb, "category_id"), nil
			}

			raw, err := client.GetCategory(ctx, props.AccessToken, args.CategoryID)
			return respond("Category details", verb, raw, err), nil
		},
	}
}

func brandsList(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-brands-list",
			mcp.WithDescription("Get a list of brands from the Salla store."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
			mcp.WithNumber("per_page", mcp.Description("Brands per page (default: 15, max: 50)")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching brands"
			var args struct {
				Page    int `json:"page"`
				PerPage int `json:"per_page"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}

			raw, err := client.ListBrands(ctx, props.AccessToken, salla.BrandListParams(args))
			return respond("Brands", verb, raw, err), nil
		},
	}
}
