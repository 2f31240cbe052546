// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/salla"
)

func customersList(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-customers-list",
			mcp.WithDescription("Get a list of customers from the Salla store. Search by name or mobile and paginate."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
			mcp.WithString("keyword", mcp.Description("Filter customers by mobile number, name, shipping number, "+
				"reference ID or tag name")),
			mcp.WithString("date_from", mcp.Description("Customers created after this date (YYYY-MM-DD)")),
			mcp.WithString("date_to", mcp.Description("Customers created before this date (YYYY-MM-DD)")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching customers"
			var args struct {
				Page     int    `json:"page"`
				Keyword  string `json:"keyword"`
				DateFrom string `json:"date_from"`
				DateTo   string `json:"date_to"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}

			raw, err := client.ListCustomers(ctx, props.AccessToken, salla.CustomerListParams(args))
			return respond("Successfully retrieved customers", verb, raw, err), nil
		},
	}
}

func customerDetails(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-customer-details",
			mcp.WithDescription("Get detailed information about a specific customer by their ID."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("customer_id", mcp.Required(), mcp.Description("The ID of the customer to retrieve")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching customer"
			var args struct {
				CustomerID string `json:"customer_id"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}
			if args.CustomerID == "" {
				return required(verb, "customer_id"), nil
			}

			raw, err := client.GetCustomer(ctx, props.AccessToken, args.CustomerID)
			return respond("Customer details", verb, raw, err), nil
		},
	}
}
