// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/salla"
)

func ordersList(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-orders-list",
			mcp.WithDescription("Get a list of orders from the Salla store. Filter by customer, date range, "+
				"status, payment method, location and more, e.g. 'recent orders' or 'pending orders'."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("page", mcp.Description("Page number for pagination (default: 1)")),
			mcp.WithString("keyword", mcp.Description("Search by customer mobile number, customer name, "+
				"shipping number, order reference ID or tag name")),
			mcp.WithArray("status", mcp.WithStringItems(),
				mcp.Description("Order status IDs to filter by, e.g. 'pending', 'shipped', 'delivered'")),
			mcp.WithString("from_date", mcp.Description("Orders created after this date (YYYY-MM-DD)")),
			mcp.WithString("to_date", mcp.Description("Orders created before this date (YYYY-MM-DD)")),
			mcp.WithNumber("customer_id", mcp.Description("Filter by customer ID")),
			mcp.WithNumber("reference_id", mcp.Description("Filter by the order reference ID customers see")),
			mcp.WithString("coupon", mcp.Description("Filter by discount code, e.g. 'SUMMER2024'")),
			mcp.WithString("city", mcp.Description("Filter by delivery city, e.g. 'riyadh'")),
			mcp.WithNumber("country", mcp.Description("Filter by country ID")),
			mcp.WithString("product", mcp.Description("Filter by product name")),
			mcp.WithArray("payment_method", mcp.WithStringItems(),
				mcp.Description("Payment methods, e.g. ['bank', 'visa', 'mastercard']")),
			mcp.WithArray("source", mcp.WithStringItems(),
				mcp.Description("Order sources, e.g. ['mobile', 'web', 'app']")),
			mcp.WithArray("selling_channel", mcp.WithStringItems(),
				mcp.Description("Selling channels: mobile, mobile-app, desktop, affiliate, mahly-app")),
			mcp.WithString("sort_by", mcp.Description("Sort attribute and direction"),
				mcp.Enum("id-asc", "id-desc", "total-asc", "total-desc",
					"updated_at-asc", "updated_at-desc", "created_at-asc", "created_at-desc")),
			mcp.WithBoolean("unread", mcp.Description("Only orders the merchant has not opened yet")),
			mcp.WithNumber("created_by", mcp.Description("Filter by the ID of the employee who created the order")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching orders"
			var args struct {
				Page           int      `json:"page"`
				Keyword        string   `json:"keyword"`
				Status         []string `json:"status"`
				FromDate       string   `json:"from_date"`
				ToDate         string   `json:"to_date"`
				CustomerID     int      `json:"customer_id"`
				ReferenceID    int      `json:"reference_id"`
				Coupon         string   `json:"coupon"`
				City           string   `json:"city"`
				Country        int      `json:"country"`
				Product        string   `json:"product"`
				PaymentMethod  []string `json:"payment_method"`
				Source         []string `json:"source"`
				SellingChannel []string `json:"selling_channel"`
				SortBy         string   `json:"sort_by"`
				Unread         *bool    `json:"unread"`
				CreatedBy      int      `json:"created_by"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}

			raw, err := client.ListOrders(ctx, props.AccessToken, salla.OrderListParams{
				Page:           args.Page,
				Keyword:        args.Keyword,
				Status:         args.Status,
				FromDate:       args.FromDate,
				ToDate:         args.ToDate,
				CustomerID:     args.CustomerID,
				ReferenceID:    args.ReferenceID,
				Coupon:         args.Coupon,
				City:           args.City,
				Country:        args.Country,
				Product:        args.Product,
				PaymentMethod:  args.PaymentMethod,
				Source:         args.Source,
				SellingChannel: args.SellingChannel,
				SortBy:         args.SortBy,
				Unread:         args.Unread,
				CreatedBy:      args.CreatedBy,
			})
			return respond("Successfully retrieved orders", verb, raw, err), nil
		},
	}
}

func orderDetails(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-order-details",
			mcp.WithDescription("Get full details of a specific order: customer, items, shipping and payment."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("order_id", mcp.Required(), mcp.Description("The Salla order ID, e.g. '1017120475'")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching order"
			var args struct {
				OrderID string `json:"order_id"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}
			if args.OrderID == "" {
				return required(verb, "order_id"), nil
			}

			raw, err := client.GetOrder(ctx, props.AccessToken, args.OrderID)
			return respond("Order details", verb, raw, err), nil
		},
	}
}

func orderStatusUpdate(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-order-status-update",
			mcp.WithDescription("Update the status of an order, e.g. mark it shipped, delivered or cancelled. "+
				"Only valid Salla status values are accepted."),
			mcp.WithString("order_id", mcp.Required(), mcp.Description("The Salla order ID, e.g. '1017120475'")),
			mcp.WithString("status", mcp.Required(), mcp.Description("The new status, e.g. 'pending', "+
				"'under_review', 'in_progress', 'shipped', 'delivered', 'cancelled'")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "updating order status"
			var args struct {
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}
			if args.OrderID == "" {
				return required(verb, "order_id"), nil
			}
			if args.Status == "" {
				return required(verb, "status"), nil
			}

			raw, err := client.UpdateOrderStatus(ctx, props.AccessToken, args.OrderID, args.Status)
			label := fmt.Sprintf("Successfully updated order %s status to %s", args.OrderID, args.Status)
			return respond(label, verb, raw, err), nil
		},
	}
}
