// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stacklok/salla-mcp/pkg/authserver/server/session"
	"github.com/stacklok/salla-mcp/pkg/salla"
)

// report is a parameterless Salla report endpoint.
type report func(client salla.Client, ctx context.Context, accessToken string) (json.RawMessage, error)

func reportTool(client salla.Client, name, description, label, verb string, fetch report) Tool {
	return Tool{
		Definition: mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		Handler: func(ctx context.Context, _ mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			raw, err := fetch(client, ctx, props.AccessToken)
			return respond(label, verb, raw, err), nil
		},
	}
}

func abandonedCarts(client salla.Client) Tool {
	return reportTool(client, "salla-abandoned-carts",
		"Get a report of abandoned carts from the Salla store.",
		"Abandoned carts report", "fetching abandoned carts",
		salla.Client.AbandonedCarts)
}

func hourlyVisitors(client salla.Client) Tool {
	return reportTool(client, "salla-hourly-visitors",
		"Get the hourly visitors report of the Salla store.",
		"Hourly visitors report", "fetching hourly visitors",
		salla.Client.HourlyVisitors)
}

func latestOrders(client salla.Client) Tool {
	return reportTool(client, "salla-latest-orders",
		"Get the latest orders report of the Salla store.",
		"Latest orders report", "fetching latest orders",
		salla.Client.LatestOrders)
}

func generalStatistics(client salla.Client) Tool {
	return reportTool(client, "salla-general-statistics",
		"Get the general statistics report of the Salla store.",
		"General statistics report", "fetching general statistics",
		salla.Client.GeneralStatistics)
}

func summaryReport(client salla.Client) Tool {
	return Tool{
		Definition: mcp.NewTool("salla-summary-report",
			mcp.WithDescription("Get a summary report from the Salla store. Only the 'monthly' period is supported."),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithString("period", mcp.Enum("monthly"), mcp.Description("Report period (only 'monthly')")),
		),
		Handler: func(ctx context.Context, request mcp.CallToolRequest, props *session.Props) (*mcp.CallToolResult, error) {
			const verb = "fetching summary report"
			var args struct {
				Period string `json:"period"`
			}
			if res := bindArgs(request, verb, &args); res != nil {
				return res, nil
			}

			raw, err := client.SummaryReport(ctx, props.AccessToken, args.Period)
			return respond("Summary report", verb, raw, err), nil
		},
	}
}
