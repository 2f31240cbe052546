// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/stacklok/salla-mcp/pkg/logger"
	"github.com/stacklok/salla-mcp/pkg/versions"
)

const homepageDescription = "Connect to your Salla store to manage products, orders, customers, " +
	"and analytics through AI assistants."

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type homepage struct {
	Name          string
	Description   string
	Logo          string
	Version       string
	StreamableURL string
	SSEURL        string
	Tools         []string
}

// HomepageHandler describes the server and how to connect to it.
func (s *Server) HomepageHandler(w http.ResponseWriter, _ *http.Request) {
	page := homepage{
		Name:          ServerName + " MCP Server",
		Description:   homepageDescription,
		Logo:          "https://accounts.salla.sa/./accounts/images/salla-smile.svg",
		Version:       versions.GetVersionInfo().Version,
		StreamableURL: s.config.Issuer + StreamablePath,
		SSEURL:        s.config.Issuer + SSEPath,
	}
	for _, tool := range s.config.Tools.Tools() {
		page.Tools = append(page.Tools, tool.Definition.Name)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		logger.Errorw("failed to render homepage", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
