// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package consent

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// ServerInfo describes this server on the approval dialog.
type ServerInfo struct {
	Name        string
	Logo        string
	Description string
}

// ClientInfo is the registered client metadata shown on the approval dialog.
type ClientInfo struct {
	ID           string
	Name         string
	URI          string
	LogoURI      string
	RedirectURIs []string
}

// Dialog is the data rendered into the approval dialog.
type Dialog struct {
	Server ServerInfo
	Client ClientInfo

	// State is the encoded pending request, posted back unchanged on approval.
	State string
}

// RenderDialog writes the approval dialog. The page must not be framed.
func RenderDialog(w http.ResponseWriter, dialog *Dialog) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "approval.html", dialog); err != nil {
		return fmt.Errorf("failed to render approval dialog: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	return nil
}
