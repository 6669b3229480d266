package api

import (
	"bytes"
	"embed"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/wuwenbin0122/debate-hub/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Raw HTML in message bodies is dropped by goldmark unless WithUnsafe is set.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

func parseTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"markdown":   renderMarkdown,
		"formatTime": formatTime,
		"formatDate": formatDate,
	}).ParseFS(templateFS, "templates/*.tmpl")
}

func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}

// formatTime renders a message time as "10:30 AM".
func formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("03:04 PM")
}

// formatDate renders a list card's last activity as "Jan 15, 02:45 PM".
func formatDate(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format("Jan 2, 03:04 PM")
}
