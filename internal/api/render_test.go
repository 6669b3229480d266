package api

import (
	"strings"
	"testing"

	"github.com/wuwenbin0122/debate-hub/internal/models"
)

func TestRenderMarkdownDropsRawHTML(t *testing.T) {
	out := string(renderMarkdown("**Dogs** win\n<script>alert(1)</script>"))

	if !strings.Contains(out, "<strong>Dogs</strong>") {
		t.Fatalf("expected emphasis rendered, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected raw html omitted, got %q", out)
	}
}

func TestFormatters(t *testing.T) {
	ts, err := models.ParseTimestamp("2024-01-15T14:45:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := formatTime(ts); got != "02:45 PM" {
		t.Fatalf("unexpected time %q", got)
	}
	if got := formatDate(ts); got != "Jan 15, 02:45 PM" {
		t.Fatalf("unexpected date %q", got)
	}
	if got := formatTime(models.Timestamp{}); got != "" {
		t.Fatalf("expected empty time for zero timestamp, got %q", got)
	}
}
