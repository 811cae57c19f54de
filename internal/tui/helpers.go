package tui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/casedesk/pkg/client"
	"github.com/naveenspark/casedesk/pkg/session"
)

// describeError is the text a view shows for a failed call. Authentication
// failures yield "" since the app is already returning to the login screen.
func describeError(err error) string {
	switch {
	case err == nil || session.IsAuthError(err):
		return ""
	case errors.Is(err, client.ErrMalformedResponse):
		return "unexpected response from the server"
	case client.IsStatus(err, http.StatusUnauthorized):
		return "the server rejected this session"
	case client.IsStatus(err, http.StatusForbidden):
		return "not allowed for this account"
	case client.IsStatus(err, http.StatusNotFound):
		return "not found"
	}
	return err.Error()
}

// loadErrorText is describeError for a view that reloads on r. Transport
// failures and 5xx answers get a retry hint.
func loadErrorText(err error) string {
	text := describeError(err)
	if text == "" || !client.IsTransient(err) {
		return text
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode < 500 {
		return text
	}
	return text + " (r to retry)"
}

// formatTime renders a relative timestamp for list displays.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// oneLine collapses newlines and runs of whitespace so a message body fits a row.
func oneLine(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// containsFold reports whether any of fields contains q, ignoring case.
func containsFold(q string, fields ...string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// separator renders a dim horizontal rule sized to width.
func separator(width int) string {
	w := width - 2
	if w < 4 {
		w = 4
	}
	return " " + metaStyle.Render(strings.Repeat("─", w))
}
