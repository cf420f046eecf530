package strategy

import (
	"bytes"
	"net/http"
	"strings"
)

// Degradation reasons reported by AuthWallDetector.
const (
	ReasonAuthWallRedirect = "authwall_redirect"
	ReasonLoginForm        = "login_form"
	ReasonBlockedStatus    = "blocked_status"
	ReasonScriptShell      = "script_shell"
)

// AuthWallDetector recognizes pages that were served in place of search results.
type AuthWallDetector struct {
	// ShellThreshold is the body size below which a script-heavy page counts as an empty shell.
	ShellThreshold int
}

// NewAuthWallDetector creates a detector with the given shell threshold.
func NewAuthWallDetector(threshold int) *AuthWallDetector {
	if threshold == 0 {
		threshold = 2048
	}
	return &AuthWallDetector{ShellThreshold: threshold}
}

var urlMarkers = []string{"authwall", "login", "checkpoint/challenge"}

var loginMarkers = [][]byte{
	[]byte(`class="authwall-join-form`),
	[]byte(`name="session_key"`),
	[]byte(`name="session_password"`),
}

// blockedStatus is what the target answers to clients it refuses to serve.
const blockedStatus = 999

// Detect returns a degradation reason for the page, or "" when it looks normal.
func (d *AuthWallDetector) Detect(finalURL string, status int, body []byte) string {
	lowerURL := strings.ToLower(finalURL)
	for _, marker := range urlMarkers {
		if strings.Contains(lowerURL, marker) {
			return ReasonAuthWallRedirect
		}
	}
	if status == blockedStatus || status == http.StatusTooManyRequests {
		return ReasonBlockedStatus
	}
	for _, marker := range loginMarkers {
		if bytes.Contains(body, marker) {
			return ReasonLoginForm
		}
	}
	if len(body) > 0 && len(body) < d.ShellThreshold && scriptDensityHigh(body) {
		return ReasonScriptShell
	}
	return ""
}

func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	coverage := 0
	pos := 0

	for {
		rel := strings.Index(lower[pos:], openTag)
		if rel == -1 {
			break
		}
		start := pos + rel

		tagClose := strings.IndexByte(lower[start:], '>')
		if tagClose == -1 {
			coverage += total - start
			break
		}
		contentStart := start + tagClose + 1

		relEnd := strings.Index(lower[contentStart:], closeTag)
		next := total
		if relEnd != -1 {
			next = contentStart + relEnd + len(closeTag)
		}

		coverage += next - start
		pos = next
	}

	return coverage*100/total >= 25
}
