package extract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyLink is returned when a link value is blank.
var ErrEmptyLink = errors.New("empty link")

// AbsoluteURL resolves href against origin. Absolute hrefs are returned unchanged,
// root-relative and protocol-relative ones are rewritten onto origin.
func AbsoluteURL(origin, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyLink
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", href, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", origin, err)
	}
	if !base.IsAbs() {
		return "", fmt.Errorf("origin %q is not absolute", origin)
	}
	return base.ResolveReference(ref).String(), nil
}

// IsPageURL reports whether raw is an http(s) URL pointing below the site root.
func IsPageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.Trim(u.Path, "/") != ""
}

// Canonical drops the query string and fragment so tracking parameters do not
// defeat deduplication.
func Canonical(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// OriginOf returns scheme://host for raw, or "" if raw is not absolute.
func OriginOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
