package domain

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	wildcard "github.com/IGLOU-EU/go-wildcard/v2"
)

// Validation operates on raw trimmed input. HTML escaping is applied only when
// a value is echoed into logs or messages (EscapeForDisplay), never before the
// format checks below, so the charset rules always see the original characters.

var (
	purchaseCodeRe = regexp.MustCompile(`^[A-Z0-9-]+$`)
	licenseKeyRe   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	domainRe       = regexp.MustCompile(`^[a-z0-9_.-]+$`)
	productSlugRe  = regexp.MustCompile(`^[a-z0-9-]+$`)
	versionRe      = regexp.MustCompile(`^[0-9]+\.[0-9]+(\.[0-9]+)?(-[a-zA-Z0-9]+)?$`)

	suspiciousRe = regexp.MustCompile(`[<>"'` + "`" + `\\;]`)
)

// NormalizePurchaseCode trims, uppercases and validates a purchase code.
// Length violations and charset violations are distinct errors so the API can
// report INVALID_PURCHASE_CODE_FORMAT vs INVALID_PURCHASE_CODE_CHARACTERS.
func NormalizePurchaseCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", fmt.Errorf("%w: purchase code is required", ErrInvalidInput)
	}
	if suspiciousRe.MatchString(code) {
		return "", fmt.Errorf("%w: purchase code", ErrUnsafeInput)
	}
	if len(code) < 10 || len(code) > 100 {
		return "", ErrInvalidPurchaseCodeFormat
	}
	if !purchaseCodeRe.MatchString(code) {
		return "", ErrInvalidPurchaseCodeCharacters
	}
	return code, nil
}

// NormalizeLicenseKey trims and validates a license key.
func NormalizeLicenseKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", fmt.Errorf("%w: license key is required", ErrInvalidInput)
	}
	if suspiciousRe.MatchString(key) {
		return "", fmt.Errorf("%w: license key", ErrUnsafeInput)
	}
	if len(key) > 255 || !licenseKeyRe.MatchString(key) {
		return "", fmt.Errorf("%w: license key", ErrInvalidInput)
	}
	return key, nil
}

// NormalizeDomain lowercases and validates a hostname. Full URLs are accepted
// and reduced to their host component; ports are stripped.
func NormalizeDomain(raw string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return "", fmt.Errorf("%w: domain is required", ErrInvalidInput)
	}
	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil || u.Hostname() == "" {
			return "", fmt.Errorf("%w: domain", ErrInvalidInput)
		}
		host = u.Hostname()
	} else if idx := strings.IndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}
	host = strings.TrimSuffix(host, "/")
	if suspiciousRe.MatchString(host) {
		return "", fmt.Errorf("%w: domain", ErrUnsafeInput)
	}
	if len(host) > 255 || !domainRe.MatchString(host) {
		return "", fmt.Errorf("%w: domain", ErrInvalidInput)
	}
	return host, nil
}

// NormalizeProductSlug lowercases and validates a product slug.
func NormalizeProductSlug(raw string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if slug == "" {
		return "", fmt.Errorf("%w: product slug is required", ErrInvalidInput)
	}
	if suspiciousRe.MatchString(slug) {
		return "", fmt.Errorf("%w: product slug", ErrUnsafeInput)
	}
	if len(slug) > 255 || !productSlugRe.MatchString(slug) {
		return "", fmt.Errorf("%w: product slug", ErrInvalidInput)
	}
	return slug, nil
}

// ValidateVersion checks semantic-ish version strings (1.2, 1.2.3, 1.2.3-beta1).
func ValidateVersion(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", fmt.Errorf("%w: version is required", ErrInvalidInput)
	}
	if !versionRe.MatchString(v) {
		return "", fmt.Errorf("%w: version", ErrInvalidInput)
	}
	return v, nil
}

// EscapeForDisplay entity-encodes a value for inclusion in logs or echoed
// messages. Applied after validation, never before.
func EscapeForDisplay(raw string) string {
	return html.EscapeString(raw)
}

// IsSuspicious reports whether raw input carries HTML/script metacharacters,
// used to route rejections to the security audit log.
func IsSuspicious(raw string) bool {
	return suspiciousRe.MatchString(raw)
}

// IsLocalhost identifies loopback/development hosts eligible for the
// allow_localhost policy bypass.
func IsLocalhost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1", "0.0.0.0":
		return true
	}
	return strings.HasSuffix(host, ".localhost") || strings.HasPrefix(host, "127.")
}

// DomainMatches reports whether a registered binding covers the requesting
// host. With wildcards enabled, a "*.example.com" binding covers the root
// domain and every subdomain.
func DomainMatches(registered, host string, allowWildcards bool) bool {
	if registered == host {
		return true
	}
	if !allowWildcards || !strings.HasPrefix(registered, "*.") {
		return false
	}
	root := strings.TrimPrefix(registered, "*.")
	return host == root || wildcard.Match(registered, host)
}
