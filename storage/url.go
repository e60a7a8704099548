package storage

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/deifrati/api/config"
)

var httpScheme = regexp.MustCompile(`(?i)^https?://`)

// PublicURLForKey maps an object key to the URL browsers should load it from.
// A configured public base URL (CDN) wins. Without bucket or region the key is returned as is.
func PublicURLForKey(cfg config.StorageConfig, key string) string {
	if base := strings.TrimSpace(cfg.PublicBaseURL); base != "" {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
	}
	if cfg.Bucket == "" || cfg.Region == "" {
		return key
	}
	if cfg.Region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.Bucket, cfg.Region, key)
}

// ExtractKeyFromURLOrKey accepts either a full http(s) URL or a bare key and returns the object key.
// For URLs the key is the decoded path without its leading slash. The second result is
// false when nothing usable remains.
func ExtractKeyFromURLOrKey(value string) (string, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", false
	}
	if !httpScheme.MatchString(raw) {
		key := strings.TrimLeft(raw, "/")
		return key, key != ""
	}

	u, err := url.Parse(raw)
	if err != nil {
		key := strings.TrimLeft(strings.SplitN(raw, "?", 2)[0], "/")
		return key, key != ""
	}
	key := strings.TrimLeft(u.Path, "/")
	return key, key != ""
}

// ExtractKeyFor is ExtractKeyFromURLOrKey aware of cfg.PublicBaseURL: URLs under a CDN base that has
// its own path component map back to the key that PublicURLForKey appended.
func ExtractKeyFor(cfg config.StorageConfig, value string) (string, bool) {
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	v := strings.TrimSpace(value)
	if base == "" || !strings.HasPrefix(v, base+"/") {
		return ExtractKeyFromURLOrKey(value)
	}

	rest := strings.SplitN(strings.TrimPrefix(v, base+"/"), "?", 2)[0]
	if decoded, err := url.PathUnescape(rest); err == nil {
		rest = decoded
	}
	rest = strings.TrimLeft(rest, "/")
	return rest, rest != ""
}
