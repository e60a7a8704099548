// Package storage puts, deletes and locates uploaded media on either S3 or the local disk.
package storage

import (
	"strings"

	"github.com/deifrati/api/config"
)

// Driver names a storage backend.
type Driver string

const (
	DriverS3    Driver = "s3"
	DriverLocal Driver = "local"
)

var placeholderValues = map[string]struct{}{
	"changeme":      {},
	"change_me":     {},
	"example":       {},
	"example_value": {},
	"dummy":         {},
	"dummy_key":     {},
	"dummy_secret":  {},
}

// IsMeaningful reports whether v looks like a real setting rather than a blank or a value
// left over from an .env.example file.
func IsMeaningful(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || strings.HasPrefix(v, "your_") {
		return false
	}
	_, placeholder := placeholderValues[v]
	return !placeholder
}

// SelectDriver picks the backend for cfg. An explicit s3 or local driver wins; otherwise S3
// is used only when bucket, region and both credentials are meaningful. Local is the fallback.
func SelectDriver(cfg config.StorageConfig) Driver {
	switch Driver(strings.ToLower(strings.TrimSpace(cfg.Driver))) {
	case DriverS3:
		return DriverS3
	case DriverLocal:
		return DriverLocal
	}

	if IsMeaningful(cfg.Bucket) &&
		IsMeaningful(cfg.Region) &&
		IsMeaningful(cfg.AccessKeyID) &&
		IsMeaningful(cfg.SecretAccessKey) {
		return DriverS3
	}
	return DriverLocal
}
