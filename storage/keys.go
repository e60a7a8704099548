package storage

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultPrefix is the root namespace for generated keys when none is configured.
	DefaultPrefix = "media"
	// DefaultExt is used when the uploaded file name carries no extension.
	DefaultExt = ".jpg"

	maxSlugLen     = 80
	maxSegmentLen  = 80
	maxBaseNameLen = 120
)

// combining diacritical marks block, U+0300..U+036F
var diacritics = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}}}

var (
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9]+`)
	nonAlnumChars  = regexp.MustCompile(`[^A-Za-z0-9]+`)
	nonFolderChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// stripDiacritics decomposes s and drops combining marks, so "Tiramisù" becomes "Tiramisu".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(diacritics)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// truncate cuts ASCII-only strings to n bytes.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Slugify turns a display name into a lowercase dash separated token of at most 80
// characters. Names with nothing usable become "unknown".
func Slugify(v string) string {
	s := strings.ToLower(stripDiacritics(v))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = truncate(strings.Trim(s, "-"), maxSlugLen)
	if s == "" {
		return "unknown"
	}
	return s
}

// ToPascalCase joins the alphanumeric runs of v, each with its first letter upper-cased:
// "Spaghetti alle Vongole" becomes "SpaghettiAlleVongole".
func ToPascalCase(v string) string {
	var b strings.Builder
	for _, tok := range nonAlnumChars.Split(stripDiacritics(v), -1) {
		if tok == "" {
			continue
		}
		b.WriteString(strings.ToUpper(tok[:1]))
		b.WriteString(tok[1:])
	}
	return b.String()
}

// SanitizeFolder reduces a client supplied folder to slash separated segments made of
// [A-Za-z0-9_-]. Dots are removed, so ".." can never survive. Empty segments are dropped
// and the result has no leading or trailing slash. It is idempotent.
func SanitizeFolder(folder string) string {
	folder = strings.Trim(strings.ReplaceAll(folder, `\`, "/"), "/")

	segments := make([]string, 0, 4)
	for _, seg := range strings.Split(folder, "/") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		seg = strings.ReplaceAll(stripDiacritics(seg), ".", "")
		seg = truncate(nonFolderChars.ReplaceAllString(seg, ""), maxSegmentLen)
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return strings.Join(segments, "/")
}

// SanitizeFileBaseName drops the extension of v and keeps only ASCII letters and digits,
// at most 120 of them.
func SanitizeFileBaseName(v string) string {
	if ext := ExtName(v); ext != "" {
		v = v[:len(v)-len(ext)]
	}
	return truncate(nonAlnumChars.ReplaceAllString(stripDiacritics(v), ""), maxBaseNameLen)
}

// ExtName returns the extension of the last path element including the dot. Dot files
// such as ".env" have no extension.
func ExtName(name string) string {
	base := name[strings.LastIndex(name, "/")+1:]
	i := strings.LastIndex(base, ".")
	if i <= 0 || strings.Trim(base, ".") == "" {
		return ""
	}
	return base[i:]
}

// baseName returns the last path element of name without ext, compared case-insensitively.
func baseName(name, ext string) string {
	base := name[strings.LastIndex(name, "/")+1:]
	if ext != "" && len(base) > len(ext) && strings.EqualFold(base[len(base)-len(ext):], ext) {
		base = base[:len(base)-len(ext)]
	}
	return base
}

// NormalizePrefix trims whitespace and surrounding slashes, defaulting to DefaultPrefix.
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

// KeyBuilder derives object keys. Now and Rand are swappable so tests can pin them.
type KeyBuilder struct {
	Prefix string
	Now    func() time.Time
	Rand   func() int64
}

// NewKeyBuilder returns a builder rooted at the normalized prefix.
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		Prefix: NormalizePrefix(prefix),
		Now:    time.Now,
		Rand:   randomSuffix,
	}
}

// randomSuffix is uniform over [0, 1e9].
func randomSuffix() int64 {
	return rand.Int63n(1_000_000_001)
}

// Build returns the object key for an upload.
//
// With a desiredBaseName that survives sanitizing, the key is deterministic:
// {prefix}/{folder}/{base}{ext}. Re-uploading under the same name overwrites the object.
// Otherwise the key is {prefix}/{folder}/{unixMillis}-{random}-{slug}{ext}.
// The extension comes from originalName, lower-cased, and defaults to ".jpg".
func (b *KeyBuilder) Build(folder, originalName, desiredBaseName string) string {
	ext := strings.ToLower(ExtName(originalName))
	if ext == "" {
		ext = DefaultExt
	}
	safeFolder := SanitizeFolder(folder)

	if base := SanitizeFileBaseName(desiredBaseName); base != "" {
		return joinKey(b.Prefix, safeFolder, base+ext)
	}

	name := originalName
	if name == "" {
		name = "image"
	}
	unique := fmt.Sprintf("%d-%d", b.Now().UnixMilli(), b.Rand())
	return joinKey(b.Prefix, safeFolder, unique+"-"+Slugify(baseName(name, ext))+ext)
}

func joinKey(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
