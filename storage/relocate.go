package storage

import (
	"context"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/deifrati/api/utils"
)

var imageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// SafeImageExt returns the lower-cased extension of key when it is an image extension,
// otherwise DefaultExt.
func SafeImageExt(key string) string {
	ext := strings.ToLower(ExtName(key))
	if _, ok := imageExts[ext]; ok {
		return ext
	}
	return DefaultExt
}

// ImageContentType sniffs data and falls back to the file extension when the content is
// not recognisably an image. The final fallback is image/jpeg.
func ImageContentType(data []byte, filename string) string {
	if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") {
		return mt.String()
	}
	if ct, ok := imageExts[strings.ToLower(ExtName(filename))]; ok {
		return ct
	}
	return "image/jpeg"
}

// IsLegacyKey reports whether key lives under prefix but outside the canonical site/ tree.
func IsLegacyKey(prefix, key string) bool {
	if key == "" || !strings.HasPrefix(key, prefix+"/") {
		return false
	}
	return !strings.HasPrefix(key, prefix+"/site/")
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// MenuItemKey is site/{Category}/{Category}{Item}{ext}.
func (s *S3Storage) MenuItemKey(categoryName, itemName, oldKey string) string {
	category := orDefault(ToPascalCase(categoryName), "Unknown")
	item := orDefault(ToPascalCase(itemName), "Item")
	return s.ObjectKey("site/"+category, "image"+SafeImageExt(oldKey), category+item)
}

// CategoryKey is site/{Category}/{Category}Category{ext}.
func (s *S3Storage) CategoryKey(categoryName, oldKey string) string {
	category := orDefault(ToPascalCase(categoryName), "Unknown")
	return s.ObjectKey("site/"+category, "image"+SafeImageExt(oldKey), category+"Category")
}

// WineKey is site/Vino/Vino{Wine}{ext}.
func (s *S3Storage) WineKey(wineName, oldKey string) string {
	wine := orDefault(ToPascalCase(wineName), "Wine")
	return s.ObjectKey("site/Vino", "image"+SafeImageExt(oldKey), "Vino"+wine)
}

// MigrationKey names a file moved off local disk: {prefix}/{folder}/{slug}{ext}. Unlike
// uploads it keeps the original name, slugified, so migrated assets stay searchable.
func (s *S3Storage) MigrationKey(folder, filename string) string {
	ext := ExtName(filename)
	return joinKey(s.Prefix(), SanitizeFolder(folder), Slugify(baseName(filename, ext))+strings.ToLower(ext))
}

// Relocation is one planned object move and the row that points at it.
type Relocation struct {
	Table string
	ID    uint
	From  string
	To    string
	URL   string
}

// PlanRelocation resolves currentURL and reports whether it should move to targetKey.
// Keys outside the prefix, keys already under site/ and keys already at the target stay put.
func (s *S3Storage) PlanRelocation(table string, id uint, currentURL, targetKey string) (Relocation, bool) {
	from, ok := ExtractKeyFor(s.cfg, currentURL)
	if !ok || !IsLegacyKey(s.Prefix(), from) || from == targetKey {
		return Relocation{}, false
	}
	return Relocation{
		Table: table,
		ID:    id,
		From:  from,
		To:    targetKey,
		URL:   s.PublicURL(targetKey),
	}, true
}

// Relocate creates the target folder marker, best effort, then copies the object.
// The source is left in place.
func (s *S3Storage) Relocate(ctx context.Context, r Relocation) error {
	folder := strings.TrimPrefix(path.Dir(r.To), s.Prefix()+"/")
	if res := s.EnsureFolder(ctx, folder); res.Status == FolderFailed {
		utils.Logger.Debug("folder marker skipped", zap.String("key", res.Key))
	}
	return s.Copy(ctx, r.From, r.To)
}
