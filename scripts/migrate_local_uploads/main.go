package main

// Uploads images still referenced as /uploads/... to S3 and points the rows at the new URLs.
// Menu items land under {prefix}/menu/items/{category}, wines under {prefix}/wines.
// Rows whose file cannot be read or uploaded are logged and left untouched.

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

type uploader interface {
	MigrationKey(folder, filename string) string
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type localRef struct {
	Table    string
	ID       uint
	ImageURL string
	Folder   string
}

type itemRow struct {
	ID           uint
	ImageURL     string
	CategoryName string
}

type wineRow struct {
	ID       uint
	ImageURL string
}

type migrator struct {
	db          *gorm.DB
	store       uploader
	uploadsDir  string
	deleteLocal bool
}

func (m *migrator) references(ctx context.Context) ([]localRef, error) {
	db := m.db.WithContext(ctx)
	like := storage.LocalURLPrefix + "%"

	var items []itemRow
	err := db.Table("menu_items AS i").
		Select("i.id AS id, i.image_url AS image_url, c.name AS category_name").
		Joins("JOIN menu_categories c ON c.id = i.category_id").
		Where("i.image_url LIKE ?", like).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}

	var wines []wineRow
	if err := db.Table("wines").Select("id, image_url").Where("image_url LIKE ?", like).Scan(&wines).Error; err != nil {
		return nil, fmt.Errorf("load wines: %w", err)
	}

	refs := make([]localRef, 0, len(items)+len(wines))
	for _, it := range items {
		refs = append(refs, localRef{Table: "menu_items", ID: it.ID, ImageURL: it.ImageURL, Folder: "menu/items/" + it.CategoryName})
	}
	for _, w := range wines {
		refs = append(refs, localRef{Table: "wines", ID: w.ID, ImageURL: w.ImageURL, Folder: "wines"})
	}
	return refs, nil
}

func (m *migrator) migrate(ctx context.Context, ref localRef) (string, error) {
	filename := filepath.Base(strings.TrimPrefix(ref.ImageURL, storage.LocalURLPrefix))
	localPath := filepath.Join(m.uploadsDir, filename)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}
	key := m.store.MigrationKey(ref.Folder, filename)
	url, err := m.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.ImageContentType(data, filename))
	if err != nil {
		return "", err
	}
	if err := m.db.WithContext(ctx).Table(ref.Table).Where("id = ?", ref.ID).Update("image_url", url).Error; err != nil {
		return "", fmt.Errorf("update row: %w", err)
	}
	if m.deleteLocal {
		if err := os.Remove(localPath); err != nil {
			utils.Logger.Warn("local file not removed", zap.String("path", localPath), zap.Error(err))
		}
	}
	return url, nil
}

func (m *migrator) run(ctx context.Context) (migrated, skipped int, err error) {
	refs, err := m.references(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, ref := range refs {
		url, err := m.migrate(ctx, ref)
		if err != nil {
			skipped++
			utils.Logger.Warn("skipping image",
				zap.String("table", ref.Table),
				zap.Uint("id", ref.ID),
				zap.String("image_url", ref.ImageURL),
				zap.Error(err))
			continue
		}
		migrated++
		utils.Sugar.Infof("%s %d: %s -> %s", ref.Table, ref.ID, ref.ImageURL, url)
	}
	return migrated, skipped, nil
}

func main() {
	deleteLocal := flag.Bool("delete-local", false, "remove local files after a successful upload")
	dir := flag.String("dir", "", "uploads directory (defaults to UPLOAD_DIR)")
	flag.Parse()

	cfg := config.Load()
	if err := utils.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	if storage.SelectDriver(cfg.Storage) != storage.DriverS3 {
		utils.Sugar.Fatal("S3 is not enabled. Set STORAGE_DRIVER=s3 and the AWS_* variables.")
	}

	ctx := context.Background()
	store, err := storage.NewS3(ctx, cfg.Storage)
	if err != nil {
		utils.Sugar.Fatalf("init s3: %v", err)
	}

	uploadsDir := *dir
	if uploadsDir == "" {
		uploadsDir = cfg.Storage.UploadDir
	}
	m := &migrator{db: config.InitDatabase(), store: store, uploadsDir: uploadsDir, deleteLocal: *deleteLocal}

	utils.Sugar.Infof("Scanning database for %s* URLs (dir=%s)", storage.LocalURLPrefix, uploadsDir)
	migrated, skipped, err := m.run(ctx)
	if err != nil {
		utils.Sugar.Fatalf("migration failed: %v", err)
	}
	utils.Sugar.Infof("Done. Migrated %d image references, skipped %d.", migrated, skipped)
}
