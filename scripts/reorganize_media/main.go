package main

// Moves legacy, randomly named S3 objects to the canonical site/ layout:
//   menu item  -> {prefix}/site/{Category}/{Category}{Item}{ext}
//   category   -> {prefix}/site/{Category}/{Category}Category{ext}
//   wine       -> {prefix}/site/Vino/Vino{Wine}{ext}
// Dry run by default. --apply copies objects and rewrites image_url; --delete-old also
// removes the source objects afterwards.

import (
	"context"
	"flag"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

type mediaStore interface {
	storage.Storage
	MenuItemKey(categoryName, itemName, oldKey string) string
	CategoryKey(categoryName, oldKey string) string
	WineKey(wineName, oldKey string) string
	PlanRelocation(table string, id uint, currentURL, targetKey string) (storage.Relocation, bool)
	Relocate(ctx context.Context, r storage.Relocation) error
}

type reorganizer struct {
	db        *gorm.DB
	store     mediaStore
	apply     bool
	deleteOld bool
}

type summary struct {
	planned int
	updated int
	failed  int
}

type itemImage struct {
	ItemID       uint
	ItemName     string
	ImageURL     string
	CategoryName string
}

type namedImage struct {
	ID       uint
	Name     string
	ImageURL string
}

func remoteImages(db *gorm.DB) *gorm.DB {
	return db.Where("image_url IS NOT NULL AND image_url <> '' AND image_url NOT LIKE ?", storage.LocalURLPrefix+"%")
}

// plan lists every row whose image should move, in menu item, category, wine order.
func (r *reorganizer) plan(ctx context.Context) ([]storage.Relocation, error) {
	db := r.db.WithContext(ctx)
	var moves []storage.Relocation

	var items []itemImage
	err := db.Table("menu_items AS i").
		Select("i.id AS item_id, i.name AS item_name, i.image_url AS image_url, c.name AS category_name").
		Joins("JOIN menu_categories c ON c.id = i.category_id").
		Where("i.image_url IS NOT NULL AND i.image_url <> '' AND i.image_url NOT LIKE ?", storage.LocalURLPrefix+"%").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	for _, it := range items {
		oldKey, ok := storage.ExtractKeyFromURLOrKey(it.ImageURL)
		if !ok {
			continue
		}
		target := r.store.MenuItemKey(it.CategoryName, it.ItemName, oldKey)
		if mv, ok := r.store.PlanRelocation("menu_items", it.ItemID, it.ImageURL, target); ok {
			moves = append(moves, mv)
		}
	}

	var categories []namedImage
	if err := remoteImages(db.Table("menu_categories").Select("id, name, image_url")).Scan(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	for _, c := range categories {
		oldKey, ok := storage.ExtractKeyFromURLOrKey(c.ImageURL)
		if !ok {
			continue
		}
		if mv, ok := r.store.PlanRelocation("menu_categories", c.ID, c.ImageURL, r.store.CategoryKey(c.Name, oldKey)); ok {
			moves = append(moves, mv)
		}
	}

	var wines []namedImage
	if err := remoteImages(db.Table("wines").Select("id, name, image_url")).Scan(&wines).Error; err != nil {
		return nil, fmt.Errorf("load wines: %w", err)
	}
	for _, w := range wines {
		oldKey, ok := storage.ExtractKeyFromURLOrKey(w.ImageURL)
		if !ok {
			continue
		}
		if mv, ok := r.store.PlanRelocation("wines", w.ID, w.ImageURL, r.store.WineKey(w.Name, oldKey)); ok {
			moves = append(moves, mv)
		}
	}
	return moves, nil
}

// run executes the plan. A failed move is logged and skipped so a rerun can pick it up.
func (r *reorganizer) run(ctx context.Context) (summary, error) {
	moves, err := r.plan(ctx)
	if err != nil {
		return summary{}, err
	}

	var s summary
	for _, mv := range moves {
		s.planned++
		utils.Sugar.Infof("%s %d:\n  from: %s\n  to:   %s\n  url:  %s", mv.Table, mv.ID, mv.From, mv.To, mv.URL)
		if !r.apply {
			continue
		}

		if err := r.store.Relocate(ctx, mv); err != nil {
			s.failed++
			utils.Logger.Warn("copy failed", zap.String("table", mv.Table), zap.Uint("id", mv.ID), zap.Error(err))
			continue
		}
		if err := r.db.WithContext(ctx).Table(mv.Table).Where("id = ?", mv.ID).Update("image_url", mv.URL).Error; err != nil {
			s.failed++
			utils.Logger.Warn("row update failed", zap.String("table", mv.Table), zap.Uint("id", mv.ID), zap.Error(err))
			continue
		}
		if r.deleteOld {
			storage.DeleteImage(ctx, r.store, mv.From)
		}
		s.updated++
	}
	return s, nil
}

func main() {
	apply := flag.Bool("apply", false, "copy objects and update rows (default is a dry run)")
	deleteOld := flag.Bool("delete-old", false, "delete the legacy objects after a successful copy")
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
	db := config.InitDatabase()

	mode := "DRY-RUN"
	if *apply {
		mode = "APPLY"
	}
	utils.Sugar.Infof("Reorganizing S3 media (mode: %s) bucket=%s prefix=%s", mode, store.Bucket(), store.Prefix())

	r := &reorganizer{db: db, store: store, apply: *apply, deleteOld: *deleteOld}
	s, err := r.run(ctx)
	if err != nil {
		utils.Sugar.Fatalf("reorganize failed: %v", err)
	}

	utils.Sugar.Infof("Planned moves: %d, rows updated: %d, failed: %d", s.planned, s.updated, s.failed)
	if !*apply {
		utils.Sugar.Info("Dry run only. Re-run with --apply to perform changes, add --delete-old to remove the old objects.")
	}
}
