package main

// Seeds the menu categories, dishes and wine list the site launched with.
// Rows are upserted by name (dishes by category and name), so the script can be rerun.
// Image URLs point at {prefix}/menu/items/{category}/{file} and {prefix}/wines/{file} on S3,
// or at /uploads/{file} with local storage. With --images-dir the files are uploaded too.

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/models"
	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

type migrationKeyer interface {
	MigrationKey(folder, filename string) string
}

type seeder struct {
	db        *gorm.DB
	store     storage.Storage
	imagesDir string
}

// reset clears the menu and wine tables in one transaction.
func (s *seeder) reset(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []interface{}{&models.MenuItem{}, &models.MenuCategory{}, &models.Wine{}} {
			if err := all.Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// imageURL returns the public URL for a seed image, uploading it first when an images
// directory was given. A missing or failed upload still yields the expected URL.
func (s *seeder) imageURL(ctx context.Context, folder, file string) string {
	key := file
	if mk, ok := s.store.(migrationKeyer); ok {
		key = mk.MigrationKey(folder, file)
	}
	if s.imagesDir == "" {
		return s.store.PublicURL(key)
	}

	data, err := os.ReadFile(filepath.Join(s.imagesDir, file))
	if err != nil {
		utils.Logger.Warn("seed image not found", zap.String("file", file), zap.Error(err))
		return s.store.PublicURL(key)
	}
	url, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.ImageContentType(data, file))
	if err != nil {
		utils.Logger.Warn("seed image upload failed", zap.String("key", key), zap.Error(err))
		return s.store.PublicURL(key)
	}
	return url
}

func (s *seeder) seedMenu(ctx context.Context, menu []seedCategory) (categories, items int, err error) {
	db := s.db.WithContext(ctx)
	for _, c := range menu {
		desc := c.Description
		var cat models.MenuCategory
		if err := db.Where(models.MenuCategory{Name: c.Name}).
			Assign(models.MenuCategory{Description: &desc}).
			FirstOrCreate(&cat).Error; err != nil {
			return categories, items, fmt.Errorf("category %s: %w", c.Name, err)
		}
		categories++

		folder := "menu/items/" + storage.Slugify(c.Name)
		for _, it := range c.Items {
			short := it.Short
			image := s.imageURL(ctx, folder, it.ImageFile)
			available := true
			var row models.MenuItem
			err := db.Where(models.MenuItem{CategoryID: cat.ID, Name: it.Name}).
				Assign(models.MenuItem{
					Description:      &short,
					ShortDescription: &short,
					Allergens:        models.EncodeList(it.Allergens),
					Ingredients:      models.EncodeList(it.Ingredients),
					Price:            it.Price,
					ImageURL:         &image,
					IsAvailable:      &available,
				}).
				FirstOrCreate(&row).Error
			if err != nil {
				return categories, items, fmt.Errorf("item %s: %w", it.Name, err)
			}
			items++
		}
	}
	return categories, items, nil
}

func (s *seeder) seedWines(ctx context.Context, wines []seedWine) (int, error) {
	db := s.db.WithContext(ctx)
	n := 0
	for _, w := range wines {
		image := s.imageURL(ctx, "wines", w.ImageFile)
		available := true
		var row models.Wine
		err := db.Where(models.Wine{Name: w.Name}).
			Assign(models.Wine{
				Region:      &w.Region,
				Description: &w.Description,
				PriceGlass:  &w.PriceGlass,
				PriceBottle: &w.PriceBottle,
				ImageURL:    &image,
				Grape:       &w.Grape,
				Pairing:     models.EncodeList(w.Pairing),
				IsAvailable: &available,
			}).
			FirstOrCreate(&row).Error
		if err != nil {
			return n, fmt.Errorf("wine %s: %w", w.Name, err)
		}
		n++
	}
	return n, nil
}

func main() {
	reset := flag.Bool("reset", false, "delete existing menu items, categories and wines first")
	fresh := flag.Bool("fresh", false, "alias for --reset")
	imagesDir := flag.String("images-dir", "", "directory holding the seed images to upload")
	flag.Parse()

	cfg := config.Load()
	if err := utils.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		utils.Sugar.Fatalf("init storage: %v", err)
	}
	s := &seeder{db: config.InitDatabase(models.All()...), store: store, imagesDir: strings.TrimSpace(*imagesDir)}

	if *reset || *fresh {
		utils.Sugar.Info("Clearing menu_items, menu_categories and wines")
		if err := s.reset(ctx); err != nil {
			utils.Sugar.Fatalf("reset failed: %v", err)
		}
	}

	categories, items, err := s.seedMenu(ctx, staticMenu)
	if err != nil {
		utils.Sugar.Fatalf("seed menu: %v", err)
	}
	wines, err := s.seedWines(ctx, staticWines)
	if err != nil {
		utils.Sugar.Fatalf("seed wines: %v", err)
	}
	utils.Sugar.Infof("Seeded %d categories, %d menu items, %d wines (storage: %s)",
		categories, items, wines, store.Driver())
}
