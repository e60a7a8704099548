package controllers

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deifrati/api/models"
	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

const menuCacheKey = "menu:full"

var (
	categoryColumns = []string{"name", "description", "image_url"}
	itemColumns     = []string{
		"category_id", "name", "description", "short_description", "full_description",
		"allergens", "ingredients", "price", "image_url", "is_available",
	}
	itemConverters = map[string]func(interface{}) interface{}{
		"allergens":    func(v interface{}) interface{} { return models.EncodeList(v) },
		"ingredients":  func(v interface{}) interface{} { return models.EncodeList(v) },
		"is_available": func(v interface{}) interface{} { return truthy(v) },
	}
)

// MenuController serves the public menu and its admin management endpoints.
type MenuController struct {
	db    *gorm.DB
	store storage.Storage
}

// NewMenuController creates a MenuController. store may be nil when no folder placeholders are wanted.
func NewMenuController(db *gorm.DB, store storage.Storage) *MenuController {
	return &MenuController{db: db, store: store}
}

func invalidateMenu() {
	utils.InvalidateByPrefix("menu:")
}

// GetMenu returns every category with its dishes.
func (m *MenuController) GetMenu(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(menuCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	var categories []models.MenuCategory
	err := m.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&categories).Error
	if err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error fetching menu", err)
		return
	}

	views := make([]models.CategoryView, 0, len(categories))
	for i := range categories {
		views = append(views, categories[i].View())
	}
	resp := gin.H{"categories": views}
	utils.CacheSetJSON(menuCacheKey, resp, 0)
	utils.Success(ctx, resp)
}

// ListCategories returns the bare category rows.
func (m *MenuController) ListCategories(ctx *gin.Context) {
	var categories []models.MenuCategory
	if err := m.db.Order("id ASC").Find(&categories).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error fetching categories", err)
		return
	}
	utils.Success(ctx, gin.H{"categories": categories})
}

// CreateCategory inserts a category and, on S3, creates its site/{PascalName}/ folder marker.
func (m *MenuController) CreateCategory(ctx *gin.Context) {
	body := bindBody(ctx)
	name := strings.TrimSpace(str(body, "name"))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, "name is required")
		return
	}

	category := models.MenuCategory{
		Name:        name,
		Description: optionalString(body["description"]),
		ImageURL:    optionalString(body["image_url"]),
	}
	if err := m.db.Create(&category).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error creating category", err)
		return
	}
	invalidateMenu()

	if m.store != nil && m.store.Driver() == storage.DriverS3 {
		if pascal := storage.ToPascalCase(name); pascal != "" {
			res := m.store.EnsureFolder(ctx.Request.Context(), "site/"+pascal)
			utils.Logger.Debug("category folder", zap.String("key", res.Key), zap.String("status", string(res.Status)))
		}
	}

	utils.Respond(ctx, http.StatusCreated, gin.H{
		"message":    "Category created successfully",
		"categoryId": category.ID,
	})
}

// UpdateCategory applies a partial update.
func (m *MenuController) UpdateCategory(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	updates := columnUpdates(bindBody(ctx), categoryColumns, nil)
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, "No fields provided to update")
		return
	}

	if err := m.db.Model(&models.MenuCategory{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error updating category", err)
		return
	}
	invalidateMenu()
	utils.Message(ctx, http.StatusOK, "Category updated successfully")
}

// DeleteCategory removes a category together with its dishes.
func (m *MenuController) DeleteCategory(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MenuCategory{}, id).Error
	})
	if err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error deleting category", err)
		return
	}
	invalidateMenu()
	utils.Message(ctx, http.StatusOK, "Category deleted successfully")
}

// CreateItem validates and inserts a dish.
func (m *MenuController) CreateItem(ctx *gin.Context) {
	body := bindBody(ctx)

	categoryID, ok := utils.FloatFrom(body["category_id"])
	if !ok || categoryID < 0 || categoryID != math.Trunc(categoryID) {
		utils.Error(ctx, http.StatusBadRequest, "category_id is required and must be a number")
		return
	}
	name := strings.TrimSpace(str(body, "name"))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, "name is required")
		return
	}
	price, ok := utils.FloatFrom(body["price"])
	if !ok || math.IsNaN(price) || math.IsInf(price, 0) {
		utils.Error(ctx, http.StatusBadRequest, "price is required and must be a number")
		return
	}

	available := true
	if v, present := body["is_available"]; present {
		available = truthy(v)
	}

	item := models.MenuItem{
		CategoryID:       uint(categoryID),
		Name:             name,
		Description:      optionalString(body["description"]),
		ShortDescription: optionalString(body["short_description"]),
		FullDescription:  optionalString(body["full_description"]),
		Allergens:        models.EncodeList(body["allergens"]),
		Ingredients:      models.EncodeList(body["ingredients"]),
		Price:            price,
		ImageURL:         optionalString(body["image_url"]),
		IsAvailable:      &available,
	}
	if err := m.db.Create(&item).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error creating menu item", err)
		return
	}
	invalidateMenu()

	utils.Respond(ctx, http.StatusCreated, gin.H{
		"message": "Menu item created successfully",
		"itemId":  item.ID,
	})
}

// UpdateItem applies a partial update.
func (m *MenuController) UpdateItem(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	updates := columnUpdates(bindBody(ctx), itemColumns, itemConverters)
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, "No fields provided to update")
		return
	}

	if err := m.db.Model(&models.MenuItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error updating menu item", err)
		return
	}
	invalidateMenu()
	utils.Message(ctx, http.StatusOK, "Menu item updated successfully")
}

// DeleteItem removes a dish.
func (m *MenuController) DeleteItem(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := m.db.Delete(&models.MenuItem{}, id).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error deleting menu item", err)
		return
	}
	invalidateMenu()
	utils.Message(ctx, http.StatusOK, "Menu item deleted successfully")
}
