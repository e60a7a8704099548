package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deifrati/api/models"
	"github.com/deifrati/api/utils"
)

const winesCacheKey = "wines:public"

var (
	wineColumns = []string{
		"name", "region", "description", "full_description", "price_glass",
		"price_bottle", "image_url", "grape", "pairing", "is_available",
	}
	wineConverters = map[string]func(interface{}) interface{}{
		"pairing":      func(v interface{}) interface{} { return models.EncodeList(v) },
		"is_available": func(v interface{}) interface{} { return truthy(v) },
	}
)

// WineController manages the wine list.
type WineController struct {
	db *gorm.DB
}

func NewWineController(db *gorm.DB) *WineController {
	return &WineController{db: db}
}

func (w *WineController) list(ctx *gin.Context, onlyAvailable bool) ([]models.WineView, bool) {
	q := w.db.Order("id ASC")
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	var wines []models.Wine
	if err := q.Find(&wines).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error fetching wines", err)
		return nil, false
	}
	views := make([]models.WineView, 0, len(wines))
	for i := range wines {
		views = append(views, wines[i].View())
	}
	return views, true
}

// ListAvailable is the public wine list.
func (w *WineController) ListAvailable(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(winesCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}
	views, ok := w.list(ctx, true)
	if !ok {
		return
	}
	resp := gin.H{"wines": views}
	utils.CacheSetJSON(winesCacheKey, resp, 0)
	utils.Success(ctx, resp)
}

// ListAll includes unavailable wines for the admin screen.
func (w *WineController) ListAll(ctx *gin.Context) {
	views, ok := w.list(ctx, false)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"wines": views})
}

func (w *WineController) Create(ctx *gin.Context) {
	body := bindBody(ctx)
	name := strings.TrimSpace(str(body, "name"))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, "name is required")
		return
	}

	available := true
	if v, present := body["is_available"]; present {
		available = truthy(v)
	}
	wine := models.Wine{
		Name:            name,
		Region:          optionalString(body["region"]),
		Description:     optionalString(body["description"]),
		FullDescription: optionalString(body["full_description"]),
		PriceGlass:      optionalFloat(body["price_glass"]),
		PriceBottle:     optionalFloat(body["price_bottle"]),
		ImageURL:        optionalString(body["image_url"]),
		Grape:           optionalString(body["grape"]),
		Pairing:         models.EncodeList(body["pairing"]),
		IsAvailable:     &available,
	}
	if err := w.db.Create(&wine).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error creating wine", err)
		return
	}
	utils.InvalidateByPrefix("wines:")

	utils.Respond(ctx, http.StatusCreated, gin.H{
		"message": "Wine created successfully",
		"wineId":  wine.ID,
	})
}

func (w *WineController) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	updates := columnUpdates(bindBody(ctx), wineColumns, wineConverters)
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, "No fields provided to update")
		return
	}
	if err := w.db.Model(&models.Wine{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error updating wine", err)
		return
	}
	utils.InvalidateByPrefix("wines:")
	utils.Message(ctx, http.StatusOK, "Wine updated successfully")
}

func (w *WineController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := w.db.Delete(&models.Wine{}, id).Error; err != nil {
		utils.ErrorWithCause(ctx, http.StatusInternalServerError, "Error deleting wine", err)
		return
	}
	utils.InvalidateByPrefix("wines:")
	utils.Message(ctx, http.StatusOK, "Wine deleted successfully")
}
