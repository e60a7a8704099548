package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deifrati/api/utils"
)

// HealthController answers the root, API index and health probes.
type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

func (h *HealthController) Welcome(ctx *gin.Context) {
	utils.Message(ctx, http.StatusOK, "Welcome to Dei Frati API")
}

func (h *HealthController) Index(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"message": "Dei Frati API", "ok": true})
}

// Health runs SELECT 1 against the database.
func (h *HealthController) Health(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	var one int
	if err := h.db.WithContext(c).Raw("SELECT 1").Scan(&one).Error; err != nil {
		utils.Respond(ctx, http.StatusServiceUnavailable, gin.H{"ok": false, "db": "unreachable"})
		return
	}
	utils.Success(ctx, gin.H{"ok": true, "db": "ok"})
}

// NotFound is the JSON 404 for unknown routes.
func NotFound(ctx *gin.Context) {
	utils.Error(ctx, http.StatusNotFound, "Route not found")
}
