package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/deifrati/api/models"
	"github.com/deifrati/api/utils"
)

// StatsController feeds the admin dashboard counters.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns booking, inbox and menu counts plus today's public views.
// A failing counter reads as 0 rather than failing the whole dashboard.
func (s *StatsController) GetStats(ctx *gin.Context) {
	count := func(model interface{}, where ...interface{}) int64 {
		var n int64
		q := s.db.Model(model)
		if len(where) > 0 {
			q = q.Where(where[0], where[1:]...)
		}
		if err := q.Count(&n).Error; err != nil {
			return 0
		}
		return n
	}

	var viewsToday int64
	// string date keeps the comparison independent of the DATE column's time zone handling
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&viewsToday).Error; err != nil {
		viewsToday = 0
	}

	utils.Respond(ctx, http.StatusOK, gin.H{
		"reservations_total":   count(&models.Reservation{}),
		"reservations_pending": count(&models.Reservation{}, "status = ?", models.ReservationPending),
		"messages_total":       count(&models.ContactMessage{}),
		"messages_unread":      count(&models.ContactMessage{}, "is_read = ?", false),
		"menu_items":           count(&models.MenuItem{}),
		"wines":                count(&models.Wine{}),
		"views_today":          viewsToday,
	})
}
