package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/deifrati/api/models"
)

// countedPrefixes are the public reads shown on the dashboard.
var countedPrefixes = []string{"/api/menu", "/api/wines"}

// PageViewRecorder counts successful public GETs per day and route pattern.
func PageViewRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != "GET" {
			return
		}
		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		path := c.FullPath()
		if path == "" || strings.HasSuffix(path, "/admin") || !counted(path) {
			return
		}

		// local midnight to line up with the DATE column
		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.PageView{Date: localMidnight, Path: path, Count: 1}).Error
	}
}

func counted(path string) bool {
	for _, p := range countedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
