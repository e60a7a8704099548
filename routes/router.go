package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/controllers"
	"github.com/deifrati/api/middleware"
	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, db *gorm.DB, store storage.Storage) *gin.Engine {
	switch strings.ToLower(cfg.Server.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		utils.Logger.Warn("invalid TRUSTED_PROXIES, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	// access log goes to its own rolling file; fall back to the app logger
	accessLog, err := utils.NewRollingFileLogger(cfg.Server.GinPath, cfg.Log)
	if err != nil {
		accessLog = utils.Logger
	}
	r.Use(middleware.RequestLogger(accessLog), middleware.Recovery(utils.Logger))
	r.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	r.Use(middleware.PageViewRecorder(db))

	if gin.Mode() == gin.DebugMode {
		pprof.Register(r)
	}

	if store.Driver() == storage.DriverLocal {
		r.Static("/uploads", cfg.Storage.UploadDir)
	}

	secret := cfg.Server.JWTSecret
	authRequired := middleware.AuthRequired(secret)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.AdminRequired()}
	formLimit := middleware.RateLimit("forms", cfg.Limits.FormsPerHour, time.Hour)

	health := controllers.NewHealthController(db)
	authController := controllers.NewAuthController(db, secret, time.Duration(cfg.Server.JWTTTLHours)*time.Hour)
	menuController := controllers.NewMenuController(db, store)
	wineController := controllers.NewWineController(db)
	reservationController := controllers.NewReservationController(db)
	contactController := controllers.NewContactController(db, utils.NewMailer(cfg.SMTP))
	uploadController := controllers.NewUploadController(store).WithTrustedProxies(cfg.Server.TrustedProxies)
	statsController := controllers.NewStatsController(db)

	r.GET("/", health.Welcome)

	api := r.Group("/api")
	api.Use(middleware.RateLimit("api", cfg.Limits.APIPer15Min, 15*time.Minute))
	api.GET("", health.Index)
	api.GET("/health", health.Health)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", middleware.RateLimit("login", cfg.Limits.LoginPer15Min, 15*time.Minute), authController.Login)
	authGroup.POST("/register", authController.Register)
	authGroup.GET("/verify", authRequired, authController.Verify)
	authGroup.POST("/logout", authRequired, authController.Logout)

	menu := api.Group("/menu")
	menu.GET("", menuController.GetMenu)
	menu.GET("/categories", menuController.ListCategories)
	menuAdmin := menu.Group("", adminOnly...)
	menuAdmin.POST("/categories", menuController.CreateCategory)
	menuAdmin.PUT("/categories/:id", menuController.UpdateCategory)
	menuAdmin.DELETE("/categories/:id", menuController.DeleteCategory)
	menuAdmin.POST("/items", menuController.CreateItem)
	menuAdmin.PUT("/items/:id", menuController.UpdateItem)
	menuAdmin.DELETE("/items/:id", menuController.DeleteItem)

	wines := api.Group("/wines")
	wines.GET("", wineController.ListAvailable)
	wines.GET("/admin", append(adminOnly, wineController.ListAll)...)
	wines.POST("", append(adminOnly, wineController.Create)...)
	wines.PUT("/:id", append(adminOnly, wineController.Update)...)
	wines.DELETE("/:id", append(adminOnly, wineController.Delete)...)

	reservations := api.Group("/reservations")
	reservations.POST("", formLimit, reservationController.Create)
	reservations.GET("", append(adminOnly, reservationController.List)...)
	reservations.GET("/my", authRequired, reservationController.Mine)
	reservations.PUT("/:id", append(adminOnly, reservationController.UpdateStatus)...)
	reservations.DELETE("/:id", authRequired, reservationController.Cancel)

	contact := api.Group("/contact")
	contact.POST("", formLimit, contactController.Create)
	contact.GET("", append(adminOnly, contactController.List)...)
	contact.PUT("/:id/read", append(adminOnly, contactController.MarkRead)...)
	contact.DELETE("/:id", append(adminOnly, contactController.Delete)...)

	upload := api.Group("/upload", adminOnly...)
	upload.POST("/image", uploadController.UploadImage)
	upload.DELETE("/image", uploadController.DeleteImage)

	api.GET("/stats", append(adminOnly, statsController.GetStats)...)

	r.NoRoute(controllers.NotFound)
	return r
}

// corsConfig allows every origin when none is configured, otherwise only the listed ones.
func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if len(allowed) == 0 {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
