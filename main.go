package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/deifrati/api/config"
	"github.com/deifrati/api/models"
	"github.com/deifrati/api/routes"
	"github.com/deifrati/api/storage"
	"github.com/deifrati/api/utils"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	utils.InitRedis(cfg.Redis)

	db := config.InitDatabase(models.All()...)

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		utils.Logger.Fatal("media storage unavailable", zap.Error(err))
	}

	r := routes.SetupRouter(cfg, db, store)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.Server.Port)
	if err := utils.GraceServer(":"+cfg.Server.Port, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
