package main

import (
	"context"

	"github.com/wellnoosh/engagement/internal/app"
	"github.com/wellnoosh/engagement/internal/cache"
	"github.com/wellnoosh/engagement/internal/config"
	"github.com/wellnoosh/engagement/internal/db"
	"github.com/wellnoosh/engagement/internal/logger"
	"github.com/wellnoosh/engagement/internal/recommend"
	"github.com/wellnoosh/engagement/internal/server"
	"github.com/wellnoosh/engagement/internal/service/engagement"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	recommender := recommend.New(cfg.Recommender.BaseURL, cfg.Recommender.Timeout)

	appCtx := app.New(database, redisCache, log, recommender, cfg)

	registrars := []server.Registrar{
		engagement.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
