package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/wellnoosh/engagement/internal/cache"
	"github.com/wellnoosh/engagement/internal/config"
	"github.com/wellnoosh/engagement/internal/recommend"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	DB          *gorm.DB
	RedisCache  *cache.RedisCache
	Logger      *slog.Logger
	Recommender *recommend.Client
	Config      *config.Config
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, rec *recommend.Client, cfg *config.Config) *AppContext {
	return &AppContext{
		DB:          db,
		RedisCache:  rdb,
		Logger:      logger,
		Recommender: rec,
		Config:      cfg,
	}
}
