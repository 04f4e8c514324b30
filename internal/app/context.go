package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/yourcode/internal/auth"
	"github.com/oggyb/yourcode/internal/cache"
	"github.com/oggyb/yourcode/internal/config"
	"github.com/oggyb/yourcode/internal/media"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Tokens     *auth.TokenManager
	Media      media.Store
}

// New creates a new AppContext. Tokens and Media are set by the caller
// once their backends are up.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Tokens:     auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
	}
}
