// Package testutil wires throwaway SQLite and Redis instances for tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/cache"
	"github.com/oggyb/yourcode/internal/config"
	"github.com/oggyb/yourcode/internal/db"
)

// OpenDB spins up an isolated in-memory SQLite DB with the full schema.
// A single connection serializes access the way the tests expect.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

// NewCache starts a miniredis and returns a cache bound to it.
func NewCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Client.Close() })
	return rc, mr
}

// CreateUser inserts a user with a dummy password hash.
func CreateUser(t *testing.T, database *gorm.DB, id uint64, username string) db.User {
	t.Helper()
	u := db.User{
		ID:           id,
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "x",
	}
	require.NoError(t, database.Create(&u).Error)
	return u
}

// CreatePost inserts an active post with a fixed creation time so ordering
// is deterministic.
func CreatePost(t *testing.T, database *gorm.DB, ownerID uint64, title string, createdAt time.Time) db.CodePost {
	t.Helper()
	p := db.CodePost{
		UserID:    ownerID,
		Title:     title,
		CodeImage: "/uploads/" + title + ".png",
		IsActive:  true,
		CreatedAt: createdAt.UTC(),
	}
	require.NoError(t, database.Create(&p).Error)
	return p
}

// NewAppContext wires an isolated DB, a miniredis-backed cache and a
// token manager into an AppContext.
func NewAppContext(t *testing.T) (*app.AppContext, *miniredis.Miniredis) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "yourcode"
	cfg.JWT.TTL = time.Hour
	cfg.Media.MaxBytes = 5 << 20
	cfg.Media.PublicURL = "/uploads"

	rc, mr := NewCache(t)
	appCtx := app.New(cfg, OpenDB(t), rc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return appCtx, mr
}
