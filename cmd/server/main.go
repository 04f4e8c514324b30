package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/cache"
	"github.com/oggyb/yourcode/internal/config"
	"github.com/oggyb/yourcode/internal/db"
	"github.com/oggyb/yourcode/internal/logger"
	"github.com/oggyb/yourcode/internal/media"
	"github.com/oggyb/yourcode/internal/seed"
	"github.com/oggyb/yourcode/internal/server"
	"github.com/oggyb/yourcode/internal/service/posts"
	"github.com/oggyb/yourcode/internal/service/swipe"
	"github.com/oggyb/yourcode/internal/service/upload"
	"github.com/oggyb/yourcode/internal/service/users"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		return err
	}

	// Init Redis; the counter cache is optional, the DB stays authoritative
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("redis unreachable, counters will be read from the database", "err", err)
	}
	defer redisCache.Close()

	store, err := media.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	appCtx := app.New(cfg, database, redisCache, log)
	appCtx.Media = store

	if cfg.App.ENV == "development" {
		if _, err := seed.Run(ctx, appCtx, seed.DefaultOptions()); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	opts := server.RouterOptions{}
	if local, ok := store.(*media.LocalStore); ok {
		opts.UploadDir = local.Dir()
	}
	router := server.NewRouter(cfg, opts,
		users.NewRegistrar(appCtx),
		posts.NewRegistrar(appCtx),
		swipe.NewRegistrar(appCtx),
		upload.NewRegistrar(appCtx),
	)

	httpSrv := server.NewHTTPServer(cfg, router)
	grpcSrv := server.NewGRPCServer(cfg)

	errCh := make(chan error, 2)
	go func() { errCh <- httpSrv.Start() }()
	go func() { errCh <- grpcSrv.Start() }()

	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	grpcSrv.SetServing(sqlDB.PingContext(ctx) == nil)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			log.Error("server failed", "err", err)
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	grpcSrv.Stop()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	return sqlDB.Close()
}
