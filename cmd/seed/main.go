package main

import (
	"context"
	"flag"
	"log"

	"github.com/oggyb/yourcode/internal/app"
	"github.com/oggyb/yourcode/internal/cache"
	"github.com/oggyb/yourcode/internal/config"
	"github.com/oggyb/yourcode/internal/db"
	"github.com/oggyb/yourcode/internal/logger"
	"github.com/oggyb/yourcode/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of demo users")
	flag.IntVar(&opts.PostsPerUser, "posts", opts.PostsPerUser, "posts per user")
	flag.Float64Var(&opts.LikeRatio, "like-ratio", opts.LikeRatio, "share of decisions that are likes")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	flag.Parse()

	// Load configuration
	cfg := config.New()
	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	appCtx := app.New(cfg, database, cache.NewRedisCache(cfg), logger.L())
	if err := appCtx.RedisCache.Ping(context.Background()); err != nil {
		// nothing to invalidate without redis
		appCtx.RedisCache = nil
	}
	stats, err := seed.Run(context.Background(), appCtx, opts)
	if err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Printf("Seeding completed: %d users, %d posts, %d likes, %d passes, %d matches.",
		stats.Users, stats.Posts, stats.Likes, stats.Passes, stats.Matches)
}
